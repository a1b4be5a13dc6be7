/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package packet

import (
	"fmt"
	"strconv"
	"strings"
)

// DeviceAddress identifies a device as bus.device. It serializes to the
// dotted text form, so it can key json and yaml maps.
type DeviceAddress struct {
	Bus    int
	Device int
}

func ParseDeviceAddress(s string) (DeviceAddress, error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 {
		return DeviceAddress{}, ErrInvalidAddress{Address: s}
	}
	bus, err := strconv.Atoi(parts[0])
	if err != nil {
		return DeviceAddress{}, ErrInvalidAddress{Address: s}
	}
	device, err := strconv.Atoi(parts[1])
	if err != nil {
		return DeviceAddress{}, ErrInvalidAddress{Address: s}
	}
	return DeviceAddress{Bus: bus, Device: device}, nil
}

func (a DeviceAddress) String() string {
	return fmt.Sprintf("%d.%d", a.Bus, a.Device)
}

func (a DeviceAddress) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *DeviceAddress) UnmarshalText(text []byte) error {
	parsed, err := ParseDeviceAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Less orders addresses by bus, then device
func (a DeviceAddress) Less(other DeviceAddress) bool {
	if a.Bus != other.Bus {
		return a.Bus < other.Bus
	}
	return a.Device < other.Device
}

// EndpointAddress identifies an endpoint as bus.device.endpoint, without the
// direction bit
type EndpointAddress struct {
	Bus      int
	Device   int
	Endpoint int
}

func ParseEndpointAddress(s string) (EndpointAddress, error) {
	parts := strings.SplitN(s, ".", 3)
	if len(parts) != 3 {
		return EndpointAddress{}, ErrInvalidAddress{Address: s}
	}
	var values [3]int
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return EndpointAddress{}, ErrInvalidAddress{Address: s}
		}
		values[i] = v
	}
	return EndpointAddress{Bus: values[0], Device: values[1], Endpoint: values[2]}, nil
}

func (a EndpointAddress) DeviceAddress() DeviceAddress {
	return DeviceAddress{Bus: a.Bus, Device: a.Device}
}

func (a EndpointAddress) String() string {
	return fmt.Sprintf("%d.%d.%d", a.Bus, a.Device, a.Endpoint)
}

func (a EndpointAddress) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *EndpointAddress) UnmarshalText(text []byte) error {
	parsed, err := ParseEndpointAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a EndpointAddress) Less(other EndpointAddress) bool {
	if a.Bus != other.Bus {
		return a.Bus < other.Bus
	}
	if a.Device != other.Device {
		return a.Device < other.Device
	}
	return a.Endpoint < other.Endpoint
}

// HasAddressPrefix reports whether the dotted endpoint address of p starts
// with prefix, an empty prefix matches every packet
func HasAddressPrefix(p Packet, prefix string) bool {
	return strings.HasPrefix(p.Address().String(), prefix)
}
