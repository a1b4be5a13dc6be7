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

package session

import (
	"fmt"
	"strings"

	"jinr.ru/greenlab/go-usbmon/pkg/packet"
)

type ErrDeviceNotFound struct {
	Name string
}

func (e ErrDeviceNotFound) Error() string {
	return fmt.Sprintf("No descriptor for %s found, please select an address", e.Name)
}

type ErrMultipleDevices struct {
	Name      string
	Addresses []packet.DeviceAddress
}

func (e ErrMultipleDevices) Error() string {
	addresses := make([]string, 0, len(e.Addresses))
	for _, a := range e.Addresses {
		addresses = append(addresses, a.String())
	}
	return fmt.Sprintf("Multiple device addresses for %s found, please select one of %s",
		e.Name, strings.Join(addresses, ", "))
}
