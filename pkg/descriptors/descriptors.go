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

// Package descriptors recognizes GET_DESCRIPTOR(Device) exchanges in a
// capture and decodes the standard device descriptor they carry.
package descriptors

import (
	"encoding/binary"
	"fmt"

	"jinr.ru/greenlab/go-usbmon/pkg/log"
	"jinr.ru/greenlab/go-usbmon/pkg/packet"
	"jinr.ru/greenlab/go-usbmon/pkg/setup"
)

const (
	DeviceDescriptorLen = 18
	// TypeDevice is the descriptor type of a standard device descriptor
	TypeDevice uint8 = 0x01
)

// DeviceDescriptor is the standard device descriptor (USB 2.0 section 9.6.1)
// together with the request that fetched it
type DeviceDescriptor struct {
	Address    packet.DeviceAddress `json:"address"`
	Index      uint8                `json:"index"`
	LanguageID uint16               `json:"languageId"`

	Length            uint8  `json:"bLength"`            // 0
	DescriptorType    uint8  `json:"bDescriptorType"`    // 1
	BcdUSB            uint16 `json:"bcdUSB"`             // 2:3
	DeviceClass       uint8  `json:"bDeviceClass"`       // 4
	DeviceSubClass    uint8  `json:"bDeviceSubClass"`    // 5
	Protocol          uint8  `json:"bDeviceProtocol"`    // 6
	MaxPacketSize     uint8  `json:"bMaxPacketSize0"`    // 7
	VendorID          uint16 `json:"idVendor"`           // 8:9
	ProductID         uint16 `json:"idProduct"`          // 10:11
	BcdDevice         uint16 `json:"bcdDevice"`          // 12:13
	Manufacturer      uint8  `json:"iManufacturer"`      // 14
	Product           uint8  `json:"iProduct"`           // 15
	SerialNumber      uint8  `json:"iSerialNumber"`      // 16
	NumConfigurations uint8  `json:"bNumConfigurations"` // 17
}

// ParseDeviceDescriptor decodes the first 18 bytes of raw, trailing bytes are ignored
func ParseDeviceDescriptor(address packet.DeviceAddress, index uint8, language uint16, raw []byte) (*DeviceDescriptor, error) {
	if len(raw) < DeviceDescriptorLen {
		return nil, ErrDescriptorTooShort{Length: len(raw)}
	}
	if raw[0] != DeviceDescriptorLen || raw[1] != TypeDevice {
		return nil, ErrInvalidDescriptor{Length: raw[0], DescriptorType: raw[1]}
	}
	return &DeviceDescriptor{
		Address:           address,
		Index:             index,
		LanguageID:        language,
		Length:            raw[0],
		DescriptorType:    raw[1],
		BcdUSB:            binary.LittleEndian.Uint16(raw[2:4]),
		DeviceClass:       raw[4],
		DeviceSubClass:    raw[5],
		Protocol:          raw[6],
		MaxPacketSize:     raw[7],
		VendorID:          binary.LittleEndian.Uint16(raw[8:10]),
		ProductID:         binary.LittleEndian.Uint16(raw[10:12]),
		BcdDevice:         binary.LittleEndian.Uint16(raw[12:14]),
		Manufacturer:      raw[14],
		Product:           raw[15],
		SerialNumber:      raw[16],
		NumConfigurations: raw[17],
	}, nil
}

// IDs renders the vendor and product ids the way lsusb does
func (d *DeviceDescriptor) IDs() string {
	return fmt.Sprintf("%04x:%04x", d.VendorID, d.ProductID)
}

func (d *DeviceDescriptor) String() string {
	return fmt.Sprintf("%s %s", d.Address, d.IDs())
}

// Search returns the device descriptor carried by a GET_DESCRIPTOR(Device)
// exchange, nil for any other pair or a malformed descriptor
func Search(pair packet.Pair) *DeviceDescriptor {
	submit := pair.Submission()
	callback := pair.Callback()
	if submit == nil || callback == nil {
		return nil
	}
	sp := submit.Setup()
	if sp == nil || sp.Recipient != setup.RecipientDevice {
		return nil
	}
	if req, ok := sp.StandardRequest(); !ok || req != setup.GetDescriptor {
		return nil
	}
	if len(callback.Payload()) == 0 {
		return nil
	}

	// The device address, not submit.Address(): a descriptor belongs to the
	// device rather than to endpoint 0
	address := submit.DeviceAddress()
	if sp.DescriptorType() != TypeDevice {
		log.Debug("Not a device GET_DESCRIPTOR request (%s): %s", submit.Tag(), sp)
		return nil
	}

	d, err := ParseDeviceDescriptor(address, sp.DescriptorIndex(), sp.Index, callback.Payload())
	if err != nil {
		log.Debug("Invalid device descriptor (%s): %s", submit.Tag(), err)
		return nil
	}
	return d
}
