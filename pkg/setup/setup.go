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

// Package setup decodes the 8 byte setup stage of USB control transfers.
package setup

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Size of a setup stage in bytes
const Size = 8

type Direction uint8

const (
	HostToDevice Direction = iota
	DeviceToHost
)

func (d Direction) String() string {
	if d == DeviceToHost {
		return "DeviceToHost"
	}
	return "HostToDevice"
}

type Type uint8

const (
	Standard Type = iota
	Class
	Vendor
	Reserved
)

func (t Type) String() string {
	switch t {
	case Standard:
		return "Standard"
	case Class:
		return "Class"
	case Vendor:
		return "Vendor"
	}
	return "Reserved"
}

// Recipient occupies 5 bits of bmRequestType, values above Other are reserved
type Recipient uint8

const (
	RecipientDevice Recipient = iota
	RecipientInterface
	RecipientEndpoint
	RecipientOther
	RecipientReserved
)

func (r Recipient) String() string {
	switch r {
	case RecipientDevice:
		return "Device"
	case RecipientInterface:
		return "Interface"
	case RecipientEndpoint:
		return "Endpoint"
	case RecipientOther:
		return "Other"
	}
	return "Reserved"
}

// StandardRequest codes, USB 2.0 table 9-4
type StandardRequest uint8

const (
	GetStatus        StandardRequest = 0x00
	ClearFeature     StandardRequest = 0x01
	SetFeature       StandardRequest = 0x03
	SetAddress       StandardRequest = 0x05
	GetDescriptor    StandardRequest = 0x06
	SetDescriptor    StandardRequest = 0x07
	GetConfiguration StandardRequest = 0x08
	SetConfiguration StandardRequest = 0x09
	GetInterface     StandardRequest = 0x0a
	SetInterface     StandardRequest = 0x0b
	SynchFrame       StandardRequest = 0x0c
)

var standardRequestNames = map[StandardRequest]string{
	GetStatus:        "GET_STATUS",
	ClearFeature:     "CLEAR_FEATURE",
	SetFeature:       "SET_FEATURE",
	SetAddress:       "SET_ADDRESS",
	GetDescriptor:    "GET_DESCRIPTOR",
	SetDescriptor:    "SET_DESCRIPTOR",
	GetConfiguration: "GET_CONFIGURATION",
	SetConfiguration: "SET_CONFIGURATION",
	GetInterface:     "GET_INTERFACE",
	SetInterface:     "SET_INTERFACE",
	SynchFrame:       "SYNCH_FRAME",
}

func (r StandardRequest) String() string {
	if name, ok := standardRequestNames[r]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%02x)", uint8(r))
}

// SetupPacket is immutable, every field is derived from the raw bytes
type SetupPacket struct {
	raw [Size]byte

	// RequestType is bmRequestType as captured
	RequestType uint8
	Direction   Direction
	Type        Type
	Recipient   Recipient
	Request     uint8
	Value       uint16
	Index       uint16
	Length      uint16
}

// Decode parses the first 8 bytes of b. Multi-byte fields are little-endian on
// the wire, independent of the byte order of the capture that carried them.
func Decode(b []byte) (*SetupPacket, error) {
	if len(b) < Size {
		return nil, ErrSetupTooShort{Length: len(b)}
	}
	sp := &SetupPacket{}
	copy(sp.raw[:], b[:Size])

	sp.RequestType = b[0]
	sp.Recipient = Recipient(b[0] & 0x1f)
	if sp.Recipient > RecipientReserved {
		sp.Recipient = RecipientReserved
	}
	sp.Type = Type((b[0] >> 5) & 0x3)
	sp.Direction = Direction(b[0] >> 7)

	sp.Request = b[1]
	sp.Value = binary.LittleEndian.Uint16(b[2:4])
	sp.Index = binary.LittleEndian.Uint16(b[4:6])
	sp.Length = binary.LittleEndian.Uint16(b[6:8])
	return sp, nil
}

// Raw returns a copy of the captured bytes
func (sp *SetupPacket) Raw() []byte {
	out := make([]byte, Size)
	copy(out, sp.raw[:])
	return out
}

// StandardRequest reports the request code only for standard requests.
func (sp *SetupPacket) StandardRequest() (StandardRequest, bool) {
	if sp.Type != Standard {
		return 0, false
	}
	return StandardRequest(sp.Request), true
}

// DescriptorType is the high byte of wValue for GET_DESCRIPTOR requests
func (sp *SetupPacket) DescriptorType() uint8 {
	return uint8(sp.Value >> 8)
}

// DescriptorIndex is the low byte of wValue for GET_DESCRIPTOR requests
func (sp *SetupPacket) DescriptorIndex() uint8 {
	return uint8(sp.Value & 0xff)
}

// String renders the setup stage the way the usbmon text interface does
func (sp *SetupPacket) String() string {
	return fmt.Sprintf("s %02x %02x %04x %04x %04x",
		sp.RequestType, sp.Request, sp.Value, sp.Index, sp.Length)
}

func (sp *SetupPacket) GoString() string {
	return fmt.Sprintf("<setup.SetupPacket %s>", hex.EncodeToString(sp.raw[:]))
}
