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

// Package packet holds the capture-format independent view of a USB
// request block event, and the pairs the session builds out of them.
package packet

import (
	"fmt"
	"strconv"
	"time"

	"jinr.ru/greenlab/go-usbmon/pkg/setup"
)

// Kind is the URB lifecycle event a record describes
type Kind byte

const (
	Submission Kind = 'S'
	Callback   Kind = 'C'
	Error      Kind = 'E'
)

func (k Kind) Valid() bool {
	return k == Submission || k == Callback || k == Error
}

func (k Kind) String() string {
	return string(k)
}

type XferType uint8

const (
	Isochronous XferType = iota
	Interrupt
	Control
	Bulk
)

var xferTypeNames = [...]string{"Isochronous", "Interrupt", "Control", "Bulk"}
var xferTypeMnemonics = [...]string{"Z", "I", "C", "B"}

func (t XferType) Valid() bool {
	return t <= Bulk
}

func (t XferType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("XferType(%d)", uint8(t))
	}
	return xferTypeNames[t]
}

// Mnemonic is the single letter used by the usbmon text format
func (t XferType) Mnemonic() string {
	if !t.Valid() {
		return "?"
	}
	return xferTypeMnemonics[t]
}

type Direction byte

const (
	Out Direction = 'o'
	In  Direction = 'i'
)

func (d Direction) String() string {
	return string(d)
}

// Packet is implemented by the decoded record variants only: the set is
// closed by the unexported method of the embedded Base.
type Packet interface {
	Tag() string
	SetTag(tag string)
	Kind() Kind
	XferType() XferType
	Bus() uint16
	Device() uint16
	EndpointNumber() uint8
	Endpoint() uint8
	Direction() Direction
	Address() EndpointAddress
	DeviceAddress() DeviceAddress
	Timestamp() time.Time
	Status() int64
	Length() uint32
	Payload() []byte
	Setup() *setup.SetupPacket
	TypeMnemonic() string
	ErrorSymbol() (string, bool)
	String() string

	base() *Base
}

// Header carries the fields every record variant decodes
type Header struct {
	Tag       string
	Kind      Kind
	XferType  XferType
	Bus       uint16
	Device    uint16
	Endpoint  uint8 // raw endpoint byte, bit 7 is the direction
	Timestamp time.Time
	Status    int64
	Length    uint32
	Payload   []byte
	Setup     *setup.SetupPacket
}

// Base implements the shared part of Packet. Record variants embed it.
type Base struct {
	h Header
}

func NewBase(h Header) Base {
	return Base{h: h}
}

func (b *Base) base() *Base {
	return b
}

func (b *Base) Tag() string {
	return b.h.Tag
}

// SetTag replaces the correlation key, used when a session retags URBs
func (b *Base) SetTag(tag string) {
	b.h.Tag = tag
}

func (b *Base) Kind() Kind {
	return b.h.Kind
}

func (b *Base) XferType() XferType {
	return b.h.XferType
}

func (b *Base) Bus() uint16 {
	return b.h.Bus
}

func (b *Base) Device() uint16 {
	return b.h.Device
}

func (b *Base) EndpointNumber() uint8 {
	return b.h.Endpoint
}

func (b *Base) Endpoint() uint8 {
	return b.h.Endpoint & 0x7f
}

func (b *Base) Direction() Direction {
	if b.h.Endpoint&0x80 != 0 {
		return In
	}
	return Out
}

func (b *Base) Address() EndpointAddress {
	return EndpointAddress{Bus: int(b.h.Bus), Device: int(b.h.Device), Endpoint: int(b.Endpoint())}
}

func (b *Base) DeviceAddress() DeviceAddress {
	return DeviceAddress{Bus: int(b.h.Bus), Device: int(b.h.Device)}
}

func (b *Base) Timestamp() time.Time {
	return b.h.Timestamp
}

func (b *Base) Status() int64 {
	return b.h.Status
}

func (b *Base) Length() uint32 {
	return b.h.Length
}

func (b *Base) Payload() []byte {
	return b.h.Payload
}

func (b *Base) Setup() *setup.SetupPacket {
	return b.h.Setup
}

func (b *Base) TypeMnemonic() string {
	return b.h.XferType.Mnemonic()
}

// ErrorSymbol maps a negative status to its errno name. Unknown codes fall
// back to the decimal status. ok is false for non-negative statuses.
func (b *Base) ErrorSymbol() (string, bool) {
	if b.h.Status >= 0 {
		return "", false
	}
	if name, found := ErrnoName(-b.h.Status); found {
		return name, true
	}
	return strconv.FormatInt(b.h.Status, 10), true
}

// Prefix renders the "<kind> <type><dir>:<bus>:<dev>:<ep>" part shared by the
// text renderings of every variant.
func (b *Base) Prefix() string {
	return fmt.Sprintf("%s %s%s:%d:%03d:%d",
		b.h.Kind, b.TypeMnemonic(), b.Direction(), b.h.Bus, b.h.Device, b.Endpoint())
}

// TimestampMicros is the capture time as microseconds since the epoch,
// not clamped to 32 bits
func (b *Base) TimestampMicros() int64 {
	return b.h.Timestamp.UnixMicro()
}
