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

// Package capture turns raw capture records into packet.Packet values.
package capture

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-usbmon/pkg/layers"
	"jinr.ru/greenlab/go-usbmon/pkg/packet"
	"jinr.ru/greenlab/go-usbmon/pkg/setup"
)

// UsbmonPacket is an event captured through the Linux usbmon mmap interface
type UsbmonPacket struct {
	packet.Base

	SetupFlag uint8
	// DataFlag is '=' when data was captured, otherwise the reason it was not
	DataFlag byte

	// Interrupt and isochronous transfers only
	Interval int32
	// Isochronous transfers only
	StartFrame int32
	ErrorCount int32
	NumDesc    int32

	TransferFlags     uint32
	NumISODescriptors uint32
}

// DecodeUsbmon decodes one usbmon mmap record written in the given byte order
func DecodeUsbmon(bo binary.ByteOrder, raw []byte) (*UsbmonPacket, error) {
	u := &layers.UsbmonLayer{ByteOrder: bo}
	if err := u.DecodeFromBytes(raw, gopacket.NilDecodeFeedback); err != nil {
		return nil, err
	}
	return newUsbmonPacket(u)
}

func newUsbmonPacket(u *layers.UsbmonLayer) (*UsbmonPacket, error) {
	h := packet.Header{
		Tag:       fmt.Sprintf("%08x", u.ID),
		Kind:      packet.Kind(u.EventType),
		XferType:  packet.XferType(u.TransferType),
		Bus:       u.BusID,
		Device:    uint16(u.DeviceAddress),
		Endpoint:  u.EndpointNumber,
		Timestamp: time.Unix(u.TimestampSec, int64(u.TimestampUsec)*int64(time.Microsecond)),
		Status:    int64(u.Status),
		Length:    u.URBLength,
		Payload:   u.LayerPayload(),
	}
	if u.SetupFlag == 0 {
		sp, err := setup.Decode(u.Setup[:])
		if err != nil {
			return nil, err
		}
		h.Setup = sp
	}

	p := &UsbmonPacket{
		Base:              packet.NewBase(h),
		SetupFlag:         u.SetupFlag,
		DataFlag:          u.DataFlag,
		TransferFlags:     u.TransferFlags,
		NumISODescriptors: u.NumISODescriptors,
	}
	if p.DataFlag == 0 {
		p.DataFlag = '='
	}
	switch h.XferType {
	case packet.Interrupt:
		p.Interval = u.Interval
	case packet.Isochronous:
		p.Interval = u.Interval
		p.StartFrame = u.StartFrame
		p.ErrorCount = u.ISOErrorCount
		p.NumDesc = u.ISONumDescs
	}
	return p, nil
}

// SetupString is the setup stage, or the status and timing fields when no
// setup stage was captured
func (p *UsbmonPacket) SetupString() string {
	if sp := p.Setup(); sp != nil {
		return sp.String()
	}
	switch p.XferType() {
	case packet.Interrupt:
		return fmt.Sprintf("%d:%d", p.Status(), p.Interval)
	case packet.Isochronous:
		value := fmt.Sprintf("%d:%d:%d", p.Status(), p.Interval, p.StartFrame)
		if p.Kind() != packet.Submission {
			value += fmt.Sprintf(":%d", p.ErrorCount)
		}
		return value
	}
	return fmt.Sprintf("%d", p.Status())
}

// String renders the event as a line of the usbmon text interface
func (p *UsbmonPacket) String() string {
	line := fmt.Sprintf("%s %d %s %s %d %c %s",
		p.Tag(), p.TimestampMicros(), p.Prefix(), p.SetupString(), p.Length(), p.DataFlag, packet.DumpWords(p.Payload()))
	return strings.TrimRight(line, " ")
}
