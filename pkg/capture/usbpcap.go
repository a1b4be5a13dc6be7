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

package capture

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-usbmon/pkg/layers"
	"jinr.ru/greenlab/go-usbmon/pkg/log"
	"jinr.ru/greenlab/go-usbmon/pkg/packet"
	"jinr.ru/greenlab/go-usbmon/pkg/setup"
)

// UsbpcapPacket is an event captured by USBPcap on Windows.
// Its status is an unsigned USBD status, never an errno.
type UsbpcapPacket struct {
	packet.Base

	HeaderLength uint16
	Function     uint16
	Info         uint8

	HasControlStage bool
	ControlStage    layers.ControlStage
}

// DecodeUsbpcap decodes one USBPcap record. USBPcap records carry no time of
// their own, ts comes from the container block.
func DecodeUsbpcap(raw []byte, ts time.Time) (*UsbpcapPacket, error) {
	u := &layers.USBPcapLayer{}
	if err := u.DecodeFromBytes(raw, gopacket.NilDecodeFeedback); err != nil {
		return nil, err
	}
	return newUsbpcapPacket(u, ts)
}

func newUsbpcapPacket(u *layers.USBPcapLayer, ts time.Time) (*UsbpcapPacket, error) {
	if u.Sentinel() {
		return nil, ErrUnsupportedCaptureData{TransferType: u.TransferType}
	}

	h := packet.Header{
		Tag:       fmt.Sprintf("%016x", u.IRPID),
		Kind:      packet.Submission,
		XferType:  packet.XferType(u.TransferType),
		Bus:       u.Bus,
		Device:    u.Device,
		Endpoint:  u.Endpoint,
		Timestamp: ts,
		Status:    int64(u.Status),
		Length:    u.DataLength,
		Payload:   u.LayerPayload(),
	}
	// Approximation: USBPcap does not record the URB lifecycle event
	if u.Info == layers.USBPcapInfoPDOToFDO {
		h.Kind = packet.Callback
	}
	if u.Setup != nil {
		sp, err := setup.Decode(u.Setup)
		if err != nil {
			return nil, err
		}
		h.Setup = sp
		if h.Length >= setup.Size {
			h.Length -= setup.Size
		}
	}
	if int(h.Length) != len(h.Payload) {
		log.Warning("expected %d bytes, found %d", h.Length, len(h.Payload))
	}

	return &UsbpcapPacket{
		Base:            packet.NewBase(h),
		HeaderLength:    u.HeaderLength,
		Function:        u.Function,
		Info:            u.Info,
		HasControlStage: u.HasControlStage,
		ControlStage:    u.ControlStage,
	}, nil
}

// ErrorSymbol is never reported, USBD status codes are not errno values
func (p *UsbpcapPacket) ErrorSymbol() (string, bool) {
	return "", false
}

func (p *UsbpcapPacket) SetupString() string {
	if sp := p.Setup(); sp != nil {
		return sp.String()
	}
	return fmt.Sprintf("%d", p.Status())
}

func (p *UsbpcapPacket) String() string {
	var data string
	switch {
	case len(p.Payload()) > 0:
		data = "= " + packet.DumpWords(p.Payload())
	case p.XferType() == packet.Interrupt && p.Direction() == packet.In:
		data = "<"
	default:
		data = "?"
	}
	line := fmt.Sprintf("%s %d %s %s %d %s",
		p.Tag(), p.TimestampMicros(), p.Prefix(), p.SetupString(), p.Length(), data)
	return strings.TrimRight(line, " ")
}
