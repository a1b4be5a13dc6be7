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
	"encoding/binary"
	"time"

	gopacketlayers "github.com/google/gopacket/layers"

	"jinr.ru/greenlab/go-usbmon/pkg/layers"
	"jinr.ru/greenlab/go-usbmon/pkg/packet"
)

// Decoder turns the data of one container block into a packet. bo is the
// byte order of the section the block belongs to, ts the block timestamp.
type Decoder interface {
	LinkType() gopacketlayers.LinkType
	Decode(bo binary.ByteOrder, data []byte, ts time.Time) (packet.Packet, error)
}

// UsbmonDecoder decodes usbmon mmap records, which carry their own timestamp
type UsbmonDecoder struct{}

func (UsbmonDecoder) LinkType() gopacketlayers.LinkType {
	return layers.LinkTypeUsbLinuxMmapped
}

func (UsbmonDecoder) Decode(bo binary.ByteOrder, data []byte, _ time.Time) (packet.Packet, error) {
	p, err := DecodeUsbmon(bo, data)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UsbpcapDecoder decodes USBPcap records, always little-endian
type UsbpcapDecoder struct{}

func (UsbpcapDecoder) LinkType() gopacketlayers.LinkType {
	return layers.LinkTypeUSBPcap
}

func (UsbpcapDecoder) Decode(_ binary.ByteOrder, data []byte, ts time.Time) (packet.Packet, error) {
	p, err := DecodeUsbpcap(data, ts)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DecoderFor returns the decoder for records of the given link type
func DecoderFor(linkType gopacketlayers.LinkType) (Decoder, bool) {
	switch linkType {
	case layers.LinkTypeUsbLinuxMmapped:
		return UsbmonDecoder{}, true
	case layers.LinkTypeUSBPcap:
		return UsbpcapDecoder{}, true
	}
	return nil, false
}
