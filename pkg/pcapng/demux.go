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

package pcapng

import (
	"encoding/binary"
	"errors"
	"fmt"

	"jinr.ru/greenlab/go-usbmon/pkg/capture"
	"jinr.ru/greenlab/go-usbmon/pkg/log"
	"jinr.ru/greenlab/go-usbmon/pkg/session"
)

// Demuxer tracks the byte order and the interfaces of the current section
// and hands decoded packets to a session
type Demuxer struct {
	session   *session.Session
	byteOrder binary.ByteOrder
	decoders  []capture.Decoder
	skipped   int
}

func NewDemuxer(s *session.Session) *Demuxer {
	return &Demuxer{session: s}
}

func (d *Demuxer) Session() *session.Session {
	return d.session
}

// Skipped is the number of packet blocks that carried no transfer
func (d *Demuxer) Skipped() int {
	return d.skipped
}

func (d *Demuxer) Feed(block Block) error {
	switch b := block.(type) {
	case SectionHeader:
		d.byteOrder = b.ByteOrder
		d.decoders = d.decoders[:0]
	case InterfaceDescription:
		decoder, ok := capture.DecoderFor(b.LinkType)
		if !ok {
			return ErrUnsupportedLinkType{LinkType: b.LinkType}
		}
		d.decoders = append(d.decoders, decoder)
	case EnhancedPacket:
		return d.feedPacket(b)
	}
	return nil
}

func (d *Demuxer) feedPacket(b EnhancedPacket) error {
	if d.byteOrder == nil {
		return ErrNoSectionHeader{}
	}
	if b.InterfaceIndex < 0 || b.InterfaceIndex >= len(d.decoders) {
		return ErrNoInterface{Index: b.InterfaceIndex}
	}
	p, err := d.decoders[b.InterfaceIndex].Decode(d.byteOrder, b.Data, b.Timestamp)
	if err != nil {
		var unsupported capture.ErrUnsupportedCaptureData
		if errors.As(err, &unsupported) {
			log.Debug("Skipping packet block: %s", err)
			d.skipped++
			return nil
		}
		return fmt.Errorf("interface %d: %w", b.InterfaceIndex, err)
	}
	d.session.Add(p)
	return nil
}
