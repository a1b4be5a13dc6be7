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
	"io"

	"github.com/google/gopacket/layers"
)

// RecordFunc receives the raw data of a packet block and the link type of
// the interface it was captured on
type RecordFunc func(linkType layers.LinkType, data []byte) error

// ForEachRecord calls fn for every packet block of src without decoding it.
// Unlike the demuxer it accepts any link type.
func ForEachRecord(src BlockSource, fn RecordFunc) error {
	var interfaces []layers.LinkType
	inSection := false
	for {
		block, err := src.NextBlock()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch b := block.(type) {
		case SectionHeader:
			inSection = true
			interfaces = interfaces[:0]
		case InterfaceDescription:
			if !inSection {
				return ErrNoSectionHeader{}
			}
			interfaces = append(interfaces, b.LinkType)
		case EnhancedPacket:
			if !inSection {
				return ErrNoSectionHeader{}
			}
			if b.InterfaceIndex < 0 || b.InterfaceIndex >= len(interfaces) {
				return ErrNoInterface{Index: b.InterfaceIndex}
			}
			if err := fn(interfaces[b.InterfaceIndex], b.Data); err != nil {
				return err
			}
		}
	}
}
