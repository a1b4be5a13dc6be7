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
	"fmt"

	"github.com/google/gopacket/layers"

	usblayers "jinr.ru/greenlab/go-usbmon/pkg/layers"
)

type ErrUnsupportedLinkType struct {
	LinkType layers.LinkType
}

func (e ErrUnsupportedLinkType) Error() string {
	return fmt.Sprintf("Unsupported link type: %s (%d)", usblayers.LinkTypeName(e.LinkType), uint16(e.LinkType))
}

// ErrNoSectionHeader returned for a packet block seen before any section header
type ErrNoSectionHeader struct{}

func (e ErrNoSectionHeader) Error() string {
	return "Packet block before the first section header"
}

// ErrNoInterface returned for a packet block referring to an undescribed interface
type ErrNoInterface struct {
	Index int
}

func (e ErrNoInterface) Error() string {
	return fmt.Sprintf("Packet block refers to unknown interface %d", e.Index)
}

// ErrUnknownFormat returned when a stream is neither pcapng nor pcap
type ErrUnknownFormat struct {
	Magic []byte
}

func (e ErrUnknownFormat) Error() string {
	return fmt.Sprintf("Unknown capture format, magic % x", e.Magic)
}
