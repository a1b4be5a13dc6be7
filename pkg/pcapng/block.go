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

// Package pcapng feeds the blocks of a capture container to a session.
package pcapng

import (
	"encoding/binary"
	"io"
	"time"

	"github.com/google/gopacket/layers"
)

// Block is one of SectionHeader, InterfaceDescription or EnhancedPacket
type Block interface {
	block()
}

// SectionHeader starts a section, interface indices restart at 0
type SectionHeader struct {
	ByteOrder binary.ByteOrder
}

// InterfaceDescription describes the next interface index of the section
type InterfaceDescription struct {
	LinkType layers.LinkType
}

type EnhancedPacket struct {
	InterfaceIndex int
	Timestamp      time.Time
	Data           []byte
}

func (SectionHeader) block()        {}
func (InterfaceDescription) block() {}
func (EnhancedPacket) block()       {}

// BlockSource returns io.EOF once the container is exhausted
type BlockSource interface {
	NextBlock() (Block, error)
}

// SliceSource replays a fixed list of blocks
type SliceSource struct {
	blocks []Block
}

func NewSliceSource(blocks ...Block) *SliceSource {
	return &SliceSource{blocks: blocks}
}

func (s *SliceSource) NextBlock() (Block, error) {
	if len(s.blocks) == 0 {
		return nil, io.EOF
	}
	b := s.blocks[0]
	s.blocks = s.blocks[1:]
	return b, nil
}
