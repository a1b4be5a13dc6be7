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
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/gopacket/pcapgo"
	"github.com/klauspost/compress/gzip"
)

const (
	ngBlockTypeSectionHeader = 0x0a0d0d0a
	ngByteOrderMagic         = 0x1a2b3c4d

	pcapMagicMicroseconds = 0xa1b2c3d4
	pcapMagicNanoseconds  = 0xa1b23c4d

	gzipMagic1 = 0x1f
	gzipMagic2 = 0x8b
)

// NewBlockSource detects the container format of r: pcapng or classic pcap,
// either of them optionally gzip compressed
func NewBlockSource(r io.Reader) (BlockSource, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil {
		return nil, fmt.Errorf("reading capture header: %w", err)
	}
	if magic[0] == gzipMagic1 && magic[1] == gzipMagic2 {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		br = bufio.NewReader(zr)
	}

	head, err := br.Peek(12)
	if err != nil {
		return nil, fmt.Errorf("reading capture header: %w", err)
	}
	if binary.LittleEndian.Uint32(head[0:4]) == ngBlockTypeSectionHeader {
		bo, ok := sectionByteOrder(head[8:12])
		if !ok {
			return nil, ErrUnknownFormat{Magic: append([]byte{}, head[8:12]...)}
		}
		return newNgSource(br, bo)
	}
	if bo, ok := pcapByteOrder(head[0:4]); ok {
		return newPcapSource(br, bo)
	}
	return nil, ErrUnknownFormat{Magic: append([]byte{}, head[0:4]...)}
}

func sectionByteOrder(magic []byte) (binary.ByteOrder, bool) {
	switch {
	case binary.LittleEndian.Uint32(magic) == ngByteOrderMagic:
		return binary.LittleEndian, true
	case binary.BigEndian.Uint32(magic) == ngByteOrderMagic:
		return binary.BigEndian, true
	}
	return nil, false
}

func pcapByteOrder(magic []byte) (binary.ByteOrder, bool) {
	for _, bo := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		switch bo.Uint32(magic) {
		case pcapMagicMicroseconds, pcapMagicNanoseconds:
			return bo, true
		}
	}
	return nil, false
}

// sectionTracker passes a pcapng stream through unchanged and records the
// byte order of every section header crossing it. pcapgo reads ahead of the
// blocks it returns, so the tracker always knows at least the sections
// pcapgo has started.
type sectionTracker struct {
	r      io.Reader
	orders []binary.ByteOrder
	bo     binary.ByteOrder
	head   [12]byte
	have   int
	skip   uint64
	err    error
}

func (t *sectionTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	t.scan(p[:n])
	return n, err
}

func (t *sectionTracker) scan(b []byte) {
	for len(b) > 0 && t.err == nil {
		if t.skip > 0 {
			k := min(t.skip, uint64(len(b)))
			b = b[k:]
			t.skip -= k
			continue
		}
		need := 4
		if t.have >= 4 {
			need = 8
			if binary.LittleEndian.Uint32(t.head[0:4]) == ngBlockTypeSectionHeader {
				need = 12
			}
		}
		k := copy(t.head[t.have:need], b)
		t.have += k
		b = b[k:]
		if t.have < need || need == 4 {
			continue
		}
		if need == 12 {
			bo, ok := sectionByteOrder(t.head[8:12])
			if !ok {
				t.err = ErrUnknownFormat{Magic: append([]byte{}, t.head[8:12]...)}
				return
			}
			t.bo = bo
			t.orders = append(t.orders, bo)
		}
		if t.bo == nil {
			t.err = ErrNoSectionHeader{}
			return
		}
		length := uint64(t.bo.Uint32(t.head[4:8]))
		if length < uint64(need) || length%4 != 0 {
			t.err = fmt.Errorf("invalid pcapng block length %d", length)
			return
		}
		t.skip = length - uint64(need)
		t.have = 0
	}
}

// section returns the byte order of the i-th section header of the stream
func (t *sectionTracker) section(i int) (binary.ByteOrder, error) {
	if i < len(t.orders) {
		return t.orders[i], nil
	}
	if t.err != nil {
		return nil, t.err
	}
	return nil, fmt.Errorf("section %d not seen in the pcapng stream", i)
}

// ngSource replays the blocks pcapgo.NgReader consumed internally: section
// headers and interface descriptions are emitted ahead of the first packet
// that follows them
type ngSource struct {
	r       *pcapgo.NgReader
	tracker *sectionTracker
	queue   []Block
	// index of the current section and sections finished since the last packet
	section       int
	sectionsEnded int
	// interfaces of the current section already emitted
	emitted int
}

func newNgSource(r io.Reader, bo binary.ByteOrder) (*ngSource, error) {
	s := &ngSource{tracker: &sectionTracker{r: r}}
	ng, err := pcapgo.NewNgReader(s.tracker, pcapgo.NgReaderOptions{
		WantMixedLinkType: true,
		SectionEndCallback: func([]pcapgo.NgInterface, pcapgo.NgSectionInfo) {
			s.sectionsEnded++
		},
	})
	if err != nil {
		return nil, fmt.Errorf("reading pcapng section header: %w", err)
	}
	s.r = ng
	s.queue = append(s.queue, SectionHeader{ByteOrder: bo})
	return s, nil
}

func (s *ngSource) NextBlock() (Block, error) {
	if len(s.queue) == 0 {
		if err := s.fill(); err != nil {
			return nil, err
		}
	}
	b := s.queue[0]
	s.queue = s.queue[1:]
	return b, nil
}

func (s *ngSource) fill() error {
	data, ci, err := s.r.ReadPacketData()
	if err != nil {
		return err
	}
	for ; s.sectionsEnded > 0; s.sectionsEnded-- {
		s.section++
		bo, err := s.tracker.section(s.section)
		if err != nil {
			return err
		}
		s.emitted = 0
		s.queue = append(s.queue, SectionHeader{ByteOrder: bo})
	}
	for ; s.emitted < s.r.NInterfaces(); s.emitted++ {
		intf, err := s.r.Interface(s.emitted)
		if err != nil {
			return err
		}
		s.queue = append(s.queue, InterfaceDescription{LinkType: intf.LinkType})
	}
	s.queue = append(s.queue, EnhancedPacket{
		InterfaceIndex: ci.InterfaceIndex,
		Timestamp:      ci.Timestamp,
		Data:           data,
	})
	return nil
}

// pcapSource presents a classic pcap file as one section with one interface
type pcapSource struct {
	r     *pcapgo.Reader
	queue []Block
}

func newPcapSource(r io.Reader, bo binary.ByteOrder) (*pcapSource, error) {
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading pcap file header: %w", err)
	}
	return &pcapSource{
		r: pr,
		queue: []Block{
			SectionHeader{ByteOrder: bo},
			InterfaceDescription{LinkType: pr.LinkType()},
		},
	}, nil
}

func (s *pcapSource) NextBlock() (Block, error) {
	if len(s.queue) > 0 {
		b := s.queue[0]
		s.queue = s.queue[1:]
		return b, nil
	}
	data, ci, err := s.r.ReadPacketData()
	if err != nil {
		return nil, err
	}
	return EnhancedPacket{Timestamp: ci.Timestamp, Data: data}, nil
}
