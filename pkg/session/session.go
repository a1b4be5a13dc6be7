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

// Package session correlates submission and completion events of the same
// URB into pairs.
package session

import (
	"container/list"
	"sort"
	"time"

	"jinr.ru/greenlab/go-usbmon/pkg/descriptors"
	"jinr.ru/greenlab/go-usbmon/pkg/log"
	"jinr.ru/greenlab/go-usbmon/pkg/packet"
)

// MaxCallbackAnticipation is how long a pending callback may wait for the
// submission of the same URB. Kernel URB ids get reused, so a later event
// under the same tag is treated as a different URB past this distance.
const MaxCallbackAnticipation = 200 * time.Millisecond

// Session is not safe for concurrent use
type Session struct {
	pairs []packet.Pair

	// pending events in insertion order, indexed by tag
	pending      *list.List
	pendingByTag map[string]*list.Element

	// nil when tags are kept as captured
	tags TagGenerator

	descriptors map[packet.DeviceAddress]*descriptors.DeviceDescriptor
}

// New creates a session. With retag set, every finalized pair gets a fresh
// random tag shared by both of its events.
func New(retag bool) *Session {
	if retag {
		return NewWithGenerator(UUIDGenerator{})
	}
	return NewWithGenerator(nil)
}

// NewWithGenerator creates a session retagging pairs with gen, or keeping
// the captured tags if gen is nil
func NewWithGenerator(gen TagGenerator) *Session {
	return &Session{
		pending:      list.New(),
		pendingByTag: make(map[string]*list.Element),
		tags:         gen,
	}
}

// Add matches p with the pending event of the same tag, or keeps it pending.
// Events arrive as S;C, S;E or C;S.
func (s *Session) Add(p packet.Packet) {
	elem, found := s.pendingByTag[p.Tag()]
	if !found {
		s.pushPending(p)
		return
	}
	first := s.pending.Remove(elem).(packet.Packet)
	delete(s.pendingByTag, p.Tag())

	distance := p.Timestamp().Sub(first.Timestamp())
	if distance < 0 {
		distance = -distance
	}
	if first.Kind() == packet.Callback && distance > MaxCallbackAnticipation {
		log.Debug("Callback (%s) arrived long before submit (%s): %s", first, p, distance)
		s.finalize(first, nil)
		s.pushPending(p)
		return
	}
	s.finalize(first, p)
}

func (s *Session) pushPending(p packet.Packet) {
	s.pendingByTag[p.Tag()] = s.pending.PushBack(p)
}

func (s *Session) finalize(first, second packet.Packet) {
	if s.tags != nil {
		tag := s.tags.Next()
		first.SetTag(tag)
		if second != nil {
			second.SetTag(tag)
		}
	}
	s.pairs = append(s.pairs, packet.Pair{First: first, Second: second})
}

// Len is the number of finalized pairs
func (s *Session) Len() int {
	return len(s.pairs)
}

// Pending is the number of events still waiting for a match
func (s *Session) Pending() int {
	return s.pending.Len()
}

// InPairs returns the finalized pairs followed by every pending event as a
// pair with no second element
func (s *Session) InPairs() []packet.Pair {
	out := make([]packet.Pair, 0, len(s.pairs)+s.pending.Len())
	out = append(out, s.pairs...)
	for e := s.pending.Front(); e != nil; e = e.Next() {
		out = append(out, packet.Pair{First: e.Value.(packet.Packet)})
	}
	return out
}

// InOrder returns every event sorted by timestamp. Events with equal
// timestamps keep their InPairs order.
func (s *Session) InOrder() []packet.Packet {
	out := make([]packet.Packet, 0, 2*len(s.pairs)+s.pending.Len())
	for _, pair := range s.InPairs() {
		out = append(out, pair.Packets()...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp().Before(out[j].Timestamp())
	})
	return out
}

// DeviceDescriptors returns the device descriptors found in the session,
// the last one seen per device. The table is computed on first use and is
// not refreshed by later calls to Add, see Rescan.
func (s *Session) DeviceDescriptors() map[packet.DeviceAddress]*descriptors.DeviceDescriptor {
	if s.descriptors == nil {
		s.Rescan()
	}
	return s.descriptors
}

// Rescan recomputes the device descriptor table from the current pairs
func (s *Session) Rescan() {
	found := make(map[packet.DeviceAddress]*descriptors.DeviceDescriptor)
	for _, pair := range s.InPairs() {
		if d := descriptors.Search(pair); d != nil {
			found[d.Address] = d
		}
	}
	s.descriptors = found
}

// FindDevicesByIDs returns the addresses of the devices with the vendor id,
// and the product id unless it is nil. Descriptors read before the device
// got its address (device 0) are skipped.
func (s *Session) FindDevicesByIDs(vendorID uint16, productID *uint16) []packet.DeviceAddress {
	var out []packet.DeviceAddress
	for address, d := range s.DeviceDescriptors() {
		if address.Device == 0 || d.VendorID != vendorID {
			continue
		}
		if productID == nil || d.ProductID == *productID {
			out = append(out, address)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Less(out[j])
	})
	return out
}

// FindDevice returns address when it is set. Otherwise it looks for the one
// device matching any of the vendor/product id pairs, name is used in errors.
func (s *Session) FindDevice(address *packet.DeviceAddress, ids [][2]uint16, name string) (packet.DeviceAddress, error) {
	if address != nil {
		return *address, nil
	}
	seen := make(map[packet.DeviceAddress]bool)
	var found []packet.DeviceAddress
	for _, id := range ids {
		product := id[1]
		for _, a := range s.FindDevicesByIDs(id[0], &product) {
			if !seen[a] {
				seen[a] = true
				found = append(found, a)
			}
		}
	}
	switch len(found) {
	case 0:
		return packet.DeviceAddress{}, ErrDeviceNotFound{Name: name}
	case 1:
		return found[0], nil
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].Less(found[j])
	})
	return packet.DeviceAddress{}, ErrMultipleDevices{Name: name, Addresses: found}
}
