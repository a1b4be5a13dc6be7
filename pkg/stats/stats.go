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

// Package stats counts the events of a session per direction, endpoint
// address and transfer type.
package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"jinr.ru/greenlab/go-usbmon/pkg/descriptors"
	"jinr.ru/greenlab/go-usbmon/pkg/packet"
	"jinr.ru/greenlab/go-usbmon/pkg/session"
)

type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// counter keeps keys in the order they were first seen
type counter struct {
	index  map[string]int
	counts []Count
}

func newCounter() *counter {
	return &counter{index: make(map[string]int)}
}

func (c *counter) inc(key string) {
	i, ok := c.index[key]
	if !ok {
		i = len(c.counts)
		c.index[key] = i
		c.counts = append(c.counts, Count{Key: key})
	}
	c.counts[i].Count++
}

type Report struct {
	AddressPrefix string                          `json:"addressPrefix"`
	Devices       []*descriptors.DeviceDescriptor `json:"devices"`
	Packets       int                             `json:"packets"`
	Directions    []Count                         `json:"directions"`
	Addresses     []Count                         `json:"addresses"`
	XferTypes     []Count                         `json:"xferTypes"`
}

// Collect counts the events whose endpoint address starts with addressPrefix
func Collect(s *session.Session, addressPrefix string) *Report {
	directions := newCounter()
	addresses := newCounter()
	xferTypes := newCounter()

	r := &Report{AddressPrefix: addressPrefix}
	for _, p := range s.InOrder() {
		if !packet.HasAddressPrefix(p, addressPrefix) {
			continue
		}
		r.Packets++
		directions.inc(directionName(p.Direction()))
		addresses.inc(p.Address().String())
		xferTypes.inc(p.XferType().String())
	}
	r.Directions = directions.counts
	r.Addresses = addresses.counts
	r.XferTypes = xferTypes.counts

	for address, d := range s.DeviceDescriptors() {
		if strings.HasPrefix(address.String(), addressPrefix) {
			r.Devices = append(r.Devices, d)
		}
	}
	sort.Slice(r.Devices, func(i, j int) bool {
		return r.Devices[i].Address.Less(r.Devices[j].Address)
	})
	return r
}

func directionName(d packet.Direction) string {
	if d == packet.In {
		return "in"
	}
	return "out"
}

// WriteText prints the report in the layout of the capture statistics tool
func (r *Report) WriteText(w io.Writer) error {
	lines := []string{"Identified descriptors:", " Devices"}
	for _, d := range r.Devices {
		lines = append(lines, fmt.Sprintf("   %s: %s", d.Address, d.IDs()))
	}
	lines = append(lines, "", "Packet Counters:", " Per direction:")
	for _, c := range r.Directions {
		lines = append(lines, fmt.Sprintf("  %s: %d", c.Key, c.Count))
	}
	lines = append(lines, " Per address:")
	for _, c := range r.Addresses {
		lines = append(lines, fmt.Sprintf("  %s: %d", c.Key, c.Count))
	}
	lines = append(lines, " Per transfer type:")
	for _, c := range r.XferTypes {
		lines = append(lines, fmt.Sprintf("  %s: %d", c.Key, c.Count))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
