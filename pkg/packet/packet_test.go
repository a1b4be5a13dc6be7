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

package packet

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPacket struct {
	Base
}

func (p *testPacket) String() string {
	return p.Prefix()
}

func newTestPacket(h Header) *testPacket {
	return &testPacket{Base: NewBase(h)}
}

func TestBaseAccessors(t *testing.T) {
	ts := time.Unix(1550331849, 261217000)
	p := newTestPacket(Header{
		Tag:       "dab6b880",
		Kind:      Callback,
		XferType:  Interrupt,
		Bus:       1,
		Device:    2,
		Endpoint:  0x81,
		Timestamp: ts,
		Length:    8,
		Payload:   []byte{1, 0, 0, 0, 0, 0, 0, 0},
	})

	assert.Equal(t, uint8(1), p.Endpoint())
	assert.Equal(t, uint8(0x81), p.EndpointNumber())
	assert.Equal(t, In, p.Direction())
	assert.Equal(t, "I", p.TypeMnemonic())
	assert.Equal(t, EndpointAddress{Bus: 1, Device: 2, Endpoint: 1}, p.Address())
	assert.Equal(t, DeviceAddress{Bus: 1, Device: 2}, p.DeviceAddress())
	assert.Equal(t, int64(1550331849261217), p.TimestampMicros())
	assert.Equal(t, "C Ii:1:002:1", p.String())

	p.SetTag("0")
	assert.Equal(t, "0", p.Tag())
}

func TestDirectionOut(t *testing.T) {
	p := newTestPacket(Header{Endpoint: 0x02, XferType: Bulk})
	assert.Equal(t, Out, p.Direction())
	assert.Equal(t, uint8(2), p.Endpoint())
	assert.Equal(t, "B", p.TypeMnemonic())
}

func TestErrorSymbol(t *testing.T) {
	tests := []struct {
		status int64
		symbol string
		ok     bool
	}{
		{-2, "ENOENT", true},
		{-115, "EINPROGRESS", true},
		{-32, "EPIPE", true},
		{-1000, "-1000", true},
		{0, "", false},
		{8, "", false},
	}
	for _, tt := range tests {
		p := newTestPacket(Header{Status: tt.status})
		symbol, ok := p.ErrorSymbol()
		assert.Equal(t, tt.ok, ok, "status %d", tt.status)
		assert.Equal(t, tt.symbol, symbol, "status %d", tt.status)
	}
}

func TestPairHelpers(t *testing.T) {
	s := newTestPacket(Header{Kind: Submission})
	c := newTestPacket(Header{Kind: Callback})
	e := newTestPacket(Header{Kind: Error})

	pair := Pair{First: c, Second: s}
	assert.True(t, pair.Complete())
	assert.Same(t, s, pair.Submission())
	assert.Same(t, c, pair.Callback())
	assert.Nil(t, pair.ErrorEvent())
	assert.Equal(t, []Packet{c, s}, pair.Packets())

	single := Pair{First: e}
	assert.False(t, single.Complete())
	assert.Nil(t, single.Submission())
	assert.Same(t, e, single.ErrorEvent())
	assert.Len(t, single.Packets(), 1)
}

func TestAddresses(t *testing.T) {
	ep, err := ParseEndpointAddress("1.2.1")
	require.NoError(t, err)
	assert.Equal(t, EndpointAddress{Bus: 1, Device: 2, Endpoint: 1}, ep)
	assert.Equal(t, "1.2.1", ep.String())
	assert.Equal(t, "1.2", ep.DeviceAddress().String())

	dev, err := ParseDeviceAddress("3.14")
	require.NoError(t, err)
	assert.Equal(t, DeviceAddress{Bus: 3, Device: 14}, dev)
	assert.True(t, DeviceAddress{Bus: 1, Device: 9}.Less(dev))
	assert.True(t, EndpointAddress{Bus: 1, Device: 2, Endpoint: 0}.Less(ep))

	_, err = ParseDeviceAddress("3")
	var invalid ErrInvalidAddress
	require.True(t, errors.As(err, &invalid))
	_, err = ParseEndpointAddress("1.x.2")
	require.True(t, errors.As(err, &invalid))
}

func TestDumpWords(t *testing.T) {
	assert.Equal(t, "", DumpWords(nil))
	assert.Equal(t, "01000000 00000000", DumpWords([]byte{1, 0, 0, 0, 0, 0, 0, 0}))
	assert.Equal(t,
		"12010002 09000140 6b1d0200 14040302 0101",
		DumpWords([]byte{0x12, 0x01, 0x00, 0x02, 0x09, 0x00, 0x01, 0x40, 0x6b, 0x1d, 0x02, 0x00, 0x14, 0x04, 0x03, 0x02, 0x01, 0x01}))
}

func TestXferType(t *testing.T) {
	assert.Equal(t, "Z", Isochronous.Mnemonic())
	assert.Equal(t, "C", Control.Mnemonic())
	assert.Equal(t, "Control", Control.String())
	assert.False(t, XferType(7).Valid())
	assert.True(t, Error.Valid())
	assert.False(t, Kind('X').Valid())
}

func TestAddressText(t *testing.T) {
	text, err := DeviceAddress{Bus: 1, Device: 2}.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1.2", string(text))

	var ep EndpointAddress
	require.NoError(t, ep.UnmarshalText([]byte("2.5.129")))
	assert.Equal(t, EndpointAddress{Bus: 2, Device: 5, Endpoint: 129}, ep)

	var dev DeviceAddress
	assert.Error(t, dev.UnmarshalText([]byte("bus")))
}

func TestHasAddressPrefix(t *testing.T) {
	p := newTestPacket(Header{Bus: 1, Device: 12, Endpoint: 0x83})
	assert.True(t, HasAddressPrefix(p, ""))
	assert.True(t, HasAddressPrefix(p, "1.1"))
	assert.True(t, HasAddressPrefix(p, "1.12.3"))
	assert.False(t, HasAddressPrefix(p, "1.2"))
}
