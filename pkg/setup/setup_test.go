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

package setup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeGetDeviceDescriptor(t *testing.T) {
	sp, err := Decode([]byte{0x80, 0x06, 0x00, 0x01, 0x00, 0x00, 0x28, 0x00})
	require.NoError(t, err)

	assert.Equal(t, uint8(0x80), sp.RequestType)
	assert.Equal(t, DeviceToHost, sp.Direction)
	assert.Equal(t, Standard, sp.Type)
	assert.Equal(t, RecipientDevice, sp.Recipient)
	assert.Equal(t, uint16(0x0100), sp.Value)
	assert.Equal(t, uint16(0), sp.Index)
	assert.Equal(t, uint16(40), sp.Length)
	assert.Equal(t, uint8(1), sp.DescriptorType())
	assert.Equal(t, uint8(0), sp.DescriptorIndex())

	req, ok := sp.StandardRequest()
	require.True(t, ok)
	assert.Equal(t, GetDescriptor, req)
	assert.Equal(t, "GET_DESCRIPTOR", req.String())

	assert.Equal(t, "s 80 06 0100 0000 0028", sp.String())
	assert.Equal(t, []byte{0x80, 0x06, 0x00, 0x01, 0x00, 0x00, 0x28, 0x00}, sp.Raw())
}

func TestDecodeBitFields(t *testing.T) {
	tests := []struct {
		name      string
		first     byte
		direction Direction
		typ       Type
		recipient Recipient
	}{
		{"class interface out", 0x21, HostToDevice, Class, RecipientInterface},
		{"vendor device in", 0xc0, DeviceToHost, Vendor, RecipientDevice},
		{"standard endpoint out", 0x02, HostToDevice, Standard, RecipientEndpoint},
		{"class other in", 0xa3, DeviceToHost, Class, RecipientOther},
		{"reserved type", 0x60, HostToDevice, Reserved, RecipientDevice},
		{"reserved recipient", 0x1f, HostToDevice, Standard, RecipientReserved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp, err := Decode([]byte{tt.first, 0x09, 0x00, 0x02, 0x00, 0x00, 0x40, 0x00})
			require.NoError(t, err)
			assert.Equal(t, tt.first, sp.RequestType)
			assert.Equal(t, tt.direction, sp.Direction)
			assert.Equal(t, tt.typ, sp.Type)
			assert.Equal(t, tt.recipient, sp.Recipient)
		})
	}
}

func TestStandardRequestOnlyForStandardType(t *testing.T) {
	sp, err := Decode([]byte{0x21, 0x09, 0x00, 0x02, 0x00, 0x00, 0x40, 0x00})
	require.NoError(t, err)
	_, ok := sp.StandardRequest()
	assert.False(t, ok)
}

func TestDecodeLittleEndianFields(t *testing.T) {
	sp, err := Decode([]byte{0x41, 0x01, 0x34, 0x12, 0x78, 0x56, 0xbc, 0x9a, 0xff})
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), sp.Value)
	assert.Equal(t, uint16(0x5678), sp.Index)
	assert.Equal(t, uint16(0x9abc), sp.Length)
	assert.Len(t, sp.Raw(), Size)
}

func TestDecodeTooShort(t *testing.T) {
	_, err := Decode([]byte{0x80, 0x06, 0x00})
	require.Error(t, err)
	var short ErrSetupTooShort
	require.True(t, errors.As(err, &short))
	assert.Equal(t, 3, short.Length)
}
