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
	"encoding/base64"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-usbmon/pkg/layers"
	"jinr.ru/greenlab/go-usbmon/pkg/packet"
	"jinr.ru/greenlab/go-usbmon/pkg/setup"
)

const (
	interruptCallback   = "gLi22gAAAABDAYECAQAtAMkvaFwAAAAAYfwDAAAAAAAIAAAACAAAAAAAAAAAAAAACAAAAAAAAAAEAgAAAAAAAAEAAAAAAAAA"
	interruptSubmission = "gLi22gAAAABTAYECAQAtPMkvaFwAAAAA9/wDAI3///8IAAAAAAAAAAAAAAAAAAAACAAAAAAAAAAEAgAAAAAAAA=="
	controlSubmission   = "AKrN2gAAAABTAoABAQAAPMUvaFwAAAAAuNIBAI3///8oAAAAAAAAAIAGAAEAACgAAAAAAAAAAAAAAgAAAAAAAA=="
	controlCallback     = "AKrN2gAAAABDAoABAQAtAMUvaFwAAAAAX9MBAAAAAAASAAAAEgAAAAAAAAAAAAAAAAAAAAAAAAAAAgAAAAAAABIBAAIJAAFAax0CABQEAwIBAQ=="
	noEntryCallback     = "wBxJFw2g//9DAYFCAQAtAFyjT1wAAAAAINEMAP7///8AAAAAAAAAAAAAAAAAAAAAAQAAAAAAAAAAAgAAAAAAAA=="
)

func decodeFixture(t *testing.T, s string) *UsbmonPacket {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(s)
	require.NoError(t, err)
	p, err := DecodeUsbmon(binary.LittleEndian, raw)
	require.NoError(t, err)
	return p
}

func TestUsbmonInterruptCallback(t *testing.T) {
	p := decodeFixture(t, interruptCallback)

	assert.Equal(t, "dab6b880", p.Tag())
	assert.Equal(t, packet.Callback, p.Kind())
	assert.Equal(t, packet.Interrupt, p.XferType())
	assert.Equal(t, packet.In, p.Direction())
	assert.Equal(t, int64(0), p.Status())
	assert.Equal(t, int32(8), p.Interval)
	assert.Equal(t, byte('='), p.DataFlag)
	assert.Nil(t, p.Setup())
	_, isErr := p.ErrorSymbol()
	assert.False(t, isErr)
	assert.Equal(t, "dab6b880 1550331849261217 C Ii:1:002:1 0:8 8 = 01000000 00000000", p.String())
}

func TestUsbmonRendering(t *testing.T) {
	tests := []struct {
		name    string
		fixture string
		line    string
	}{
		{"interrupt submission", interruptSubmission, "dab6b880 1550331849261367 S Ii:1:002:1 -115:8 8 <"},
		{"control submission", controlSubmission, "dacdaa00 1550331845119480 S Ci:1:001:0 s 80 06 0100 0000 0028 40 <"},
		{"control callback", controlCallback, "dacdaa00 1550331845119647 C Ci:1:001:0 0 18 = 12010002 09000140 6b1d0200 14040302 0101"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.line, decodeFixture(t, tt.fixture).String())
		})
	}
}

func TestUsbmonControlSetup(t *testing.T) {
	p := decodeFixture(t, controlSubmission)
	sp := p.Setup()
	require.NotNil(t, sp)
	assert.Equal(t, setup.DeviceToHost, sp.Direction)
	assert.Equal(t, setup.RecipientDevice, sp.Recipient)
	req, ok := sp.StandardRequest()
	require.True(t, ok)
	assert.Equal(t, setup.GetDescriptor, req)
	assert.Equal(t, uint16(0x28), sp.Length)
}

func TestUsbmonErrorSymbols(t *testing.T) {
	p := decodeFixture(t, interruptSubmission)
	symbol, ok := p.ErrorSymbol()
	require.True(t, ok)
	assert.Equal(t, "EINPROGRESS", symbol)

	p = decodeFixture(t, noEntryCallback)
	assert.Equal(t, "ffffa00d17491cc0", p.Tag())
	assert.Equal(t, int64(-2), p.Status())
	symbol, ok = p.ErrorSymbol()
	require.True(t, ok)
	assert.Equal(t, "ENOENT", symbol)
}

func TestUsbmonIsochronous(t *testing.T) {
	l := &layers.UsbmonLayer{
		ByteOrder:      binary.BigEndian,
		ID:             0x1234,
		EventType:      'C',
		TransferType:   layers.UsbmonTransferIsochronous,
		EndpointNumber: 0x81,
		DeviceAddress:  3,
		BusID:          1,
		SetupFlag:      '-',
		TimestampSec:   1600000000,
		URBLength:      4,
		ISOErrorCount:  2,
		ISONumDescs:    1,
		Interval:       1,
		StartFrame:     100,
	}
	buf := gopacket.NewSerializeBuffer()
	require.NoError(t, gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true},
		l, gopacket.Payload([]byte{0xde, 0xad, 0xbe, 0xef})))

	p, err := DecodeUsbmon(binary.BigEndian, buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, int32(2), p.ErrorCount)
	assert.Equal(t, int32(1), p.NumDesc)
	assert.Equal(t, "00001234 1600000000000000 C Zi:1:003:1 0:1:100:2 4 = deadbeef", p.String())
}

func TestUsbmonDecodeErrors(t *testing.T) {
	raw, err := base64.StdEncoding.DecodeString(interruptCallback)
	require.NoError(t, err)

	_, err = DecodeUsbmon(binary.LittleEndian, raw[:10])
	var truncated layers.ErrTruncatedRecord
	assert.True(t, errors.As(err, &truncated))

	_, err = DecodeUsbmon(binary.LittleEndian, append(raw, 0))
	var mismatch layers.ErrCaptureLengthMismatch
	assert.True(t, errors.As(err, &mismatch))
}

func serializeUSBPcap(t *testing.T, l *layers.USBPcapLayer, payload []byte) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	require.NoError(t, gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true},
		l, gopacket.Payload(payload)))
	return buf.Bytes()
}

var usbpcapTime = time.Unix(1600000000, 123456000)

func TestUsbpcapControlTransfer(t *testing.T) {
	submission := serializeUSBPcap(t, &layers.USBPcapLayer{
		IRPID:           0xffffa80c1d2e3f40,
		Bus:             1,
		Device:          1,
		Endpoint:        0x80,
		TransferType:    layers.USBPcapTransferControl,
		HasControlStage: true,
		ControlStage:    layers.ControlStageSetup,
		Setup:           []byte{0x80, 0x06, 0x00, 0x01, 0x00, 0x00, 0x12, 0x00},
	}, nil)

	p, err := DecodeUsbpcap(submission, usbpcapTime)
	require.NoError(t, err)
	assert.Equal(t, packet.Submission, p.Kind())
	assert.Equal(t, uint32(0), p.Length())
	require.NotNil(t, p.Setup())
	assert.Equal(t, uint16(0x0100), p.Setup().Value)
	assert.Equal(t, usbpcapTime, p.Timestamp())
	assert.Equal(t, "ffffa80c1d2e3f40 1600000000123456 S Ci:1:001:0 s 80 06 0100 0000 0012 0 ?", p.String())

	descriptor := []byte{
		0x12, 0x01, 0x00, 0x02, 0x09, 0x00, 0x01, 0x40, 0x6b, 0x1d,
		0x02, 0x00, 0x14, 0x04, 0x03, 0x02, 0x01, 0x01,
	}
	callback := serializeUSBPcap(t, &layers.USBPcapLayer{
		IRPID:           0xffffa80c1d2e3f40,
		Info:            layers.USBPcapInfoPDOToFDO,
		Bus:             1,
		Device:          1,
		Endpoint:        0x80,
		TransferType:    layers.USBPcapTransferControl,
		HasControlStage: true,
		ControlStage:    layers.ControlStageComplete,
	}, descriptor)

	p, err = DecodeUsbpcap(callback, usbpcapTime)
	require.NoError(t, err)
	assert.Equal(t, packet.Callback, p.Kind())
	assert.Nil(t, p.Setup())
	assert.Equal(t, layers.ControlStageComplete, p.ControlStage)
	assert.Equal(t,
		"ffffa80c1d2e3f40 1600000000123456 C Ci:1:001:0 0 18 = 12010002 09000140 6b1d0200 14040302 0101",
		p.String())
}

func TestUsbpcapInterruptWithoutPayload(t *testing.T) {
	raw := serializeUSBPcap(t, &layers.USBPcapLayer{
		IRPID:        1,
		Bus:          1,
		Device:       2,
		Endpoint:     0x81,
		TransferType: layers.USBPcapTransferInterrupt,
	}, nil)
	p, err := DecodeUsbpcap(raw, usbpcapTime)
	require.NoError(t, err)
	assert.Equal(t, "0000000000000001 1600000000123456 S Ii:1:002:1 0 0 <", p.String())
}

func TestUsbpcapStatusIsNotErrno(t *testing.T) {
	raw := serializeUSBPcap(t, &layers.USBPcapLayer{
		Status:       0xc0000004,
		TransferType: layers.USBPcapTransferBulk,
	}, nil)
	p, err := DecodeUsbpcap(raw, usbpcapTime)
	require.NoError(t, err)
	assert.Equal(t, int64(0xc0000004), p.Status())
	_, ok := p.ErrorSymbol()
	assert.False(t, ok)
}

func TestUsbpcapLengthMismatchIsSoft(t *testing.T) {
	l := &layers.USBPcapLayer{
		HeaderLength: layers.USBPcapHeaderLen,
		TransferType: layers.USBPcapTransferBulk,
		DataLength:   64,
	}
	buf := gopacket.NewSerializeBuffer()
	require.NoError(t, gopacket.SerializeLayers(buf, gopacket.SerializeOptions{}, l, gopacket.Payload([]byte{1, 2})))

	p, err := DecodeUsbpcap(buf.Bytes(), usbpcapTime)
	require.NoError(t, err)
	assert.Equal(t, uint32(64), p.Length())
	assert.Len(t, p.Payload(), 2)
}

func TestUsbpcapSentinels(t *testing.T) {
	for _, code := range []uint8{layers.USBPcapTransferIRPInfo, layers.USBPcapTransferUnknown} {
		raw := serializeUSBPcap(t, &layers.USBPcapLayer{TransferType: code}, nil)
		_, err := DecodeUsbpcap(raw, usbpcapTime)
		var unsupported ErrUnsupportedCaptureData
		require.True(t, errors.As(err, &unsupported))
		assert.Equal(t, code, unsupported.TransferType)
	}
}

func TestDecoderFor(t *testing.T) {
	d, ok := DecoderFor(layers.LinkTypeUsbLinuxMmapped)
	require.True(t, ok)
	assert.Equal(t, layers.LinkTypeUsbLinuxMmapped, d.LinkType())

	raw, err := base64.StdEncoding.DecodeString(interruptCallback)
	require.NoError(t, err)
	p, err := d.Decode(binary.LittleEndian, raw, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "dab6b880", p.Tag())

	d, ok = DecoderFor(layers.LinkTypeUSBPcap)
	require.True(t, ok)
	assert.Equal(t, layers.LinkTypeUSBPcap, d.LinkType())

	_, ok = DecoderFor(layers.LinkTypeUsbLinux)
	assert.False(t, ok)
}
