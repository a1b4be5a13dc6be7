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

package layers

import (
	"encoding/binary"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	// UsbmonLayerNum identifies the layer
	UsbmonLayerNum = 2000
	// UsbmonHeaderLen is the size of the mmap record header, payload follows it
	UsbmonHeaderLen = 64
)

// UsbmonTransferTypes are the only transfer codes the kernel emits
const (
	UsbmonTransferIsochronous uint8 = iota
	UsbmonTransferInterrupt
	UsbmonTransferControl
	UsbmonTransferBulk
)

// linux/Documentation/usb/usbmon.rst, struct usbmon_packet

// UsbmonLayer is one binary record read from the usbmon mmap interface.
// The header is written in the byte order of the capturing host.
type UsbmonLayer struct {
	layers.BaseLayer

	ByteOrder binary.ByteOrder

	ID             uint64 // URB pointer, not unique across a capture
	EventType      uint8  // 'S', 'C' or 'E'
	TransferType   uint8
	EndpointNumber uint8 // bit 7 is the direction
	DeviceAddress  uint8
	BusID          uint16
	SetupFlag      uint8 // 0 when Setup holds a captured setup stage
	DataFlag       uint8 // 0 when data is present
	TimestampSec   int64
	TimestampUsec  int32
	Status         int32
	URBLength      uint32
	CaptureLength  uint32

	// The next 8 bytes are a union: the setup stage for control transfers,
	// error count and descriptor count for isochronous ones. Both views are
	// always decoded.
	Setup         [8]byte
	ISOErrorCount int32
	ISONumDescs   int32

	Interval          int32
	StartFrame        int32
	TransferFlags     uint32
	NumISODescriptors uint32
}

var UsbmonLayerType = gopacket.RegisterLayerType(UsbmonLayerNum,
	gopacket.LayerTypeMetadata{Name: "UsbmonLayerType", Decoder: gopacket.DecodeFunc(DecodeUsbmonLayer)})

// LayerType returns the type of the usbmon layer in the layer catalog
func (u *UsbmonLayer) LayerType() gopacket.LayerType {
	return UsbmonLayerType
}

func (u *UsbmonLayer) CanDecode() gopacket.LayerClass {
	return UsbmonLayerType
}

func (u *UsbmonLayer) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypePayload
}

func (u *UsbmonLayer) byteOrder() binary.ByteOrder {
	if u.ByteOrder == nil {
		return binary.LittleEndian
	}
	return u.ByteOrder
}

// DecodeFromBytes decodes a usbmon record using u.ByteOrder, little-endian if unset
func (u *UsbmonLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < UsbmonHeaderLen {
		df.SetTruncated()
		return ErrTruncatedRecord{Layer: "usbmon", Need: UsbmonHeaderLen, Have: len(data)}
	}
	bo := u.byteOrder()

	u.ID = bo.Uint64(data[0:8])
	u.EventType = data[8]
	u.TransferType = data[9]
	u.EndpointNumber = data[10]
	u.DeviceAddress = data[11]
	u.BusID = bo.Uint16(data[12:14])
	u.SetupFlag = data[14]
	u.DataFlag = data[15]
	u.TimestampSec = int64(bo.Uint64(data[16:24]))
	u.TimestampUsec = int32(bo.Uint32(data[24:28]))
	u.Status = int32(bo.Uint32(data[28:32]))
	u.URBLength = bo.Uint32(data[32:36])
	u.CaptureLength = bo.Uint32(data[36:40])
	copy(u.Setup[:], data[40:48])
	u.ISOErrorCount = int32(bo.Uint32(data[40:44]))
	u.ISONumDescs = int32(bo.Uint32(data[44:48]))
	u.Interval = int32(bo.Uint32(data[48:52]))
	u.StartFrame = int32(bo.Uint32(data[52:56]))
	u.TransferFlags = bo.Uint32(data[56:60])
	u.NumISODescriptors = bo.Uint32(data[60:64])

	switch u.EventType {
	case 'S', 'C', 'E':
	default:
		return ErrUnsupportedEventType{Code: u.EventType}
	}
	if u.TransferType > UsbmonTransferBulk {
		return ErrUnsupportedTransferCode{Layer: "usbmon", Code: u.TransferType}
	}

	payload := data[UsbmonHeaderLen:]
	if uint64(u.CaptureLength) > uint64(len(payload)) {
		df.SetTruncated()
		return ErrTruncatedRecord{Layer: "usbmon", Need: UsbmonHeaderLen + int(u.CaptureLength), Have: len(data)}
	}
	if int(u.CaptureLength) != len(payload) {
		return ErrCaptureLengthMismatch{Declared: u.CaptureLength, Actual: len(payload)}
	}

	u.BaseLayer = layers.BaseLayer{
		Contents: data[:UsbmonHeaderLen],
		Payload:  payload,
	}
	return nil
}

// SerializeTo writes the header in u.ByteOrder followed by the payload
func (u *UsbmonLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	payload := b.Bytes()
	headerBytes, err := b.PrependBytes(UsbmonHeaderLen)
	if err != nil {
		return err
	}
	if opts.FixLengths {
		u.CaptureLength = uint32(len(payload))
	}
	bo := u.byteOrder()

	bo.PutUint64(headerBytes[0:8], u.ID)
	headerBytes[8] = u.EventType
	headerBytes[9] = u.TransferType
	headerBytes[10] = u.EndpointNumber
	headerBytes[11] = u.DeviceAddress
	bo.PutUint16(headerBytes[12:14], u.BusID)
	headerBytes[14] = u.SetupFlag
	headerBytes[15] = u.DataFlag
	bo.PutUint64(headerBytes[16:24], uint64(u.TimestampSec))
	bo.PutUint32(headerBytes[24:28], uint32(u.TimestampUsec))
	bo.PutUint32(headerBytes[28:32], uint32(u.Status))
	bo.PutUint32(headerBytes[32:36], u.URBLength)
	bo.PutUint32(headerBytes[36:40], u.CaptureLength)
	if u.TransferType == UsbmonTransferIsochronous && u.SetupFlag != 0 {
		bo.PutUint32(headerBytes[40:44], uint32(u.ISOErrorCount))
		bo.PutUint32(headerBytes[44:48], uint32(u.ISONumDescs))
	} else {
		copy(headerBytes[40:48], u.Setup[:])
	}
	bo.PutUint32(headerBytes[48:52], uint32(u.Interval))
	bo.PutUint32(headerBytes[52:56], uint32(u.StartFrame))
	bo.PutUint32(headerBytes[56:60], u.TransferFlags)
	bo.PutUint32(headerBytes[60:64], u.NumISODescriptors)
	return nil
}

// DecodeUsbmonLayer decodes a little-endian record, the byte order of every
// host usbmon runs on in practice
func DecodeUsbmonLayer(data []byte, p gopacket.PacketBuilder) error {
	u := &UsbmonLayer{ByteOrder: binary.LittleEndian}
	err := u.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(u)
	return p.NextDecoder(u.NextLayerType())
}
