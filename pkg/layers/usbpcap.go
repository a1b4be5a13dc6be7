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
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	// USBPcapLayerNum identifies the layer
	USBPcapLayerNum = 2001
	// USBPcapHeaderLen is the size of the header common to every transfer type
	USBPcapHeaderLen = 27
	// USBPcapSetupLen is the size of a setup stage carried in a control record
	USBPcapSetupLen = 8
)

// USBPcap reuses the transfer field for two conditions that are not transfers
const (
	USBPcapTransferIsochronous uint8 = 0x00
	USBPcapTransferInterrupt   uint8 = 0x01
	USBPcapTransferControl     uint8 = 0x02
	USBPcapTransferBulk        uint8 = 0x03
	USBPcapTransferIRPInfo     uint8 = 0xfe
	USBPcapTransferUnknown     uint8 = 0xff
)

// USBPcapInfoPDOToFDO marks records travelling from the device towards the
// host driver, i.e. completions
const USBPcapInfoPDOToFDO uint8 = 0x01

type ControlStage uint8

const (
	ControlStageSetup ControlStage = iota
	ControlStageData
	ControlStageStatus
	ControlStageComplete
)

var controlStageNames = [...]string{"Setup", "Data", "Status", "Complete"}

func (s ControlStage) String() string {
	if int(s) < len(controlStageNames) {
		return controlStageNames[s]
	}
	return fmt.Sprintf("ControlStage(%d)", uint8(s))
}

// USBPcapLayer is one USBPcap record. USBPcap always writes little-endian.
type USBPcapLayer struct {
	layers.BaseLayer

	HeaderLength uint16
	IRPID        uint64
	Status       uint32 // USBD_STATUS
	Function     uint16 // URB function code
	Info         uint8
	Bus          uint16
	Device       uint16
	Endpoint     uint8 // bit 7 is the direction
	TransferType uint8
	DataLength   uint32

	// Present for control transfers only
	HasControlStage bool
	ControlStage    ControlStage
	// Present when ControlStage is Setup
	Setup []byte
}

var USBPcapLayerType = gopacket.RegisterLayerType(USBPcapLayerNum,
	gopacket.LayerTypeMetadata{Name: "USBPcapLayerType", Decoder: gopacket.DecodeFunc(DecodeUSBPcapLayer)})

// LayerType returns the type of the USBPcap layer in the layer catalog
func (u *USBPcapLayer) LayerType() gopacket.LayerType {
	return USBPcapLayerType
}

func (u *USBPcapLayer) CanDecode() gopacket.LayerClass {
	return USBPcapLayerType
}

func (u *USBPcapLayer) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypePayload
}

// Sentinel reports whether the transfer field holds one of the non-transfer codes
func (u *USBPcapLayer) Sentinel() bool {
	return u.TransferType == USBPcapTransferIRPInfo || u.TransferType == USBPcapTransferUnknown
}

func (u *USBPcapLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < USBPcapHeaderLen {
		df.SetTruncated()
		return ErrTruncatedRecord{Layer: "usbpcap", Need: USBPcapHeaderLen, Have: len(data)}
	}

	u.HeaderLength = binary.LittleEndian.Uint16(data[0:2])
	u.IRPID = binary.LittleEndian.Uint64(data[2:10])
	u.Status = binary.LittleEndian.Uint32(data[10:14])
	u.Function = binary.LittleEndian.Uint16(data[14:16])
	u.Info = data[16]
	u.Bus = binary.LittleEndian.Uint16(data[17:19])
	u.Device = binary.LittleEndian.Uint16(data[19:21])
	u.Endpoint = data[21]
	u.TransferType = data[22]
	u.DataLength = binary.LittleEndian.Uint32(data[23:27])
	u.HasControlStage = false
	u.ControlStage = 0
	u.Setup = nil

	switch u.TransferType {
	case USBPcapTransferIsochronous, USBPcapTransferInterrupt, USBPcapTransferControl, USBPcapTransferBulk:
	case USBPcapTransferIRPInfo, USBPcapTransferUnknown:
	default:
		return ErrUnsupportedTransferCode{Layer: "usbpcap", Code: u.TransferType}
	}

	offset := USBPcapHeaderLen
	if u.TransferType == USBPcapTransferControl {
		if len(data) < offset+1 {
			df.SetTruncated()
			return ErrTruncatedRecord{Layer: "usbpcap", Need: offset + 1, Have: len(data)}
		}
		u.HasControlStage = true
		u.ControlStage = ControlStage(data[offset])
		offset++
		if u.ControlStage > ControlStageComplete {
			return ErrUnsupportedControlStage{Stage: uint8(u.ControlStage)}
		}
		if u.ControlStage == ControlStageSetup {
			if len(data) < offset+USBPcapSetupLen {
				df.SetTruncated()
				return ErrTruncatedRecord{Layer: "usbpcap", Need: offset + USBPcapSetupLen, Have: len(data)}
			}
			u.Setup = data[offset : offset+USBPcapSetupLen]
			offset += USBPcapSetupLen
		}
	}

	u.BaseLayer = layers.BaseLayer{
		Contents: data[:offset],
		Payload:  data[offset:],
	}
	return nil
}

// SerializeTo writes the record header, the control stage and setup when
// present, followed by the payload
func (u *USBPcapLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	payload := b.Bytes()
	headerLen := USBPcapHeaderLen
	if u.HasControlStage {
		headerLen++
		if u.ControlStage == ControlStageSetup {
			headerLen += USBPcapSetupLen
		}
	}
	headerBytes, err := b.PrependBytes(headerLen)
	if err != nil {
		return err
	}
	if opts.FixLengths {
		u.HeaderLength = USBPcapHeaderLen
		u.DataLength = uint32(len(payload))
		if u.HasControlStage {
			u.HeaderLength++
			if u.ControlStage == ControlStageSetup {
				u.DataLength += USBPcapSetupLen
			}
		}
	}

	binary.LittleEndian.PutUint16(headerBytes[0:2], u.HeaderLength)
	binary.LittleEndian.PutUint64(headerBytes[2:10], u.IRPID)
	binary.LittleEndian.PutUint32(headerBytes[10:14], u.Status)
	binary.LittleEndian.PutUint16(headerBytes[14:16], u.Function)
	headerBytes[16] = u.Info
	binary.LittleEndian.PutUint16(headerBytes[17:19], u.Bus)
	binary.LittleEndian.PutUint16(headerBytes[19:21], u.Device)
	headerBytes[21] = u.Endpoint
	headerBytes[22] = u.TransferType
	binary.LittleEndian.PutUint32(headerBytes[23:27], u.DataLength)
	if u.HasControlStage {
		headerBytes[27] = uint8(u.ControlStage)
		if u.ControlStage == ControlStageSetup {
			copy(headerBytes[28:36], u.Setup)
		}
	}
	return nil
}

func DecodeUSBPcapLayer(data []byte, p gopacket.PacketBuilder) error {
	u := &USBPcapLayer{}
	err := u.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(u)
	return p.NextDecoder(u.NextLayerType())
}
