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
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Link types of the capture container registry carrying USB records
const (
	// LinkTypeUsbLinux is the 48 byte usbmon header, not supported
	LinkTypeUsbLinux        layers.LinkType = 189
	LinkTypeUsbLinuxMmapped layers.LinkType = 220
	LinkTypeUSBPcap         layers.LinkType = 249
)

var linkTypeNames = map[layers.LinkType]string{
	LinkTypeUsbLinux:        "USB_LINUX",
	LinkTypeUsbLinuxMmapped: "USB_LINUX_MMAPPED",
	LinkTypeUSBPcap:         "USBPCAP",
}

// LinkTypeName returns a readable name for USB link types and falls back to
// the gopacket registry for the rest
func LinkTypeName(lt layers.LinkType) string {
	if name, ok := linkTypeNames[lt]; ok {
		return name
	}
	return lt.String()
}

// LayerTypeForLink returns the layer carried by a supported link type.
// LinkTypeUsbLinux is left out on purpose, its 48 byte header lacks the
// interval and ISO fields the text rendering needs.
func LayerTypeForLink(lt layers.LinkType) (gopacket.LayerType, bool) {
	switch lt {
	case LinkTypeUsbLinuxMmapped:
		return UsbmonLayerType, true
	case LinkTypeUSBPcap:
		return USBPcapLayerType, true
	}
	return gopacket.LayerTypeZero, false
}

// Supported reports whether records of the link type can be decoded
func Supported(lt layers.LinkType) bool {
	_, ok := LayerTypeForLink(lt)
	return ok
}
