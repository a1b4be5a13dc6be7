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

package descriptors

import (
	"fmt"
)

type ErrDescriptorTooShort struct {
	Length int
}

func (e ErrDescriptorTooShort) Error() string {
	return fmt.Sprintf("Device descriptor too short: %d bytes, need %d", e.Length, DeviceDescriptorLen)
}

// ErrInvalidDescriptor returned when bLength or bDescriptorType do not describe a device descriptor
type ErrInvalidDescriptor struct {
	Length         uint8
	DescriptorType uint8
}

func (e ErrInvalidDescriptor) Error() string {
	return fmt.Sprintf("Invalid device descriptor: bLength %d, bDescriptorType 0x%02x", e.Length, e.DescriptorType)
}
