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
	"fmt"
)

// ErrTruncatedRecord returned when a record is shorter than its fixed layout plus declared data
type ErrTruncatedRecord struct {
	Layer string
	Need  int
	Have  int
}

func (e ErrTruncatedRecord) Error() string {
	return fmt.Sprintf("Truncated %s record: need %d bytes, have %d", e.Layer, e.Need, e.Have)
}

// ErrCaptureLengthMismatch returned when a usbmon record carries more data than it declares
type ErrCaptureLengthMismatch struct {
	Declared uint32
	Actual   int
}

func (e ErrCaptureLengthMismatch) Error() string {
	return fmt.Sprintf("Captured length mismatch: header declares %d bytes, record carries %d", e.Declared, e.Actual)
}

type ErrUnsupportedTransferCode struct {
	Layer string
	Code  uint8
}

func (e ErrUnsupportedTransferCode) Error() string {
	return fmt.Sprintf("Unsupported %s transfer type code: 0x%02x", e.Layer, e.Code)
}

type ErrUnsupportedEventType struct {
	Code uint8
}

func (e ErrUnsupportedEventType) Error() string {
	return fmt.Sprintf("Unsupported usbmon event type: 0x%02x", e.Code)
}

type ErrUnsupportedControlStage struct {
	Stage uint8
}

func (e ErrUnsupportedControlStage) Error() string {
	return fmt.Sprintf("Unsupported USBPcap control stage: %d", e.Stage)
}
