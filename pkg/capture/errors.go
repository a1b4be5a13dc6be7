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
	"fmt"
)

// ErrUnsupportedCaptureData returned for USBPcap records that do not describe a transfer
type ErrUnsupportedCaptureData struct {
	TransferType uint8
}

func (e ErrUnsupportedCaptureData) Error() string {
	return fmt.Sprintf("Unable to parse capture data of type 0x%02x", e.TransferType)
}
