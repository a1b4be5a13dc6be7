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
	"encoding/hex"
	"strings"
)

// DumpWords renders data as lowercase hex cut in 4 byte groups, the way the
// usbmon text interface prints URB data.
func DumpWords(data []byte) string {
	encoded := hex.EncodeToString(data)
	var sb strings.Builder
	for i := 0; i < len(encoded); i += 8 {
		if i > 0 {
			sb.WriteByte(' ')
		}
		end := i + 8
		if end > len(encoded) {
			end = len(encoded)
		}
		sb.WriteString(encoded[i:end])
	}
	return sb.String()
}
