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

package store

import (
	"fmt"
)

type ErrCaptureNotFound struct {
	Name string
}

func (e ErrCaptureNotFound) Error() string {
	return fmt.Sprintf("Capture not found: %s", e.Name)
}

type ErrCaptureExists struct {
	Name string
}

func (e ErrCaptureExists) Error() string {
	return fmt.Sprintf("Capture already exists: %s", e.Name)
}
