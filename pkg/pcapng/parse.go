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

package pcapng

import (
	"bytes"
	"io"
	"os"

	"jinr.ru/greenlab/go-usbmon/pkg/session"
)

// ParseInto feeds every block of src to s, stopping at the first fatal error.
// s stays usable and holds what was decoded until then.
func ParseInto(src BlockSource, s *session.Session) error {
	d := NewDemuxer(s)
	for {
		block, err := src.NextBlock()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := d.Feed(block); err != nil {
			return err
		}
	}
}

func Parse(src BlockSource, retag bool) (*session.Session, error) {
	s := session.New(retag)
	if err := ParseInto(src, s); err != nil {
		return nil, err
	}
	return s, nil
}

func ParseStream(r io.Reader, retag bool) (*session.Session, error) {
	src, err := NewBlockSource(r)
	if err != nil {
		return nil, err
	}
	return Parse(src, retag)
}

// Open opens a capture file, "-" stands for standard input
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func ParseFile(path string, retag bool) (*session.Session, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseStream(f, retag)
}

func ParseBytes(data []byte, retag bool) (*session.Session, error) {
	return ParseStream(bytes.NewReader(data), retag)
}
