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

// Pair is two events of one URB in arrival order. Second is nil when no
// matching event was observed.
type Pair struct {
	First  Packet
	Second Packet
}

func (p Pair) Complete() bool {
	return p.First != nil && p.Second != nil
}

// Packets returns the present elements in arrival order
func (p Pair) Packets() []Packet {
	out := make([]Packet, 0, 2)
	if p.First != nil {
		out = append(out, p.First)
	}
	if p.Second != nil {
		out = append(out, p.Second)
	}
	return out
}

func (p Pair) byKind(kind Kind) Packet {
	if p.First != nil && p.First.Kind() == kind {
		return p.First
	}
	if p.Second != nil && p.Second.Kind() == kind {
		return p.Second
	}
	return nil
}

func (p Pair) Submission() Packet {
	return p.byKind(Submission)
}

func (p Pair) Callback() Packet {
	return p.byKind(Callback)
}

func (p Pair) ErrorEvent() Packet {
	return p.byKind(Error)
}
