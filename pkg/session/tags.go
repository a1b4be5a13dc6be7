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

package session

import (
	"strconv"

	"github.com/google/uuid"
)

// TagGenerator hands out the tags given to finalized pairs when retagging
type TagGenerator interface {
	Next() string
}

// UUIDGenerator tags pairs with random UUIDs
type UUIDGenerator struct{}

func (UUIDGenerator) Next() string {
	return uuid.NewString()
}

// CounterGenerator tags pairs with a decimal sequence number starting at 0
type CounterGenerator struct {
	next uint64
}

func NewCounterGenerator() *CounterGenerator {
	return &CounterGenerator{}
}

func (g *CounterGenerator) Next() string {
	tag := strconv.FormatUint(g.next, 10)
	g.next++
	return tag
}
