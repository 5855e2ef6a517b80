/*
Copyright 2026 The webcmix Authors
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package model

// bitCursor tracks the partial-byte context described in spec §3: an
// integer in [1, 255] encoding the bits of the current byte already
// emitted, MSB first, with a leading 1 sentinel. Every leaf predictor,
// the mixer and the APM each keep their own bitCursor (spec §5: "each
// child maintains its own bit_ctx updated from the same sequence of
// bits"), so this type is value-embedded, not shared by pointer.
type bitCursor struct {
	bc int32
}

func newBitCursor() bitCursor {
	return bitCursor{bc: 1}
}

// advance shifts bit into the cursor and reports the completed byte, if
// any, per spec §3: "after emitting bit b, bit_ctx <- (bit_ctx << 1) | b;
// when it reaches 256, the low 8 bits are the completed byte, and
// bit_ctx resets to 1."
func (c *bitCursor) advance(bit int) (completedByte byte, completed bool) {
	c.bc = (c.bc << 1) | int32(bit)
	if c.bc >= 256 {
		completedByte = byte(c.bc & 0xFF)
		c.bc = 1
		return completedByte, true
	}
	return 0, false
}
