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

// spreadMask expands an 8-bit byte_mask into the 64-bit window mask from
// spec §4.3: "bit_mask spreads each mask bit to 8 consecutive bits,
// MSB-first over the 64-bit window". Mask bit 0 (the least significant)
// governs the most recently completed byte, since prevBytes shifts new
// bytes into its low 8 bits; mask bit 7 governs the byte 8 positions
// back.
func spreadMask(byteMask uint8) uint64 {
	var out uint64
	for i := uint(0); i < 8; i++ {
		if byteMask&(1<<i) != 0 {
			out |= 0xFF << (8 * i)
		}
	}
	return out
}

// OrderN is the order-N byte predictor of spec §4.3: its context is the
// subset of the last 8 completed bytes selected by byteMask, combined
// with the current partial-byte context.
type OrderN struct {
	table     *Table
	byteMask  uint8
	bitMask   uint64
	magic     uint32
	prevBytes uint64
	ctx       uint32
	cursor    bitCursor
}

// NewOrderN creates an order-N predictor over the given byteMask, sharing
// table with every other predictor in the same model tree (spec §4.7:
// "A single shared hash table is passed down at construction").
func NewOrderN(table *Table, byteMask uint8) *OrderN {
	this := &OrderN{
		table:    table,
		byteMask: byteMask,
		bitMask:  spreadMask(byteMask),
		magic:    hash32(uint32(byteMask), 2),
		cursor:   newBitCursor(),
	}
	this.recomputeCtx()
	return this
}

// recomputeCtx implements spec §4.3's key construction step 2:
// ctx = (hash(high32, 3) * 9 + hash(low32, 3)) * magic.
func (this *OrderN) recomputeCtx() {
	high := uint32(this.prevBytes >> 32)
	low := uint32(this.prevBytes)
	this.ctx = (hash32(high, 3)*9 + hash32(low, 3)) * this.magic
}

func (this *OrderN) key() uint32 {
	return this.ctx ^ uint32(this.cursor.bc)
}

// Pred returns stretch(cell.prob / 2^24) for the cell at ctx ^ bit_ctx.
func (this *OrderN) Pred() float64 {
	return predFromCell(this.table.at(this.key()))
}

// Learn updates the counter cell for the current context, then advances
// the partial-byte context and, on byte completion, folds the completed
// byte into prevBytes and recomputes ctx, per spec §4.3.
func (this *OrderN) Learn(bit int) {
	k := this.key()
	this.table.set(k, updateCell(this.table.at(k), bit, learnRate))

	if completedByte, completed := this.cursor.advance(bit); completed {
		this.prevBytes = ((this.prevBytes << 8) | uint64(completedByte)) & this.bitMask
		this.recomputeCtx()
	}
}
