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

// wordHistoryLen is the fixed-length window of prior word hashes cycled
// into on a word break, per spec §3. Four slots is enough for the short
// multi-word contexts typical of source-code-like input without growing
// the key space beyond what a single 32-bit ctx can usefully distinguish.
const wordHistoryLen = 4

const wordHashSeed = 2166136261
const wordHashPrime = 16777619

func isAlnum(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	}
	return false
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}

// Word is the word predictor of spec §4.4: same shape as OrderN, but its
// context tracks a running hash of the current alphanumeric run plus a
// short window of prior word hashes, instead of a masked byte history.
type Word struct {
	table   *Table
	w       uint32
	history [wordHistoryLen]uint32
	magic   uint32
	ctx     uint32
	cursor  bitCursor
}

// NewWord creates a word predictor sharing table with the rest of the
// model tree.
func NewWord(table *Table) *Word {
	this := &Word{
		table:  table,
		w:      wordHashSeed,
		magic:  hash32(0xFF, 2),
		cursor: newBitCursor(),
	}
	this.recomputeCtx()
	return this
}

// recomputeCtx derives a key from the current running word hash and an
// accumulation of the history window, reusing the same two-hash
// combination formula as OrderN (spec §4.4: "identical shape to the
// order-N predictor").
func (this *Word) recomputeCtx() {
	var acc uint32
	for _, h := range this.history {
		acc ^= h
	}
	this.ctx = (hash32(acc, 3)*9 + hash32(this.w, 3)) * this.magic
}

func (this *Word) key() uint32 {
	return this.ctx ^ uint32(this.cursor.bc)
}

// Pred returns stretch(cell.prob / 2^24) for the cell at ctx ^ bit_ctx.
func (this *Word) Pred() float64 {
	return predFromCell(this.table.at(this.key()))
}

// Learn updates the counter cell for the current context, then advances
// the partial-byte context and, on byte completion, updates the running
// word hash per spec §3 and §4.4.1 (the in-tree mixer variant: the
// post-multiply hash is right-shifted by 16 once a byte completes).
func (this *Word) Learn(bit int) {
	k := this.key()
	this.table.set(k, updateCell(this.table.at(k), bit, learnRate))

	completedByte, completed := this.cursor.advance(bit)
	if !completed {
		return
	}

	if isAlnum(completedByte) {
		this.w = ((this.w ^ uint32(lower(completedByte))) * wordHashPrime) >> 16
	} else {
		copy(this.history[1:], this.history[:wordHistoryLen-1])
		this.history[0] = this.w
		this.w = wordHashSeed
	}

	this.recomputeCtx()
}
