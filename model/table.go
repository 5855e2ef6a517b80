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

import "github.com/pkg/errors"

// DefaultHashPower is the recommended hash table power-of-two (spec §6
// default: "hash table power-of-two: 26, tunes quality vs memory").
const DefaultHashPower = 26

// MaxHashPower bounds table construction: above this the backing slice
// would need more memory than any realistic host has, and the spec
// treats "excessive size" as the sole construction-time failure mode
// for the hash table (§4 "Failure semantics").
const MaxHashPower = 31

// Table is the flat, hash-indexed array of counter cells shared by every
// Order-N and Word predictor built from the same model tree (spec §3,
// §4.7, §5). It is allocated once and mutated in place for the lifetime
// of the encode or decode session that owns it.
//
// Table is not safe for concurrent use: spec §5 requires only that
// sibling predictors may alternately read and mutate it within a single,
// strictly sequential pred/learn pair, which a plain slice behind a
// pointer already provides.
type Table struct {
	cells []cell
	mask  uint32
}

// NewTable allocates a hash table of 2^power cells, each defaulted to
// p=1/2, count=0 per spec §3.
func NewTable(power uint) (*Table, error) {
	if power == 0 || power > MaxHashPower {
		return nil, errors.Errorf("model: hash table power must be in [1, %d], got %d", MaxHashPower, power)
	}

	size := uint32(1) << power
	cells := make([]cell, size)
	for i := range cells {
		cells[i] = defaultCell()
	}

	return &Table{cells: cells, mask: size - 1}, nil
}

// at returns the cell for key, masked into the table's index space
// (spec §3: "index is key & (2^k - 1)"). No collision resolution is
// performed; colliding contexts silently share a cell.
func (this *Table) at(key uint32) cell {
	return this.cells[key&this.mask]
}

func (this *Table) set(key uint32, c cell) {
	this.cells[key&this.mask] = c
}

// hash32 implements spec §4.3's mixing hash: K * (v ^ (v >> s)), all
// arithmetic wrapping at 32 bits.
func hash32(v uint32, s uint) uint32 {
	const k = 0x9E35A7BD
	return k * (v ^ (v >> s))
}
