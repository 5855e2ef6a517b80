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

import "github.com/webcmix/webcmix/internal/fixedpoint"

// Mixer slow/fast learning rates, spec §6 defaults.
const (
	mixerSlowRate = 4e-4
	mixerFastRate = 2.2e-2
	// cellBlend is the 0.3 blend factor spec §4.5 applies to the
	// context-specific cell weight on top of the slow scalar weight.
	cellBlend = 0.3
)

// mixerCellKey addresses the dense per-context weight grid W[prev][bc]
// from spec §3/§4.5. Spec §9 notes eager (256x255xN floats) and lazy
// allocation are both valid; this module allocates lazily via a map
// keyed on (prevByte, bitCtx), since most (prevByte, bitCtx) pairs are
// never visited in a typical compression run and the eager array would
// cost about 0.5 MiB per child (256*255 float64s) regardless of input size.
type mixerCellKey struct {
	prevByte byte
	bitCtx   int32
}

// Mixer is the logistic mixer of spec §4.5: it holds N children and
// combines their stretched predictions with a per-child weight that is
// the sum of a slowly-adapting scalar and a quickly-adapting,
// context-keyed cell weight.
type Mixer struct {
	children []Model

	scalar []float64
	cells  map[mixerCellKey][]float64

	lastP      []float64
	lastTotalP float64

	prevByte byte
	cursor   bitCursor
}

// NewMixer creates a mixer over the given children, each scalar weight
// initialised to 1/N so predictions start as an unweighted average.
func NewMixer(children []Model) *Mixer {
	n := len(children)
	scalar := make([]float64, n)
	init := 1.0 / float64(n)
	for i := range scalar {
		scalar[i] = init
	}

	return &Mixer{
		children: children,
		scalar:   scalar,
		cells:    make(map[mixerCellKey][]float64),
		lastP:    make([]float64, n),
		cursor:   newBitCursor(),
	}
}

func (this *Mixer) cellKey() mixerCellKey {
	return mixerCellKey{prevByte: this.prevByte, bitCtx: this.cursor.bc}
}

// Pred collects every child's stretched prediction, combines them with
// the effective weight ŵ_i = w_i (no cell yet) or w_i + 0.3*W[prev][bc][i]
// (spec §4.5), and caches everything learn will need.
func (this *Mixer) Pred() float64 {
	key := this.cellKey()
	cellWeights := this.cells[key]

	var y float64
	for i, child := range this.children {
		p := child.Pred()
		this.lastP[i] = p

		w := this.scalar[i]
		if cellWeights != nil {
			w += cellBlend * cellWeights[i]
		}
		y += w * p
	}

	this.lastTotalP = fixedpoint.Squash(y)
	return y
}

// Learn recurses into every child, then updates both weight vectors per
// spec §4.5, finally advancing the byte/bit context the mixer tracks for
// itself.
func (this *Mixer) Learn(bit int) {
	err := float64(bit) - this.lastTotalP

	key := this.cellKey()
	cellWeights := this.cells[key]
	if cellWeights == nil {
		cellWeights = append([]float64(nil), this.scalar...)
		this.cells[key] = cellWeights
	}

	for i, child := range this.children {
		child.Learn(bit)
		this.scalar[i] += mixerSlowRate * err * this.lastP[i]
		cellWeights[i] += mixerFastRate * err * this.lastP[i]
	}

	if completedByte, completed := this.cursor.advance(bit); completed {
		this.prevByte = completedByte
	}
}
