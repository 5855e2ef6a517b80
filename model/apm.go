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

import (
	"math"

	"github.com/webcmix/webcmix/internal/fixedpoint"
)

// DefaultAPMHashPower is the spec §6 default APM hash power: "bins x
// cells ~= 16 MiB secondary table".
const DefaultAPMHashPower = 19

// apmBins is the spec §6 default APM bin count: quantisation of the
// input probability into 32 bins.
const apmBins = 32

// apmPrior is the damping constant in the APM's learning rate,
// 1/(count+31.5), spec §4.6 / §6.
const apmPrior = 31.5

// APM is the secondary symbol estimator of spec §4.6: it refines an
// inner model's stretched prediction by looking up a context-keyed,
// linearly-interpolated correction.
//
// Unlike OrderN/Word, the APM does not share the model tree's main
// Table: its bins hold a different kind of state (one counter cell per
// quantisation bin, not one per context) and, per spec §4.6, live in
// their own "hash-table-local" table.
type APM struct {
	inner Model

	bins []cell // apmBins cells per hash-table slot

	mask     uint32
	prevByte byte
	cursor   bitCursor

	// cached between Pred and Learn
	iNear, iOther int
	t             float64
}

// NewAPM wraps inner with a secondary estimator backed by a table of
// 2^power hash slots.
func NewAPM(inner Model, power uint) *APM {
	size := uint32(1) << power
	bins := make([]cell, size*apmBins)
	for i := range bins {
		bins[i] = defaultCell()
	}

	return &APM{
		inner:  inner,
		bins:   bins,
		mask:   size - 1,
		cursor: newBitCursor(),
	}
}

// ctxKey derives the APM's own context hash, per spec §4.6.1: keyed on
// the single most recently completed byte, XORed with bit_ctx, reusing
// OrderN's hash32 combination (spec §4.6: "hash-table-local, no history
// mask").
func (this *APM) ctxKey() uint32 {
	h := hash32(uint32(this.prevByte), 3)
	return (h ^ uint32(this.cursor.bc)) & this.mask
}

// binIndex returns the base index, within this APM's slot, of bin i
// (i in [0, apmBins)).
func (this *APM) binIndex(slot uint32, i int) int {
	return int(slot)*apmBins + i
}

// Pred implements spec §4.6: clamp the inner stretched prediction to
// [-8, 7.5], scale by 2, find the nearest integer bin and its
// interpolation neighbour, and return the interpolated, re-stretched
// result.
func (this *APM) Pred() float64 {
	y := this.inner.Pred()
	if y < -8 {
		y = -8
	}
	if y > 7.5 {
		y = 7.5
	}

	s := y * 2
	iNearRaw := int(math.Round(s))
	frac := s - float64(iNearRaw)
	iOtherRaw := iNearRaw + 1
	if frac < 0 {
		iOtherRaw = iNearRaw - 1
	}

	iNear := clampBin(iNearRaw+16, 0, apmBins-1)
	iOther := clampBin(iOtherRaw+16, 0, apmBins-1)

	this.iNear, this.iOther = iNear, iOther
	this.t = 1 - absF(frac)

	slot := this.ctxKey()
	cNear := this.bins[this.binIndex(slot, iNear)]
	cOther := this.bins[this.binIndex(slot, iOther)]

	if cellCount(cNear) == 0 {
		cNear = packCell(0, fixedpoint.ProbToFixed24(fixedpoint.Squash(y)))
		this.bins[this.binIndex(slot, iNear)] = cNear
	}
	if cellCount(cOther) == 0 {
		cOther = packCell(0, fixedpoint.ProbToFixed24(fixedpoint.Squash(y)))
		this.bins[this.binIndex(slot, iOther)] = cOther
	}

	pNear := fixedpoint.Fixed24ToProb(cellProb(cNear))
	pOther := fixedpoint.Fixed24ToProb(cellProb(cOther))
	blended := this.t*pNear + (1-this.t)*pOther

	return fixedpoint.Stretch(fixedpoint.ClampProb(blended))
}

// Learn updates the near bin's counter with the damped rate from spec
// §4.6, then the partial-byte/history machinery, then recurses into the
// inner model.
func (this *APM) Learn(bit int) {
	slot := this.ctxKey()
	idx := this.binIndex(slot, this.iNear)
	this.bins[idx] = updateCell(this.bins[idx], bit, func(n uint32) float64 { return float64(n) + apmPrior })

	if completedByte, completed := this.cursor.advance(bit); completed {
		this.prevByte = completedByte
	}

	this.inner.Learn(bit)
}

func clampBin(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
