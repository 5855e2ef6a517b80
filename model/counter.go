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

// MaxCount is the saturation point for a counter cell's observation count,
// spec §6 default.
const MaxCount = 255

// cell is the packed 32-bit counter record from spec §3: high 8 bits are
// a saturating observation count, low 24 bits are an unsigned probability
// that the next bit observed under this context will be 1. The zero value
// is *not* a valid cell (it would claim p=0); newly touched slots must be
// initialised via defaultCell.
type cell = uint32

const probMask = fixedpoint.Prob24Max

func defaultCell() cell {
	return fixedpoint.Prob24Half
}

func cellCount(c cell) uint32 {
	return c >> 24
}

func cellProb(c cell) uint32 {
	return c & probMask
}

func packCell(count, prob uint32) cell {
	if count > MaxCount {
		count = MaxCount
	}
	if prob > probMask {
		prob = probMask
	}
	return (count << 24) | prob
}

// learnRate implements spec §4.3's counter update shaping:
// count^0.72 + 0.19, the divisor of the error term.
func learnRate(count uint32) float64 {
	return math.Pow(float64(count), 0.72) + 0.19
}

// updateCell applies spec §4.3's learn rule: prob += 2^24 * (bit -
// prob/2^24) / rate, integer-truncated, saturating to the valid 24-bit
// range. rateOf is supplied by the caller so the APM (spec §4.6, a flat
// 1/(count+31.5) rate) and the order-N/word predictors (spec §4.3, the
// count^0.72+0.19 rate above) can share this one update routine; it is
// evaluated against the post-increment, saturated count.
func updateCell(c cell, bit int, rateOf func(newCount uint32) float64) cell {
	newCount := cellCount(c)
	if newCount < MaxCount {
		newCount++
	}

	prob := cellProb(c)
	p := fixedpoint.Fixed24ToProb(prob)
	delta := int64(float64(fixedpoint.Prob24Max+1) * (float64(bit) - p) / rateOf(newCount))
	signed := int64(prob) + delta

	return packCell(newCount, clampProb24(signed))
}

func clampProb24(signed int64) uint32 {
	if signed < 0 {
		return 0
	}
	if signed > fixedpoint.Prob24Max {
		return fixedpoint.Prob24Max
	}
	return uint32(signed)
}

// predFromCell returns the stretched prediction carried by a cell, per
// spec §4.3: stretch(cell.prob / 2^24).
func predFromCell(c cell) float64 {
	p := fixedpoint.ClampProb(fixedpoint.Fixed24ToProb(cellProb(c)))
	return fixedpoint.Stretch(p)
}
