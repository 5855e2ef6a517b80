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

// Package fixedpoint holds the small set of numeric conversions shared by
// every package in this module: the stretch/squash pair that lets models
// mix predictions in the logistic domain, the 24-bit fixed-point
// conversions between float64 probabilities and counter cells, and a
// 32-bit conversion (ProbToU32) that the coder itself does not use.
//
// Both the encoder and the decoder side of this module call exactly these
// functions to move between domains; nothing downstream is allowed to
// reimplement the arithmetic, since any divergence desynchronises the
// coder (spec invariant: decode at position i must perform the same
// learn/predict calls, with the same numbers, as encode did).
package fixedpoint

import "math"

// Prob24Max is the largest representable 24-bit probability, i.e. 2^24 - 1.
const Prob24Max = 1<<24 - 1

// Prob24Half is the default ("never touched") probability of a counter
// cell: one half, in 24-bit fixed point.
const Prob24Half = 1 << 23

// Stretch returns ln(p/(1-p)), the logit of p. p must be in (0, 1);
// callers are expected to clamp p away from the domain's open ends
// before calling (see ClampProb).
func Stretch(p float64) float64 {
	return math.Log(p / (1 - p))
}

// Squash returns 1/(1+exp(-x)), the logistic function and exact inverse
// of Stretch.
func Squash(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// ClampProb clamps p into (epsilon, 1-epsilon) so that Stretch never sees
// an input of exactly 0 or 1, which would otherwise produce +/-Inf and
// poison every prediction mixed with it.
func ClampProb(p float64) float64 {
	const epsilon = 1.0 / (1 << 24)
	if p < epsilon {
		return epsilon
	}
	if p > 1-epsilon {
		return 1 - epsilon
	}
	return p
}

// ProbToFixed24 converts a probability in [0, 1] to the counter cell's
// 24-bit unsigned fixed-point representation, per spec §3 ("Low 24 bits:
// unsigned probability p in [0, 2^24-1]").
func ProbToFixed24(p float64) uint32 {
	v := p * float64(Prob24Max)
	if v < 0 {
		return 0
	}
	if v > float64(Prob24Max) {
		return Prob24Max
	}
	return uint32(v)
}

// Fixed24ToProb maps a 24-bit cell probability back to [0, 1) as v / 2^24,
// so the default cell Prob24Half reads as exactly 1/2. It undoes
// ProbToFixed24 to within 2^-23.
func Fixed24ToProb(v uint32) float64 {
	return float64(v) / float64(Prob24Max+1)
}

// ProbToU32 converts a probability in [0, 1] to a 32-bit fixed-point
// value scaled to the full 32-bit range the coder's interval spans.
// coder.Encoder and coder.Decoder do not call it: they take the float64
// probability directly and split the interval in coder.midpoint, which
// both sides share.
func ProbToU32(p float64) uint32 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return math.MaxUint32
	}
	return uint32(p * float64(math.MaxUint32))
}
