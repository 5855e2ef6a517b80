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

// Package webcmix defines the top level interface shared by every
// predictor, mixer and secondary estimator in the context-mixing
// compression core.
//
// Implementations live in sub-packages: internal/fixedpoint (stretch/squash
// and fixed-point conversions), coder (the arithmetic coder), model (the
// predictor/mixer/APM tree and its shared hash table) and session (the
// encode/decode/warm-up bit loop).
package webcmix

// Model predicts, and then learns from, a single bit at a time. Every
// leaf predictor, the logistic mixer and the secondary estimator (APM)
// satisfy this interface, so they compose into an arbitrarily deep tree:
// a Mixer holds a slice of Model children, an APM wraps a single inner
// Model.
//
// Pred and Learn are always called in strict alternation for a given bit
// position: Pred once to obtain the stretched (logit-domain) prediction
// fed to the arithmetic coder, then Learn once the true bit is known.
// Implementations rely on this ordering to cache per-prediction state
// (e.g. the mixer's last inputs) between the two calls.
type Model interface {
	// Pred returns the stretched (logit-domain, i.e. ln(p/(1-p))) prediction
	// that the next bit will be 1.
	Pred() float64

	// Learn updates internal state given the bit that was actually observed.
	Learn(bit int)
}
