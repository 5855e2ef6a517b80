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

import "testing"

// constModel is a fixed-prediction stub used to test Mixer in isolation
// from real predictors.
type constModel struct {
	y float64
}

func (c *constModel) Pred() float64 { return c.y }
func (c *constModel) Learn(int)     {}

func TestMixerAveragesEquallyWeightedChildren(t *testing.T) {
	children := []Model{&constModel{y: 2}, &constModel{y: -2}}
	mx := NewMixer(children)

	y := mx.Pred()
	if y != 0 {
		t.Fatalf("expected an unweighted average of 2 and -2 to be 0, got %v", y)
	}
}

func TestMixerLearnMovesWeightTowardAccurateChild(t *testing.T) {
	good := &constModel{y: 3}  // always confidently right about bit=1
	bad := &constModel{y: -3}  // always confidently wrong about bit=1
	mx := NewMixer([]Model{good, bad})

	for i := 0; i < 500; i++ {
		mx.Pred()
		mx.Learn(1)
	}

	if mx.scalar[0] <= mx.scalar[1] {
		t.Fatalf("expected accurate child's scalar weight (%v) to exceed inaccurate child's (%v)",
			mx.scalar[0], mx.scalar[1])
	}
}

func TestMixerCellWeightsKeyedByContext(t *testing.T) {
	children := []Model{&constModel{y: 1}, &constModel{y: -1}}
	mx := NewMixer(children)

	mx.Pred()
	mx.Learn(1)

	if len(mx.cells) != 1 {
		t.Fatalf("expected exactly one context cell after one bit, got %d", len(mx.cells))
	}
}

func TestMixerRequiresAtLeastOneChildAtBuild(t *testing.T) {
	spec := MixerSpec()
	tbl := mustTable(t, 8)
	if _, err := spec.Build(tbl); err == nil {
		t.Fatalf("expected error building a Mixer spec with no children")
	}
}
