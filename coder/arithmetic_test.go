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

package coder

import (
	"testing"

	"pgregory.net/rapid"
)

func bytesToBits(data []byte) []int {
	bits := make([]int, 0, len(data)*8)
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bits = append(bits, int((b>>uint(i))&1))
		}
	}
	return bits
}

func bitsToBytes(bits []int) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit != 0 {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}

func TestFixedProbabilityRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		input []byte
		p     float64
	}{
		{"hello world, p=0.5", []byte("hello world"), 0.5},
		{"all zero, p=1.0", []byte{0, 0, 0, 0}, 1.0},
		{"all zero, p=0.0", []byte{0, 0, 0, 0}, 0.0},
		{"empty, p=0.5", []byte{}, 0.5},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			bits := bytesToBits(c.input)
			enc := NewEncoder()
			for _, b := range bits {
				enc.EncodeBit(b, c.p)
			}
			encoded := enc.Finish()

			dec := NewDecoder(encoded)
			decoded := make([]int, len(bits))
			for i := range decoded {
				decoded[i] = dec.DecodeBit(c.p)
			}

			got := bitsToBytes(decoded)
			if string(got) != string(c.input) {
				t.Fatalf("round trip mismatch: got %v, want %v", got, c.input)
			}
		})
	}
}

// TestSaturationLength exercises spec §8's saturation property: a stream
// of all-1 bits at p=1.0 (or all-0 at p=0.0) should encode to very close
// to the information-theoretic minimum rather than ceil(n/8) * several
// bytes of slack.
func TestSaturationLength(t *testing.T) {
	n := 4 * 8
	enc := NewEncoder()
	for i := 0; i < n; i++ {
		enc.EncodeBit(1, 1.0)
	}
	out := enc.Finish()

	maxLen := (n+7)/8 + 5
	if len(out) > maxLen {
		t.Fatalf("saturation: encoded length %d exceeds bound %d", len(out), maxLen)
	}

	dec := NewDecoder(out)
	for i := 0; i < n; i++ {
		if bit := dec.DecodeBit(1.0); bit != 1 {
			t.Fatalf("bit %d: got %d, want 1", i, bit)
		}
	}
}

// TestCoderInvariant checks spec §3's "low < high at all times; after
// renormalisation (high ^ low) >= 2^24" across a long pseudo-random
// stream of (bit, p) pairs.
func TestCoderInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 2000).Draw(t, "n")
		enc := NewEncoder()

		for i := 0; i < n; i++ {
			bit := rapid.IntRange(0, 1).Draw(t, "bit")
			p := rapid.Float64Range(0.0001, 0.9999).Draw(t, "p")
			enc.EncodeBit(bit, p)

			if enc.low >= enc.high {
				t.Fatalf("invariant violated: low=%d high=%d", enc.low, enc.high)
			}
			if (enc.high ^ enc.low) < top24 {
				t.Fatalf("renormalisation invariant violated: low=%d high=%d", enc.low, enc.high)
			}
		}
	})
}

// TestRandomRoundTrip exercises the general round-trip property from
// spec §8 with varying, data-dependent probabilities rather than a fixed
// p, closer to how a real predictor drives the coder.
func TestRandomRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOfN(rapid.Byte(), 0, 512).Draw(t, "data")
		bits := bytesToBits(data)

		enc := NewEncoder()
		probs := make([]float64, len(bits))
		ctx := 1.0
		for i, b := range bits {
			// A simple deterministic pseudo-predictor: probability drifts
			// based on a running context so p varies across the stream,
			// without needing a real model in this package's tests.
			p := fixedpointClamp(0.5 + 0.4*ctx*float64(2*b-1))
			probs[i] = p
			enc.EncodeBit(b, p)
			ctx = ctx*0.9 + 0.1*float64(2*b-1)
		}
		encoded := enc.Finish()

		dec := NewDecoder(encoded)
		for i, want := range bits {
			got := dec.DecodeBit(probs[i])
			if got != want {
				t.Fatalf("bit %d: got %d, want %d", i, got, want)
			}
		}
	})
}

func fixedpointClamp(p float64) float64 {
	if p < 0.001 {
		return 0.001
	}
	if p > 0.999 {
		return 0.999
	}
	return p
}
