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

// Package coder implements the bitwise arithmetic coder: a 32-bit interval
// [low, high] that narrows on every encoded bit and renormalises a byte at
// a time whenever low and high agree on their top 8 bits.
//
// Unlike kanzi-go's BinaryEntropyEncoder/Decoder, which carries its own
// predictor and operates on a 64-bit interval with chunked bitstream
// framing, this coder is deliberately minimal: it takes a caller-supplied
// probability on every call and writes/reads a flat, unframed byte stream,
// per spec §4.1 and §6 ("Arithmetic coder output is a raw byte sequence
// with no framing, length prefix, or checksum").
package coder

import "math"

const top24 = 1 << 24

// midpoint computes the split point of [low, high] for a probability p
// (in [0, 1]) that the next bit is 1, per spec §4.1: "mid = low +
// floor(range * p)", saturated so mid never reaches high (which would
// make the bit-1 sub-interval empty). Both Encoder and Decoder call this
// single helper so the two sides can never compute different splits for
// the same (low, high, p).
func midpoint(low, high uint32, p float64) uint32 {
	rng := high - low
	mid := low + uint32(float64(rng)*p)
	if mid >= high {
		mid = high - 1
	}
	return mid
}

// Encoder is a bitwise arithmetic encoder over a 32-bit interval.
type Encoder struct {
	low, high uint32
	out       []byte
}

// NewEncoder creates an encoder with the interval initialised to the full
// 32-bit range, per spec §4.1.
func NewEncoder() *Encoder {
	return &Encoder{low: 0, high: math.MaxUint32}
}

// EncodeBit encodes one bit given p, the predicted probability that the
// bit is 1. p must already be squash()-ed into [0, 1]; Encoder does not
// stretch or squash anything itself.
func (this *Encoder) EncodeBit(bit int, p float64) {
	mid := midpoint(this.low, this.high, p)

	if bit != 0 {
		this.high = mid
	} else {
		this.low = mid + 1
	}

	// The interval is inclusive, so low == high (a bit coded at p=0 or
	// p=1 against the odds) is a one-value interval that renormalize
	// widens again; only low > high would be empty.
	if this.low > this.high {
		panic("coder: low > high after split, arithmetic coder invariant violated")
	}

	this.renormalize()
}

// renormalize emits completed bytes while the top 8 bits of low and high
// agree, per spec §4.1.
func (this *Encoder) renormalize() {
	for (this.high^this.low)&0xFF000000 == 0 {
		this.out = append(this.out, byte(this.high>>24))
		this.low <<= 8
		this.high = (this.high << 8) | 0xFF
	}
}

// Finish writes the single trailing byte needed to disambiguate the final
// interval and returns the complete encoded byte stream.
func (this *Encoder) Finish() []byte {
	this.out = append(this.out, byte(this.high>>24))
	return this.out
}

// Decoder is a bitwise arithmetic decoder, the mirror image of Encoder.
type Decoder struct {
	low, high uint32
	state     uint32
	in        []byte
	pos       int
}

// NewDecoder creates a decoder over buf, pre-loading the 32-bit state
// window from the first four bytes (missing bytes count as zero), per
// spec §4.1.
func NewDecoder(buf []byte) *Decoder {
	this := &Decoder{low: 0, high: math.MaxUint32, in: buf}

	for i := 0; i < 4; i++ {
		this.state = (this.state << 8) | uint32(this.nextByte())
	}

	return this
}

// nextByte returns the next input byte, or 0 past the end of the stream
// (spec §4.1: "EOF bytes are treated as zero").
func (this *Decoder) nextByte() byte {
	if this.pos >= len(this.in) {
		return 0
	}
	b := this.in[this.pos]
	this.pos++
	return b
}

// DecodeBit decodes one bit given p, the predicted probability that the
// bit is 1, using exactly the same split point the encoder used to
// produce this stream for an identical sequence of (bit, p) calls.
func (this *Decoder) DecodeBit(p float64) int {
	mid := midpoint(this.low, this.high, p)

	var bit int
	if this.state <= mid {
		bit = 1
		this.high = mid
	} else {
		bit = 0
		this.low = mid + 1
	}

	if this.low > this.high {
		panic("coder: low > high after split, arithmetic coder invariant violated")
	}

	this.renormalize()
	return bit
}

func (this *Decoder) renormalize() {
	for (this.high^this.low)&0xFF000000 == 0 {
		this.low <<= 8
		this.high = (this.high << 8) | 0xFF
		this.state = (this.state << 8) | uint32(this.nextByte())
	}
}
