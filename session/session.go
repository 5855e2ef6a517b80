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

// Package session drives the bit loop of spec §4.8: for every bit, ask
// the model tree for a stretched prediction, squash it, hand it to the
// arithmetic coder together with the true bit (encode) or let the coder
// decide the bit (decode), then tell the model tree what the bit was.
//
// A Session owns exactly one model tree and therefore exactly one
// encode-or-decode pass; per spec §5, nothing here is safe for
// concurrent use, and there is no cancellation or timeout because
// nothing in the bit loop ever blocks on external I/O beyond the single
// io.Writer/io.Reader call at encode-finish or decode-construction time.
package session

import (
	"io"

	"github.com/webcmix/webcmix"
	"github.com/webcmix/webcmix/coder"
	"github.com/webcmix/webcmix/internal/fixedpoint"
)

// Session drives a single model tree through an encode, decode or
// warm-up pass.
type Session struct {
	model webcmix.Model
}

// New creates a Session over the given model tree. The tree must not be
// shared by more than one Session (spec §5: "the model tree and its hash
// table are exclusively owned by one encode or decode session").
func New(m webcmix.Model) *Session {
	return &Session{model: m}
}

// EncodeSection encodes data per spec §4.8: for each byte, for bit index
// 7 down to 0, ask the model for a prediction, squash it, encode the true
// bit, then let the model learn it. The coder is finished and its output
// written to w.
func (s *Session) EncodeSection(w io.Writer, data []byte) error {
	enc := coder.NewEncoder()

	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bit := int((b >> uint(i)) & 1)
			y := s.model.Pred()
			p := fixedpoint.Squash(y)
			enc.EncodeBit(bit, p)
			s.model.Learn(bit)
		}
	}

	out := enc.Finish()
	_, err := w.Write(out)
	return err
}

// Decode mirrors EncodeSection: it reads the entire remaining contents
// of r (the caller-supplied, already-buffered arithmetic-coder byte
// stream, per spec §1's "out of scope: file I/O"), then reconstructs
// exactly size bytes by letting the coder decide each bit and feeding it
// back to the model.
func (s *Session) Decode(r io.Reader, size int) ([]byte, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	dec := coder.NewDecoder(buf)
	out := make([]byte, size)

	for i := 0; i < size; i++ {
		var b byte
		for bitIdx := 7; bitIdx >= 0; bitIdx-- {
			y := s.model.Pred()
			p := fixedpoint.Squash(y)
			bit := dec.DecodeBit(p)
			s.model.Learn(bit)
			b = (b << 1) | byte(bit)
		}
		out[i] = b
	}

	return out, nil
}

// WarmUp drives the model tree through data exactly as EncodeSection
// would, except that no arithmetic coder is involved at all: both the
// encode side and the decode side must call WarmUp with identical bytes
// to seed identical statistics before a subsequent EncodeSection/Decode
// pair, per spec §4.8.
func (s *Session) WarmUp(data []byte) {
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bit := int((b >> uint(i)) & 1)
			s.model.Pred()
			s.model.Learn(bit)
		}
	}
}
