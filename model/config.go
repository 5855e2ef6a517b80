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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/webcmix/webcmix"
)

// Model is a local alias for webcmix.Model, so every file in this
// package can refer to the shared predictor interface without importing
// webcmix individually.
type Model = webcmix.Model

// Tag discriminants for the model description interchange format, spec
// §4.7/§6.
const (
	TagOrderN = "NOrderByte"
	TagWord   = "Word"
	TagMixer  = "Mixer"
	TagAPM    = "AdaptiveProbabilityMap"
)

// Spec is the declarative, algebraic description of a model tree from
// spec §4.7: "Order-N(byte_mask), Word, Mixer(children), APM(inner)".
// It is designed to round-trip through JSON using the tagged-discriminant
// wire shape in spec §6 so a decoder-emitting collaborator outside this
// module can consume the exact same tree this module built its encoder
// or decoder from.
type Spec struct {
	Type string `json:"type"`

	// ByteMask is only meaningful when Type == TagOrderN.
	ByteMask uint8 `json:"-"`

	// Models is only meaningful when Type == TagMixer.
	Models []Spec `json:"models,omitempty"`

	// Inner is only meaningful when Type == TagAPM. A pointer so the
	// zero Spec (Type == "") is distinguishable from "no inner model".
	Inner *Spec `json:"inner,omitempty"`

	// APMPower overrides DefaultAPMHashPower when Type == TagAPM and
	// this is non-zero.
	APMPower uint `json:"apm_power,omitempty"`
}

// OrderNSpec builds a leaf Order-N spec for the given byte mask.
func OrderNSpec(byteMask uint8) Spec {
	return Spec{Type: TagOrderN, ByteMask: byteMask}
}

// WordSpec builds a leaf Word spec.
func WordSpec() Spec {
	return Spec{Type: TagWord}
}

// MixerSpec builds a Mixer over the given children.
func MixerSpec(children ...Spec) Spec {
	return Spec{Type: TagMixer, Models: children}
}

// APMSpec wraps inner in a secondary estimator, using DefaultAPMHashPower.
func APMSpec(inner Spec) Spec {
	return Spec{Type: TagAPM, Inner: &inner}
}

// Build recursively constructs the model tree described by s, threading
// table into every Order-N/Word leaf so they share one hash table per
// spec §4.7/§5.
func (s Spec) Build(table *Table) (webcmix.Model, error) {
	switch s.Type {
	case TagOrderN:
		return NewOrderN(table, s.ByteMask), nil

	case TagWord:
		return NewWord(table), nil

	case TagMixer:
		if len(s.Models) == 0 {
			return nil, errors.New("model: Mixer spec must have at least one child")
		}
		children := make([]webcmix.Model, len(s.Models))
		for i, childSpec := range s.Models {
			child, err := childSpec.Build(table)
			if err != nil {
				return nil, errors.Wrapf(err, "model: building mixer child %d", i)
			}
			children[i] = child
		}
		return NewMixer(children), nil

	case TagAPM:
		if s.Inner == nil {
			return nil, errors.New("model: AdaptiveProbabilityMap spec requires an inner model")
		}
		inner, err := s.Inner.Build(table)
		if err != nil {
			return nil, errors.Wrap(err, "model: building APM inner model")
		}
		power := s.APMPower
		if power == 0 {
			power = DefaultAPMHashPower
		}
		return NewAPM(inner, power), nil

	default:
		return nil, errors.Errorf("model: unknown model tag %q", s.Type)
	}
}

// byteMaskLiteral renders a byte_mask as the "0b<8 bits>" wire literal
// from spec §6.
func byteMaskLiteral(m uint8) string {
	return "0b" + fmt.Sprintf("%08b", m)
}

func parseByteMaskLiteral(s string) (uint8, error) {
	s = strings.TrimPrefix(s, "0b")
	v, err := strconv.ParseUint(s, 2, 8)
	if err != nil {
		return 0, errors.Wrapf(err, "model: invalid byte_mask literal %q", s)
	}
	return uint8(v), nil
}

// specWire is the exact JSON shape named in spec §6:
// {"type": "NOrderByte", "byte_mask": "0b<8 bits>"} etc.
type specWire struct {
	Type     string     `json:"type"`
	ByteMask string     `json:"byte_mask,omitempty"`
	Models   []specWire `json:"models,omitempty"`
	Inner    *specWire  `json:"inner,omitempty"`
	APMPower uint       `json:"apm_power,omitempty"`
}

// MarshalJSON renders Spec using the tagged-discriminant wire shape of
// spec §6, with ByteMask rendered as a "0b..." literal.
func (s Spec) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.toWire())
}

func (s Spec) toWire() specWire {
	w := specWire{Type: s.Type, APMPower: s.APMPower}

	if s.Type == TagOrderN {
		w.ByteMask = byteMaskLiteral(s.ByteMask)
	}

	for _, child := range s.Models {
		w.Models = append(w.Models, child.toWire())
	}

	if s.Inner != nil {
		inner := s.Inner.toWire()
		w.Inner = &inner
	}

	return w
}

// UnmarshalJSON parses the wire shape of spec §6 back into a Spec.
func (s *Spec) UnmarshalJSON(data []byte) error {
	var w specWire
	if err := json.Unmarshal(data, &w); err != nil {
		return errors.Wrap(err, "model: decoding Spec JSON")
	}
	parsed, err := w.toSpec()
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (w specWire) toSpec() (Spec, error) {
	s := Spec{Type: w.Type, APMPower: w.APMPower}

	switch w.Type {
	case TagOrderN:
		if w.ByteMask == "" {
			return Spec{}, errors.New("model: NOrderByte spec missing byte_mask")
		}
		mask, err := parseByteMaskLiteral(w.ByteMask)
		if err != nil {
			return Spec{}, err
		}
		s.ByteMask = mask

	case TagWord:
		// no fields

	case TagMixer:
		for i, childWire := range w.Models {
			child, err := childWire.toSpec()
			if err != nil {
				return Spec{}, errors.Wrapf(err, "model: decoding mixer child %d", i)
			}
			s.Models = append(s.Models, child)
		}

	case TagAPM:
		if w.Inner == nil {
			return Spec{}, errors.New("model: AdaptiveProbabilityMap spec missing inner")
		}
		inner, err := w.Inner.toSpec()
		if err != nil {
			return Spec{}, errors.Wrap(err, "model: decoding APM inner")
		}
		s.Inner = &inner

	default:
		return Spec{}, errors.Errorf("model: unknown model tag %q", w.Type)
	}

	return s, nil
}
