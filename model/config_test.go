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
	"testing"
)

func TestBuildFullTree(t *testing.T) {
	spec := APMSpec(MixerSpec(
		OrderNSpec(0b00000001),
		OrderNSpec(0b00000011),
		WordSpec(),
	))

	tbl := mustTable(t, 16)
	m, err := spec.Build(tbl)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := m.(*APM); !ok {
		t.Fatalf("expected top-level model to be *APM, got %T", m)
	}
}

func TestBuildRejectsUnknownTag(t *testing.T) {
	spec := Spec{Type: "NotARealTag"}
	tbl := mustTable(t, 8)
	if _, err := spec.Build(tbl); err == nil {
		t.Fatalf("expected error for unknown tag")
	}
}

func TestBuildRejectsAPMWithoutInner(t *testing.T) {
	spec := Spec{Type: TagAPM}
	tbl := mustTable(t, 8)
	if _, err := spec.Build(tbl); err == nil {
		t.Fatalf("expected error for APM spec with no inner")
	}
}

func TestSpecJSONRoundTrip(t *testing.T) {
	spec := APMSpec(MixerSpec(
		OrderNSpec(0b10101010),
		WordSpec(),
	))

	data, err := json.Marshal(spec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got Spec
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.Type != spec.Type {
		t.Fatalf("Type mismatch: got %q want %q", got.Type, spec.Type)
	}
	if len(got.Inner.Models) != len(spec.Inner.Models) {
		t.Fatalf("Models length mismatch")
	}
	if got.Inner.Models[0].ByteMask != spec.Inner.Models[0].ByteMask {
		t.Fatalf("ByteMask mismatch: got %#b want %#b", got.Inner.Models[0].ByteMask, spec.Inner.Models[0].ByteMask)
	}
}

func TestByteMaskLiteralWireFormat(t *testing.T) {
	spec := OrderNSpec(0b00001111)
	data, err := json.Marshal(spec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var wire specWire
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("Unmarshal into wire: %v", err)
	}
	if wire.ByteMask != "0b00001111" {
		t.Fatalf("byte_mask literal = %q, want %q", wire.ByteMask, "0b00001111")
	}
}

func TestParseByteMaskLiteralRejectsGarbage(t *testing.T) {
	if _, err := parseByteMaskLiteral("not-a-mask"); err == nil {
		t.Fatalf("expected error for invalid byte_mask literal")
	}
}
