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

// Package stream implements the packed-artifact header from spec §6:
// packed := uint32_be(original_size) || coder_bytes. This is the only
// framing the core imposes on its own output; everything else (HTML/JS
// glue, further DEFLATE passes) is an out-of-scope external collaborator
// concern.
package stream

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// HeaderLen is the size, in bytes, of the packed artifact's length
// header.
const HeaderLen = 4

// Pack prepends a 4-byte big-endian original_size header to coderBytes,
// per spec §6.
func Pack(originalSize uint32, coderBytes []byte) []byte {
	out := make([]byte, HeaderLen+len(coderBytes))
	binary.BigEndian.PutUint32(out, originalSize)
	copy(out[HeaderLen:], coderBytes)
	return out
}

// Unpack splits a packed artifact back into its original_size header and
// the remaining arithmetic-coder byte stream. It returns a
// github.com/pkg/errors-wrapped error if packed is shorter than
// HeaderLen, since a truncated artifact is a caller mistake (spec §7(a)),
// not an internal invariant violation.
func Unpack(packed []byte) (originalSize uint32, coderBytes []byte, err error) {
	if len(packed) < HeaderLen {
		return 0, nil, errors.Errorf("stream: packed artifact too short: got %d bytes, need at least %d", len(packed), HeaderLen)
	}

	originalSize = binary.BigEndian.Uint32(packed[:HeaderLen])
	coderBytes = packed[HeaderLen:]
	return originalSize, coderBytes, nil
}
