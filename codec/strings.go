// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package codec

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// utf8Lenient substitutes U+FFFD for invalid byte sequences instead
// of failing, the same tolerance the files' mixed-provenance string
// fields require (tool-written names are occasionally latin-1).
var utf8Lenient = unicode.UTF8.NewDecoder()

// DecodeLenientString decodes raw as UTF-8, replacing invalid
// sequences, then trims the nul terminator and space padding.
func DecodeLenientString(raw []byte) string {
	decoded, err := utf8Lenient.Bytes(raw)
	if err != nil {
		decoded = raw
	}
	if i := bytes.IndexByte(decoded, 0); i >= 0 {
		decoded = decoded[:i]
	}
	return strings.Trim(string(decoded), " ")
}

// ReadVariableString reads a string field of length bytes (plus one
// terminator run when appendTerminator is set) from r. When
// ctx.PreserveStrings is on, the raw bytes come back instead of a
// decoded value so a later write round-trips them byte-for-byte; the
// decoded string is empty in that case.
//
// terminatorLength counts terminator bytes already inside length
// (the fixed-width String/LongString shape); appendTerminator marks
// them as following length instead (the TagReference path shape).
func ReadVariableString(r *bytes.Reader, length int, ctx Context, terminatorLength int, appendTerminator bool) (string, []byte, error) {
	if length <= 0 {
		return "", nil, nil
	}
	total := length
	if appendTerminator {
		total += terminatorLength
	}
	raw, err := readExact(r, total)
	if err != nil {
		return "", nil, err
	}
	if ctx.PreserveStrings {
		return "", raw, nil
	}
	content := raw
	if appendTerminator {
		content = raw[:length]
	} else if terminatorLength > 0 {
		content = raw[:length-terminatorLength]
	}
	return DecodeLenientString(content), nil, nil
}

// WriteVariableString encodes value (or, when ctx.PreserveStrings is
// on and raw is non-nil, the preserved raw bytes) into buf using the
// same length discipline as ReadVariableString. An empty value under
// a fixed length still emits the full zero run; an empty value under
// a variable length emits nothing.
func WriteVariableString(buf *bytes.Buffer, value string, raw []byte, fixedLength int, ctx Context, terminatorLength int, appendTerminator bool) {
	total := fixedLength
	if appendTerminator {
		total += terminatorLength
	}
	if ctx.PreserveStrings && raw != nil {
		buf.Write(fitBytesToLength(raw, total))
		return
	}
	if fixedLength <= 0 {
		return
	}
	if value == "" && appendTerminator {
		// a zero-length variable string carries no terminator either
		return
	}
	out := make([]byte, total)
	limit := total - terminatorLength
	if limit < 0 {
		limit = 0
	}
	copy(out[:limit], value)
	buf.Write(out)
}

func fitBytesToLength(data []byte, length int) []byte {
	out := make([]byte, length)
	copy(out, data)
	return out
}
