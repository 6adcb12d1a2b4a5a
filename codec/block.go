// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// BlockHeaderSize is the modern 16-byte Block/Struct header size:
// a 4-byte fourcc name, a version, an element count and a
// per-element size, each a 4-byte int.
const BlockHeaderSize = 16

// LegacyBlockHeaderSize is the 12-byte header used by the two oldest
// engine tags: a 4-byte fourcc, a 2-byte version, a 2-byte element
// count and a 4-byte per-element size.
const LegacyBlockHeaderSize = 12

// BlockHeader describes one Block or Struct framing header: the
// field-set name it addresses, its schema version, how many elements
// follow, and the per-element byte size used to step over them.
type BlockHeader struct {
	Name    string
	Version int32
	Count   int32
	Size    int32
}

// blockHeaderSize returns the on-disk byte length of the framing
// header for the engine tag in force: 12 bytes for blam/ambl, 16
// otherwise.
func (ctx Context) blockHeaderSize() int {
	if ctx.Engine.LegacyHeader() {
		return LegacyBlockHeaderSize
	}
	return BlockHeaderSize
}

// ReadBlockHeader decodes one Block/Struct header from r using ctx's
// engine variant and byte order.
func ReadBlockHeader(r *bytes.Reader, ctx Context) (BlockHeader, error) {
	size := ctx.blockHeaderSize()
	raw := make([]byte, size)
	if _, err := io.ReadFull(r, raw); err != nil {
		return BlockHeader{}, fmt.Errorf("codec: reading block header: %w", err)
	}
	ord := order(ctx.BigEndian)

	name := string(raw[:4])
	if !ctx.BigEndian {
		name = reverseString(name)
	}

	var h BlockHeader
	h.Name = name
	if ctx.Engine.LegacyHeader() {
		h.Version = int32(int16(ord.Uint16(raw[4:6])))
		h.Count = int32(int16(ord.Uint16(raw[6:8])))
		h.Size = int32(ord.Uint32(raw[8:12]))
	} else {
		h.Version = int32(ord.Uint32(raw[4:8]))
		h.Count = int32(ord.Uint32(raw[8:12]))
		h.Size = int32(ord.Uint32(raw[12:16]))
	}
	return h, nil
}

// WriteBlockHeader encodes h using ctx's engine variant and byte
// order and returns the encoded bytes.
func WriteBlockHeader(h BlockHeader, ctx Context) []byte {
	ord := order(ctx.BigEndian)
	name := h.Name
	if !ctx.BigEndian {
		name = reverseString(name)
	}

	buf := new(bytes.Buffer)
	buf.WriteString(padString(name, 4))
	if ctx.Engine.LegacyHeader() {
		writeInt16(buf, ord, int16(h.Version))
		writeInt16(buf, ord, int16(h.Count))
		writeInt32(buf, ord, h.Size)
	} else {
		writeInt32(buf, ord, h.Version)
		writeInt32(buf, ord, h.Count)
		writeInt32(buf, ord, h.Size)
	}
	return buf.Bytes()
}

func writeInt16(buf *bytes.Buffer, ord binary.ByteOrder, v int16) {
	var b [2]byte
	ord.PutUint16(b[:], uint16(v))
	buf.Write(b[:])
}

func writeInt32(buf *bytes.Buffer, ord binary.ByteOrder, v int32) {
	var b [4]byte
	ord.PutUint32(b[:], uint32(v))
	buf.Write(b[:])
}

func padString(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	return s + string(make([]byte, n-len(s)))
}
