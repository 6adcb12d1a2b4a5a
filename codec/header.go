// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// HeaderSize is the fixed byte length of a tag file's leading header.
const HeaderSize = 64

// FileHeader is the 64-byte header every tag file opens with: an
// unknown word, flags, a tag-type byte, a 32-byte display name, the
// 4-byte tag-group fourcc, a checksum, the resource data window, a
// schema version and the 4-byte engine tag that selects the framing
// variant the rest of the file uses.
type FileHeader struct {
	Unk1         int16
	Flags        int8
	TagType      int8
	Name         string
	TagGroup     string
	Checksum     uint32
	DataOffset   int32
	DataLength   int32
	Unk2         int32
	Version      int16
	Destination  int8
	PluginHandle int8
	Engine       EngineTag
}

type rawHeader struct {
	Unk1         int16
	Flags        int8
	TagType      int8
	Name         [32]byte
	TagGroup     [4]byte
	Checksum     uint32
	DataOffset   int32
	DataLength   int32
	Unk2         int32
	Version      int16
	Destination  int8
	PluginHandle int8
	Engine       [4]byte
}

func order(bigEndian bool) binary.ByteOrder {
	if bigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// ReadHeader decodes a FileHeader from the first HeaderSize bytes of
// data. The tag-group and engine-tag fourccs are stored reversed on a
// little-endian file; ReadHeader undoes the reversal so the caller
// always gets them in natural reading order regardless of byte order.
func ReadHeader(data []byte, bigEndian bool) (FileHeader, error) {
	if len(data) < HeaderSize {
		return FileHeader{}, fmt.Errorf("codec: header needs %d bytes, got %d", HeaderSize, len(data))
	}
	var raw rawHeader
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), order(bigEndian), &raw); err != nil {
		return FileHeader{}, err
	}

	tagGroup := string(raw.TagGroup[:])
	engine := string(raw.Engine[:])
	if !bigEndian {
		tagGroup = reverseString(tagGroup)
		engine = reverseString(engine)
	}

	h := FileHeader{
		Unk1:         raw.Unk1,
		Flags:        raw.Flags,
		TagType:      raw.TagType,
		Name:         cleanFixedString(raw.Name[:]),
		TagGroup:     tagGroup,
		Checksum:     raw.Checksum,
		DataOffset:   raw.DataOffset,
		DataLength:   raw.DataLength,
		Unk2:         raw.Unk2,
		Version:      raw.Version,
		Destination:  raw.Destination,
		PluginHandle: raw.PluginHandle,
		Engine:       EngineTag(engine),
	}
	return h, nil
}

// WriteHeader encodes h into HeaderSize bytes.
func WriteHeader(h FileHeader, bigEndian bool) ([]byte, error) {
	tagGroup := h.TagGroup
	engine := string(h.Engine)
	if !bigEndian {
		tagGroup = reverseString(tagGroup)
		engine = reverseString(engine)
	}

	var raw rawHeader
	raw.Unk1 = h.Unk1
	raw.Flags = h.Flags
	raw.TagType = h.TagType
	copy(raw.Name[:], padFixedString(h.Name, 32))
	copy(raw.TagGroup[:], tagGroup)
	raw.Checksum = h.Checksum
	raw.DataOffset = h.DataOffset
	raw.DataLength = h.DataLength
	raw.Unk2 = h.Unk2
	raw.Version = h.Version
	raw.Destination = h.Destination
	raw.PluginHandle = h.PluginHandle
	copy(raw.Engine[:], engine)

	buf := new(bytes.Buffer)
	buf.Grow(HeaderSize)
	if err := binary.Write(buf, order(bigEndian), &raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Valid reports whether h's tag group is known to groups and its
// engine tag is one of the five recognized signatures.
func (h FileHeader) Valid(groups map[string]string) bool {
	if _, ok := groups[h.TagGroup]; !ok {
		return false
	}
	return h.Engine.Valid()
}

func reverseString(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

func cleanFixedString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return strings.Trim(string(b), " ")
}

func padFixedString(s string, size int) []byte {
	out := make([]byte, size)
	copy(out, s)
	return out
}
