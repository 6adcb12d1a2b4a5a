// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package codec

import (
	"bytes"
	"reflect"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		bigEndian bool
		header    FileHeader
	}{
		{
			name:      "little endian gen2 latest",
			bigEndian: false,
			header: FileHeader{
				Unk1:         0,
				TagType:      2,
				Name:         "objects\\characters\\masterchief",
				TagGroup:     "bipd",
				Checksum:     0xDEADBEEF,
				DataOffset:   64,
				DataLength:   988,
				Version:      1,
				PluginHandle: -1,
				Engine:       EngineBLM,
			},
		},
		{
			name:      "big endian gen1",
			bigEndian: true,
			header: FileHeader{
				TagType:      2,
				Name:         "camera\\track",
				TagGroup:     "trak",
				DataLength:   48,
				PluginHandle: -1,
				Engine:       EngineBlam,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := WriteHeader(tt.header, tt.bigEndian)
			if err != nil {
				t.Fatalf("WriteHeader failed: %v", err)
			}
			if len(raw) != HeaderSize {
				t.Fatalf("header length = %d, want %d", len(raw), HeaderSize)
			}
			got, err := ReadHeader(raw, tt.bigEndian)
			if err != nil {
				t.Fatalf("ReadHeader failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.header) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, tt.header)
			}
		})
	}
}

// Fourccs are stored reversed on little-endian files; the raw bytes
// must show the reversal even though the decoded header never does.
func TestHeaderFourccReversal(t *testing.T) {
	h := FileHeader{TagGroup: "bipd", Engine: EngineBLM}
	raw, err := WriteHeader(h, false)
	if err != nil {
		t.Fatalf("WriteHeader failed: %v", err)
	}
	if got := string(raw[36:40]); got != "dpib" {
		t.Errorf("little-endian tag group bytes = %q, want %q", got, "dpib")
	}
	if got := string(raw[60:64]); got != "!MLB" {
		t.Errorf("little-endian engine tag bytes = %q, want %q", got, "!MLB")
	}

	raw, err = WriteHeader(h, true)
	if err != nil {
		t.Fatalf("WriteHeader failed: %v", err)
	}
	if got := string(raw[36:40]); got != "bipd" {
		t.Errorf("big-endian tag group bytes = %q, want %q", got, "bipd")
	}
}

func TestEngineTagPredicates(t *testing.T) {
	tests := []struct {
		tag     EngineTag
		header  bool
		strings bool
		padding bool
	}{
		{EngineBlam, true, true, true},
		{EngineAmbl, true, true, true},
		{EngineLAMB, false, true, true},
		{EngineMLAB, false, false, true},
		{EngineBLM, false, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.tag), func(t *testing.T) {
			if !tt.tag.Valid() {
				t.Fatalf("%q must be a valid engine tag", tt.tag)
			}
			if got := tt.tag.LegacyHeader(); got != tt.header {
				t.Errorf("LegacyHeader() = %v, want %v", got, tt.header)
			}
			if got := tt.tag.LegacyStrings(); got != tt.strings {
				t.Errorf("LegacyStrings() = %v, want %v", got, tt.strings)
			}
			if got := tt.tag.LegacyPadding(); got != tt.padding {
				t.Errorf("LegacyPadding() = %v, want %v", got, tt.padding)
			}
		})
	}
	if EngineTag("plop").Valid() {
		t.Error("unknown engine tag must not validate")
	}
}

func TestBlockHeaderRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		ctx    Context
		header BlockHeader
		size   int
	}{
		{
			name:   "modern little endian",
			ctx:    Context{Engine: EngineBLM},
			header: BlockHeader{Name: "tbfd", Version: 2, Count: 5, Size: 140},
			size:   BlockHeaderSize,
		},
		{
			name:   "legacy big endian",
			ctx:    Context{Engine: EngineAmbl, BigEndian: true},
			header: BlockHeader{Name: "tbfd", Version: 1, Count: 3, Size: 64},
			size:   LegacyBlockHeaderSize,
		},
		{
			name:   "struct fourcc",
			ctx:    Context{Engine: EngineBLM},
			header: BlockHeader{Name: "MAPP", Version: 1, Count: 1, Size: 12},
			size:   BlockHeaderSize,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := WriteBlockHeader(tt.header, tt.ctx)
			if len(raw) != tt.size {
				t.Fatalf("encoded size = %d, want %d", len(raw), tt.size)
			}
			got, err := ReadBlockHeader(bytes.NewReader(raw), tt.ctx)
			if err != nil {
				t.Fatalf("ReadBlockHeader failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.header) {
				t.Errorf("round trip mismatch: got %+v, want %+v", got, tt.header)
			}
		})
	}
}

// The file checksum is a reflected CRC-32 (poly 0xEDB88320) seeded
// with 0xFFFFFFFF and, unlike the usual formulation, returned without
// the final complement.
func TestChecksum(t *testing.T) {
	// crc32.ChecksumIEEE("123456789") is the classic 0xCBF43926
	// check value; this format stores its complement.
	if got := Checksum([]byte("123456789")); got != 0x340BC6D9 {
		t.Errorf("Checksum = %#x, want %#x", got, 0x340BC6D9)
	}
	if got := Checksum(nil); got != 0xFFFFFFFF {
		t.Errorf("Checksum(empty) = %#x, want seed %#x", got, 0xFFFFFFFF)
	}
}
