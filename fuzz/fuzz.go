// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package fuzz is a go-fuzz entry point for the tag decoder. It
// decodes arbitrary bytes against a small fixed schema and must never
// panic: every malformed-input guard the codec package carries (short
// reads, unknown versions, bad engine tags) exists because this
// target used to find the gaps.
package fuzz

import (
	"github.com/tagforge/tagcodec/codec"
	"github.com/tagforge/tagcodec/schema"
	"github.com/tagforge/tagcodec/tag"
)

// registry is a small, hand-built schema covering one scalar-heavy
// group and one group with a nested Block, enough surface for the
// fuzzer to exercise both the flat field-set path and the recursive
// Block decode path without depending on an external definitions
// directory.
var registry = buildRegistry()

func buildRegistry() map[string]*schema.TagGroupDef {
	scalarSet := &schema.FieldSet{
		Version:  0,
		IsLatest: true,
		Fields: []*schema.Field{
			{Name: "a", Kind: schema.KindLongInteger},
			{Name: "b", Kind: schema.KindReal},
			{Name: "c", Kind: schema.KindShortInteger},
			{Name: "pad", Kind: schema.KindPad, PadLength: 4},
		},
		Size: 14,
	}
	elementSet := &schema.FieldSet{
		Version:  0,
		IsLatest: true,
		Fields: []*schema.Field{
			{Name: "value", Kind: schema.KindLongInteger},
		},
		Size: 4,
	}
	blockSet := &schema.FieldSet{
		Version:  0,
		IsLatest: true,
		Fields: []*schema.Field{
			{Name: "children", Kind: schema.KindBlock, Layouts: []*schema.FieldSet{elementSet}},
		},
		Size: 12,
	}
	return map[string]*schema.TagGroupDef{
		"fzsc": {Fourcc: "fzsc", Name: "fuzz_scalar", Generation: schema.Gen2, Versions: []*schema.FieldSet{scalarSet}},
		"fzbl": {Fourcc: "fzbl", Name: "fuzz_block", Generation: schema.Gen2, Versions: []*schema.FieldSet{blockSet}},
	}
}

// Fuzz decodes data against registry under both byte orders, with
// every preserve flag on, and re-encodes each tag that decodes; a
// panic in either step reaches the fuzzer as a crash finding.
func Fuzz(data []byte) (score int) {
	for _, bigEndian := range []bool{false, true} {
		ctx := codec.Context{BigEndian: bigEndian, PreserveVersion: true, PreserveStrings: true, PreservePadding: true, GenerateChecksum: false}
		t, err := tag.Decode(data, registry, ctx)
		if err != nil || t == nil {
			continue
		}
		if _, err := tag.Encode(t, ctx); err == nil {
			score = 1
		}
	}
	return score
}
