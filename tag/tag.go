// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package tag decodes and encodes whole tag files by walking a
// resolved schema.TagGroupDef over a codec.Context, producing and
// consuming a generic Tag value tree the migration engine and driver
// both operate on.
package tag

import (
	"errors"

	"github.com/tagforge/tagcodec/codec"
	"github.com/tagforge/tagcodec/schema"
)

// Error values surfaced at the file boundary. Everything below the
// file boundary (a short field inside a declared block size) is
// tolerated locally by yielding the field kind's default.
var (
	// ErrUnknownGroup marks a file whose header fourcc is not in the
	// group catalog.
	ErrUnknownGroup = errors.New("tag: unknown tag group")

	// ErrUnknownEngine marks a file whose engine tag is none of the
	// five recognized signatures.
	ErrUnknownEngine = errors.New("tag: unrecognized engine tag")

	// ErrNoFieldSet marks a group or block whose schema declares no
	// field set for the version a header names, or no latest field
	// set at all.
	ErrNoFieldSet = errors.New("tag: no matching field set")
)

// Tag is the decoded, in-memory form of one tag file: its header plus
// a Fields tree keyed by field name, with TagBlock_/TagBlockHeader_/
// StructHeader_ sidecar entries preserving every framing record the
// file carried (or, for gen1 files, the triple synthesized from the
// schema). Migrators inspect and rewrite the tree in place before a
// caller re-encodes it.
type Tag struct {
	Header codec.FileHeader
	Group  *schema.TagGroupDef
	Fields Fields

	// BigEndian records the byte order the tag was decoded with, so a
	// migrator synthesizing raw byte runs can match the file's order.
	BigEndian bool
}

// Fields is a field-name keyed bag of decoded values. A Block field's
// value is a []Fields (one entry per element); colors, bounds, enums,
// tag references and data blobs are nested Fields; preserved padding
// and string runs are []byte; everything else is a float64, int64,
// string or []float64.
type Fields map[string]interface{}

// Context is an alias for codec.Context so callers that only import
// tag don't also need to import codec for the common case.
type Context = codec.Context

// pickFieldSet selects the field set a framing header's version
// names: by declared version first, then positionally the way the
// original layout lists index their versions.
func pickFieldSet(sets []*schema.FieldSet, version int) *schema.FieldSet {
	for _, fs := range sets {
		if fs.Version == version {
			return fs
		}
	}
	if version >= 0 && version < len(sets) {
		return sets[version]
	}
	return nil
}

func latestFieldSet(sets []*schema.FieldSet) *schema.FieldSet {
	for _, fs := range sets {
		if fs.IsLatest {
			return fs
		}
	}
	if len(sets) == 0 {
		return nil
	}
	return sets[len(sets)-1]
}

// blockHeaderFields builds the (name, version, size) sidecar shape
// every TagBlockHeader_*/StructHeader_* entry takes.
func blockHeaderFields(name string, version, size int64) Fields {
	return Fields{"name": name, "version": version, "size": size}
}

// asFields normalizes a tree value to Fields, accepting the
// map[string]interface{} shape a JSON round-trip produces.
func asFields(v interface{}) (Fields, bool) {
	switch m := v.(type) {
	case Fields:
		return m, true
	case map[string]interface{}:
		return Fields(m), true
	default:
		return nil, false
	}
}

// asBlock normalizes a tree value to []Fields, accepting the
// []interface{} shape a JSON round-trip produces.
func asBlock(v interface{}) ([]Fields, bool) {
	switch b := v.(type) {
	case []Fields:
		return b, true
	case []interface{}:
		out := make([]Fields, 0, len(b))
		for _, e := range b {
			m, ok := asFields(e)
			if !ok {
				return nil, false
			}
			out = append(out, m)
		}
		return out, true
	default:
		return nil, false
	}
}

func asInt(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func asString(v interface{}) (string, []byte) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return "", s
	default:
		return "", nil
	}
}
