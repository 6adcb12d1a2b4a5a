// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package migrate

import "github.com/tagforge/tagcodec/tag"

// headerVersion returns fields[key]'s "version" member, or -1 if key
// is absent, so a caller can tell "already migrated" apart from
// "block doesn't exist in this tag".
func headerVersion(fields tag.Fields, key string) int64 {
	h, ok := fields[key].(tag.Fields)
	if !ok {
		return -1
	}
	return asInt(h["version"])
}

// setHeader stamps fields[key] with a new (name, version, size)
// triple, the shape every TagBlockHeader_*/StructHeader_* sidecar
// takes.
func setHeader(fields tag.Fields, key, name string, version, size int64) {
	fields[key] = tag.Fields{"name": name, "version": version, "size": size}
}

// pop removes key from fields and returns its prior value, or def if
// key was absent.
func pop(fields tag.Fields, key string, def interface{}) interface{} {
	if v, ok := fields[key]; ok {
		delete(fields, key)
		return v
	}
	return def
}

// ensureBlock guarantees fields carries an (empty, if newly created)
// tag block named key along with its TagBlock_/TagBlockHeader_
// sidecars, the shape a migration that introduces a brand new child
// block must synthesize before appending elements to it.
func ensureBlock(fields tag.Fields, key string, headerSize int64) []tag.Fields {
	block, ok := fields[key].([]tag.Fields)
	if !ok {
		block = []tag.Fields{}
		fields[key] = block
	}
	if _, ok := fields["TagBlock_"+key]; !ok {
		fields["TagBlock_"+key] = tag.Fields{"unk1": int64(0), "unk2": int64(0)}
	}
	if _, ok := fields["TagBlockHeader_"+key]; !ok {
		fields["TagBlockHeader_"+key] = tag.Fields{"name": "tbfd", "version": int64(0), "size": headerSize}
	}
	return block
}

// appendBlock re-stores fields[key] with elem appended, since Go
// slices stored in an interface{} map value can't be grown in place.
func appendBlock(fields tag.Fields, key string, elem tag.Fields) {
	block, _ := fields[key].([]tag.Fields)
	fields[key] = append(block, elem)
}

// bounds builds the {Min, Max} shape a *Bounds field decodes to.
func bounds(min, max float64) tag.Fields {
	return tag.Fields{"Min": min, "Max": max}
}

// widenToBounds duplicates a lone scalar into both bounds endpoints,
// the "scalar to bounds widening" pattern several migrators apply
// when a field that used to be a single value becomes a range.
func widenToBounds(v float64) tag.Fields {
	return bounds(v, v)
}

// fieldsSlice returns the block stored under key as a []tag.Fields;
// an absent key or a value of any other type yields nil.
func fieldsSlice(fields tag.Fields, key string) []tag.Fields {
	block, _ := fields[key].([]tag.Fields)
	return block
}
