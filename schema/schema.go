// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package schema builds the canonical, in-memory description of a tag
// group's on-disk layout from either generation's definition files,
// resolving inheritance, cross-references and array expansion into a
// single resolved form the codec and migration engine key off of.
package schema

import "fmt"

// Generation identifies which engine generation a TagGroupDef was
// parsed from. The two generations use unrelated definition-file
// formats (JSON records vs. XML documents) but resolve into the same
// canonical shape.
type Generation int

const (
	// GenUnknown is the zero value and never appears on a resolved def.
	GenUnknown Generation = iota
	// Gen1 is the blam-era JSON-defined tag format.
	Gen1
	// Gen2 is the ambl/LAMB/MLAB/BLM!-era XML-defined tag format.
	Gen2
)

func (g Generation) String() string {
	switch g {
	case Gen1:
		return "gen1"
	case Gen2:
		return "gen2"
	default:
		return "unknown"
	}
}

// TagGroupDef is the resolved, canonical description of one tag
// group: its fourcc, its human alias, and every FieldSet version its
// Layout declares, from oldest to current.
type TagGroupDef struct {
	Fourcc     string
	Name       string
	Generation Generation
	Versions   []*FieldSet
}

// Current returns the FieldSet carrying the IsLatest marker, the
// shape new tag data is encoded in, falling back to the
// highest-versioned one when no marker was declared.
func (t *TagGroupDef) Current() *FieldSet {
	return latestOf(t.Versions)
}

// Version returns the FieldSet whose Version equals v, or nil.
func (t *TagGroupDef) Version(v int) *FieldSet {
	return versionOf(t.Versions, v)
}

func latestOf(sets []*FieldSet) *FieldSet {
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

func versionOf(sets []*FieldSet, v int) *FieldSet {
	for _, fs := range sets {
		if fs.Version == v {
			return fs
		}
	}
	return nil
}

// FieldSet is one versioned layout of a tag group or nested Block
// element: an ordered list of Fields plus the byte size that list
// folds into once fully resolved. Exactly one FieldSet per layout
// carries the IsLatest marker.
type FieldSet struct {
	Name     string
	Version  int
	IsLatest bool
	Fields   []*Field
	Size     int
}

// ByName returns the field named name, or nil.
func (fs *FieldSet) ByName(name string) *Field {
	for _, f := range fs.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Field is one leaf or composite member of a FieldSet, tagged by Kind.
// Only the attributes relevant to Kind are populated; the rest stay
// at their zero value.
type Field struct {
	Name string
	Kind FieldKind

	// Offset is this field's byte offset within its owning FieldSet,
	// computed during resolution.
	Offset int

	// Unsigned switches integer fields to their unsigned decode.
	Unsigned bool

	// EndianOverride forces this one field's byte order: "<" little,
	// ">" big, "" for the file-wide order.
	EndianOverride string

	// PadLength is the explicit byte length of Pad/Skip/UselessPad
	// fields, taken from the definition's "length" attribute rather
	// than the fixed size table.
	PadLength int

	// EnumOptions lists the option labels of CharEnum/ShortEnum/
	// LongEnum fields, index-addressable by the stored integer value.
	EnumOptions []string

	// FlagNames labels individual bits of ByteFlags/WordFlags/
	// LongFlags fields, least-significant bit first.
	FlagNames []string

	// Layouts holds every versioned FieldSet a Block's element or a
	// Struct's inline record declares, sorted by version ascending.
	Layouts []*FieldSet

	// StructTag is a Struct field's framing fourcc (the name its
	// 16-byte header opens with, e.g. "MAPP", "chgr"); StructID is
	// the addressable id its StructHeader_ sidecar is keyed by.
	StructTag string
	StructID  string

	// RefGroup optionally restricts a TagReference field to one
	// target group's fourcc. Empty means any group.
	RefGroup string

	// BlockMaxCount bounds the element count Block encodes, 0 meaning
	// unbounded.
	BlockMaxCount int

	// XRefID is the raw cross-reference id this field's Struct or
	// Block element was declared by reference to, before resolution
	// substitutes the resolved Layouts. Empty once resolved.
	XRefID string
}

// Latest returns the field's IsLatest-marked (or newest) nested
// FieldSet, or nil for a leaf field.
func (f *Field) Latest() *FieldSet {
	return latestOf(f.Layouts)
}

// Layout returns the nested FieldSet whose Version equals v, falling
// back to positional indexing for layouts whose versions are not
// declared 0..n in order.
func (f *Field) Layout(v int) *FieldSet {
	if fs := versionOf(f.Layouts, v); fs != nil {
		return fs
	}
	if v >= 0 && v < len(f.Layouts) {
		return f.Layouts[v]
	}
	return nil
}

// IsComposite reports whether the field nests its own FieldSet.
func (f *Field) IsComposite() bool {
	return f.Kind == KindBlock || f.Kind == KindStruct
}

// Resolved reports whether the definition this schema was built from
// has been fully merged: every Struct/Block XRefID substituted with
// its Element, every field given a computed Offset, and every
// FieldSet given a computed Size.
func (t *TagGroupDef) Resolved() bool {
	for _, fs := range t.Versions {
		if !fieldSetResolved(fs) {
			return false
		}
	}
	return true
}

func fieldSetResolved(fs *FieldSet) bool {
	if fs.Size == 0 && len(fs.Fields) != 0 {
		return false
	}
	for _, f := range fs.Fields {
		if f.XRefID != "" {
			return false
		}
		if f.IsComposite() {
			if len(f.Layouts) == 0 {
				return false
			}
			for _, nested := range f.Layouts {
				if !fieldSetResolved(nested) {
					return false
				}
			}
		}
	}
	return true
}

// Validate checks structural invariants that must hold once a
// TagGroupDef is resolved: unique field names per FieldSet and
// monotonically increasing version numbers.
func (t *TagGroupDef) Validate() error {
	if len(t.Versions) == 0 {
		return fmt.Errorf("schema: %s: no field sets declared", t.Fourcc)
	}
	lastVersion := -1
	for _, fs := range t.Versions {
		if fs.Version <= lastVersion {
			return fmt.Errorf("schema: %s: version %d does not increase on prior version %d", t.Fourcc, fs.Version, lastVersion)
		}
		lastVersion = fs.Version
		if err := validateFieldSet(fs); err != nil {
			return fmt.Errorf("schema: %s: %w", t.Fourcc, err)
		}
	}
	return nil
}

func validateFieldSet(fs *FieldSet) error {
	seen := make(map[string]bool, len(fs.Fields))
	for _, f := range fs.Fields {
		if f.Name == "" {
			continue
		}
		if seen[f.Name] {
			return fmt.Errorf("fieldset %q: duplicate field name %q", fs.Name, f.Name)
		}
		seen[f.Name] = true
		if f.IsComposite() {
			for _, nested := range f.Layouts {
				if err := validateFieldSet(nested); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
