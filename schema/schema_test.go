// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package schema

import (
	"testing"
	"testing/fstest"
)

// gen2Fixture is a minimal definitions directory exercising the whole
// resolution pipeline: parent inheritance, a cross-referenced struct,
// array unrolling, unnamed-field disambiguation and size computation.
var gen2Fixture = fstest.MapFS{
	"object.xml": &fstest.MapFile{Data: []byte(`
<TagGroup name="object" group="obje" version="1">
  <Layout internalName="object_definition">
    <FieldSet version="0" sizeofValue="8" isLatest="true">
      <ShortInteger name="object type"/>
      <Pad length="2"/>
      <Real name="bounding radius"/>
    </FieldSet>
  </Layout>
</TagGroup>`)},
	"shared.xml": &fstest.MapFile{Data: []byte(`
<Definitions>
  <Struct regolithID="shared.mapping" name="function">
    <Layout tag="MAPP" regolithID="function">
      <FieldSet version="0" isLatest="true">
        <CharInteger name="type"/>
        <CharInteger name="flags"/>
      </FieldSet>
    </Layout>
  </Struct>
</Definitions>`)},
	"biped.xml": &fstest.MapFile{Data: []byte(`
<TagGroup name="biped" group="bipd" parent="obje" version="2">
  <Layout internalName="biped_definition">
    <FieldSet version="0" isLatest="true">
      <Real name="height standing"/>
      <StructXRef>shared.mapping</StructXRef>
      <Array count="2">
        <Real name="coeff"/>
      </Array>
      <Real/>
      <Block name="seats" maxElementCount="32">
        <Layout>
          <FieldSet version="0" isLatest="true">
            <Real name="yaw rate"/>
          </FieldSet>
        </Layout>
      </Block>
    </FieldSet>
  </Layout>
</TagGroup>`)},
}

func TestLoadGen2Resolution(t *testing.T) {
	defs, err := LoadGen2(gen2Fixture)
	if err != nil {
		t.Fatalf("LoadGen2 failed: %v", err)
	}
	def, ok := defs["bipd"]
	if !ok {
		t.Fatalf("biped group missing from registry; got %d groups", len(defs))
	}
	if def.Name != "biped" || def.Generation != Gen2 {
		t.Errorf("group identity = (%q, %v), want (biped, gen2)", def.Name, def.Generation)
	}

	fs := def.Current()
	if fs == nil || !fs.IsLatest {
		t.Fatal("biped must expose a latest field set")
	}

	wantKinds := []FieldKind{
		KindShortInteger, KindPad, KindReal, // inherited from object
		KindReal, KindStruct, KindReal, KindReal, KindReal, KindBlock,
	}
	if len(fs.Fields) != len(wantKinds) {
		t.Fatalf("field count = %d, want %d", len(fs.Fields), len(wantKinds))
	}
	for i, want := range wantKinds {
		if fs.Fields[i].Kind != want {
			t.Errorf("field %d kind = %q, want %q", i, fs.Fields[i].Kind, want)
		}
	}

	wantNames := []string{"object type", "height standing", "function", "coeff", "coeff_1", "Real_0", "seats"}
	var gotNames []string
	for _, f := range fs.Fields {
		if f.Kind == KindPad {
			continue
		}
		if f.Name == "bounding radius" {
			continue
		}
		gotNames = append(gotNames, f.Name)
	}
	for i, want := range wantNames {
		if i >= len(gotNames) || gotNames[i] != want {
			t.Errorf("resolved names = %v, want %v", gotNames, wantNames)
			break
		}
	}

	structField := fs.ByName("function")
	if structField == nil {
		t.Fatal("cross-referenced struct field missing")
	}
	if structField.StructTag != "MAPP" || structField.StructID != "function" {
		t.Errorf("struct framing = (%q, %q), want (MAPP, function)", structField.StructTag, structField.StructID)
	}
	if latest := structField.Latest(); latest == nil || latest.Size != 2 {
		t.Errorf("struct layout size = %v, want 2", latest)
	}

	blockField := fs.ByName("seats")
	if blockField == nil {
		t.Fatal("seats block missing")
	}
	if blockField.BlockMaxCount != 32 {
		t.Errorf("seats max count = %d, want 32", blockField.BlockMaxCount)
	}
	if latest := blockField.Latest(); latest == nil || latest.Size != 4 {
		t.Errorf("seats element size = %v, want 4", latest)
	}

	// inherited fields + own fields: 2+2+4 + 4+2+4+4+4+12
	if fs.Size != 38 {
		t.Errorf("field set size = %d, want 38", fs.Size)
	}
}

// Σ(field inline sizes) must equal every resolved field set's
// declared size, recursing through nested layouts.
func TestFieldSetSizeConsistency(t *testing.T) {
	defs, err := LoadGen2(gen2Fixture)
	if err != nil {
		t.Fatalf("LoadGen2 failed: %v", err)
	}
	for fourcc, def := range defs {
		for _, fs := range def.Versions {
			checkFieldSetSize(t, fourcc, fs)
		}
	}
}

func checkFieldSetSize(t *testing.T, owner string, fs *FieldSet) {
	t.Helper()
	sum := 0
	for _, f := range fs.Fields {
		switch {
		case IsPadKind(f.Kind):
			sum += f.PadLength
		case f.Kind == KindStruct:
			if latest := f.Latest(); latest != nil {
				sum += latest.Size
			}
		default:
			sum += FieldSize(f.Kind)
		}
		for _, nested := range f.Layouts {
			checkFieldSetSize(t, owner+"/"+f.Name, nested)
		}
	}
	if sum != fs.Size {
		t.Errorf("%s version %d: field sizes sum to %d, declared size is %d", owner, fs.Version, sum, fs.Size)
	}
}

func TestFieldNameUniqueness(t *testing.T) {
	defs, err := LoadGen2(gen2Fixture)
	if err != nil {
		t.Fatalf("LoadGen2 failed: %v", err)
	}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			t.Errorf("Validate(%s) failed: %v", def.Fourcc, err)
		}
	}
}

var gen1Fixture = fstest.MapFS{
	"physics.json": &fstest.MapFile{Data: []byte(`[
  {"type": "struct", "name": "point_phys", "fields": [
    {"type": "float", "name": "density"}
  ]},
  {"type": "bitfield", "name": "phys flags", "width": 16, "fields": [
    {"name": "locked"}
  ]},
  {"type": "struct", "name": "base", "fields": [
    {"type": "float", "name": "scale"}
  ]},
  {"type": "struct", "name": "phys_struct", "inherits": "Base", "fields": [
    {"type": "pad", "size": 4},
    {"type": "float", "name": "speed bounds", "bounds": true},
    {"type": "ColorRGBFloat", "name": "tint", "bounds": true},
    {"type": "Reflexive", "name": "points", "struct": "point_phys", "limit": 32},
    {"type": "TagReference", "name": "model", "groups": ["mode"]},
    {"type": "phys flags", "name": "flags"}
  ]},
  {"type": "group", "name": "physics", "struct": "phys_struct", "version": 4}
]`)},
}

func TestLoadGen1Translation(t *testing.T) {
	defs, err := LoadGen1(gen1Fixture)
	if err != nil {
		t.Fatalf("LoadGen1 failed: %v", err)
	}
	def, ok := defs["phys"]
	if !ok {
		t.Fatalf("physics group missing from registry; got %d groups", len(defs))
	}
	if def.Generation != Gen1 {
		t.Errorf("generation = %v, want gen1", def.Generation)
	}
	if len(def.Versions) != 1 || def.Versions[0].Version != 0 {
		t.Fatalf("gen1 groups carry exactly one version-0 field set, got %+v", def.Versions)
	}

	fs := def.Versions[0]
	wantFields := []struct {
		name string
		kind FieldKind
	}{
		{"scale", KindReal}, // inherited, case-insensitive lookup
		{"pad", KindPad},
		{"speed bounds", KindRealBounds},
		{"tint lower bound", KindRealRgbColor},
		{"tint upper bound", KindRealRgbColor},
		{"points", KindBlock},
		{"model", KindTagReference},
		{"flags", KindWordFlags},
	}
	if len(fs.Fields) != len(wantFields) {
		t.Fatalf("field count = %d, want %d", len(fs.Fields), len(wantFields))
	}
	for i, want := range wantFields {
		f := fs.Fields[i]
		if f.Name != want.name || f.Kind != want.kind {
			t.Errorf("field %d = (%q, %q), want (%q, %q)", i, f.Name, f.Kind, want.name, want.kind)
		}
	}

	// 4+4+8+12+12+12+16+2
	if fs.Size != 70 {
		t.Errorf("field set size = %d, want 70", fs.Size)
	}

	points := fs.ByName("points")
	if points.BlockMaxCount != 32 {
		t.Errorf("points limit = %d, want 32", points.BlockMaxCount)
	}
	if latest := points.Latest(); latest == nil || latest.Size != 4 {
		t.Errorf("points element size = %v, want 4", latest)
	}
	if pad := fs.Fields[1]; pad.PadLength != 4 {
		t.Errorf("pad length = %d, want 4", pad.PadLength)
	}
	if model := fs.ByName("model"); model.RefGroup != "mode" {
		t.Errorf("model group filter = %q, want %q", model.RefGroup, "mode")
	}
}

func TestVersionLookup(t *testing.T) {
	v0 := &FieldSet{Version: 0, Size: 8}
	v2 := &FieldSet{Version: 2, Size: 16, IsLatest: true}
	def := &TagGroupDef{Fourcc: "test", Versions: []*FieldSet{v0, v2}}

	if def.Current() != v2 {
		t.Error("Current must return the latest-marked set")
	}
	if def.Version(0) != v0 || def.Version(2) != v2 {
		t.Error("Version lookup by declared number failed")
	}
	if def.Version(1) != nil {
		t.Error("Version must return nil for an undeclared number")
	}

	f := &Field{Kind: KindBlock, Layouts: []*FieldSet{v0, v2}}
	if f.Layout(1) != v2 {
		t.Error("Layout must fall back to positional indexing")
	}
}
