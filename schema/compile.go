// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package schema

import (
	"strconv"
	"strings"
)

// compileTagGroup turns a fully resolved TagGroup node (inheritance
// merged, XRefs substituted, arrays unrolled, names disambiguated)
// into the typed TagGroupDef the codec and migration engine consume.
func compileTagGroup(fourcc, name string, gen Generation, root *node) *TagGroupDef {
	def := &TagGroupDef{Fourcc: fourcc, Name: name, Generation: gen}
	layout := root.findLayout()
	if layout == nil {
		return def
	}
	def.Versions = compileLayout(layout)
	return def
}

// compileLayout compiles every FieldSet child of a Layout node,
// sorted by version ascending.
func compileLayout(layout *node) []*FieldSet {
	var out []*FieldSet
	for _, fsNode := range layout.fieldSets() {
		out = append(out, compileFieldSet(fsNode))
	}
	sortFieldSetsByVersion(out)
	return out
}

func sortFieldSetsByVersion(versions []*FieldSet) {
	for i := 1; i < len(versions); i++ {
		for j := i; j > 0 && versions[j-1].Version > versions[j].Version; j-- {
			versions[j-1], versions[j] = versions[j], versions[j-1]
		}
	}
}

func compileFieldSet(n *node) *FieldSet {
	version, _ := strconv.Atoi(firstAttr(n, "version"))
	fs := &FieldSet{Version: version}
	if latest, ok := n.attr("isLatest"); ok && latest != "" && latest != "false" {
		fs.IsLatest = true
	}
	offset := 0
	for _, child := range n.children {
		field := compileField(child)
		field.Offset = offset
		count := 1
		if c, ok := child.attr("count"); ok {
			if v, err := strconv.Atoi(c); err == nil {
				count = v
			}
		}
		offset += fieldByteSize(field) * count
		fs.Fields = append(fs.Fields, field)
		if count > 1 {
			for i := 1; i < count; i++ {
				dup := *field
				dup.Name = field.Name + "_" + strconv.Itoa(i)
				dup.Offset = field.Offset + fieldByteSize(field)*i
				fs.Fields = append(fs.Fields, &dup)
			}
		}
	}
	fs.Size, _ = strconv.Atoi(firstAttr(n, "sizeofValue"))
	if fs.Size == 0 {
		fs.Size = calculateFieldSetSize(n)
	}
	return fs
}

func fieldByteSize(f *Field) int {
	switch {
	case f.Kind == KindPad || f.Kind == KindSkip || f.Kind == KindUselessPad:
		return f.PadLength
	case f.Kind == KindStruct:
		if latest := f.Latest(); latest != nil {
			return latest.Size
		}
		return 0
	default:
		return FieldSize(f.Kind)
	}
}

func compileField(n *node) *Field {
	f := &Field{
		Name: firstAttr(n, "name"),
		Kind: FieldKind(n.tag),
	}
	if u, ok := n.attr("unsigned"); ok && u != "" && u != "false" {
		f.Unsigned = true
	}
	f.EndianOverride = firstAttr(n, "endianOverride")
	switch f.Kind {
	case KindPad, KindSkip, KindUselessPad:
		f.PadLength, _ = strconv.Atoi(firstAttr(n, "length"))
	case KindBlock:
		if m, ok := n.attr("maxElementCount"); ok {
			f.BlockMaxCount, _ = strconv.Atoi(m)
		}
		if layout := n.findLayout(); layout != nil {
			f.Layouts = compileLayout(layout)
		}
	case KindStruct:
		if layout := n.findLayout(); layout != nil {
			f.StructTag = firstAttr(layout, "tag")
			f.StructID = firstAttr(layout, "regolithID")
			f.Layouts = compileLayout(layout)
		}
		if f.StructID == "" {
			f.StructID = f.Name
		}
	case KindTagReference:
		for _, c := range n.children {
			if c.tag == "tag" && c.text != "" {
				f.RefGroup = c.text
				break
			}
		}
	case KindCharEnum, KindShortEnum, KindLongEnum:
		f.EnumOptions = compileOptionList(n, "Option")
	case KindByteFlags, KindWordFlags, KindLongFlags:
		f.FlagNames = compileOptionList(n, "Bit")
	}
	return f
}

func compileOptionList(n *node, childTag string) []string {
	var out []string
	for _, c := range n.children {
		if c.tag == childTag {
			out = append(out, firstAttr(c, "name"))
		}
	}
	return out
}

func firstAttr(n *node, key string) string {
	v, _ := n.attr(key)
	return v
}

// safeFilename maps a group alias to the definition file that
// declares it: the alias lower-cased, with an ".xml" extension.
func safeFilename(group string) string {
	return strings.ToLower(group) + ".xml"
}
