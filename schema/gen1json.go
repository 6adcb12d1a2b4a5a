// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
)

// invaderKeyConversion maps a gen1 JSON field's "type" (or bitfield
// width key) to the canonical FieldKind tag it compiles to.
var invaderKeyConversion = map[string]string{
	"Angle":              "Angle",
	"ColorARGBFloat":     "RealArgbColor",
	"ColorARGBInt":       "ArgbColor",
	"ColorRGBFloat":      "RealRgbColor",
	"Data":               "Data",
	"Euler2D":            "RealEulerAngles2D",
	"ID":                 "LongInteger",
	"Index":              "ShortInteger",
	"Rectangle":          "Rectangle2D",
	"Reflexive":          "Block",
	"String32":           "String",
	"TagID":              "LongInteger",
	"TagReference":       "TagReference",
	"Vector2D":           "RealPoint2D",
	"Vector2DInt":        "Point2D",
	"Vector3D":           "RealVector3D",
	"bitfield16":         "WordFlags",
	"bitfield32":         "LongFlags",
	"bitfield8":          "ByteFlags",
	"editor_section":     "Explanation",
	"enum":               "ShortEnum",
	"float":              "Real",
	"int16":              "ShortInteger",
	"int32":              "LongInteger",
	"int8":               "CharInteger",
	"pad":                "Pad",
	"struct":             "Struct",
	"uint16":             "ShortInteger",
	"uint32":             "LongInteger",
	"uint8":              "CharInteger",
	"TagGroup":           "Tag",
	"Address":            "LongInteger",
	"Quaternion":         "RealQuaternion",
	"Plane3D":            "RealPlane3D",
	"Plane2D":            "RealPlane2D",
	"Euler3D":            "RealEulerAngles3D",
	"Matrix3x3":          "Matrix3x3",
	"FileData":           "Data",
	"CompressedVector3D": "LongInteger",
	"CompressedFloat":    "ShortInteger",
	"BSPVertexData":      "Data",
	"UTF16String":        "Data",
	"RealBounds":         "RealBounds",
	"AngleBounds":        "AngleBounds",
	"ShortBounds":        "ShortBounds",
}

// invaderField is one entry of a gen1 struct's "fields" array, or a
// standalone bitfield/enum/struct record. The JSON schema is loosely
// typed (string markers interleave with objects), hence RawMessage.
type invaderField struct {
	Type           string          `json:"type"`
	Name           string          `json:"name"`
	Heading        string          `json:"heading"`
	Count          int             `json:"count"`
	Size           int             `json:"size"`
	Limit          int             `json:"limit"`
	Struct         string          `json:"struct"`
	Bounds         bool            `json:"bounds"`
	Groups         []string        `json:"groups"`
	CacheOnly      json.RawMessage `json:"cache_only"`
	EndianOverride string          `json:"endian_override"`
}

// invaderRecord is one top-level entry of a gen1 JSON definition
// file: either a "struct"/"bitfield"/"enum" record (addressable by
// Name from other records) or a "group" record naming a tag group.
type invaderRecord struct {
	Type     string         `json:"type"`
	Name     string         `json:"name"`
	Struct   string         `json:"struct"`
	Width    int            `json:"width"`
	Version  int            `json:"version"`
	Inherits string         `json:"inherits"`
	Fields   []invaderField `json:"fields"`
}

// LoadGen1 parses every ".json" struct/group definition file under
// dir, resolves struct inheritance and reflexive (Block) nesting into
// the shared node IR, then runs it through the same merge/XRef/array/
// naming pipeline as LoadGen2 before compiling to TagGroupDef.
func LoadGen1(dir fs.FS) (map[string]*TagGroupDef, error) {
	entries, err := fs.ReadDir(dir, ".")
	if err != nil {
		return nil, err
	}

	rootLookup := map[string]invaderRecord{}
	var groups []invaderRecord

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		f, err := dir.Open(e.Name())
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		var records []invaderRecord
		if err := json.Unmarshal(data, &records); err != nil {
			continue // non-fatal, a definition file can hold unrelated JSON
		}
		for _, rec := range records {
			if rec.Name != "" {
				rootLookup[rec.Name] = rec
			}
			if rec.Type == "group" {
				groups = append(groups, rec)
			}
		}
	}

	tagDefs := map[string]*node{}
	regolithMap := map[string]*node{}

	for _, g := range groups {
		fourcc := Gen1Extensions[g.Name]
		if fourcc == "" {
			fourcc = "unknown"
		}
		root := newNode("TagGroup")
		root.setAttr("group", fourcc)
		root.setAttr("name", g.Name)
		root.setAttr("version", strconv.Itoa(g.Version))

		layout := newNode("Layout")
		root.children = append(root.children, layout)
		fieldSet := newNode("FieldSet")
		fieldSet.setAttr("version", "0")
		fieldSet.setAttr("sizeofValue", "0")
		fieldSet.setAttr("isLatest", "true")
		layout.children = append(layout.children, fieldSet)

		structDef, ok := rootLookup[g.Struct]
		if !ok {
			logger.Warnf("schema: group %q: struct %q not found, skipping", g.Name, g.Struct)
			continue
		}
		fields := resolveInheritedFields(structDef, rootLookup)
		addFields(fields, fieldSet, rootLookup)
		calculateFieldSetSize(fieldSet)

		tagDefs[g.Name] = root
	}

	for _, root := range tagDefs {
		root.walk(func(n *node) {
			if id, ok := n.attr("regolithID"); ok && id != "" {
				regolithMap[id] = n
			}
		})
	}

	r := newResolver(tagDefs, regolithMap, Gen1Groups)
	merged := r.resolveAll()

	out := make(map[string]*TagGroupDef, len(merged))
	for name, root := range merged {
		fourcc, _ := root.attr("group")
		def := compileTagGroup(fourcc, name, Gen1, root)
		if err := def.Validate(); err != nil {
			return nil, err
		}
		out[fourcc] = def
	}
	return out, nil
}

// resolveInheritedFields walks an "inherits" chain to produce the
// full, ordered field list a struct record contributes, base fields
// first.
func resolveInheritedFields(def invaderRecord, rootLookup map[string]invaderRecord) []invaderField {
	var fields []invaderField
	if def.Inherits != "" {
		inherited, ok := rootLookup[def.Inherits]
		if !ok {
			for k, v := range rootLookup {
				if strings.EqualFold(k, def.Inherits) {
					inherited, ok = v, true
					break
				}
			}
		}
		if ok {
			fields = append(fields, resolveInheritedFields(inherited, rootLookup)...)
		} else {
			logger.Warnf("schema: inheritance target %q not found, continuing without it", def.Inherits)
		}
	}
	fields = append(fields, def.Fields...)
	return fields
}

// addFields translates a resolved invader field list into node
// children of parent, expanding pad/reflexive/tag-reference/bounds
// fields into their canonical shape.
func addFields(fields []invaderField, parent *node, rootLookup map[string]invaderRecord) {
	for _, field := range fields {
		count := field.Count
		if count == 0 {
			count = 1
		}
		fieldName := field.Name
		if fieldName == "" {
			fieldName = field.Heading
		}
		if fieldName == "" {
			fieldName = field.Type
		}

		switch field.Type {
		case "editor_section":
			for i := 0; i < count; i++ {
				n := newNode("Explanation")
				n.setAttr("name", fieldName)
				parent.children = append(parent.children, n)
			}
			continue
		case "pad":
			for i := 0; i < count; i++ {
				n := newNode("Pad")
				n.setAttr("name", fieldName)
				if field.Size != 0 {
					n.setAttr("length", strconv.Itoa(field.Size))
				}
				parent.children = append(parent.children, n)
			}
			continue
		case "Reflexive":
			for i := 0; i < count; i++ {
				n := newNode("Block")
				n.setAttr("name", fieldName)
				if field.Limit != 0 {
					n.setAttr("maxElementCount", strconv.Itoa(field.Limit))
				}
				if refStruct, ok := rootLookup[field.Struct]; ok {
					innerLayout := newNode("Layout")
					n.children = append(n.children, innerLayout)
					innerFS := newNode("FieldSet")
					innerFS.setAttr("version", "0")
					innerFS.setAttr("sizeofValue", "0")
					innerFS.setAttr("isLatest", "true")
					innerLayout.children = append(innerLayout.children, innerFS)
					addFields(resolveInheritedFields(refStruct, rootLookup), innerFS, rootLookup)
					calculateFieldSetSize(innerFS)
				} else {
					logger.Warnf("schema: struct %q for field %q not found, continuing without it", field.Struct, fieldName)
				}
				parent.children = append(parent.children, n)
			}
			continue
		case "TagReference":
			for i := 0; i < count; i++ {
				n := newNode("TagReference")
				n.setAttr("name", fieldName)
				if len(field.Groups) == 1 {
					tagNode := newNode("tag")
					tagNode.text = field.Groups[0]
					n.children = append(n.children, tagNode)
				} else if len(field.Groups) == 0 {
					n.children = append(n.children, newNode("tag"))
				}
				parent.children = append(parent.children, n)
			}
			continue
		}

		if field.Bounds {
			addBoundsField(field, fieldName, count, parent)
			continue
		}

		if refStruct, ok := rootLookup[field.Type]; ok {
			key := refStruct.Type
			if key == "bitfield" {
				key = fmt.Sprintf("bitfield%d", refStruct.Width)
			}
			xmlTag := invaderKeyConversion[key]
			if xmlTag == "" {
				continue
			}
			for i := 0; i < count; i++ {
				n := newNode(xmlTag)
				n.setAttr("name", fieldName)
				if xmlTag == "Struct" {
					innerLayout := newNode("Layout")
					n.children = append(n.children, innerLayout)
					innerFS := newNode("FieldSet")
					innerFS.setAttr("version", "0")
					innerFS.setAttr("sizeofValue", "0")
					innerFS.setAttr("isLatest", "true")
					innerLayout.children = append(innerLayout.children, innerFS)
					addFields(resolveInheritedFields(refStruct, rootLookup), innerFS, rootLookup)
					calculateFieldSetSize(innerFS)
				}
				parent.children = append(parent.children, n)
			}
			continue
		}

		key := field.Type
		xmlTag := invaderKeyConversion[key]
		if xmlTag == "" {
			logger.Warnf("schema: unknown legacy kind %q for field %q, skipping", field.Type, fieldName)
			continue
		}
		for i := 0; i < count; i++ {
			n := newNode(xmlTag)
			n.setAttr("name", fieldName)
			if field.Type == "uint8" || field.Type == "uint16" || field.Type == "uint32" {
				n.setAttr("unsigned", "true")
			}
			parent.children = append(parent.children, n)
		}
	}
}

func addBoundsField(field invaderField, fieldName string, count int, parent *node) {
	var key string
	switch field.Type {
	case "float":
		key = "RealBounds"
	case "Angle":
		key = "AngleBounds"
	case "int16":
		key = "ShortBounds"
	case "ColorRGBFloat", "ColorARGBFloat":
		xmlTag := invaderKeyConversion[field.Type]
		if xmlTag == "" {
			return
		}
		for i := 0; i < count; i++ {
			for _, suffix := range []string{" lower bound", " upper bound"} {
				n := newNode(xmlTag)
				n.setAttr("name", fieldName+suffix)
				parent.children = append(parent.children, n)
			}
		}
		return
	default:
		return
	}
	xmlTag := invaderKeyConversion[key]
	if xmlTag == "" {
		return
	}
	for i := 0; i < count; i++ {
		n := newNode(xmlTag)
		n.setAttr("name", fieldName)
		parent.children = append(parent.children, n)
	}
}
