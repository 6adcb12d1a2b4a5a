// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package schema

import (
	"encoding/xml"
	"fmt"
	"io"
	"io/fs"
	"strings"
)

// LoadGen2 parses every ".xml" tag group definition file under dir,
// resolves inheritance, cross-references, array expansion and field
// naming, and compiles the result into a registry of TagGroupDef
// keyed by fourcc.
func LoadGen2(dir fs.FS) (map[string]*TagGroupDef, error) {
	tagDefs := map[string]*node{}
	regolithMap := map[string]*node{}

	err := fs.WalkDir(dir, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".xml") {
			return nil
		}
		f, err := dir.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		root, err := decodeXMLNode(f)
		if err != nil {
			return fmt.Errorf("schema: parsing %s: %w", path, err)
		}
		root.walk(func(n *node) {
			if id, ok := n.attr("regolithID"); ok && id != "" {
				regolithMap[id] = n
			}
		})
		if root.tag == "TagGroup" {
			if name := root.name(); name != "" {
				tagDefs[name] = root
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r := newResolver(tagDefs, regolithMap, Gen2Groups)
	merged := r.resolveAll()

	out := make(map[string]*TagGroupDef, len(merged))
	for name, root := range merged {
		fourcc, _ := root.attr("group")
		if fourcc == "" {
			fourcc = Gen2Extensions[name]
		}
		def := compileTagGroup(fourcc, name, Gen2, root)
		if err := def.Validate(); err != nil {
			return nil, err
		}
		out[fourcc] = def
	}
	return out, nil
}

// decodeXMLNode reads an entire XML document into the generic node
// tree, preserving attribute order-insensitively and element text.
func decodeXMLNode(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)
	var stack []*node
	var root *node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := newNode(t.Name.Local)
			for _, a := range t.Attr {
				n.setAttr(a.Name.Local, a.Value)
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			} else {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("schema: empty xml document")
	}
	return root, nil
}
