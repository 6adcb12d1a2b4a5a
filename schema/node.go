// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package schema

// node is the mutable intermediate representation both front-ends
// ingest into before the shared back-end resolves inheritance,
// cross-references, array unrolling and field naming. It mirrors an
// xml.etree.ElementTree element closely enough that the gen2 XML
// front-end can populate it directly from parsed XML, while the gen1
// JSON front-end synthesizes the same shape from its legacy records.
type node struct {
	tag      string
	attrs    map[string]string
	text     string
	children []*node
}

func newNode(tag string) *node {
	return &node{tag: tag, attrs: map[string]string{}}
}

func (n *node) attr(key string) (string, bool) {
	v, ok := n.attrs[key]
	return v, ok
}

func (n *node) setAttr(key, value string) {
	n.attrs[key] = value
}

func (n *node) name() string {
	v, _ := n.attr("name")
	return v
}

func (n *node) clone() *node {
	c := &node{tag: n.tag, text: n.text, attrs: make(map[string]string, len(n.attrs))}
	for k, v := range n.attrs {
		c.attrs[k] = v
	}
	c.children = make([]*node, len(n.children))
	for i, ch := range n.children {
		c.children[i] = ch.clone()
	}
	return c
}

// findLayout returns the first direct "Layout" child, if any.
func (n *node) findLayout() *node {
	for _, c := range n.children {
		if c.tag == "Layout" {
			return c
		}
	}
	return nil
}

// fieldSets returns the direct "FieldSet" children of a Layout node.
func (n *node) fieldSets() []*node {
	var out []*node
	for _, c := range n.children {
		if c.tag == "FieldSet" {
			out = append(out, c)
		}
	}
	return out
}

// walk calls fn for n and every descendant, depth-first.
func (n *node) walk(fn func(*node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}
