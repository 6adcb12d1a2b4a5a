// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package schema

import (
	"fmt"
	"sort"
	"strconv"
)

// whitelistTags is the set of node tags that count as addressable
// fields during name disambiguation.
var whitelistTags = map[string]bool{
	"Angle": true, "AngleBounds": true, "ArgbColor": true, "Block": true,
	"ByteFlags": true, "CharBlockIndex": true, "CharEnum": true,
	"CharInteger": true, "CustomLongBlockIndex": true, "CustomShortBlockIndex": true,
	"Data": true, "LongBlockIndex": true, "LongEnum": true, "LongFlags": true,
	"LongInteger": true, "LongString": true, "OldStringId": true, "Pad": true,
	"Point2D": true, "Ptr": true, "Real": true, "RealArgbColor": true,
	"RealBounds": true, "RealEulerAngles2D": true, "RealEulerAngles3D": true,
	"RealFraction": true, "RealFractionBounds": true, "RealPlane2D": true,
	"RealPlane3D": true, "RealPoint2D": true, "RealPoint3D": true,
	"RealQuaternion": true, "RealRgbColor": true, "RealVector2D": true,
	"RealVector3D": true, "Rectangle2D": true, "RgbColor": true,
	"ShortBlockIndex": true, "ShortBounds": true, "ShortEnum": true,
	"ShortInteger": true, "Skip": true, "String": true, "StringId": true,
	"Struct": true, "Tag": true, "TagReference": true, "UselessPad": true,
	"VertexBuffer": true, "WordFlags": true,
}

// resolver carries the registry-wide context a single generation's
// merge pass needs: the raw TagGroup nodes keyed by name, and the
// regolithID cross-reference table collected while scanning them.
type resolver struct {
	tagDefs     map[string]*node
	regolithMap map[string]*node
	tagGroups   map[string]string // fourcc -> alias, for parent lookup
	mergedCache map[string]*node
}

func newResolver(tagDefs map[string]*node, regolithMap map[string]*node, tagGroups map[string]string) *resolver {
	return &resolver{
		tagDefs:     tagDefs,
		regolithMap: regolithMap,
		tagGroups:   tagGroups,
		mergedCache: map[string]*node{},
	}
}

// resolveAll merges every tag group's inheritance chain, resolves
// cross-references, disambiguates field names and unrolls arrays.
// Naming runs twice: once right after XRef resolution so it sees the
// substituted structs' real names, and again after arrays unroll new,
// unnamed copies.
func (r *resolver) resolveAll() map[string]*node {
	for name := range r.tagDefs {
		r.mergeTagGroup(name)
	}
	r.fixNamesInMerged()
	for _, merged := range r.mergedCache {
		unravelArrays(merged)
	}
	r.fixNamesInMerged()
	return r.mergedCache
}

func (r *resolver) mergeTagGroup(tagName string) *node {
	if merged, ok := r.mergedCache[tagName]; ok {
		return merged
	}
	tagElem, ok := r.tagDefs[tagName]
	if !ok {
		panic(fmt.Sprintf("schema: tag group %q not found", tagName))
	}
	merged := tagElem.clone()
	r.mergedCache[tagName] = merged // break recursive cycles defensively

	if parentAttr, ok := tagElem.attr("parent"); ok {
		parentName, known := r.tagGroups[parentAttr]
		_, defined := r.tagDefs[parentName]
		if known && defined {
			parentMerged := r.mergeTagGroup(parentName)
			childLayout := merged.findLayout()
			parentLayout := parentMerged.findLayout()
			if childLayout != nil && parentLayout != nil {
				mergeLayouts(parentLayout, childLayout)
			}
		} else {
			logger.Warnf("schema: %s: inheritance target %q not found, continuing without it", tagName, parentAttr)
		}
	}

	r.mergedCache[tagName] = merged
	return merged
}

// mergeLayouts prepends the parent FieldSet's fields onto the
// matching (by version, falling back to the parent's latest version)
// child FieldSet, so an inherited struct's fields come first.
func mergeLayouts(parentLayout, childLayout *node) {
	parentSets := map[string]*node{}
	var parentVersions []int
	for _, fs := range parentLayout.fieldSets() {
		v, _ := fs.attr("version")
		parentSets[v] = fs
		if n, err := strconv.Atoi(v); err == nil {
			parentVersions = append(parentVersions, n)
		}
	}
	latestParent := ""
	if len(parentVersions) > 0 {
		sort.Ints(parentVersions)
		latestParent = strconv.Itoa(parentVersions[len(parentVersions)-1])
	}

	for _, childFS := range childLayout.fieldSets() {
		v, _ := childFS.attr("version")
		parentFS := parentSets[v]
		if parentFS == nil && latestParent != "" {
			parentFS = parentSets[latestParent]
		}
		if parentFS == nil {
			continue
		}
		prefix := make([]*node, len(parentFS.children))
		for i, c := range parentFS.children {
			prefix[i] = c.clone()
		}
		childFS.children = append(prefix, childFS.children...)
	}
}

// resolveXRefs substitutes every "*XRef" node with a deep copy of the
// regolith-tagged node it points to, recursing into the substitution
// so chained references resolve fully.
func resolveXRefs(n *node, regolithMap map[string]*node) {
	for i := 0; i < len(n.children); i++ {
		child := n.children[i]
		resolveXRefs(child, regolithMap)
		if len(child.tag) > 3 && child.tag[len(child.tag)-3:] == "Ref" && hasSuffix(child.tag, "XRef") && child.text != "" {
			key := trimSpace(child.text)
			replacement, ok := regolithMap[key]
			if !ok {
				continue
			}
			clone := replacement.clone()
			n.children[i] = clone
			resolveXRefs(clone, regolithMap)
		}
	}
}

func hasSuffix(s, suf string) bool {
	return len(s) >= len(suf) && s[len(s)-len(suf):] == suf
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

// unravelArrays replaces every "Array" node carrying a "count"
// attribute with count repetitions of its children, depth-first.
func unravelArrays(n *node) {
	out := make([]*node, 0, len(n.children))
	for _, child := range n.children {
		unravelArrays(child)
		if child.tag == "Array" {
			if countStr, ok := child.attr("count"); ok {
				count, err := strconv.Atoi(countStr)
				if err == nil {
					for i := 0; i < count; i++ {
						for _, gc := range child.children {
							out = append(out, gc.clone())
						}
					}
					continue
				}
			}
		}
		out = append(out, child)
	}
	n.children = out
}

// fixNamesInMerged resolves XRefs then disambiguates field names
// across every merged tag group's FieldSets.
func (r *resolver) fixNamesInMerged() {
	for _, merged := range r.mergedCache {
		resolveXRefs(merged, r.regolithMap)
	}
	for _, merged := range r.mergedCache {
		merged.walk(func(n *node) {
			if n.tag != "TagGroup" && n.tag != "Block" {
				return
			}
			layout := n.findLayout()
			if layout == nil {
				return
			}
			fieldSets := layout.fieldSets()
			if len(fieldSets) > 0 {
				fixFieldSetNames(fieldSets)
			}
		})
	}
}

// collectFlattenedFields returns the addressable field nodes of a
// FieldSet in traversal order, flattening Struct/Array children so
// naming collisions are detected across the fully expanded shape.
func collectFlattenedFields(fieldSet *node) []*node {
	var out []*node
	for _, child := range fieldSet.children {
		if child.tag == "Struct" || child.tag == "Array" {
			if layout := child.findLayout(); layout != nil {
				for _, nested := range layout.fieldSets() {
					out = append(out, collectFlattenedFields(nested)...)
				}
				continue
			}
		}
		out = append(out, child)
	}
	return out
}

// fixFieldSetNames assigns a stable, unique name to every field of
// every FieldSet version, falling back to the same-index field from
// an earlier version when a name is missing so identity survives
// across versions, and disambiguating collisions with a numeric
// suffix otherwise.
func fixFieldSetNames(fieldSets []*node) {
	flattened := make([][]*node, len(fieldSets))
	for i, fs := range fieldSets {
		flattened[i] = collectFlattenedFields(fs)
	}

	typeCounters := map[string]int{}
	for fsIdx, fields := range flattened {
		instanceCounters := map[string]int{}
		seen := map[string]bool{}
		for _, n := range fields {
			tag := n.tag
			if !whitelistTags[tag] {
				continue
			}
			instIdx := instanceCounters[tag]
			instanceCounters[tag] = instIdx + 1

			current, hasName := n.attr("name")
			if !hasName || current == "" {
				fallback := ""
				for _, prevFields := range flattened[:fsIdx] {
					matchCount := 0
					for _, prev := range prevFields {
						if prev.tag != tag {
							continue
						}
						if matchCount == instIdx {
							if pn, ok := prev.attr("name"); ok && pn != "" {
								fallback = pn
							}
							break
						}
						matchCount++
					}
					if fallback != "" {
						break
					}
				}
				var newName string
				if fallback != "" {
					newName = fallback
				} else {
					count := typeCounters[tag]
					newName = fmt.Sprintf("%s_%d", tag, count)
					typeCounters[tag] = count + 1
				}
				n.setAttr("name", newName)
				seen[newName] = true
			} else if seen[current] {
				count := typeCounters[current]
				if count == 0 {
					count = 1
				}
				newName := fmt.Sprintf("%s_%d", current, count)
				n.setAttr("name", newName)
				typeCounters[current] = count + 1
				seen[newName] = true
			} else {
				seen[current] = true
			}
		}
	}
}

// calculateFieldSetSize computes and stores each FieldSet's resolved
// byte size bottom-up: a nested Struct contributes the size of its
// latest field set, every other field its inline size (a Block only
// its 12-byte descriptor), each multiplied by its "count".
func calculateFieldSetSize(fs *node) int {
	total := 0
	for _, child := range fs.children {
		count := 1
		if c, ok := child.attr("count"); ok {
			if n, err := strconv.Atoi(c); err == nil {
				count = n
			}
		}
		if child.tag == "Struct" {
			if layout := child.findLayout(); layout != nil {
				var latest *node
				for _, nested := range layout.fieldSets() {
					latest = nested
					if v, ok := nested.attr("isLatest"); ok && v != "" && v != "false" {
						break
					}
				}
				if latest != nil {
					total += calculateFieldSetSize(latest) * count
				}
			}
			continue
		}
		total += fieldInlineSize(child) * count
	}
	fs.setAttr("sizeofValue", strconv.Itoa(total))
	return total
}

func fieldInlineSize(n *node) int {
	kind := FieldKind(n.tag)
	if IsPadKind(kind) {
		if l, ok := n.attr("length"); ok {
			if v, err := strconv.Atoi(l); err == nil {
				return v
			}
		}
		return 0
	}
	if kind == KindBlock {
		return FieldSize(KindBlock)
	}
	return FieldSize(kind)
}
