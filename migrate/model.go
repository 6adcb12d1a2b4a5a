// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package migrate

import "github.com/tagforge/tagcodec/tag"

// migrateModel renames "physics model" to "physics_model" (restoring
// a sensible default tag reference when absent) and duplicates the
// old single "max draw distance" scalar into the two distance fields
// the new schema splits it into.
func migrateModel(t *tag.Tag) {
	fields := t.Fields
	if headerVersion(fields, "TagBlockHeader_model") != 0 {
		return
	}
	setHeader(fields, "TagBlockHeader_model", "tbfd", 1, 348)

	physicsModel := pop(fields, "physics model", tag.Fields{
		"group name": int64(-1), "unk1": int64(0), "length": int64(0), "unk2": int64(-1), "path": "",
	})
	fields["physics_model"] = physicsModel

	maxDrawDistance := asFloat(pop(fields, "max draw distance", float64(0)))
	fields["disappear distance"] = maxDrawDistance
	fields["begin fade distance"] = maxDrawDistance
}

// migrateModelAnimationGraph runs three independently-guarded
// upgrades: the "resources" struct header promotion (with its
// animation-graph-flags rename), the skeleton-nodes block promotion
// to version 1 (lowercasing the joint flags key), and the animations
// block's version-dependent field renames up to version 5.
func migrateModelAnimationGraph(t *tag.Tag) {
	fields := t.Fields

	if headerVersion(fields, "StructHeader_resources") == 0 {
		setHeader(fields, "StructHeader_resources", "MAgr", 2, 80)
		fields["private flags"] = pop(fields, "animation graph flags", int64(0))
	}

	nodes := fieldsSlice(fields, "skeleton nodes|ABCDCC")
	if nodes != nil && headerVersion(fields, "TagBlockHeader_skeleton nodes|ABCDCC") == 0 {
		setHeader(fields, "TagBlockHeader_skeleton nodes|ABCDCC", "tbfd", 1, 32)
		for _, node := range nodes {
			node["node joint flags"] = pop(node, "Node joint flags", int64(0))
		}
	}

	animations := fieldsSlice(fields, "animations|ABCDCC")
	version := headerVersion(fields, "TagBlockHeader_animations|ABCDCC")
	if animations != nil && version != -1 {
		for _, anim := range animations {
			switch {
			case version == 0:
				anim["Data"] = pop(anim, "animation data", int64(0))
				anim["ShortBlockIndex_1"] = pop(anim, "next animation", int64(-1))
				anim["CharInteger"] = pop(anim, "static node flag data size", int64(0))
				anim["CharInteger_1"] = pop(anim, "animated node flag data size", int64(0))
				anim["ShortInteger"] = pop(anim, "movement_data size", int64(0))
				anim["ShortInteger_2"] = pop(anim, "default_data size", int64(0))
				anim["LongInteger"] = pop(anim, "uncompressed_data size", int64(0))
				anim["LongInteger_1"] = pop(anim, "compressed_data size", int64(0))
				setHeader(anim, "StructHeader_Struct", "apds", 0, 16)

			case version >= 1 && version <= 4:
				anim["Data"] = pop(anim, "animation data", int64(0))
				anim["ShortBlockIndex"] = pop(anim, "parent animation", int64(-1))
				anim["ShortBlockIndex_1"] = pop(anim, "next animation", int64(-1))
				anim["StructHeader_Struct"] = pop(anim, "StructHeader_data sizes",
					tag.Fields{"name": "apds", "version": int64(0), "size": int64(16)})

				if version == 3 {
					anim["ShortInteger"] = pop(anim, "ShortInteger_3", int64(0))
					anim["ShortInteger_1"] = pop(anim, "ShortInteger_4", int64(0))
					anim["ShortInteger_2"] = pop(anim, "ShortInteger_5", int64(0))
					anim["LongInteger"] = pop(anim, "LongInteger_1", int64(0))
					anim["LongInteger_1"] = pop(anim, "LongInteger_2", int64(0))
				}
			}
		}
		setHeader(fields, "TagBlockHeader_animations|ABCDCC", "tbfd", 5, 124)
	}
}
