// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package migrate

import "github.com/tagforge/tagcodec/tag"

// migrateGlobals renames each sound globals element's legacy sound
// class reference, synthesizing a default "sound\sound_mix" path when
// upgrading from the oldest (version-0) layout that never carried one.
func migrateGlobals(t *tag.Tag) {
	fields := t.Fields
	soundGlobals := fieldsSlice(fields, "sound globals")
	if soundGlobals == nil {
		return
	}
	version := headerVersion(fields, "TagBlockHeader_sound globals")
	if version == 2 {
		return
	}
	if version == 0 {
		for _, elem := range soundGlobals {
			elem["legacy sound classes"] = tag.Fields{
				"group name": "snmx",
				"unk1":       int64(0),
				"length":     int64(15),
				"unk2":       int64(-1),
				"path":       "sound\\sound_mix",
			}
		}
	} else {
		for _, elem := range soundGlobals {
			elem["legacy sound classes"] = pop(elem, "sound classes", tag.Fields{})
		}
	}
	setHeader(fields, "TagBlockHeader_sound globals", "tbfd", 2, 84)
}
