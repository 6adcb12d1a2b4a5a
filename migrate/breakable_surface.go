// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package migrate

import "github.com/tagforge/tagcodec/tag"

// mappingStructKeys are the nine mapping-function struct headers a
// breakable surface particle emitter can carry.
var mappingStructKeys = []string{
	"StructHeader_Mapping",
	"StructHeader_Mapping_1",
	"StructHeader_Mapping_2",
	"StructHeader_Mapping_3",
	"StructHeader_Mapping_4",
	"StructHeader_Mapping_5",
	"StructHeader_Mapping_6",
	"StructHeader_Mapping_7",
	"StructHeader_Mapping_8",
}

// migrateBreakableSurface upgrades every particle effect emitter's
// nine mapping-function curves.
func migrateBreakableSurface(t *tag.Tag) {
	for _, effect := range fieldsSlice(t.Fields, "particle effects") {
		for _, emitter := range fieldsSlice(effect, "emitters") {
			for _, key := range mappingStructKeys {
				upgradeFunction(emitter, key)
			}
		}
	}
}
