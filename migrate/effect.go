// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package migrate

import "github.com/tagforge/tagcodec/tag"

// migrateEffect upgrades every event's beam function curves and every
// particle system emitter's mapping function curves.
func migrateEffect(t *tag.Tag) {
	for _, event := range fieldsSlice(t.Fields, "events") {
		for _, beam := range fieldsSlice(event, "beams") {
			upgradeFunction(beam, "StructHeader_function")
			upgradeFunction(beam, "StructHeader_function_1")
			upgradeFunction(beam, "StructHeader_function_2")
			upgradeFunction(beam, "StructHeader_function_3")
			upgradeFunction(beam, "StructHeader_function_4")
			upgradeFunction(beam, "StructHeader_function_5")
		}
		for _, system := range fieldsSlice(event, "particle systems") {
			for _, emitter := range fieldsSlice(system, "emitters") {
				for _, key := range mappingStructKeys {
					upgradeFunction(emitter, key)
				}
			}
		}
	}
}
