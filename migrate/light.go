// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package migrate

import "github.com/tagforge/tagcodec/tag"

// migrateLight upgrades brightness and color animation function
// curves plus a gel animation's paired dx/dy curves.
func migrateLight(t *tag.Tag) {
	for _, elem := range fieldsSlice(t.Fields, "brightness animation") {
		upgradeFunction(elem, "StructHeader_function")
	}
	for _, elem := range fieldsSlice(t.Fields, "color animation") {
		upgradeFunction(elem, "StructHeader_function")
	}
	for _, elem := range fieldsSlice(t.Fields, "gel animation") {
		upgradeFunction(elem, "StructHeader_dx")
		upgradeFunction(elem, "StructHeader_dy")
	}
}
