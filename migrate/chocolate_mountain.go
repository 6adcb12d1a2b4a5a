// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package migrate

import "github.com/tagforge/tagcodec/tag"

// migrateChocolateMountain upgrades each lighting variable's four
// mapping-function curves.
func migrateChocolateMountain(t *tag.Tag) {
	for _, lighting := range fieldsSlice(t.Fields, "lighting variables") {
		upgradeFunction(lighting, "StructHeader_function")
		upgradeFunction(lighting, "StructHeader_function_1")
		upgradeFunction(lighting, "StructHeader_function_2")
		upgradeFunction(lighting, "StructHeader_function 1")
	}
}
