// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package migrate

import "github.com/tagforge/tagcodec/tag"

// migrateLiquid upgrades each arc's five function curves and, for its
// nested "cores" block, five more.
func migrateLiquid(t *tag.Tag) {
	for _, arc := range fieldsSlice(t.Fields, "arcs") {
		upgradeFunction(arc, "StructHeader_function")
		upgradeFunction(arc, "StructHeader_function_1")
		upgradeFunction(arc, "StructHeader_function_2")
		upgradeFunction(arc, "StructHeader_function_3")
		upgradeFunction(arc, "StructHeader_function_4")
		for _, core := range fieldsSlice(arc, "cores") {
			upgradeFunction(core, "StructHeader_function")
			upgradeFunction(core, "StructHeader_function_1")
			upgradeFunction(core, "StructHeader_function_2")
			upgradeFunction(core, "StructHeader_function_3")
			upgradeFunction(core, "StructHeader_function_4")
		}
	}
}
