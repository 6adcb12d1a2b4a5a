// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package migrate

import "github.com/tagforge/tagcodec/tag"

// migrateLightVolume upgrades each volume's five function curves and,
// for its nested "aspect" block, two more.
func migrateLightVolume(t *tag.Tag) {
	for _, volume := range fieldsSlice(t.Fields, "volumes") {
		upgradeFunction(volume, "StructHeader_function")
		upgradeFunction(volume, "StructHeader_function_1")
		upgradeFunction(volume, "StructHeader_function_2")
		upgradeFunction(volume, "StructHeader_function_3")
		upgradeFunction(volume, "StructHeader_function_4")
		for _, aspect := range fieldsSlice(volume, "aspect") {
			upgradeFunction(aspect, "StructHeader_function")
			upgradeFunction(aspect, "StructHeader_function_1")
		}
	}
}
