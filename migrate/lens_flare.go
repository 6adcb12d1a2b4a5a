// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package migrate

import "github.com/tagforge/tagcodec/tag"

// migrateLensFlare upgrades the single function curve carried by each
// of a lens flare's brightness, color, and rotation blocks.
func migrateLensFlare(t *tag.Tag) {
	for _, elem := range fieldsSlice(t.Fields, "brightness") {
		upgradeFunction(elem, "StructHeader_function_1")
	}
	for _, elem := range fieldsSlice(t.Fields, "color") {
		upgradeFunction(elem, "StructHeader_function_1")
	}
	for _, elem := range fieldsSlice(t.Fields, "rotation") {
		upgradeFunction(elem, "StructHeader_function_1")
	}
}
