// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package migrate

import "github.com/tagforge/tagcodec/tag"

// migrateDamageEffect promotes a version-0 damage_effect to version 1
// by synthesizing a single "player responses" element out of the
// fields the old schema held inline, then re-encoding that element's
// three legacy function curves (vibration, frequency, and a fabricated
// scale curve the old format never carried) into the new byte-block
// form.
func migrateDamageEffect(t *tag.Tag) {
	fields := t.Fields
	if headerVersion(fields, "TagBlockHeader_damage_effect") != 0 {
		return
	}
	setHeader(fields, "TagBlockHeader_damage_effect", "tbfd", 1, 212)

	ensureBlock(fields, "player responses", 88)
	elem := tag.Fields{
		"response type":     tag.Fields{"type": "ShortEnum", "value": int64(2), "value name": ""},
		"type":              pop(fields, "type", int64(0)),
		"priority":          pop(fields, "priority", int64(0)),
		"duration":          pop(fields, "duration", float64(0)),
		"fade function":     pop(fields, "fade function", int64(0)),
		"maximum intensity": pop(fields, "maximum intensity", float64(0)),
		"color":             pop(fields, "color", float64(0)),
		"duration_2":        pop(fields, "duration_1", float64(0)),
		"duration_3":        pop(fields, "duration_2", float64(0)),
		"effect name":       "",
		"duration_1":        float64(0),
	}

	fadeFunction1, _ := pop(fields, "fade function_1", tag.Fields{}).(tag.Fields)
	frequency := asFloat(pop(fields, "frequency", float64(0)))
	fadeFunction2, _ := pop(fields, "fade function_2", tag.Fields{}).(tag.Fields)
	frequency1 := asFloat(pop(fields, "frequency_1", float64(0)))

	fields["rider direct damage scale"] = pop(fields, "Real", float64(0))
	fields["rider maximum transfer damage scale"] = pop(fields, "Real_1", float64(0))
	fields["rider minimum transfer damage scale"] = pop(fields, "Real_2", float64(0))
	fields["duration"] = pop(fields, "duration_3", float64(0))
	fields["fade function"] = pop(fields, "fade function_3", int64(0))
	fields["duration_1"] = pop(fields, "duration_4", float64(0))

	upgradeEffectFunction(elem, "dirty whore", 2, int8(asInt(fadeFunction1["Value"])), frequency)
	upgradeEffectFunction(elem, "dirty whore_1", 2, int8(asInt(fadeFunction2["Value"])), frequency1)
	upgradeEffectFunction(elem, "effect scale function", 0, 0, 0)

	appendBlock(fields, "player responses", elem)
}
