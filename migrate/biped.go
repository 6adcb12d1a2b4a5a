// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package migrate

import "github.com/tagforge/tagcodec/tag"

// migrateBiped promotes a biped's collision fields (renamed and
// flattened out of a "Skip" placeholder and several "collision *"
// keys), upgrades its default function curve, and widens each seat's
// yaw/pitch rate scalars into bounds while renaming its acceleration
// scale into an acceleration range struct.
func migrateBiped(t *tag.Tag) {
	fields := t.Fields

	if headerVersion(fields, "TagBlockHeader_biped") == 0 {
		fields["flags_2"] = pop(fields, "Skip", int64(0))
		fields["height standing"] = pop(fields, "standing collision height", float64(0))
		fields["height crouching"] = pop(fields, "crouching collision height", float64(0))
		fields["radius"] = pop(fields, "collision radius", float64(0))
		fields["mass"] = pop(fields, "collision mass", float64(0))
		fields["living material name"] = pop(fields, "collision global material name", "")
		fields["dead material name"] = pop(fields, "dead collision global material name", "")
		setHeader(fields, "StructHeader_ground physics", "chgr", 0, 48)
		setHeader(fields, "StructHeader_flying physics", "chfl", 0, 44)
	}
	setHeader(fields, "TagBlockHeader_biped", "tbfd", 1, 988)

	upgradeFunctionsBlock(fields, "functions", "StructHeader_default function")

	seats := fieldsSlice(fields, "seats")
	seatVersion := headerVersion(fields, "TagBlockHeader_seats")
	if seats != nil && seatVersion != 3 {
		for _, seat := range seats {
			if seatVersion == 0 {
				yaw := asFloat(pop(seat, "yaw rate", float64(0)))
				seat["yaw rate bounds"] = widenToBounds(yaw)
				pitch := asFloat(pop(seat, "pitch rate", float64(0)))
				seat["pitch rate bounds"] = widenToBounds(pitch)
			}
			seat["acceleration range"] = pop(seat, "acceleration scale", []float64{0, 0, 0})
			setHeader(seat, "StructHeader_acceleration", "usas", 0, 20)
		}
		setHeader(fields, "TagBlockHeader_seats", "tbfd", 3, 192)
	}
}
