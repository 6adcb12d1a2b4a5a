// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package migrate

import "github.com/tagforge/tagcodec/tag"

// migrateCharacter upgrades a character to version 2: it renames the
// version-0 capitalized property block keys, synthesizes a "variants"
// child block out of the version-<2 inline "model variant" scalar,
// widens each pre-search element's bounds pair, and splices firing
// pattern fields out of each weapon element into a newly-synthesized
// child block.
//
// The upgrade consults no group definitions: neither the biped
// group's merged layout nor character's own is looked up, and every
// header version and size it writes is a constant in this file.
func migrateCharacter(t *tag.Tag) {
	fields := t.Fields

	if headerVersion(fields, "TagBlockHeader_character") == 0 {
		fields["look properties"] = pop(fields, "Look properties", []tag.Fields{})
		fields["movement properties"] = pop(fields, "Movement properties", []tag.Fields{})
		fields["engage properties"] = pop(fields, "Engage properties", []tag.Fields{})
		fields["evasion properties"] = pop(fields, "Evasion properties", []tag.Fields{})
		fields["cover properties"] = pop(fields, "Cover properties", []tag.Fields{})
	}

	if headerVersion(fields, "TagBlockHeader_character") != 2 {
		variantName := pop(fields, "model variant", "")
		ensureBlock(fields, "variants", 12)
		appendBlock(fields, "variants", tag.Fields{
			"variant name":       variantName,
			"variant index":      int64(-1),
			"variant designator": "",
		})
	}
	setHeader(fields, "TagBlockHeader_character", "tbfd", 2, 408)

	presearch := fieldsSlice(fields, "pre-search properties")
	if presearch != nil && headerVersion(fields, "TagBlockHeader_pre-search properties") != 1 {
		setHeader(fields, "TagBlockHeader_pre-search properties", "tbfd", 1, 36)
		for _, elem := range presearch {
			oldBounds, _ := pop(elem, "Min/Max pre-search bounds", tag.Fields{"Min": float64(0), "Max": float64(0)}).(tag.Fields)
			minV := asFloat(oldBounds["Min"])
			maxV := asFloat(oldBounds["Max"])
			elem["min presearch time"] = bounds(minV, minV)
			elem["max presearch time"] = bounds(maxV, maxV)
			elem["min suppressing time"] = bounds(2, 3)
		}
	}

	weapons := fieldsSlice(fields, "weapons properties")
	if weapons != nil && headerVersion(fields, "TagBlockHeader_weapons properties") != 1 {
		setHeader(fields, "TagBlockHeader_weapons properties", "tbfd", 1, 224)
		for _, weapon := range weapons {
			weapon["maximum firing range"] = pop(weapon, "maximum firing distance", float64(0))
			rateOfFire := pop(weapon, "rate of fire", float64(0))
			projectileError := pop(weapon, "projectile error", float64(0))
			desiredCombatRange := pop(weapon, "desired combat range", tag.Fields{"Min": float64(0), "Max": float64(0)})
			targetTracking := pop(weapon, "target tracking", float64(0))
			targetLeading := pop(weapon, "target leading", float64(0))
			weaponDamageModifier := pop(weapon, "weapon damage modifier", float64(0))
			burstOriginRadius := pop(weapon, "burst origin radius", float64(0))
			burstOriginAngle := pop(weapon, "burst origin angle", float64(0))
			burstReturnLength := pop(weapon, "burst return length", tag.Fields{"Min": float64(0), "Max": float64(0)})
			burstReturnAngle := pop(weapon, "burst return angle", float64(0))
			burstDuration := pop(weapon, "burst duration", tag.Fields{"Min": float64(0), "Max": float64(0)})
			burstSeparation := pop(weapon, "burst separation", tag.Fields{"Min": float64(0), "Max": float64(0)})
			burstAngularVelocity := pop(weapon, "burst angular velocity", float64(0))

			weapon["normal combat range"] = desiredCombatRange
			weapon["timid combat range"] = desiredCombatRange
			weapon["aggressive combat range"] = desiredCombatRange

			ensureBlock(weapon, "firing patterns", 64)
			appendBlock(weapon, "firing patterns", tag.Fields{
				"rate of fire":           rateOfFire,
				"target tracking":        targetTracking,
				"target leading":         targetLeading,
				"burst origin radius":    burstOriginRadius,
				"burst origin angle":     burstOriginAngle,
				"burst return length":    burstReturnLength,
				"burst return angle":     burstReturnAngle,
				"burst duration":         burstDuration,
				"burst separation":       burstSeparation,
				"weapon damage modifier": weaponDamageModifier,
				"projectile error":       projectileError,
				"burst angular velocity": burstAngularVelocity,
				"maximum error angle":    radians(90),
			})
		}
	}

	charge := fieldsSlice(fields, "charge properties")
	chargeVersion := headerVersion(fields, "TagBlockHeader_charge properties")
	if charge != nil && chargeVersion != 3 {
		setHeader(fields, "TagBlockHeader_charge properties", "tbfd", 3, 72)
		for _, elem := range charge {
			elem["melee_chance"] = int64(1)
			if chargeVersion <= 1 {
				leapVelocity := pop(elem, "melee leap velocity", float64(0))
				elem["ideal leap velocity"] = leapVelocity
				elem["max leap velocity"] = leapVelocity
			}
		}
	}
}

func radians(deg float64) float64 {
	const piOver180 = 3.14159265358979323846 / 180
	return deg * piOver180
}
