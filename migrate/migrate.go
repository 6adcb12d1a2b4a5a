// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package migrate normalizes a decoded Gen2 tag from whatever schema
// version it was written under up to the latest version the catalog
// declares for its group. Migrators run once, after decode and before
// a caller re-encodes or inspects a tag, and are keyed by the same
// fourcc the schema catalog and codec use.
package migrate

import "github.com/tagforge/tagcodec/tag"

// Migrator upgrades t.Fields in place. It must be idempotent: running
// it twice against an already-current tag leaves Fields unchanged.
// Every migrator in this package achieves that by guarding its first
// step on the relevant TagBlockHeader_* or StructHeader_* version
// already being the latest value it would otherwise write.
type Migrator func(t *tag.Tag)

// registry maps the Gen2 group fourccs to their migrators; a group
// left out of it (DECP is the one catalog group that is) passes
// through Migrate the same way a nil entry does. A nil
// entry is a deliberate pass-through: that group's layout never
// changed in a way a decode can't absorb, so the file is re-encoded
// untransformed. The resource-only groups (asterisk fourccs) are all
// pass-through.
var registry = map[string]Migrator{
	"obje": nil,
	"devi": deviceFunctionMigrator,
	"item": deviceFunctionMigrator,
	"unit": nil,
	"hlmt": migrateModel,
	"mode": nil,
	"coll": nil,
	"phmo": nil,
	"bitm": migrateBitmap,
	"colo": nil,
	"unic": nil,
	"bipd": migrateBiped,
	"vehi": nil,
	"scen": nil,
	"bloc": deviceFunctionMigrator,
	"crea": deviceFunctionMigrator,
	"phys": nil,
	"cont": nil,
	"weap": nil,
	"ligh": migrateLight,
	"effe": migrateEffect,
	"prt3": nil,
	"PRTM": nil,
	"pmov": nil,
	"matg": migrateGlobals,
	"snd!": nil,
	"lsnd": nil,
	"eqip": deviceFunctionMigrator,
	"ant!": nil,
	"MGS2": migrateLightVolume,
	"tdtl": migrateLiquid,
	"devo": nil,
	"whip": nil,
	"BooM": nil,
	"trak": nil,
	"proj": nil,
	"mach": deviceFunctionMigrator,
	"ctrl": deviceFunctionMigrator,
	"lifi": deviceFunctionMigrator,
	"pphy": nil,
	"ltmp": nil,
	"sbsp": nil,
	"scnr": nil,
	"shad": nil,
	"stem": nil,
	"slit": nil,
	"spas": nil,
	"vrtx": nil,
	"pixl": nil,
	"DECR": nil,
	"sky ": nil,
	"wind": nil,
	"snde": nil,
	"lens": migrateLensFlare,
	"fog ": nil,
	"fpch": nil,
	"metr": nil,
	"deca": nil,
	"coln": nil,
	"jpt!": migrateDamageEffect,
	"udlg": nil,
	"itmc": nil,
	"vehc": nil,
	"wphi": nil,
	"grhi": nil,
	"unhi": nil,
	"nhdt": nil,
	"hud#": nil,
	"hudg": nil,
	"mply": nil,
	"dobc": nil,
	"ssce": nil,
	"hmt ": nil,
	"wgit": nil,
	"skin": nil,
	"wgtz": nil,
	"wigl": nil,
	"sily": nil,
	"goof": nil,
	"foot": nil,
	"garb": deviceFunctionMigrator,
	"styl": nil,
	"char": migrateCharacter,
	"adlg": nil,
	"mdlg": nil,
	"*cen": nil,
	"*ipd": nil,
	"*ehi": nil,
	"*qip": nil,
	"*eap": nil,
	"*sce": nil,
	"*igh": nil,
	"dgr*": nil,
	"dec*": nil,
	"cin*": nil,
	"trg*": nil,
	"clu*": nil,
	"*rea": nil,
	"dc*s": nil,
	"sslt": nil,
	"hsc*": nil,
	"ai**": nil,
	"/**/": nil,
	"bsdt": migrateBreakableSurface,
	"mpdt": nil,
	"sncl": nil,
	"mulg": nil,
	"<fx>": nil,
	"sfx+": nil,
	"gldf": migrateChocolateMountain,
	"jmad": migrateModelAnimationGraph,
	"clwd": nil,
	"egor": nil,
	"weat": nil,
	"snmx": nil,
	"spk!": nil,
	"ugh!": nil,
	"$#!+": nil,
	"mcsr": nil,
	"tag+": nil,
}

// Migrate looks up and runs t's group migrator. Groups absent from
// the registry, or present with a nil migrator, pass through
// untouched.
func Migrate(t *tag.Tag) {
	if t == nil || t.Group == nil {
		return
	}
	if m := registry[t.Group.Fourcc]; m != nil {
		m(t)
	}
}

// deviceFunctionMigrator covers the nine groups whose only legacy
// content is a single "functions" block holding a default function
// curve record: device, device_control, device_light_fixture,
// device_machine, crate, creature, equipment, garbage and item all
// share it.
func deviceFunctionMigrator(t *tag.Tag) {
	upgradeFunctionsBlock(t.Fields, "functions", "StructHeader_default function")
}
