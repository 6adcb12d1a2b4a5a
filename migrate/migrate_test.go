// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package migrate

import (
	"reflect"
	"testing"

	"github.com/tagforge/tagcodec/schema"
	"github.com/tagforge/tagcodec/tag"
)

func groupTag(fourcc, name string, fields tag.Fields) *tag.Tag {
	return &tag.Tag{
		Group:  &schema.TagGroupDef{Fourcc: fourcc, Name: name, Generation: schema.Gen2},
		Fields: fields,
	}
}

func legacyFunctionFields() tag.Fields {
	colors := func(r, g, b int64) tag.Fields {
		return tag.Fields{"R": r, "G": g, "B": b}
	}
	return tag.Fields{
		"type":    int64(3),
		"flags":   int64(1),
		"color a": colors(255, 0, 0),
		"color b": colors(0, 255, 0),
		"color c": colors(0, 0, 255),
		"color d": colors(9, 9, 9),
		"values": []tag.Fields{
			{"Value": float64(0.5)},
			{"Value": float64(1.0)},
		},
	}
}

func TestBipedMigration(t *testing.T) {
	fields := tag.Fields{
		"TagBlockHeader_biped":                tag.Fields{"name": "tbfd", "version": int64(0), "size": int64(0)},
		"Skip":                                int64(12),
		"standing collision height":           float64(1.2),
		"crouching collision height":          float64(0.6),
		"collision radius":                    float64(0.3),
		"collision mass":                      float64(90),
		"collision global material name":      "cyborg",
		"dead collision global material name": "cyborg_dead",
		"functions": []tag.Fields{
			{
				"StructHeader_default function": tag.Fields{"name": "dfnc", "version": int64(0), "size": int64(0)},
				"default function":              legacyFunctionFields(),
			},
		},
		"TagBlockHeader_seats": tag.Fields{"name": "tbfd", "version": int64(0), "size": int64(176)},
		"seats": []tag.Fields{
			{"yaw rate": float64(60), "pitch rate": float64(30), "acceleration scale": []float64{1, 2, 3}},
		},
	}
	tg := groupTag("bipd", "biped", fields)
	Migrate(tg)

	if got := headerVersion(fields, "TagBlockHeader_biped"); got != 1 {
		t.Fatalf("biped header version = %d, want 1", got)
	}
	if h, _ := fields["TagBlockHeader_biped"].(tag.Fields); asInt(h["size"]) != 988 {
		t.Errorf("biped header size = %v, want 988", h["size"])
	}
	if _, ok := fields["flags_2"]; !ok {
		t.Error("flags_2 must exist after migration")
	}
	if _, ok := fields["Skip"]; ok {
		t.Error("Skip must be renamed away")
	}
	if got := fields["height standing"]; got != float64(1.2) {
		t.Errorf("height standing = %v, want 1.2", got)
	}

	wantGround := tag.Fields{"name": "chgr", "version": int64(0), "size": int64(48)}
	if got, _ := fields["StructHeader_ground physics"].(tag.Fields); !reflect.DeepEqual(got, wantGround) {
		t.Errorf("ground physics header = %v, want %v", got, wantGround)
	}
	wantFlying := tag.Fields{"name": "chfl", "version": int64(0), "size": int64(44)}
	if got, _ := fields["StructHeader_flying physics"].(tag.Fields); !reflect.DeepEqual(got, wantFlying) {
		t.Errorf("flying physics header = %v, want %v", got, wantFlying)
	}

	// function curve repacked into the byte-block form
	fn := fields["functions"].([]tag.Fields)[0]
	if got := headerVersion(fn, "StructHeader_default function"); got != 1 {
		t.Errorf("function struct version = %d, want 1", got)
	}
	packed, ok := fn["default function"].([]tag.Fields)
	if !ok {
		t.Fatal("default function must become a byte block")
	}
	// type, flags, 4 colors x 4 bytes, 2 float32 values
	if len(packed) != 2+16+8 {
		t.Fatalf("packed function length = %d, want 26", len(packed))
	}
	if asInt(packed[0]["Value"]) != 3 {
		t.Errorf("packed type byte = %v, want 3", packed[0]["Value"])
	}
	// first color written blue, green, red, pad
	if asInt(packed[2]["Value"]) != 0 || asInt(packed[4]["Value"]) != -1 {
		t.Errorf("packed color bytes = %v %v, want 0 and -1 (0xFF)", packed[2]["Value"], packed[4]["Value"])
	}

	// seats widened to bounds
	seat := fields["seats"].([]tag.Fields)[0]
	wantYaw := tag.Fields{"Min": float64(60), "Max": float64(60)}
	if got, _ := seat["yaw rate bounds"].(tag.Fields); !reflect.DeepEqual(got, wantYaw) {
		t.Errorf("yaw rate bounds = %v, want %v", got, wantYaw)
	}
	if _, ok := seat["yaw rate"]; ok {
		t.Error("yaw rate scalar must be removed")
	}
	if got, _ := seat["acceleration range"].([]float64); !reflect.DeepEqual(got, []float64{1, 2, 3}) {
		t.Errorf("acceleration range = %v, want [1 2 3]", got)
	}
	if got := headerVersion(fields, "TagBlockHeader_seats"); got != 3 {
		t.Errorf("seats header version = %d, want 3", got)
	}
}

func TestDamageEffectMigration(t *testing.T) {
	fields := tag.Fields{
		"TagBlockHeader_damage_effect": tag.Fields{"name": "tbfd", "version": int64(0), "size": int64(0)},
		"type":                         int64(4),
		"priority":                     int64(1),
		"duration":                     float64(0.25),
		"fade function":                int64(1),
		"maximum intensity":            float64(0.75),
		"color":                        float64(0),
		"duration_1":                   float64(1.5),
		"duration_2":                   float64(2.5),
		"fade function_1":              tag.Fields{"type": "ShortEnum", "value": int64(1), "value name": ""},
		"frequency":                    float64(30),
		"fade function_2":              tag.Fields{"type": "ShortEnum", "value": int64(2), "value name": ""},
		"frequency_1":                  float64(15),
		"Real":                         float64(1),
		"Real_1":                       float64(2),
		"Real_2":                       float64(3),
		"duration_3":                   float64(4),
		"fade function_3":              int64(2),
		"duration_4":                   float64(5),
	}
	tg := groupTag("jpt!", "damage_effect", fields)
	Migrate(tg)

	if got := headerVersion(fields, "TagBlockHeader_damage_effect"); got != 1 {
		t.Fatalf("damage_effect header version = %d, want 1", got)
	}

	responses, _ := fields["player responses"].([]tag.Fields)
	if len(responses) != 1 {
		t.Fatalf("player responses length = %d, want 1", len(responses))
	}
	elem := responses[0]

	responseType, _ := elem["response type"].(tag.Fields)
	if asInt(responseType["value"]) != 2 {
		t.Errorf("response type = %v, want enum value 2", responseType)
	}

	for key, wantType := range map[string]int64{
		"dirty whore":           2,
		"dirty whore_1":         2,
		"effect scale function": 0,
	} {
		packed, ok := elem[key].([]tag.Fields)
		if !ok {
			t.Errorf("curve %q missing", key)
			continue
		}
		// type, pad, flag, pad, 4 zero quads, 4 float32 values
		if len(packed) != 36 {
			t.Errorf("curve %q length = %d, want 36", key, len(packed))
			continue
		}
		if got := asInt(packed[0]["Value"]); got != wantType {
			t.Errorf("curve %q transition type = %d, want %d", key, got, wantType)
		}
	}

	// the inline scalars move to their renamed homes
	if got := fields["rider direct damage scale"]; got != float64(1) {
		t.Errorf("rider direct damage scale = %v, want 1", got)
	}
	if got := fields["duration"]; got != float64(4) {
		t.Errorf("duration = %v, want the old duration_3", got)
	}
}

func TestDeviceFunctionMigration(t *testing.T) {
	for _, fourcc := range []string{"devi", "ctrl", "lifi", "mach", "bloc", "crea", "eqip", "garb", "item"} {
		fields := tag.Fields{
			"functions": []tag.Fields{
				{
					"StructHeader_default function": tag.Fields{"name": "dfnc", "version": int64(0), "size": int64(0)},
					"default function":              legacyFunctionFields(),
				},
			},
		}
		Migrate(groupTag(fourcc, "device", fields))
		fn := fields["functions"].([]tag.Fields)[0]
		header, _ := fn["StructHeader_default function"].(tag.Fields)
		if header["name"] != "MAPP" || asInt(header["version"]) != 1 || asInt(header["size"]) != 12 {
			t.Errorf("%s: function header = %v, want MAPP v1 size 12", fourcc, header)
		}
	}
}

// Running a migrator twice must be a no-op the second time.
func TestMigrationIdempotence(t *testing.T) {
	builders := map[string]func() *tag.Tag{
		"bipd": func() *tag.Tag {
			return groupTag("bipd", "biped", tag.Fields{
				"TagBlockHeader_biped": tag.Fields{"name": "tbfd", "version": int64(0), "size": int64(0)},
				"Skip":                 int64(7),
				"TagBlockHeader_seats": tag.Fields{"name": "tbfd", "version": int64(0), "size": int64(176)},
				"seats": []tag.Fields{
					{"yaw rate": float64(10), "pitch rate": float64(5), "acceleration scale": []float64{1, 1, 1}},
				},
			})
		},
		"jpt!": func() *tag.Tag {
			return groupTag("jpt!", "damage_effect", tag.Fields{
				"TagBlockHeader_damage_effect": tag.Fields{"name": "tbfd", "version": int64(0), "size": int64(0)},
				"duration":                     float64(1),
			})
		},
		"char": func() *tag.Tag {
			return groupTag("char", "character", tag.Fields{
				"TagBlockHeader_character": tag.Fields{"name": "tbfd", "version": int64(0), "size": int64(0)},
				"model variant":            "mp",
			})
		},
	}

	for fourcc, build := range builders {
		tg := build()
		Migrate(tg)
		once := deepCopyFields(tg.Fields)
		Migrate(tg)
		if !reflect.DeepEqual(once, tg.Fields) {
			t.Errorf("%s: second migration changed the tree", fourcc)
		}
	}
}

func deepCopyFields(in tag.Fields) tag.Fields {
	out := make(tag.Fields, len(in))
	for k, v := range in {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch tv := v.(type) {
	case tag.Fields:
		return deepCopyFields(tv)
	case []tag.Fields:
		out := make([]tag.Fields, len(tv))
		for i, e := range tv {
			out[i] = deepCopyFields(e)
		}
		return out
	case []float64:
		out := make([]float64, len(tv))
		copy(out, tv)
		return out
	case []byte:
		out := make([]byte, len(tv))
		copy(out, tv)
		return out
	default:
		return v
	}
}

func TestPassThroughGroups(t *testing.T) {
	fields := tag.Fields{"untouched": int64(1)}
	for _, fourcc := range []string{"vehi", "weap", "snd!", "scnr", "*cen", "unregistered"} {
		tg := groupTag(fourcc, "whatever", fields)
		Migrate(tg)
	}
	if len(fields) != 1 || asInt(fields["untouched"]) != 1 {
		t.Errorf("pass-through groups must not modify the tree: %v", fields)
	}
}

func TestCharacterVariantSynthesis(t *testing.T) {
	fields := tag.Fields{
		"TagBlockHeader_character": tag.Fields{"name": "tbfd", "version": int64(0), "size": int64(0)},
		"Look properties":          []tag.Fields{{"a": int64(1)}},
		"model variant":            "ultra",
	}
	Migrate(groupTag("char", "character", fields))

	if got := headerVersion(fields, "TagBlockHeader_character"); got != 2 {
		t.Fatalf("character header version = %d, want 2", got)
	}
	if _, ok := fields["Look properties"]; ok {
		t.Error("capitalized property key must be renamed")
	}
	if _, ok := fields["look properties"]; !ok {
		t.Error("lowercase property key must exist")
	}
	variants, _ := fields["variants"].([]tag.Fields)
	if len(variants) != 1 {
		t.Fatalf("variants length = %d, want 1", len(variants))
	}
	if variants[0]["variant name"] != "ultra" || asInt(variants[0]["variant index"]) != -1 {
		t.Errorf("synthesized variant = %v", variants[0])
	}
}

func TestModelAnimationGraphMigration(t *testing.T) {
	t.Run("version 0 animations", func(t *testing.T) {
		fields := tag.Fields{
			"StructHeader_resources":               tag.Fields{"name": "MAgr", "version": int64(0), "size": int64(64)},
			"animation graph flags":                int64(5),
			"TagBlockHeader_skeleton nodes|ABCDCC": tag.Fields{"name": "tbfd", "version": int64(0), "size": int64(28)},
			"skeleton nodes|ABCDCC": []tag.Fields{
				{"Node joint flags": int64(3)},
			},
			"TagBlockHeader_animations|ABCDCC": tag.Fields{"name": "tbfd", "version": int64(0), "size": int64(100)},
			"animations|ABCDCC": []tag.Fields{
				{
					"animation data":               int64(9),
					"next animation":               int64(7),
					"static node flag data size":   int64(1),
					"animated node flag data size": int64(2),
					"movement_data size":           int64(3),
					"default_data size":            int64(4),
					"uncompressed_data size":       int64(5),
					"compressed_data size":         int64(6),
				},
			},
		}
		Migrate(groupTag("jmad", "model_animation_graph", fields))

		wantResources := tag.Fields{"name": "MAgr", "version": int64(2), "size": int64(80)}
		if got, _ := fields["StructHeader_resources"].(tag.Fields); !reflect.DeepEqual(got, wantResources) {
			t.Errorf("resources header = %v, want %v", got, wantResources)
		}
		if got := asInt(fields["private flags"]); got != 5 {
			t.Errorf("private flags = %v, want 5", got)
		}
		if _, ok := fields["animation graph flags"]; ok {
			t.Error("animation graph flags must be renamed away")
		}

		if got := headerVersion(fields, "TagBlockHeader_skeleton nodes|ABCDCC"); got != 1 {
			t.Errorf("skeleton nodes header version = %d, want 1", got)
		}
		node := fields["skeleton nodes|ABCDCC"].([]tag.Fields)[0]
		if got := asInt(node["node joint flags"]); got != 3 {
			t.Errorf("node joint flags = %v, want 3", got)
		}
		if _, ok := node["Node joint flags"]; ok {
			t.Error("capitalized joint flags key must be renamed away")
		}

		if got := headerVersion(fields, "TagBlockHeader_animations|ABCDCC"); got != 5 {
			t.Errorf("animations header version = %d, want 5", got)
		}
		anim := fields["animations|ABCDCC"].([]tag.Fields)[0]
		if got := asInt(anim["Data"]); got != 9 {
			t.Errorf("Data = %v, want 9", got)
		}
		if got := asInt(anim["ShortBlockIndex_1"]); got != 7 {
			t.Errorf("ShortBlockIndex_1 = %v, want 7", got)
		}
		if got := asInt(anim["CharInteger_1"]); got != 2 {
			t.Errorf("CharInteger_1 = %v, want 2", got)
		}
		if got := asInt(anim["LongInteger_1"]); got != 6 {
			t.Errorf("LongInteger_1 = %v, want 6", got)
		}
		wantStruct := tag.Fields{"name": "apds", "version": int64(0), "size": int64(16)}
		if got, _ := anim["StructHeader_Struct"].(tag.Fields); !reflect.DeepEqual(got, wantStruct) {
			t.Errorf("animation struct header = %v, want %v", got, wantStruct)
		}
	})

	t.Run("version 3 animations", func(t *testing.T) {
		fields := tag.Fields{
			"TagBlockHeader_animations|ABCDCC": tag.Fields{"name": "tbfd", "version": int64(3), "size": int64(116)},
			"animations|ABCDCC": []tag.Fields{
				{
					"animation data":          int64(11),
					"parent animation":        int64(4),
					"next animation":          int64(8),
					"StructHeader_data sizes": tag.Fields{"name": "apds", "version": int64(1), "size": int64(20)},
					"ShortInteger_3":          int64(1),
					"ShortInteger_4":          int64(2),
					"ShortInteger_5":          int64(3),
					"LongInteger_1":           int64(4),
					"LongInteger_2":           int64(5),
				},
			},
		}
		Migrate(groupTag("jmad", "model_animation_graph", fields))

		anim := fields["animations|ABCDCC"].([]tag.Fields)[0]
		if got := asInt(anim["ShortBlockIndex"]); got != 4 {
			t.Errorf("ShortBlockIndex = %v, want 4", got)
		}
		if got := asInt(anim["ShortBlockIndex_1"]); got != 8 {
			t.Errorf("ShortBlockIndex_1 = %v, want 8", got)
		}
		wantStruct := tag.Fields{"name": "apds", "version": int64(1), "size": int64(20)}
		if got, _ := anim["StructHeader_Struct"].(tag.Fields); !reflect.DeepEqual(got, wantStruct) {
			t.Errorf("carried struct header = %v, want %v", got, wantStruct)
		}
		if got := asInt(anim["ShortInteger"]); got != 1 {
			t.Errorf("ShortInteger = %v, want 1", got)
		}
		if got := asInt(anim["ShortInteger_2"]); got != 3 {
			t.Errorf("ShortInteger_2 = %v, want 3", got)
		}
		if got := asInt(anim["LongInteger"]); got != 4 {
			t.Errorf("LongInteger = %v, want 4", got)
		}
		if got := asInt(anim["LongInteger_1"]); got != 5 {
			t.Errorf("LongInteger_1 = %v, want 5", got)
		}
		if got := headerVersion(fields, "TagBlockHeader_animations|ABCDCC"); got != 5 {
			t.Errorf("animations header version = %d, want 5", got)
		}

		// a second pass finds version 5 and leaves everything alone
		before := deepCopyFields(fields)
		Migrate(groupTag("jmad", "model_animation_graph", fields))
		if !reflect.DeepEqual(before, fields) {
			t.Error("second migration changed the tree")
		}
	})
}
