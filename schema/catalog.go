// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package schema

// Gen1Groups maps a Gen1 (blam) tag group fourcc to its human-readable
// alias.
var Gen1Groups = map[string]string{
	"actr": "actor",
	"actv": "actor_variant",
	"ant!": "antenna",
	"antr": "model_animations",
	"bipd": "biped",
	"bitm": "bitmap",
	"boom": "spheroid",
	"cdmg": "continuous_damage_effect",
	"coll": "model_collision_geometry",
	"colo": "color_table",
	"cont": "contrail",
	"ctrl": "device_control",
	"deca": "decal",
	"DeLa": "ui_widget_definition",
	"devc": "input_device_defaults",
	"devi": "device",
	"dobc": "detail_object_collection",
	"effe": "effect",
	"elec": "lightning",
	"eqip": "equipment",
	"flag": "flag",
	"fog ": "fog",
	"font": "font",
	"foot": "material_effects",
	"garb": "garbage",
	"glw!": "glow",
	"grhi": "grenade_hud_interface",
	"hmt ": "hud_message_text",
	"hud#": "hud_number",
	"hudg": "hud_globals",
	"item": "item",
	"itmc": "item_collection",
	"jpt!": "damage_effect",
	"lens": "lens_flare",
	"lifi": "device_light_fixture",
	"ligh": "light",
	"lsnd": "sound_looping",
	"mach": "device_machine",
	"matg": "globals",
	"metr": "meter",
	"mgs2": "light_volume",
	"mod2": "gbxmodel",
	"mode": "model",
	"mply": "multiplayer_scenario_description",
	"ngpr": "preferences_network_game",
	"obje": "object",
	"part": "particle",
	"pctl": "particle_system",
	"phys": "physics",
	"plac": "placeholder",
	"pphy": "point_physics",
	"proj": "projectile",
	"rain": "weather_particle_system",
	"sbsp": "scenario_structure_bsp",
	"scen": "scenery",
	"scex": "shader_transparent_chicago_extended",
	"schi": "shader_transparent_chicago",
	"scnr": "scenario",
	"senv": "shader_environment",
	"sgla": "shader_transparent_glass",
	"shdr": "shader",
	"sky ": "sky",
	"smet": "shader_transparent_meter",
	"snd!": "sound",
	"snde": "sound_environment",
	"soso": "shader_model",
	"sotr": "shader_transparent_generic",
	"Soul": "ui_widget_collection",
	"spla": "shader_transparent_plasma",
	"ssce": "sound_scenery",
	"str#": "string_list",
	"swat": "shader_transparent_water",
	"tagc": "tag_collection",
	"trak": "camera_track",
	"udlg": "dialogue",
	"unhi": "unit_hud_interface",
	"unit": "unit",
	"ustr": "unicode_string_list",
	"vcky": "virtual_keyboard",
	"vehi": "vehicle",
	"weap": "weapon",
	"wind": "wind",
	"wphi": "weapon_hud_interface",
}

// Gen2Groups maps a Gen2 tag group fourcc to its human-readable alias.
// Entries whose fourcc contains '*' are resource-only groups that
// never appear as a loose tag file header but can appear as nested
// Block/Struct element kinds.
var Gen2Groups = map[string]string{
	"obje": "object",
	"devi": "device",
	"item": "item",
	"unit": "unit",
	"hlmt": "model",
	"DECP": "decorators",
	"mode": "render_model",
	"coll": "collision_model",
	"phmo": "physics_model",
	"bitm": "bitmap",
	"colo": "color_table",
	"unic": "multilingual_unicode_string_list",
	"bipd": "biped",
	"vehi": "vehicle",
	"scen": "scenery",
	"bloc": "crate",
	"crea": "creature",
	"phys": "physics",
	"cont": "contrail",
	"weap": "weapon",
	"ligh": "light",
	"effe": "effect",
	"prt3": "particle",
	"PRTM": "particle_model",
	"pmov": "particle_physics",
	"matg": "globals",
	"snd!": "sound",
	"lsnd": "sound_looping",
	"eqip": "equipment",
	"ant!": "antenna",
	"MGS2": "light_volume",
	"tdtl": "liquid",
	"devo": "cellular_automata",
	"whip": "cellular_automata2d",
	"BooM": "stereo_system",
	"trak": "camera_track",
	"proj": "projectile",
	"mach": "device_machine",
	"ctrl": "device_control",
	"lifi": "device_light_fixture",
	"pphy": "point_physics",
	"ltmp": "scenario_structure_lightmap",
	"sbsp": "scenario_structure_bsp",
	"scnr": "scenario",
	"shad": "shader",
	"stem": "shader_template",
	"slit": "shader_light_response",
	"spas": "shader_pass",
	"vrtx": "vertex_shader",
	"pixl": "pixel_shader",
	"DECR": "decorator_set",
	"sky ": "sky",
	"wind": "wind",
	"snde": "sound_environment",
	"lens": "lens_flare",
	"fog ": "planar_fog",
	"fpch": "patchy_fog",
	"metr": "meter",
	"deca": "decal",
	"coln": "colony",
	"jpt!": "damage_effect",
	"udlg": "dialogue",
	"itmc": "item_collection",
	"vehc": "vehicle_collection",
	"wphi": "weapon_hud_interface",
	"grhi": "grenade_hud_interface",
	"unhi": "unit_hud_interface",
	"nhdt": "new_hud_definition",
	"hud#": "hud_number",
	"hudg": "hud_globals",
	"mply": "multiplayer_scenario_description",
	"dobc": "detail_object_collection",
	"ssce": "sound_scenery",
	"hmt ": "hud_message_text",
	"wgit": "user_interface_screen_widget_definition",
	"skin": "user_interface_list_skin_definition",
	"wgtz": "user_interface_globals_definition",
	"wigl": "user_interface_shared_globals_definition",
	"sily": "text_value_pair_definition",
	"goof": "multiplayer_variant_settings_interface_definition",
	"foot": "material_effects",
	"garb": "garbage",
	"styl": "style",
	"char": "character",
	"adlg": "ai_dialogue_globals",
	"mdlg": "ai_mission_dialogue",
	"*cen": "scenario_scenery_resource",
	"*ipd": "scenario_bipeds_resource",
	"*ehi": "scenario_vehicles_resource",
	"*qip": "scenario_equipment_resource",
	"*eap": "scenario_weapons_resource",
	"*sce": "scenario_sound_scenery_resource",
	"*igh": "scenario_lights_resource",
	"dgr*": "scenario_devices_resource",
	"dec*": "scenario_decals_resource",
	"cin*": "scenario_cinematics_resource",
	"trg*": "scenario_trigger_volumes_resource",
	"clu*": "scenario_cluster_data_resource",
	"*rea": "scenario_creature_resource",
	"dc*s": "scenario_decorators_resource",
	"sslt": "scenario_structure_lighting_resource",
	"hsc*": "scenario_hs_source_file",
	"ai**": "scenario_ai_resource",
	"/**/": "scenario_comments_resource",
	"bsdt": "breakable_surface",
	"mpdt": "material_physics",
	"sncl": "sound_classes",
	"mulg": "multiplayer_globals",
	"<fx>": "sound_effect_template",
	"sfx+": "sound_effect_collection",
	"gldf": "chocolate_mountain",
	"jmad": "model_animation_graph",
	"clwd": "cloth",
	"egor": "screen_effect",
	"weat": "weather_system",
	"snmx": "sound_mix",
	"spk!": "sound_dialogue_constants",
	"ugh!": "sound_cache_file_gestalt",
	"$#!+": "cache_file_sound",
	"mcsr": "mouse_cursor_definition",
	"tag+": "tag_database",
}

// Gen1Extensions is the reverse lookup of Gen1Groups (alias → fourcc).
var Gen1Extensions = reverse(Gen1Groups)

// Gen2Extensions is the reverse lookup of Gen2Groups (alias → fourcc).
var Gen2Extensions = reverse(Gen2Groups)

func reverse(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}
