package defs

import (
	"github.com/tagtools/tagfile/tag"
)

func paletteBlock(name, group string) *tag.BlockDef {
	return tag.NewBlockDef(name, 100, tag.NewStruct(name,
		tag.Ref("name", group),
		tag.Pad(32),
	))
}

// Placements store rotation as euler angles, in radians.
var placementFields = []tag.Field{
	tag.Int16("type"),
	tag.Int16("name"),
	tag.Flags16("not_placed"),
	tag.Int16("desired_permutation"),
	tag.Vector3("position"),
	tag.Vector3("rotation"),
}

var sceneryPlacementClassic = tag.NewBlockDef("scenery", 2000, tag.NewStruct("scenery",
	fields(placementFields, []tag.Field{
		tag.Pad(40),
	})...,
))

var sceneryPlacement = tag.NewBlockDef("scenery", 2000, tag.NewStruct("scenery",
	fields(placementFields, []tag.Field{
		tag.Float("scale"),
		tag.Flags8("transform_flags"),
		tag.Pad(1),
		tag.Int16("manual_bsp_flags"),
		tag.ARGB8("primary_color"),
		tag.Int16("variant_index"),
		tag.Pad(2),
	})...,
))

var commentClassic = tag.NewBlockDef("comments", 1024, tag.NewStruct("comment",
	tag.Vector3("position"),
	tag.Pad(16),
	tag.RawData("comment"),
))

// Legacy builds store the comment length in the opposite byte order.
var commentLegacy = tag.NewBlockDef("comments", 1024, tag.NewStruct("comment",
	tag.Vector3("position"),
	tag.Enum32("type"),
	tag.String32("name"),
	tag.LegacyVarString("comment"),
))

var commentRetail = tag.NewBlockDef("comments", 1024, tag.NewStruct("comment",
	tag.Vector3("position"),
	tag.Enum32("type"),
	tag.String32("name"),
	tag.VarString("comment"),
	tag.Pad(2),
))

var structureBSPClassic = tag.NewBlockDef("structure_bsps", 32, tag.NewStruct("structure bsp",
	tag.Uint32("file_offset"),
	tag.Uint32("file_size"),
	tag.Uint32("address"),
	tag.Pad(4),
	tag.Ref("structure_bsp", "sbsp"),
))

var structureBSP = tag.NewBlockDef("structure_bsps", 16, tag.NewStruct("structure bsp",
	tag.Pad(16),
	tag.Ref("structure_bsp", "sbsp"),
	tag.Ref("lightmap", "ltmp"),
	tag.Pad(4),
	tag.Float("radiance_estimate_search_distance"),
	tag.Pad(4),
	tag.Float("luminels_per_world_unit"),
	tag.Float("output_white_reference"),
	tag.Pad(8),
	tag.Flags16("flags"),
	tag.Pad(2),
	tag.Int16("default_sky"),
	tag.Pad(2),
))

var scenarioClassic = tag.NewStruct("scenario",
	tag.Ref("dont_use", "sbsp"),
	tag.Ref("wont_use", "sbsp"),
	tag.Ref("cant_use", "sky"),
	tag.Block("skies", refBlock("skies", "sky", "sky", 8)),
	tag.Enum16("type"),
	tag.Flags16("flags"),
	tag.Block("child_scenarios", refBlock("child_scenarios", "child_scenario", "scnr", 16)),
	tag.Float("local_north"),
	tag.Pad(156),
	tag.Block("scenery", sceneryPlacementClassic),
	tag.Block("scenery_palette", paletteBlock("scenery_palette", "scen")),
	tag.Block("comments", commentClassic),
	tag.Pad(224),
	tag.Block("structure_bsps", structureBSPClassic),
)

func scenarioBody(retail bool) []tag.Field {
	comments := commentLegacy
	if retail {
		comments = commentRetail
	}
	f := []tag.Field{
		tag.Ref("unused", "sbsp"),
		tag.Block("skies", refBlock("skies", "sky", "sky", 32)),
		tag.Enum16("type"),
		tag.Flags16("flags"),
		tag.Block("child_scenarios", refBlock("child_scenarios", "child_scenario", "scnr", 16)),
		tag.Float("local_north"),
		tag.Block("scenery", sceneryPlacement),
		tag.Block("scenery_palette", paletteBlock("scenery_palette", "scen")),
		tag.Block("comments", comments),
		tag.Block("structure_bsps", structureBSP),
	}
	if retail {
		f = append(f,
			tag.Ref("custom_object_names", "unic"),
			tag.Ref("chapter_title_text", "unic"),
			tag.Ref("hud_messages", "hmt"),
		)
	}
	return f
}

var scenarioSchema = tag.NewSchema(GroupScenario, "scenario", 2).
	WithBody(scenarioClassic, tag.LayoutClassic).
	WithBody(tag.NewStruct("scenario", scenarioBody(false)...), secondGen[:2]...).
	WithBody(tag.NewStruct("scenario", scenarioBody(true)...), tag.LayoutRetail)
