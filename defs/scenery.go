package defs

import (
	"github.com/tagtools/tagfile/tag"
)

var sceneryVariantClassic = tag.NewBlockDef("variants", 32, tag.NewStruct("variant",
	tag.String32("name"),
	tag.Ref("model", "mode"),
	tag.Float("weight"),
))

var sceneryClassic = tag.NewStruct("scenery",
	tag.Flags16("flags"),
	tag.Pad(2),
	tag.Float("bounding_radius"),
	tag.Vector3("bounding_offset"),
	tag.Vector3("origin_offset"),
	tag.Float("acceleration_scale"),
	tag.Pad(4),
	tag.Ref("model", "mod2"),
	tag.Ref("animation_graph", "antr"),
	tag.Pad(40),
	tag.Ref("collision_model", "coll"),
	tag.Ref("physics", "phys"),
	tag.Ref("modifier_shader", "shdr"),
	tag.Ref("creation_effect", "effe"),
	tag.Pad(84),
	tag.Float("render_bounding_radius"),
	tag.Block("variants", sceneryVariantClassic),
	tag.Flags16("more_flags"),
	tag.Pad(2),
)

var sceneryVariant = tag.NewBlockDef("variants", 32, tag.NewStruct("variant",
	tag.String32("name"),
	tag.Ref("model", "hlmt"),
	tag.Float("weight"),
	tag.Flags32("flags"),
))

func sceneryBody(retail bool) []tag.Field {
	f := []tag.Field{
		tag.Flags16("flags"),
		tag.Pad(2),
		tag.Float("bounding_radius"),
		tag.Vector3("bounding_offset"),
		tag.Float("acceleration_scale"),
		tag.Enum16("lightmap_shadow_mode"),
		tag.Enum16("sweetener_size"),
		tag.Ref("model", "hlmt"),
		tag.Ref("crate_object", "bloc"),
		tag.Ref("collision_damage", "cddf"),
		tag.Ref("creation_effect", "effe"),
		tag.Ref("material_effects", "foot"),
		tag.Block("variants", sceneryVariant),
		tag.Enum16("pathfinding_policy"),
		tag.Flags16("scenery_flags"),
	}
	if retail {
		f = append(f,
			tag.Enum16("lightmapping_policy"),
			tag.Pad(2),
			tag.Flags32("lightmap_flags"),
		)
	}
	return f
}

var scenerySchema = tag.NewSchema(GroupScenery, "scenery", 2).
	WithBody(sceneryClassic, tag.LayoutClassic).
	WithBody(tag.NewStruct("scenery", sceneryBody(false)...), secondGen[:2]...).
	WithBody(tag.NewStruct("scenery", sceneryBody(true)...), tag.LayoutRetail)
