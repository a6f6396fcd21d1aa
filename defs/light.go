package defs

import (
	"github.com/tagtools/tagfile/tag"
)

var lightClassic = tag.NewStruct("light",
	tag.Flags32("flags"),
	tag.Float("radius"),
	tag.Bounds("radius_modifier"),
	tag.Float("falloff_angle"),
	tag.Float("cutoff_angle"),
	tag.Float("lens_flare_only_radius"),
	tag.Pad(24),
	tag.Flags32("interpolation_flags"),
	tag.ARGB("color_lower_bound"),
	tag.ARGB("color_upper_bound"),
	tag.Pad(12),
	tag.Ref("primary_cube_map", "bitm"),
	tag.Pad(2),
	tag.Enum16("texture_animation_function"),
	tag.Float("texture_animation_period"),
	tag.Ref("secondary_cube_map", "bitm"),
	tag.Pad(2),
	tag.Enum16("yaw_function"),
	tag.Float("yaw_period"),
	tag.Pad(2),
	tag.Enum16("roll_function"),
	tag.Float("roll_period"),
	tag.Pad(2),
	tag.Enum16("pitch_function"),
	tag.Float("pitch_period"),
	tag.Pad(8),
	tag.Ref("lens_flare", "lens"),
	tag.Pad(24),
	tag.Float("intensity"),
	tag.RGB("color"),
	tag.Pad(16),
	tag.Float("duration"),
	tag.Pad(2),
	tag.Enum16("falloff_function"),
	tag.Pad(8),
)

var brightnessAnimation = tag.NewBlockDef("brightness_animation", 1, tag.NewStruct("function",
	tag.Enum16("function"),
	tag.Flags16("flags"),
	tag.Float("period"),
	tag.Bounds("range"),
))

func lightBody(retail bool) []tag.Field {
	f := []tag.Field{
		tag.Flags32("flags"),
		tag.Enum16("type"),
		tag.Pad(2),
		tag.Bounds("size_modifier"),
		tag.Float("shadow_tap_bias"),
		tag.Float("color_throw_distance"),
		tag.ARGB8("shadow_color"),
		tag.RGBA("color"),
		tag.Float("intensity"),
		tag.ShortBounds("fade_distance"),
		tag.Bounds("falloff_range"),
		tag.Ref("lens_flare", "lens"),
		tag.Ref("gel_map", "bitm"),
		tag.Block("brightness_animation", brightnessAnimation),
		tag.Enum16("specular_mask"),
		tag.Pad(2),
	}
	if retail {
		f = append(f,
			tag.Float("near_width"),
			tag.Float("height_stretch"),
			tag.Float("field_of_view"),
		)
	}
	return f
}

var lightSchema = tag.NewSchema(GroupLight, "light", 3).
	WithBody(lightClassic, tag.LayoutClassic).
	WithBody(tag.NewStruct("light", lightBody(false)...), secondGen[:2]...).
	WithBody(tag.NewStruct("light", lightBody(true)...), tag.LayoutRetail)
