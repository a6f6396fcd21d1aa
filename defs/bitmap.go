package defs

import (
	"github.com/tagtools/tagfile/tag"
)

var bitmapDataFields = []tag.Field{
	tag.Uint32("signature"),
	tag.Int16("width"),
	tag.Int16("height"),
	tag.Int16("depth"),
	tag.Enum16("type"),
	tag.Enum16("format"),
	tag.Flags16("flags"),
	tag.Int16("registration_x"),
	tag.Int16("registration_y"),
	tag.Int16("mipmap_count"),
	tag.Pad(2),
	tag.Uint32("pixels_offset"),
	tag.Uint32("pixels_size"),
	tag.Pad(16),
}

var bitmapDataV0 = tag.NewStruct("bitmap data", bitmapDataFields...)

// Version 1 adds the level of detail adjustment used by retail builds.
var bitmapDataV1 = tag.NewStruct("bitmap data", fields(bitmapDataFields, []tag.Field{
	tag.Int16("lod_adjust"),
	tag.Pad(2),
})...)

func bitmapDataBlock(retail bool) *tag.BlockDef {
	def := tag.NewBlockDef("bitmaps", 2048, bitmapDataV0)
	if retail {
		def.WithVersion(1, bitmapDataV1)
	}
	return def
}

var spriteBlock = tag.NewBlockDef("sprites", 64, tag.NewStruct("sprite",
	tag.Int16("bitmap_index"),
	tag.Pad(2),
	tag.Pad(4),
	tag.Float("left"),
	tag.Float("right"),
	tag.Float("top"),
	tag.Float("bottom"),
	tag.Vector2("registration_point"),
))

var sequenceBlock = tag.NewBlockDef("sequences", 256, tag.NewStruct("sequence",
	tag.String32("name"),
	tag.Int16("first_bitmap_index"),
	tag.Int16("bitmap_count"),
	tag.Pad(16),
	tag.Block("sprites", spriteBlock),
))

func bitmapBody(retail bool) []tag.Field {
	f := []tag.Field{
		tag.Enum16("type"),
		tag.Enum16("format"),
		tag.Enum16("usage"),
		tag.Flags16("flags"),
		tag.Float("detail_fade_factor"),
		tag.Float("sharpen_amount"),
		tag.Float("bump_height"),
		tag.Enum16("sprite_budget_size"),
		tag.Int16("sprite_budget_count"),
		tag.Int16("color_plate_width"),
		tag.Int16("color_plate_height"),
		tag.RawLeadPad("compressed_color_plate", 4),
		tag.RawData("processed_pixel_data"),
		tag.Float("blur_filter_size"),
		tag.Float("alpha_bias"),
		tag.Int16("mipmap_count"),
		tag.Enum16("sprite_usage"),
		tag.Int16("sprite_spacing"),
		tag.Pad(2),
		tag.Block("sequences", sequenceBlock),
		tag.Block("bitmaps", bitmapDataBlock(retail)),
	}
	if retail {
		f = append(f,
			tag.Enum16("force_format"),
			tag.Pad(2),
			tag.Float("lod_bias"),
		)
	}
	return f
}

var bitmapSchema = tag.NewSchema(GroupBitmap, "bitmap", 7).
	WithBody(tag.NewStruct("bitmap", bitmapBody(false)...), tag.LayoutClassic, tag.LayoutLegacy, tag.LayoutIntermediate).
	WithBody(tag.NewStruct("bitmap", bitmapBody(true)...), tag.LayoutRetail)
