package drawable

import (
	"github.com/spaghettifunk/orrery/engine/math"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
)

// faceVertex carries the index of the face it belongs to. The solid_face
// program looks its colour up in a pixel stage table.
type faceVertex struct {
	Pos  math.Vec3
	Face float32
}

func (v faceVertex) Position() math.Vec3                 { return v.Pos }
func (v faceVertex) WithPosition(p math.Vec3) faceVertex { v.Pos = p; return v }

var faceLayout = []metadata.VertexElement{
	{SemanticName: "Position", Location: 0, Format: metadata.FormatR32G32B32Float, Offset: 0},
	{SemanticName: "Face", Location: 1, Format: metadata.FormatR32Float, Offset: 12},
}

type colourVertex struct {
	Pos    math.Vec3
	Colour math.Vec4
}

func (v colourVertex) Position() math.Vec3                   { return v.Pos }
func (v colourVertex) WithPosition(p math.Vec3) colourVertex { v.Pos = p; return v }

var colourLayout = []metadata.VertexElement{
	{SemanticName: "Position", Location: 0, Format: metadata.FormatR32G32B32Float, Offset: 0},
	{SemanticName: "Color", Location: 1, Format: metadata.FormatR32G32B32A32Float, Offset: 12},
}

type texturedVertex struct {
	Pos math.Vec3
	UV  math.Vec2
}

func (v texturedVertex) Position() math.Vec3                      { return v.Pos }
func (v texturedVertex) WithPosition(p math.Vec3) texturedVertex  { v.Pos = p; return v }
func (v texturedVertex) WithTexcoord(uv math.Vec2) texturedVertex { v.UV = uv; return v }

var texturedLayout = []metadata.VertexElement{
	{SemanticName: "Position", Location: 0, Format: metadata.FormatR32G32B32Float, Offset: 0},
	{SemanticName: "TexCoord", Location: 1, Format: metadata.FormatR32G32Float, Offset: 12},
}

// FaceColours is the pixel stage colour table of the solid_face program.
type FaceColours struct {
	Colours [6]math.Vec4
}

var defaultFaceColours = FaceColours{
	Colours: [6]math.Vec4{
		{X: 1.0, Y: 0.0, Z: 1.0, W: 1.0},
		{X: 1.0, Y: 0.0, Z: 0.0, W: 1.0},
		{X: 0.0, Y: 1.0, Z: 0.0, W: 1.0},
		{X: 0.0, Y: 0.0, Z: 1.0, W: 1.0},
		{X: 1.0, Y: 1.0, Z: 0.0, W: 1.0},
		{X: 0.0, Y: 1.0, Z: 1.0, W: 1.0},
	},
}
