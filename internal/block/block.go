package block

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/colornames"
)

// Type is the block-type code stored in chunk block arrays.
type Type uint8

const (
	Air Type = iota
	Grass
	Dirt
	Stone
	Wood
	Leaves
	Sand
	Water

	numTypes
)

// Definition defines the properties of a block type
type Definition struct {
	ID            Type
	Name          string
	IsSolid       bool
	IsTransparent bool
	Color         mgl32.Vec3
}

var definitions = [numTypes]Definition{
	Air:    {ID: Air, Name: "air", IsTransparent: true},
	Grass:  {ID: Grass, Name: "grass", IsSolid: true, Color: rgb(colornames.Forestgreen.R, colornames.Forestgreen.G, colornames.Forestgreen.B)},
	Dirt:   {ID: Dirt, Name: "dirt", IsSolid: true, Color: rgb(colornames.Sienna.R, colornames.Sienna.G, colornames.Sienna.B)},
	Stone:  {ID: Stone, Name: "stone", IsSolid: true, Color: rgb(colornames.Slategray.R, colornames.Slategray.G, colornames.Slategray.B)},
	Wood:   {ID: Wood, Name: "wood", IsSolid: true, Color: rgb(colornames.Saddlebrown.R, colornames.Saddlebrown.G, colornames.Saddlebrown.B)},
	Leaves: {ID: Leaves, Name: "leaves", IsSolid: true, IsTransparent: true, Color: rgb(colornames.Darkgreen.R, colornames.Darkgreen.G, colornames.Darkgreen.B)},
	Sand:   {ID: Sand, Name: "sand", IsSolid: true, Color: rgb(colornames.Khaki.R, colornames.Khaki.G, colornames.Khaki.B)},
	Water:  {ID: Water, Name: "water", IsTransparent: true, Color: rgb(colornames.Royalblue.R, colornames.Royalblue.G, colornames.Royalblue.B)},
}

func rgb(r, g, b uint8) mgl32.Vec3 {
	return mgl32.Vec3{float32(r) / 255, float32(g) / 255, float32(b) / 255}
}

// FromID converts a raw ID into a block type.
func FromID(id uint8) (Type, error) {
	if id >= uint8(numTypes) {
		return Air, fmt.Errorf("unknown block id %d", id)
	}
	return Type(id), nil
}

// All returns every registered block type in ID order.
func All() []Type {
	out := make([]Type, 0, numTypes)
	for t := Air; t < numTypes; t++ {
		out = append(out, t)
	}
	return out
}

// Def returns the definition for t. Unknown types resolve to air.
func (t Type) Def() Definition {
	if t >= numTypes {
		return definitions[Air]
	}
	return definitions[t]
}

func (t Type) String() string {
	if t >= numTypes {
		return fmt.Sprintf("block(%d)", uint8(t))
	}
	return definitions[t].Name
}

// IsSolid reports whether the player collides with t.
func (t Type) IsSolid() bool {
	return t.Def().IsSolid
}

// IsTransparent reports whether faces behind t stay visible.
func (t Type) IsTransparent() bool {
	return t.Def().IsTransparent
}

// Color is the flat vertex colour used by the mesher and the minimap.
func (t Type) Color() mgl32.Vec3 {
	return t.Def().Color
}
