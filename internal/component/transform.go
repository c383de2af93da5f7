package component

// Vec3 is a position, rotation or scale in world space.
type Vec3 struct {
	X, Y, Z float32
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Scale(f float32) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }
func (v Vec3) Array() [3]float32    { return [3]float32{v.X, v.Y, v.Z} }

// Transform places an entity in the world. Rotation is Euler angles in
// radians.
type Transform struct {
	Position Vec3
	Rotation Vec3
	Scale    Vec3
}

// NewTransform returns a transform at pos with unit scale.
func NewTransform(pos Vec3) Transform {
	return Transform{Position: pos, Scale: Vec3{1, 1, 1}}
}

// Velocity moves an entity's Transform each tick. Units per second.
type Velocity struct {
	Linear Vec3
}
