package geometry

import (
	"math/rand"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/value"
)

// Elements returns the element list of a model, or nil when it has none.
func Elements(model *value.Value) []*value.Value {
	els, ok := model.Get("elements")
	if !ok {
		return nil
	}
	return els.Items()
}

// ReadVec reads a three number array such as "from" or "origin".
func ReadVec(v *value.Value) (Vec3, bool) {
	var out Vec3
	if v.Len() != 3 || !v.IsArray() {
		return out, false
	}
	for i, item := range v.Items() {
		f, ok := item.AsFloat()
		if !ok {
			return out, false
		}
		out[i] = f
	}
	return out, true
}

// VecValue encodes a Vec3 as a JSON array.
func VecValue(v Vec3) *value.Value {
	return value.NewArray(value.NewFloat(v[0]), value.NewFloat(v[1]), value.NewFloat(v[2]))
}

func bounds(el *value.Value) (Vec3, Vec3, bool) {
	fromV, okF := el.Get("from")
	toV, okT := el.Get("to")
	if !okF || !okT {
		return Vec3{}, Vec3{}, false
	}
	from, okF := ReadVec(fromV)
	to, okT := ReadVec(toV)
	return from, to, okF && okT
}

// ElementDirection classifies one model element.
func ElementDirection(el *value.Value) Direction {
	from, to, ok := bounds(el)
	if !ok {
		return None
	}
	return Classify(from, to)
}

// MarginOptions configures Margin. Every face is pushed out by Offset plus
// a uniform random amount in [0, RandomOffset).
type MarginOptions struct {
	Offset       float64
	RandomOffset float64
}

// Margin pushes the faces of every non-center element outward so
// overlapping models stop z-fighting. The model gets one random offset per
// direction, drawn north, east, south, west, up, down, and each element one
// more for its faces lying on the block boundary. rng must be private to
// the caller so a seed reproduces the same output. It returns how many
// elements moved.
func Margin(model *value.Value, opts MarginOptions, rng *rand.Rand) (int, error) {
	elements := Elements(model)
	if len(elements) == 0 {
		return 0, errors.New(errors.ErrPatchApply, "model has no elements")
	}

	draw := func() float64 {
		return rng.Float64()*opts.RandomOffset + opts.Offset
	}

	sideOffset := map[Direction]float64{}
	for _, d := range []Direction{North, East, South, West, Up, Down} {
		sideOffset[d] = draw()
	}

	moved := 0
	for _, el := range elements {
		from, to, ok := bounds(el)
		faceOffset := draw()
		if !ok {
			continue
		}
		dir := Classify(from, to)
		if dir == Center {
			continue
		}

		switch dir {
		case North:
			from[Z] -= sideOffset[North]
		case East:
			to[X] += sideOffset[East]
		case South:
			to[Z] += sideOffset[South]
		case West:
			from[X] -= sideOffset[West]
		case Up:
			to[Y] += sideOffset[Up]
		case Down:
			from[Y] -= sideOffset[Down]
		}

		for a := X; a <= Z; a++ {
			if from[a] == 0 {
				from[a] -= faceOffset
			}
			if to[a] == BlockSize {
				to[a] += faceOffset
			}
		}

		el.Set("from", VecValue(from))
		el.Set("to", VecValue(to))
		moved++
	}
	return moved, nil
}

// Translate moves every element, and its rotation origin, by offset.
func Translate(model *value.Value, offset Vec3) {
	for _, el := range Elements(model) {
		from, to, ok := bounds(el)
		if !ok {
			continue
		}
		for a := X; a <= Z; a++ {
			from[a] += offset[a]
			to[a] += offset[a]
		}
		el.Set("from", VecValue(from))
		el.Set("to", VecValue(to))

		if origin, ok := rotationOrigin(el); ok {
			for a := X; a <= Z; a++ {
				origin[a] += offset[a]
			}
			setRotationOrigin(el, origin)
		}
	}
}

// Flip mirrors every element about origin on the given axes. Faces on a
// flipped axis swap names with their opposite, and so do cullface
// references. A rotation about any other axis has its angle negated.
func Flip(model *value.Value, axes []Axis, origin Vec3) {
	flipped := map[Axis]bool{}
	for _, a := range axes {
		flipped[a] = true
	}
	if len(flipped) == 0 {
		return
	}

	for _, el := range Elements(model) {
		from, to, ok := bounds(el)
		if !ok {
			continue
		}
		for a := range flipped {
			from[a], to[a] = 2*origin[a]-to[a], 2*origin[a]-from[a]
		}
		el.Set("from", VecValue(from))
		el.Set("to", VecValue(to))

		flipRotation(el, flipped, origin)
		flipFaces(el, flipped)
	}
}

func rotationOrigin(el *value.Value) (Vec3, bool) {
	rot, ok := el.Get("rotation")
	if !ok {
		return Vec3{}, false
	}
	o, ok := rot.Get("origin")
	if !ok {
		return Vec3{}, false
	}
	return ReadVec(o)
}

func setRotationOrigin(el *value.Value, origin Vec3) {
	if rot, ok := el.Get("rotation"); ok {
		rot.Set("origin", VecValue(origin))
	}
}

func flipRotation(el *value.Value, flipped map[Axis]bool, origin Vec3) {
	rot, ok := el.Get("rotation")
	if !ok || !rot.IsObject() {
		return
	}
	if o, ok := rotationOrigin(el); ok {
		for a := range flipped {
			o[a] = 2*origin[a] - o[a]
		}
		setRotationOrigin(el, o)
	}

	axisV, _ := rot.Get("axis")
	axisName, _ := axisV.AsString()
	rotAxis, ok := ParseAxis(axisName)
	if !ok {
		return
	}
	angleV, ok := rot.Get("angle")
	if !ok {
		return
	}
	angle, ok := angleV.AsFloat()
	if !ok {
		return
	}
	for a := range flipped {
		if a != rotAxis {
			angle = -angle
		}
	}
	rot.Set("angle", value.NewFloat(angle))
}

func flipFaces(el *value.Value, flipped map[Axis]bool) {
	faces, ok := el.Get("faces")
	if !ok || !faces.IsObject() {
		return
	}

	relabel := func(name string) string {
		d, ok := ParseDirection(name)
		if !ok {
			return name
		}
		if a, ok := d.Axis(); ok && flipped[a] {
			return string(d.Opposite())
		}
		return name
	}

	out := value.NewObject()
	for _, name := range faces.Keys() {
		face, _ := faces.Get(name)
		if cull, ok := face.Get("cullface"); ok {
			if s, ok := cull.AsString(); ok {
				face.Set("cullface", value.NewString(relabel(s)))
			}
		}
		out.Set(relabel(name), face)
	}
	el.Set("faces", out)
}
