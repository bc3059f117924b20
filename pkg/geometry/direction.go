// Package geometry classifies and transforms the cuboid elements of block
// models. Coordinates live in the 0-16 space of a single block.
package geometry

import "strings"

// BlockSize is the edge length of a block in model units.
const BlockSize = 16.0

// Direction names the side of a block a cuboid sits against.
type Direction string

const (
	North  Direction = "north"
	South  Direction = "south"
	East   Direction = "east"
	West   Direction = "west"
	Up     Direction = "up"
	Down   Direction = "down"
	Center Direction = "center"
	// None is returned for cuboids that cannot be attributed to one side.
	None Direction = ""
)

// Opposite returns the direction on the other side of the same axis.
// Center and None are their own opposite.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	case Up:
		return Down
	case Down:
		return Up
	default:
		return d
	}
}

// Axis returns the axis a face direction lies on.
func (d Direction) Axis() (Axis, bool) {
	switch d {
	case East, West:
		return X, true
	case Up, Down:
		return Y, true
	case North, South:
		return Z, true
	default:
		return 0, false
	}
}

// ParseDirection accepts the face names used by model files. "bottom" is
// an alias of down used by older models.
func ParseDirection(s string) (Direction, bool) {
	switch d := Direction(strings.ToLower(s)); d {
	case North, South, East, West, Up, Down, Center:
		return d, true
	case "bottom":
		return Down, true
	default:
		return None, false
	}
}

// Axis is one of the three model axes.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	default:
		return "?"
	}
}

// ParseAxis accepts "x", "y" or "z" in any case.
func ParseAxis(s string) (Axis, bool) {
	switch strings.ToLower(s) {
	case "x":
		return X, true
	case "y":
		return Y, true
	case "z":
		return Z, true
	default:
		return 0, false
	}
}

// low and high are the directions of the 0 and 16 sides of an axis.
func (a Axis) low() Direction {
	return [...]Direction{West, Down, North}[a]
}

func (a Axis) high() Direction {
	return [...]Direction{East, Up, South}[a]
}

// Vec3 is a point or offset in model space.
type Vec3 [3]float64

// classifyOrder is the order axes are tried in when more than one could
// decide the direction.
var classifyOrder = [...]Axis{Y, Z, X}

// Classify reports which side of the block the cuboid from-to sits against.
//
// A cuboid spanning the whole block on every axis is Center. Otherwise the
// first axis (y, then z, then x) that touches exactly one block boundary,
// while the other two axes stay inside 0-16, gives the direction: touching 0
// means down, north or west, touching 16 means up, south or east. Anything
// else is None.
func Classify(from, to Vec3) Direction {
	full := true
	for a := X; a <= Z; a++ {
		if from[a] > 0 || to[a] < BlockSize {
			full = false
			break
		}
	}
	if full {
		return Center
	}

	for _, a := range classifyOrder {
		touchesLow := from[a] <= 0
		touchesHigh := to[a] >= BlockSize
		if touchesLow == touchesHigh {
			continue
		}
		if !othersInside(a, from, to) {
			continue
		}
		if touchesLow {
			return a.low()
		}
		return a.high()
	}
	return None
}

func othersInside(skip Axis, from, to Vec3) bool {
	for a := X; a <= Z; a++ {
		if a == skip {
			continue
		}
		if from[a] < 0 || to[a] > BlockSize {
			return false
		}
	}
	return true
}
