package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		from Vec3
		to   Vec3
		want Direction
	}{
		{"full cube", Vec3{0, 0, 0}, Vec3{16, 16, 16}, Center},
		{"bottom slab", Vec3{0, 0, 0}, Vec3{16, 2, 16}, Down},
		{"top slab", Vec3{0, 14, 0}, Vec3{16, 16, 16}, Up},
		{"east wall", Vec3{14, 0, 0}, Vec3{16, 16, 16}, East},
		{"west wall", Vec3{0, 0, 0}, Vec3{2, 16, 16}, West},
		{"north wall", Vec3{0, 0, 0}, Vec3{16, 16, 2}, North},
		{"south wall", Vec3{0, 0, 14}, Vec3{16, 16, 16}, South},
		{"floating cube", Vec3{4, 4, 4}, Vec3{12, 12, 12}, None},
		{"sticks out sideways", Vec3{-2, 0, 0}, Vec3{18, 2, 16}, None},
		{"small floor tile", Vec3{4, 0, 4}, Vec3{12, 1, 12}, Down},
		{"column touching floor and ceiling", Vec3{6, 0, 6}, Vec3{10, 16, 10}, None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.from, tt.to))
		})
	}
}

func TestOpposite(t *testing.T) {
	pairs := map[Direction]Direction{
		North: South, East: West, Up: Down, Center: Center, None: None,
	}
	for d, want := range pairs {
		assert.Equal(t, want, d.Opposite(), string(d))
		assert.Equal(t, d, want.Opposite(), string(want))
	}
}

func TestParse(t *testing.T) {
	d, ok := ParseDirection("Bottom")
	assert.True(t, ok)
	assert.Equal(t, Down, d)

	_, ok = ParseDirection("sideways")
	assert.False(t, ok)

	a, ok := ParseAxis("Z")
	assert.True(t, ok)
	assert.Equal(t, Z, a)
	assert.Equal(t, "z", a.String())
}
