package geometry

import (
	"testing"

	"github.com/wildstyl3r/gotrim/internal/vec"
)

func TestInside(t *testing.T) {
	slab := Slab{ZMin: 0, ZMax: 4000}
	tests := []struct {
		name   string
		pos    vec.Vec3
		inside bool
	}{
		{"Origin on the surface", vec.Vec3{0, 0, 0}, true},
		{"Interior", vec.Vec3{100, -50, 2000}, true},
		{"Back surface", vec.Vec3{0, 0, 4000}, true},
		{"In front of the slab", vec.Vec3{0, 0, -1e-9}, false},
		{"Beyond the slab", vec.Vec3{0, 0, 4000.0001}, false},
		{"Far away laterally but inside", vec.Vec3{1e9, 1e9, 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := slab.Inside(tt.pos); got != tt.inside {
				t.Errorf("Inside(%v) = %v, want %v", tt.pos, got, tt.inside)
			}
		})
	}
}

func TestInsideEach(t *testing.T) {
	slab := Slab{ZMin: -10, ZMax: 10}
	pos := []vec.Vec3{{0, 0, -11}, {0, 0, -10}, {0, 0, 0}, {0, 0, 10}, {0, 0, 11}}
	want := []bool{false, true, true, true, false}
	got := make([]bool, len(pos))
	slab.InsideEach(got, pos)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
