package math

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	result := m.TransformPoint([3]float32{1, 2, 3})

	expected := [3]float32{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestOrthoMatchesMathgl(t *testing.T) {
	got := Ortho(-50, 50, -50, 50, 0.1, 200)
	want := mgl32.Ortho(-50, 50, -50, 50, 0.1, 200)
	if !got.ApproxEqual(Mat4(want), 1e-6) {
		t.Errorf("Ortho = %v, want %v", got, want)
	}
}

func TestPerspectiveMatchesMathgl(t *testing.T) {
	fov := float32(math.Pi / 2)
	got := Perspective(fov, 1, 0.1, 100)
	want := mgl32.Perspective(fov, 1, 0.1, 100)
	if !got.ApproxEqual(Mat4(want), 1e-5) {
		t.Errorf("Perspective = %v, want %v", got, want)
	}
}

func TestLookAtMatchesMathgl(t *testing.T) {
	tests := []struct {
		name            string
		eye, center, up Vec3
	}{
		{"down the z axis", Vec3{0, 0, 5}, Vec3{0, 0, 0}, Vec3{0, 1, 0}},
		{"straight down with z up", Vec3{0, 50, 0}, Vec3{0, -50, 0}, Vec3{0, 0, 1}},
		{"oblique", Vec3{3, 7, -2}, Vec3{-1, 0, 4}, Vec3{0, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LookAt(tt.eye, tt.center, tt.up)
			want := mgl32.LookAtV(
				mgl32.Vec3{tt.eye.X, tt.eye.Y, tt.eye.Z},
				mgl32.Vec3{tt.center.X, tt.center.Y, tt.center.Z},
				mgl32.Vec3{tt.up.X, tt.up.Y, tt.up.Z},
			)
			if !got.ApproxEqual(Mat4(want), 1e-5) {
				t.Errorf("LookAt = %v, want %v", got, want)
			}
		})
	}
}

func TestViewForwardAndUp(t *testing.T) {
	m := LookAt(Vec3{1, 2, 3}, Vec3{1, 2, -7}, Vec3{0, 1, 0})

	if f := m.ViewForward(); !f.ApproxEqual(Vec3{0, 0, -1}, 1e-6) {
		t.Errorf("ViewForward = %v, want (0, 0, -1)", f)
	}
	if u := m.ViewUp(); !u.ApproxEqual(Vec3{0, 1, 0}, 1e-6) {
		t.Errorf("ViewUp = %v, want (0, 1, 0)", u)
	}
}

func TestInverse(t *testing.T) {
	m := Translate(4, -2, 9).Mul(Scale(2, 2, 2))
	if !m.Mul(m.Inverse()).ApproxEqual(Identity(), 1e-5) {
		t.Error("M * M^-1 should be identity")
	}
}

func TestRadians(t *testing.T) {
	if got := Radians(90); abs(got-float32(math.Pi/2)) > 1e-6 {
		t.Errorf("Radians(90) = %f, want pi/2", got)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
