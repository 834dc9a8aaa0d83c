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

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation lives in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
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

func TestTransformPointScale(t *testing.T) {
	m := Scale(2, 2, 2)
	result := m.TransformPoint([3]float32{1, 2, 3})

	expected := [3]float32{2, 4, 6}
	if result != expected {
		t.Errorf("TransformPoint with scale: got %v, want %v", result, expected)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Translate(10, 20, 30).Mul(Scale(2, 1, 1))
	got := m.TransformDirection([3]float32{1, 1, 0})

	want := [3]float32{2, 1, 0}
	if got != want {
		t.Errorf("TransformDirection: got %v, want %v", got, want)
	}
}

func TestTranspose(t *testing.T) {
	m := Translate(1, 2, 3)
	tr := m.Transpose()

	if tr[3] != 1 || tr[7] != 2 || tr[11] != 3 {
		t.Errorf("Transpose bottom row: got (%f, %f, %f), want (1, 2, 3)", tr[3], tr[7], tr[11])
	}
	if tr.Transpose() != m {
		t.Error("Transpose twice should return the original matrix")
	}
}

func TestFromColumnMajor64(t *testing.T) {
	src := [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 4, 5, 6, 1}
	if got := FromColumnMajor64(src); got != Translate(4, 5, 6) {
		t.Errorf("FromColumnMajor64: got %v, want Translate(4, 5, 6)", got)
	}
}

func TestTRSMatchesMathGL(t *testing.T) {
	tests := []struct {
		name  string
		t     Vec3
		axis  Vec3
		angle float32
		s     Vec3
	}{
		{"identity", Vec3{}, Vec3{0, 1, 0}, 0, Vec3{1, 1, 1}},
		{"translate only", Vec3{1, 2, 3}, Vec3{0, 1, 0}, 0, Vec3{1, 1, 1}},
		{"rotate y", Vec3{}, Vec3{0, 1, 0}, float32(math.Pi / 3), Vec3{1, 1, 1}},
		{"non-uniform", Vec3{-4, 0.5, 9}, Vec3{1, 0, 0}, 1.1, Vec3{2, 0.5, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rot := mgl32.QuatRotate(tt.angle, mgl32.Vec3{tt.axis.X, tt.axis.Y, tt.axis.Z})
			got := TRS(tt.t, quatFromMGL(rot), tt.s)

			want := mgl32.Translate3D(tt.t.X, tt.t.Y, tt.t.Z).
				Mul4(rot.Mat4()).
				Mul4(mgl32.Scale3D(tt.s.X, tt.s.Y, tt.s.Z))

			if !approxMat(mgl32.Mat4(got), want, 1e-5) {
				t.Errorf("TRS = %v, want %v", got, want)
			}
		})
	}
}

func TestInverseMatchesMathGL(t *testing.T) {
	m := TRS(Vec3{3, -1, 7}, quatFromMGL(mgl32.QuatRotate(0.7, mgl32.Vec3{0, 0, 1})), Vec3{2, 3, 0.5})

	got, ok := m.Inverse()
	if !ok {
		t.Fatal("Inverse reported a singular matrix")
	}

	want := mgl32.Mat4(m).Inv()
	if !approxMat(mgl32.Mat4(got), want, 1e-4) {
		t.Errorf("Inverse = %v, want %v", got, want)
	}

	product := m.Mul(got)
	if !approxMat(mgl32.Mat4(product), mgl32.Ident4(), 1e-4) {
		t.Errorf("M * M^-1 = %v, want identity", product)
	}
}

func TestInverseSingular(t *testing.T) {
	got, ok := Scale(1, 0, 1).Inverse()
	if ok {
		t.Error("Inverse of a singular matrix should report ok=false")
	}
	if got != Identity() {
		t.Errorf("Inverse of a singular matrix should be identity, got %v", got)
	}
}

func TestNormalMatrix(t *testing.T) {
	// Non-uniform scale: a surface normal along the squashed axis stays on that axis,
	// while the inverse-transpose scales it by the reciprocal.
	m := Translate(5, 5, 5).Mul(Scale(2, 1, 1))
	n := m.NormalMatrix()

	got := n.TransformDirection([3]float32{1, 0, 0})
	if abs(got[0]-0.5) > 1e-6 || got[1] != 0 || got[2] != 0 {
		t.Errorf("NormalMatrix x-axis: got %v, want (0.5, 0, 0)", got)
	}
	if n[12] != 0 || n[13] != 0 || n[14] != 0 {
		t.Errorf("NormalMatrix should carry no translation, got (%f, %f, %f)", n[12], n[13], n[14])
	}

	want := mgl32.Mat4(m).Mat3().Inv().Transpose()
	if !approxMat(mgl32.Mat4(n).Mat3().Mat4(), want.Mat4(), 1e-5) {
		t.Errorf("NormalMatrix linear part = %v, want %v", mgl32.Mat4(n).Mat3(), want)
	}
}

func TestDeterminant3x3(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		want float32
	}{
		{"identity", Identity(), 1},
		{"scale", Scale(2, 3, 4), 24},
		{"mirror", Scale(-1, 1, 1), -1},
		{"translation ignored", Translate(9, 9, 9), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Determinant3x3(); abs(got-tt.want) > 1e-6 {
				t.Errorf("Determinant3x3 = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApproxMatNearZero(t *testing.T) {
	// Elements that should be zero often come out as tiny residues; a
	// relative comparison would reject these.
	a := mgl32.Ident4()
	b := mgl32.Ident4()
	b[4] = 3e-8
	if !approxMat(a, b, 1e-6) {
		t.Error("approxMat rejected a near-zero residue")
	}
	b[4] = 1e-3
	if approxMat(a, b, 1e-6) {
		t.Error("approxMat accepted a real difference")
	}
}

// approxMat compares element-wise with an absolute tolerance.
func approxMat(a, b mgl32.Mat4, eps float32) bool {
	for i := range a {
		if abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
