package geom_test

import (
	"math"
	"testing"

	"github.com/plus3/munch/geom"
	"github.com/stretchr/testify/assert"
)

const epsilon = 1e-9

// face builds a landmark set with the five points the game reads and every other
// point at the origin.
func face(nose, headTop, upperLip, lowerLip, chin geom.Point) geom.Landmarks {
	l := make(geom.Landmarks, 468)
	l[geom.NoseTip] = nose
	l[geom.HeadTop] = headTop
	l[geom.UpperLip] = upperLip
	l[geom.LowerLip] = lowerLip
	l[geom.Chin] = chin
	return l
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b geom.Point
		want float64
	}{
		{"same point", geom.Point{X: 0.3, Y: 0.3}, geom.Point{X: 0.3, Y: 0.3}, 0},
		{"horizontal", geom.Point{X: 0.1, Y: 0.5}, geom.Point{X: 0.4, Y: 0.5}, 0.3},
		{"3-4-5", geom.Point{}, geom.Point{X: 3, Y: 4}, 5},
		{"negative coordinates", geom.Point{X: -1, Y: -1}, geom.Point{X: 2, Y: 3}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, geom.Distance(tt.a, tt.b), epsilon)
			assert.InDelta(t, tt.want, geom.Distance(tt.b, tt.a), epsilon)
		})
	}
}

func TestDistortPointIdentityAtFactorOne(t *testing.T) {
	nose := geom.Point{X: 0.42, Y: 0.37}
	points := []geom.Point{
		{X: 0, Y: 0},
		{X: 1, Y: 1},
		{X: 0.42, Y: 0.9},
		{X: -3.5, Y: 12},
		{X: 0.123456, Y: 0.654321},
		{X: 0.987654321, Y: 0.1},
		{X: 1e-9, Y: 0.5},
	}

	for _, p := range points {
		assert.Equal(t, p, geom.DistortPoint(p, nose, 1.0))
	}
}

func TestDistortPointIsLinearInNoseOffset(t *testing.T) {
	nose := geom.Point{X: 0.5, Y: 0.5}

	for _, fat := range []float64{1.0, 1.05, 1.5, 2.0} {
		for _, offset := range []float64{-0.3, -0.01, 0.02, 0.25} {
			single := geom.DistortPoint(geom.Point{X: nose.X + offset, Y: 0.1}, nose, fat)
			double := geom.DistortPoint(geom.Point{X: nose.X + 2*offset, Y: 0.1}, nose, fat)

			assert.InDelta(t, 2*(single.X-nose.X), double.X-nose.X, epsilon)
			assert.InDelta(t, offset*fat, single.X-nose.X, epsilon)
		}
	}
}

func TestDistortPointKeepsY(t *testing.T) {
	p := geom.DistortPoint(geom.Point{X: 0.2, Y: 0.77}, geom.Point{X: 0.5, Y: 0.1}, 1.8)
	assert.Equal(t, 0.77, p.Y)
	assert.InDelta(t, 0.5-0.3*1.8, p.X, epsilon)
}

func TestIsMouthOpen(t *testing.T) {
	headTop := geom.Point{X: 0.5, Y: 0.2}
	chin := geom.Point{X: 0.5, Y: 0.7}
	nose := geom.Point{X: 0.5, Y: 0.45}

	tests := []struct {
		name string
		gap  float64
		want bool
	}{
		{"closed", 0, false},
		{"slightly parted", 0.02, false},
		{"just below threshold", 0.024, false},
		{"just above threshold", 0.026, true},
		{"wide open", 0.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := face(nose, headTop, geom.Point{X: 0.5, Y: 0.55}, geom.Point{X: 0.5, Y: 0.55 + tt.gap}, chin)
			assert.Equal(t, tt.want, l.IsMouthOpen())
		})
	}
}

func TestIsMouthOpenScaleInvariant(t *testing.T) {
	faces := []geom.Landmarks{
		face(geom.Point{X: 0.5, Y: 0.45}, geom.Point{X: 0.5, Y: 0.2}, geom.Point{X: 0.5, Y: 0.55}, geom.Point{X: 0.5, Y: 0.6}, geom.Point{X: 0.5, Y: 0.7}),
		face(geom.Point{X: 0.4, Y: 0.4}, geom.Point{X: 0.41, Y: 0.1}, geom.Point{X: 0.4, Y: 0.5}, geom.Point{X: 0.4, Y: 0.51}, geom.Point{X: 0.39, Y: 0.8}),
		face(geom.Point{X: 0.6, Y: 0.5}, geom.Point{X: 0.6, Y: 0.3}, geom.Point{X: 0.61, Y: 0.6}, geom.Point{X: 0.6, Y: 0.622}, geom.Point{X: 0.6, Y: 0.72}),
	}

	for _, l := range faces {
		want := l.IsMouthOpen()
		for _, k := range []float64{0.1, 0.5, 2, 7.25, 1000} {
			scaled := l.Scale(k)
			assert.Equal(t, want, scaled.IsMouthOpen(), "scale %v", k)
			assert.InDelta(t, l.MouthRatio(), scaled.MouthRatio(), 1e-9)
		}
	}
}

func TestMouthRatioZeroFaceHeight(t *testing.T) {
	p := geom.Point{X: 0.5, Y: 0.5}
	l := face(p, p, geom.Point{X: 0.5, Y: 0.4}, geom.Point{X: 0.5, Y: 0.6}, p)

	assert.Zero(t, l.MouthRatio())
	assert.False(t, l.IsMouthOpen())
	assert.False(t, math.IsNaN(l.MouthRatio()))
}

func TestMouthCenterAndNose(t *testing.T) {
	l := face(
		geom.Point{X: 0.45, Y: 0.4},
		geom.Point{X: 0.5, Y: 0.1},
		geom.Point{X: 0.48, Y: 0.5},
		geom.Point{X: 0.52, Y: 0.6},
		geom.Point{X: 0.5, Y: 0.8},
	)

	assert.Equal(t, geom.Point{X: 0.45, Y: 0.4}, l.Nose())
	center := l.MouthCenter()
	assert.InDelta(t, 0.5, center.X, epsilon)
	assert.InDelta(t, 0.55, center.Y, epsilon)
}

func TestLandmarksCheck(t *testing.T) {
	assert.Error(t, geom.Landmarks(nil).Check())
	assert.Error(t, make(geom.Landmarks, geom.Chin).Check())
	assert.NoError(t, make(geom.Landmarks, geom.MinLandmarks).Check())
	assert.NoError(t, make(geom.Landmarks, 478).Check())
	assert.Nil(t, geom.Landmarks(nil).Scale(2))
}

func TestToScreen(t *testing.T) {
	assert.Equal(t, geom.Point{X: 320, Y: 120}, geom.Point{X: 0.5, Y: 0.25}.ToScreen(640, 480))
}

func TestCover(t *testing.T) {
	tests := []struct {
		name                   string
		srcW, srcH, dstW, dstH float64
		scale, offX, offY      float64
	}{
		{"same aspect", 1280, 720, 640, 360, 0.5, 0, 0},
		{"wider surface crops top and bottom", 640, 480, 1280, 720, 2, 0, -120},
		{"taller surface crops the sides", 1280, 720, 720, 1280, 1280.0 / 720, -(1280*(1280.0/720) - 720) / 2, 0},
		{"empty source", 0, 0, 100, 100, 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scale, offX, offY := geom.Cover(tt.srcW, tt.srcH, tt.dstW, tt.dstH)
			assert.InDelta(t, tt.scale, scale, 1e-9)
			assert.InDelta(t, tt.offX, offX, 1e-9)
			assert.InDelta(t, tt.offY, offY, 1e-9)

			if tt.srcW > 0 {
				assert.GreaterOrEqual(t, tt.srcW*scale, tt.dstW-1e-9)
				assert.GreaterOrEqual(t, tt.srcH*scale, tt.dstH-1e-9)
			}
		})
	}
}
