package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVideoTransform(t *testing.T) {
	t.Run("unstretched cover fit", func(t *testing.T) {
		m := videoTransform(640, 480, 1280, 720, 640, 1)

		x, y := m.Apply(0, 0)
		assert.InDelta(t, 0, x, 1e-6)
		assert.InDelta(t, -120, y, 1e-6)

		x, y = m.Apply(640, 480)
		assert.InDelta(t, 1280, x, 1e-6)
		assert.InDelta(t, 840, y, 1e-6)
	})

	t.Run("nose column is a fixed point of the stretch", func(t *testing.T) {
		m := videoTransform(1280, 720, 1280, 720, 400, 1.5)

		x, y := m.Apply(400, 300)
		assert.InDelta(t, 400, x, 1e-6)
		assert.InDelta(t, 300, y, 1e-6)

		x, _ = m.Apply(500, 300)
		assert.InDelta(t, 550, x, 1e-6)

		x, _ = m.Apply(300, 300)
		assert.InDelta(t, 250, x, 1e-6)
	})
}

func TestFade(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}

	assert.Equal(t, red, fade(red, 1))
	assert.Equal(t, color.RGBA{128, 0, 0, 128}, fade(red, 0.5))
	assert.Equal(t, color.RGBA{}, fade(red, 0))
	assert.Equal(t, color.RGBA{}, fade(red, -0.1))
	assert.Equal(t, red, fade(red, 1.2))
}
