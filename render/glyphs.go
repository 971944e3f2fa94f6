package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/munch/geom"
)

// glyphSize is the nominal height of an item in pixels.
const glyphSize = 40

var (
	leafGreen  = color.RGBA{67, 176, 71, 255}
	leafDark   = color.RGBA{38, 110, 41, 255}
	meatBrown  = color.RGBA{160, 72, 45, 255}
	meatDark   = color.RGBA{110, 44, 26, 255}
	boneWhite  = color.RGBA{245, 240, 225, 255}
	baconRed   = color.RGBA{196, 62, 58, 255}
	baconFat   = color.RGBA{250, 206, 190, 255}
	crustGold  = color.RGBA{214, 154, 62, 255}
	crustShade = color.RGBA{160, 104, 36, 255}
)

// drawGlyph draws an item glyph centred on at. The stock glyphs are drawn as shapes
// since the bundled faces carry no emoji; anything else falls back to text.
func drawGlyph(dst *ebiten.Image, f *fonts, glyph string, at geom.Point) {
	x, y := float32(at.X), float32(at.Y)
	const h = glyphSize / 2

	switch glyph {
	case "🟩":
		vector.DrawFilledRect(dst, x-h+2, y-h+2, glyphSize-4, glyphSize-4, leafGreen, true)
		vector.StrokeRect(dst, x-h+2, y-h+2, glyphSize-4, glyphSize-4, 3, leafDark, true)

	case "🍖":
		vector.StrokeLine(dst, x-h+4, y+h-4, x, y, 6, boneWhite, true)
		vector.DrawFilledCircle(dst, x-h+4, y+h-8, 4, boneWhite, true)
		vector.DrawFilledCircle(dst, x-h+8, y+h-4, 4, boneWhite, true)
		vector.DrawFilledCircle(dst, x+4, y-4, h-4, meatBrown, true)
		vector.StrokeCircle(dst, x+4, y-4, h-4, 2, meatDark, true)

	case "🥓":
		const stripe = glyphSize / 5
		for i := range 5 {
			c := baconRed
			if i%2 == 1 {
				c = baconFat
			}
			shift := float32(i%2) * 4
			vector.DrawFilledRect(dst, x-h+shift, y-h+float32(i)*stripe, glyphSize-4, stripe, c, true)
		}

	case "🥮":
		vector.DrawFilledCircle(dst, x, y, h-1, crustGold, true)
		vector.StrokeCircle(dst, x, y, h-6, 2, crustShade, true)
		vector.StrokeLine(dst, x-6, y, x+6, y, 2, crustShade, true)
		vector.StrokeLine(dst, x, y-6, x, y+6, 2, crustShade, true)

	default:
		drawText(dst, glyph, f.glyph, at.X, at.Y-glyphSize*0.6, white)
	}
}
