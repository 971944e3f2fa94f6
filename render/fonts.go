package render

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

type fonts struct {
	title *text.GoTextFace
	body  *text.GoTextFace
	score *text.GoTextFace
	glyph *text.GoTextFace
}

func loadFonts() (*fonts, error) {
	bold, err := text.NewGoTextFaceSource(bytes.NewReader(gobold.TTF))
	if err != nil {
		return nil, fmt.Errorf("load bold face: %w", err)
	}
	regular, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load regular face: %w", err)
	}

	return &fonts{
		title: &text.GoTextFace{Source: bold, Size: 48},
		body:  &text.GoTextFace{Source: regular, Size: 22},
		score: &text.GoTextFace{Source: bold, Size: 28},
		glyph: &text.GoTextFace{Source: bold, Size: glyphSize},
	}, nil
}

// drawText draws str horizontally centred on x with its top at y.
func drawText(dst *ebiten.Image, str string, face *text.GoTextFace, x, y float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	op.LayoutOptions.PrimaryAlign = text.AlignCenter
	op.LayoutOptions.LineSpacing = face.Size * 1.3
	text.Draw(dst, str, face, op)
}
