package render

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// loadFaces parses the embedded Go fonts: the bold face for the score and the
// regular face for the date line.
func loadFaces() (score, date font.Face, err error) {
	score, err = newFace(gobold.TTF, scoreFontSize)
	if err != nil {
		return nil, nil, err
	}
	date, err = newFace(goregular.TTF, dateFontSize)
	if err != nil {
		return nil, nil, err
	}
	return score, date, nil
}

// newFace fixes a parsed TTF at the given size, 72 DPI.
func newFace(ttf []byte, size float64) (font.Face, error) {
	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("%w: parse font: %w", ErrRender, err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: build face: %w", ErrRender, err)
	}
	return face, nil
}
