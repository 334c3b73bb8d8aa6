// Package render composes the collectible ticket image: both team logos,
// the score, and the kickoff date on a fixed-size canvas.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/matchmint/matchmint/internal/domain/model"
	"github.com/matchmint/matchmint/pkg/naming"
)

// Canvas geometry constants. These pin the published pixel layout.
const (
	canvasWidth  = 2048
	canvasHeight = 1024

	// Logos are downscaled (never upscaled) into this bounding box; width and
	// height clamp independently.
	logoMaxWidth  = 384
	logoMaxHeight = 512

	scoreFontSize = 256
	// scoreGlyphWidth is the per-character advance estimate used to center the
	// score text without measuring the rendered string.
	scoreGlyphWidth = scoreFontSize / 7

	dateFontSize = 64
	// dateOffsetX shifts the date text left of the horizontal center.
	dateOffsetX = 200
)

var (
	backgroundColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	scoreColor      = color.NRGBA{B: 0xff, A: 0xff}
	dateColor       = color.NRGBA{A: 0xff}
)

// Option applies a configuration option to the Compositor.
type Option func(*Compositor)

// WithWorkDir sets the directory composed images are written to.
func WithWorkDir(dir string) Option {
	return func(c *Compositor) {
		if dir != "" {
			c.workDir = dir
		}
	}
}

// Compositor renders ticket images. Safe for concurrent use; the font faces
// are guarded because glyph rasterization mutates face-internal caches.
type Compositor struct {
	workDir string

	mu        sync.Mutex
	scoreFace font.Face
	dateFace  font.Face
}

// New creates a Compositor with the embedded display fonts loaded.
func New(opts ...Option) (*Compositor, error) {
	c := &Compositor{
		workDir: os.TempDir(),
	}

	for _, opt := range opts {
		opt(c)
	}

	var err error
	c.scoreFace, c.dateFace, err = loadFaces()
	if err != nil {
		return nil, err
	}

	return c, nil
}

// Compose decodes both logo files, lays out the canvas, and writes the result
// as a PNG named by the ticket's content hash. The input logo files are left
// in place; their deletion belongs to the caller.
func (c *Compositor) Compose(homeLogoPath, guestLogoPath string, t *model.Ticket) (string, error) {
	dateText, err := t.DateText()
	if err != nil {
		return "", err
	}

	home, err := imaging.Open(homeLogoPath)
	if err != nil {
		return "", fmt.Errorf("%w: home team logo: %w", ErrDecode, err)
	}
	guest, err := imaging.Open(guestLogoPath)
	if err != nil {
		return "", fmt.Errorf("%w: guest team logo: %w", ErrDecode, err)
	}

	canvas := imaging.New(canvasWidth, canvasHeight, backgroundColor)

	homeFit := clampLogo(home)
	canvas = imaging.Paste(canvas, homeFit, image.Pt(
		canvasWidth/12,
		(canvasHeight-homeFit.Bounds().Dy())/2,
	))

	guestFit := clampLogo(guest)
	canvas = imaging.Paste(canvas, guestFit, image.Pt(
		canvasWidth-canvasWidth/12-guestFit.Bounds().Dx(),
		(canvasHeight-guestFit.Bounds().Dy())/2,
	))

	score := t.ScoreText()
	c.mu.Lock()
	drawText(canvas, c.scoreFace, score,
		canvasWidth/2-len(score)*scoreGlyphWidth,
		canvasHeight/2-scoreFontSize,
		scoreColor,
	)
	drawText(canvas, c.dateFace, dateText,
		canvasWidth/2-dateOffsetX,
		canvasHeight/2,
		dateColor,
	)
	c.mu.Unlock()

	path := filepath.Join(c.workDir, naming.Filename(t.Hash(), ".png"))
	if err := imaging.Save(canvas, path); err != nil {
		return "", fmt.Errorf("%w: save canvas: %w", ErrRender, err)
	}
	return path, nil
}

// clampLogo downscales img so it fits the logo bounding box. Dimensions clamp
// independently; a logo already inside the box passes through untouched.
func clampLogo(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > logoMaxWidth {
		w = logoMaxWidth
	}
	if h > logoMaxHeight {
		h = logoMaxHeight
	}
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// drawText draws text with its top edge at y. The drawer positions by
// baseline, so the face's ascent is added.
func drawText(dst draw.Image, face font.Face, text string, x, y int, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}
