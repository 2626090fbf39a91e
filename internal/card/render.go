package card

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	lru "github.com/hashicorp/golang-lru/v2"
	qrcode "github.com/skip2/go-qrcode"
)

const renderCacheSize = 16

var errEmptyText = errors.New("render: empty text")

// Style controls how a code is drawn.
type Style struct {
	// Size is the upper bound of the square image side in pixels.
	Size int
	// Margin is the quiet zone width in modules.
	Margin     int
	Foreground color.Color
	Background color.Color
	Level      qrcode.RecoveryLevel
}

// DefaultStyle draws bright green modules on black.
var DefaultStyle = Style{
	Size:       300,
	Margin:     2,
	Foreground: color.RGBA{R: 0x00, G: 0xff, B: 0x9d, A: 0xff},
	Background: color.RGBA{A: 0xff},
	Level:      qrcode.Medium,
}

// PlainStyle is black on white with a standard quiet zone, for printing.
var PlainStyle = Style{
	Size:       300,
	Margin:     4,
	Foreground: color.Black,
	Background: color.White,
	Level:      qrcode.Medium,
}

// Renderer turns card text into PNG images and keeps recent renders.
type Renderer struct {
	style Style
	cache *lru.Cache[string, []byte]
}

// NewRenderer returns a renderer drawing with style.
func NewRenderer(style Style) *Renderer {
	cache, _ := lru.New[string, []byte](renderCacheSize)
	return &Renderer{style: style, cache: cache}
}

// Style returns the style the renderer draws with.
func (r *Renderer) Style() Style { return r.style }

// Render returns the PNG encoding of a QR code holding text.
func (r *Renderer) Render(text string) ([]byte, error) {
	if b, ok := r.cache.Get(text); ok {
		return bytes.Clone(b), nil
	}
	img, err := Draw(text, r.style)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	r.cache.Add(text, buf.Bytes())
	return bytes.Clone(buf.Bytes()), nil
}

// RenderDataURL returns the PNG as a data URI suitable for inline display.
func (r *Renderer) RenderDataURL(text string) (string, error) {
	b, err := r.Render(text)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(b), nil
}

// Draw builds the code image for text. Modules are scaled by a whole number
// of pixels, so the side is the largest multiple of the module count not
// above style.Size.
func Draw(text string, style Style) (image.Image, error) {
	if text == "" {
		return nil, errEmptyText
	}
	q, err := qrcode.New(text, style.Level)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	q.DisableBorder = true
	bitmap := q.Bitmap()

	modules := len(bitmap) + 2*style.Margin
	scale := style.Size / modules
	if scale < 1 {
		scale = 1
	}
	side := modules * scale

	img := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: style.Background}, image.Point{}, draw.Src)
	fg := &image.Uniform{C: style.Foreground}
	for y, row := range bitmap {
		for x, dark := range row {
			if !dark {
				continue
			}
			px := (x + style.Margin) * scale
			py := (y + style.Margin) * scale
			draw.Draw(img, image.Rect(px, py, px+scale, py+scale), fg, image.Point{}, draw.Src)
		}
	}
	return img, nil
}
