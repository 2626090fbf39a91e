package card

import (
	"context"
	"errors"
	"image"
	"image/color"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"os"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/sirupsen/logrus"

	"saxiib/internal/domain"
)

// ErrNoCode is returned by Recognise when an image holds no readable code.
var ErrNoCode = errors.New("no code found")

// Scanner is the code-scan capability. Scan calls onText for every
// recognised code until onText returns false, ctx is done or the input is
// exhausted. Failing to start or keep capturing is reported as a
// *domain.CaptureError.
type Scanner interface {
	Scan(ctx context.Context, onText func(text string) bool) error
}

// ImageScanner recognises codes in still image files, one code per file.
// Files without a readable code are skipped.
type ImageScanner struct {
	Paths []string
	Log   *logrus.Entry
}

func (s ImageScanner) Scan(ctx context.Context, onText func(text string) bool) error {
	for _, path := range s.Paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		text, err := RecogniseFile(path)
		if errors.Is(err, ErrNoCode) {
			if s.Log != nil {
				s.Log.WithField("path", path).Debug("no code in image")
			}
			continue
		}
		if err != nil {
			return err
		}
		if !onText(text) {
			return nil
		}
	}
	return nil
}

// RecogniseFile reads an image file and returns the text of the code in it.
func RecogniseFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &domain.CaptureError{Err: err}
	}
	defer f.Close()
	return RecogniseReader(f)
}

// RecogniseReader decodes a PNG or JPEG stream and returns the code text.
func RecogniseReader(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", &domain.CaptureError{Err: err}
	}
	return Recognise(img)
}

// Recognise returns the text of the QR code in img. Light-on-dark codes are
// retried on the inverted image.
func Recognise(img image.Image) (string, error) {
	reader := zxqr.NewQRCodeReader()
	for _, candidate := range []image.Image{img, invert(img)} {
		bmp, err := gozxing.NewBinaryBitmapFromImage(candidate)
		if err != nil {
			continue
		}
		res, err := reader.Decode(bmp, nil)
		if err == nil {
			return res.GetText(), nil
		}
	}
	return "", ErrNoCode
}

func invert(img image.Image) image.Image {
	b := img.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			out.SetGray(x, y, color.Gray{Y: 255 - g.Y})
		}
	}
	return out
}
