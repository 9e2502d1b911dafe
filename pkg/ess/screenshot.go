package ess

import (
	"image"
	"image/color"
	"math"
)

// RGB is one screenshot pixel. There is no alpha channel.
type RGB struct {
	R, G, B uint8
}

// Screenshot is the thumbnail embedded in the save header, stored row-major.
type Screenshot struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
	Pixels []RGB  `json:"-"`
}

// screenshotBlockSize is the declared size of a screenshot block: the two
// dimension words plus three bytes per pixel.
func screenshotBlockSize(width, height uint32) uint64 {
	return uint64(width)*uint64(height)*3 + 8
}

// At returns the pixel at x, y. Out of range coordinates yield black.
func (s Screenshot) At(x, y int) RGB {
	if x < 0 || y < 0 || uint64(x) >= uint64(s.Width) || uint64(y) >= uint64(s.Height) {
		return RGB{}
	}
	i := y*int(s.Width) + x
	if i >= len(s.Pixels) {
		return RGB{}
	}
	return s.Pixels[i]
}

// Image converts the screenshot to an opaque RGBA image.
func (s Screenshot) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(s.Width), int(s.Height)))
	for y := 0; y < int(s.Height); y++ {
		for x := 0; x < int(s.Width); x++ {
			p := s.At(x, y)
			img.SetRGBA(x, y, color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xff})
		}
	}
	return img
}

func readScreenshotPixels(c *Cursor, width, height uint32) ([]RGB, error) {
	n := uint64(width) * uint64(height)
	if n > math.MaxInt/3 {
		// Cannot be satisfied by any input; report it the way a short read would.
		return nil, newDecodeError(KindUnexpectedEOF, c.Offset(), nil)
	}
	raw, err := c.ReadBytes(int(n * 3))
	if err != nil {
		return nil, err
	}
	pixels := make([]RGB, n)
	for i := range pixels {
		pixels[i] = RGB{R: raw[3*i], G: raw[3*i+1], B: raw[3*i+2]}
	}
	return pixels, nil
}
