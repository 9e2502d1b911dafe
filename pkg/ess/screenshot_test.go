package ess

import (
	"image/color"
	"testing"
)

func TestScreenshotImage(t *testing.T) {
	s := Screenshot{
		Width:  3,
		Height: 2,
		Pixels: []RGB{
			{R: 1}, {G: 2}, {B: 3},
			{R: 4, G: 5, B: 6}, {}, {R: 0xff, G: 0xff, B: 0xff},
		},
	}
	img := s.Image()
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Fatalf("bounds = %v", b)
	}
	if got := img.RGBAAt(0, 1); got != (color.RGBA{R: 4, G: 5, B: 6, A: 0xff}) {
		t.Fatalf("pixel (0,1) = %v", got)
	}
	if got := img.RGBAAt(2, 0); got != (color.RGBA{B: 3, A: 0xff}) {
		t.Fatalf("pixel (2,0) = %v", got)
	}
	if got := s.At(5, 0); got != (RGB{}) {
		t.Fatalf("out of range pixel = %v", got)
	}
}

func TestScreenshotEmpty(t *testing.T) {
	img := Screenshot{}.Image()
	if !img.Bounds().Empty() {
		t.Fatalf("bounds = %v", img.Bounds())
	}
}
