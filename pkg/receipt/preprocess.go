package receipt

import (
	"image"
	"image/color"
	"os"

	"github.com/disintegration/imaging"
)

// preprocess loads the image and applies grayscale, contrast, sharpen, an
// upscale for small scans and a global threshold, writing the result to a
// temp file for the OCR engine. The returned cleanup removes the temp file.
// On temp-file failure the original image path is used as-is.
func preprocess(path string) (string, func(), error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", nil, err
	}
	gray := imaging.Grayscale(img)
	gray = imaging.AdjustContrast(gray, 15)
	gray = imaging.Sharpen(gray, 0.7)
	if gray.Bounds().Dy() < 900 {
		gray = imaging.Resize(gray, 0, 1300, imaging.Lanczos)
	}
	bin := binarize(gray, 210)

	tmp, err := os.CreateTemp("", "receipt-*.png")
	if err != nil {
		return path, func() {}, nil
	}
	name := tmp.Name()
	_ = tmp.Close()
	if err := imaging.Save(bin, name); err != nil {
		_ = os.Remove(name)
		return path, func() {}, nil
	}
	return name, func() { _ = os.Remove(name) }, nil
}

// binarize performs a simple global threshold on a grayscale image.
func binarize(img image.Image, threshold uint8) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			gray := uint8((r + g + bb) / 3 >> 8)
			var v uint8 = 255
			if gray <= threshold {
				v = 0
			}
			out.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}
