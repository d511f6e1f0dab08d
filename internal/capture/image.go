package capture

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/gift"
	"gocv.io/x/gocv"
)

// LoadImage decodes a JPEG or PNG still image.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}

// MirrorImage returns img flipped left to right.
func MirrorImage(img image.Image) *image.NRGBA {
	g := gift.New(gift.FlipHorizontal())
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

// ImageToMat converts a still image into a 3-channel Mat for detection.
// The caller closes the Mat.
func ImageToMat(img image.Image) (*gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	return &mat, nil
}
