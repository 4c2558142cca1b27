// Package imaging normalizes uploaded images: EXIF orientation is baked into
// the pixel data, the full image is re-encoded as a size-capped JPEG, and a
// small gallery thumbnail is produced.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	"github.com/rwcarlsen/goexif/exif"
)

// Options bounds the re-encode and thumbnail passes.
type Options struct {
	JPEGQuality      int
	MaxDimension     int
	ThumbnailMaxPx   int
	ThumbnailQuality int
}

// Result holds the processed full image and its thumbnail.
type Result struct {
	Full         []byte
	Thumbnail    []byte
	Width        int
	Height       int
	OriginalSize int
}

// Process decodes raw image bytes, corrects orientation so the pixel data
// matches the intended display orientation irrespective of camera metadata,
// re-encodes to a quality/size-capped JPEG and renders a thumbnail bounded to
// ThumbnailMaxPx on its longer side.
func Process(raw []byte, opts Options) (*Result, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	img = applyOrientation(img, orientationOf(raw))

	if opts.MaxDimension > 0 {
		img = resize.Thumbnail(uint(opts.MaxDimension), uint(opts.MaxDimension), img, resize.Lanczos3)
	}

	full, err := encodeJPEG(img, opts.JPEGQuality)
	if err != nil {
		return nil, err
	}

	thumbImg := resize.Thumbnail(uint(opts.ThumbnailMaxPx), uint(opts.ThumbnailMaxPx), img, resize.Lanczos3)
	thumb, err := encodeJPEG(thumbImg, opts.ThumbnailQuality)
	if err != nil {
		return nil, err
	}
	// Degenerate inputs (already tiny) can yield a thumbnail no smaller than
	// the full render; squeeze the quality once before giving up.
	if len(thumb) >= len(full) {
		if squeezed, err := encodeJPEG(thumbImg, 30); err == nil && len(squeezed) < len(thumb) {
			thumb = squeezed
		}
	}

	bounds := img.Bounds()
	return &Result{
		Full:         full,
		Thumbnail:    thumb,
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
		OriginalSize: len(raw),
	}, nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// orientationOf reads the EXIF orientation tag, defaulting to 1 (upright)
// when the metadata is absent or unreadable.
func orientationOf(raw []byte) int {
	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// applyOrientation transforms pixel data according to the EXIF orientation
// value so the result displays upright without metadata.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return flipH(img)
	case 3:
		return rotate180(img)
	case 4:
		return flipV(img)
	case 5:
		return flipH(rotate90(img))
	case 6:
		return rotate90(img)
	case 7:
		return flipH(rotate270(img))
	case 8:
		return rotate270(img)
	default:
		return img
	}
}

// rotate90 rotates clockwise by 90 degrees.
func rotate90(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Set(h-1-y, x, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}

// rotate270 rotates clockwise by 270 degrees.
func rotate270(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Set(y, w-1-x, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}

func rotate180(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Set(w-1-x, h-1-y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}

func flipH(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Set(w-1-x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}

func flipV(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Set(x, h-1-y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}
