package imaging

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func testOptions() Options {
	return Options{
		JPEGQuality:      85,
		MaxDimension:     2048,
		ThumbnailMaxPx:   150,
		ThumbnailQuality: 60,
	}
}

// gradientImage renders detail so JPEG output is not trivially tiny.
func gradientImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{
				R: uint8((x * 7) % 256),
				G: uint8((y * 13) % 256),
				B: uint8((x*y + x) % 256),
				A: 255,
			})
		}
	}
	return img
}

func encode(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

// withOrientation splices a minimal EXIF APP1 segment carrying the given
// orientation value right after the JPEG SOI marker.
func withOrientation(t *testing.T, jpg []byte, orientation uint16) []byte {
	t.Helper()
	if len(jpg) < 2 || jpg[0] != 0xFF || jpg[1] != 0xD8 {
		t.Fatal("fixture is not a JPEG")
	}

	tiff := &bytes.Buffer{}
	tiff.WriteString("II")                                 // little endian
	binary.Write(tiff, binary.LittleEndian, uint16(42))    // TIFF magic
	binary.Write(tiff, binary.LittleEndian, uint32(8))     // IFD0 offset
	binary.Write(tiff, binary.LittleEndian, uint16(1))     // entry count
	binary.Write(tiff, binary.LittleEndian, uint16(0x112)) // Orientation tag
	binary.Write(tiff, binary.LittleEndian, uint16(3))     // SHORT
	binary.Write(tiff, binary.LittleEndian, uint32(1))     // count
	binary.Write(tiff, binary.LittleEndian, orientation)
	binary.Write(tiff, binary.LittleEndian, uint16(0)) // value padding
	binary.Write(tiff, binary.LittleEndian, uint32(0)) // next IFD

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)

	out := &bytes.Buffer{}
	out.Write(jpg[:2])
	out.Write([]byte{0xFF, 0xE1})
	binary.Write(out, binary.BigEndian, uint16(len(payload)+2))
	out.Write(payload)
	out.Write(jpg[2:])
	return out.Bytes()
}

func TestProcessCapsThumbnail(t *testing.T) {
	raw := encode(t, gradientImage(800, 600))
	res, err := Process(raw, testOptions())
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	thumb, _, err := image.Decode(bytes.NewReader(res.Thumbnail))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	b := thumb.Bounds()
	longer := b.Dx()
	if b.Dy() > longer {
		longer = b.Dy()
	}
	if longer > 150 {
		t.Fatalf("thumbnail longer side = %d, want <= 150", longer)
	}
	if len(res.Thumbnail) >= len(res.Full) {
		t.Fatalf("thumbnail (%d bytes) not smaller than full image (%d bytes)", len(res.Thumbnail), len(res.Full))
	}
}

func TestProcessCapsFullDimension(t *testing.T) {
	opts := testOptions()
	opts.MaxDimension = 400
	raw := encode(t, gradientImage(1200, 300))
	res, err := Process(raw, opts)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	full, _, err := image.Decode(bytes.NewReader(res.Full))
	if err != nil {
		t.Fatalf("decode full: %v", err)
	}
	if full.Bounds().Dx() > 400 || full.Bounds().Dy() > 400 {
		t.Fatalf("full bounds %v exceed cap 400", full.Bounds())
	}
	if res.Width != full.Bounds().Dx() || res.Height != full.Bounds().Dy() {
		t.Fatalf("reported %dx%d, decoded %v", res.Width, res.Height, full.Bounds())
	}
}

func TestProcessRejectsCorruptInput(t *testing.T) {
	if _, err := Process([]byte("not an image at all"), testOptions()); err == nil {
		t.Fatal("expected error for corrupt input")
	}
}

func TestProcessAppliesOrientationSix(t *testing.T) {
	// Display intent: wide image, bright band along the top. A camera held
	// sideways stores it rotated 90° CCW and tags orientation 6.
	display := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			c := color.NRGBA{0, 0, 0, 255}
			if y < 8 {
				c = color.NRGBA{255, 255, 255, 255}
			}
			display.Set(x, y, c)
		}
	}
	stored := rotate270(display)
	raw := withOrientation(t, encode(t, stored), 6)

	res, err := Process(raw, testOptions())
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	out, _, err := image.Decode(bytes.NewReader(res.Full))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	b := out.Bounds()
	if b.Dx() != 64 || b.Dy() != 32 {
		t.Fatalf("got %dx%d, want 64x32 after orientation fix", b.Dx(), b.Dy())
	}
	top := luminanceAt(out, 32, 2)
	bottom := luminanceAt(out, 32, 28)
	if top <= bottom {
		t.Fatalf("top marker not at top: top=%d bottom=%d", top, bottom)
	}
}

func TestApplyOrientationRoundTrips(t *testing.T) {
	src := gradientImage(6, 4)
	cases := []struct {
		orientation int
		wantW       int
		wantH       int
	}{
		{1, 6, 4}, {2, 6, 4}, {3, 6, 4}, {4, 6, 4},
		{5, 4, 6}, {6, 4, 6}, {7, 4, 6}, {8, 4, 6},
	}
	for _, tc := range cases {
		got := applyOrientation(src, tc.orientation)
		b := got.Bounds()
		if b.Dx() != tc.wantW || b.Dy() != tc.wantH {
			t.Errorf("orientation %d: got %dx%d, want %dx%d", tc.orientation, b.Dx(), b.Dy(), tc.wantW, tc.wantH)
		}
	}
}

func TestOrientationOfDefaultsToUpright(t *testing.T) {
	raw := encode(t, gradientImage(10, 10))
	if got := orientationOf(raw); got != 1 {
		t.Fatalf("orientationOf without EXIF = %d, want 1", got)
	}
	tagged := withOrientation(t, raw, 6)
	if got := orientationOf(tagged); got != 6 {
		t.Fatalf("orientationOf with EXIF 6 = %d, want 6", got)
	}
}

func luminanceAt(img image.Image, x, y int) int {
	r, g, b, _ := img.At(img.Bounds().Min.X+x, img.Bounds().Min.Y+y).RGBA()
	return int((r + g + b) / 3 >> 8)
}
