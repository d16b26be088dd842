package processing

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"golang.org/x/image/webp"

	"github.com/github-young/cropColonyImage/pkg/types"
)

var plateColour = color.RGBA{200, 120, 40, 255}

// writeJPEG writes a flat-coloured JPEG of the given size
func writeJPEG(t testing.TB, path string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, plateColour)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Could not create %s: %v", path, err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("Could not encode %s: %v", path, err)
	}
}

func smallOptions() Options {
	opts := DefaultOptions()
	opts.Box = types.CropBox{Left: 0, Upper: 20, Right: 280, Lower: 300}
	opts.MaskDiameter = 280
	opts.Target = types.Size{Width: 100, Height: 100}
	return opts
}

func closeTo(a, b uint8, tol int) bool {
	d := int(a) - int(b)
	return d <= tol && d >= -tol
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "plate1.jpg")
	out := filepath.Join(dir, "plate1_circular.png")
	writeJPEG(t, in, 300, 320)

	p := NewProcessor(smallOptions(), nil)
	if err := p.ProcessFile(in, out); err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	img, err := imaging.Open(out)
	if err != nil {
		t.Fatalf("Could not open output: %v", err)
	}
	nrgba := imaging.Clone(img)
	if nrgba.Bounds().Dx() != 100 || nrgba.Bounds().Dy() != 100 {
		t.Fatalf("Expected 100x100 output, got %v", nrgba.Bounds())
	}

	for _, pt := range []image.Point{{0, 0}, {99, 0}, {0, 99}, {99, 99}} {
		if a := nrgba.NRGBAAt(pt.X, pt.Y).A; a != 0 {
			t.Errorf("Expected transparent corner at %v, got alpha %d", pt, a)
		}
	}

	c := nrgba.NRGBAAt(50, 50)
	if c.A != 255 {
		t.Errorf("Expected opaque centre, got alpha %d", c.A)
	}
	if !closeTo(c.R, plateColour.R, 8) || !closeTo(c.G, plateColour.G, 8) || !closeTo(c.B, plateColour.B, 8) {
		t.Errorf("Centre colour %v does not match the source %v", c, plateColour)
	}
}

func TestTransformForcesTargetSize(t *testing.T) {
	cases := []struct {
		name string
		box  types.CropBox
	}{
		{"square", types.CropBox{Left: 0, Upper: 0, Right: 80, Lower: 80}},
		{"wide", types.CropBox{Left: 0, Upper: 0, Right: 150, Lower: 40}},
		{"tall", types.CropBox{Left: 10, Upper: 0, Right: 30, Lower: 120}},
		{"clipped", types.CropBox{Left: 0, Upper: 20, Right: 100, Lower: 5000}},
		{"outside", types.CropBox{Left: 500, Upper: 500, Right: 600, Lower: 600}},
	}

	src := imaging.New(200, 160, plateColour)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			opts := smallOptions()
			opts.Box = c.box
			opts.MaskDiameter = c.box.Width()
			opts.Target = types.Size{Width: 64, Height: 48}

			out := NewProcessor(opts, nil).Transform(src)
			if out.Bounds() != image.Rect(0, 0, 64, 48) {
				t.Errorf("Expected 64x48, got %v", out.Bounds())
			}
		})
	}
}

func TestTransformOutsideIsTransparent(t *testing.T) {
	opts := smallOptions()
	opts.Box = types.CropBox{Left: 500, Upper: 500, Right: 600, Lower: 600}

	out := NewProcessor(opts, nil).Transform(imaging.New(100, 100, plateColour))
	for i := 3; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 0 {
			t.Fatalf("Expected a fully transparent image, found alpha %d", out.Pix[i])
		}
	}
}

func TestTransformMaskOutsideCircle(t *testing.T) {
	const d = 200
	opts := smallOptions()
	opts.Box = types.CropBox{Left: 0, Upper: 0, Right: d, Lower: d}
	opts.MaskDiameter = d
	opts.Target = types.Size{Width: d, Height: d}

	out := NewProcessor(opts, nil).Transform(imaging.New(d, d, plateColour))

	// away from a thin boundary band, alpha follows the stencil exactly
	const band = 3.0
	r := float64(d) / 2
	for y := 0; y < d; y++ {
		for x := 0; x < d; x++ {
			dx, dy := float64(x)+0.5-r, float64(y)+0.5-r
			dist2 := dx*dx + dy*dy
			a := out.NRGBAAt(x, y).A
			if dist2 > (r+band)*(r+band) && a != 0 {
				t.Fatalf("Expected alpha 0 outside the circle at (%d,%d), got %d", x, y, a)
			}
			if dist2 < (r-band)*(r-band) && a != 255 {
				t.Fatalf("Expected alpha 255 inside the circle at (%d,%d), got %d", x, y, a)
			}
		}
	}
}

func TestLoadImageErrors(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(smallOptions(), nil)

	corrupt := filepath.Join(dir, "corrupt.jpg")
	if err := os.WriteFile(corrupt, []byte("definitely not a jpeg"), 0644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty.jpeg")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{corrupt, empty} {
		_, err := p.LoadImage(path)
		if !errors.Is(err, ErrDecode) {
			t.Errorf("Expected ErrDecode for %s, got %v", filepath.Base(path), err)
		}
		var fe *FileError
		if !errors.As(err, &fe) || fe.Path != path || fe.Stage != "decode" {
			t.Errorf("Expected FileError for %s, got %#v", path, err)
		}
	}

	if _, err := p.LoadImage(filepath.Join(dir, "missing.jpg")); !errors.Is(err, ErrIO) {
		t.Errorf("Expected ErrIO for a missing file, got %v", err)
	}
}

func TestSaveImageIOError(t *testing.T) {
	p := NewProcessor(smallOptions(), nil)
	out := filepath.Join(t.TempDir(), "missing-dir", "x.png")

	err := p.SaveImage(imaging.New(4, 4, plateColour), out)
	if !errors.Is(err, ErrIO) {
		t.Fatalf("Expected ErrIO, got %v", err)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "plate.jpg")
	writeJPEG(t, in, 300, 320)

	p := NewProcessor(smallOptions(), nil)
	a, b := filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")
	if err := p.ProcessFile(in, a); err != nil {
		t.Fatal(err)
	}
	if err := p.ProcessFile(in, b); err != nil {
		t.Fatal(err)
	}

	da, _ := os.ReadFile(a)
	db, _ := os.ReadFile(b)
	if !bytes.Equal(da, db) {
		t.Error("Expected byte-identical output for identical input")
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(da))
	if err != nil {
		t.Fatalf("Output is not a PNG: %v", err)
	}
	if cfg.Width != 100 || cfg.Height != 100 {
		t.Errorf("Expected 100x100 PNG, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.ColorModel != color.NRGBAModel {
		t.Errorf("Expected an RGBA PNG, got colour model %T", cfg.ColorModel)
	}
}

func TestEncodeSmallDiameterKeepsAlpha(t *testing.T) {
	for _, d := range []int{4, 5, 8} {
		opts := smallOptions()
		opts.Box = types.CropBox{Left: 0, Upper: 0, Right: d, Lower: d}
		opts.MaskDiameter = d
		p := NewProcessor(opts, nil)

		var buf bytes.Buffer
		if err := p.Encode(&buf, p.Transform(imaging.New(300, 300, plateColour))); err != nil {
			t.Fatalf("d=%d: Encode failed: %v", d, err)
		}
		cfg, err := png.DecodeConfig(&buf)
		if err != nil {
			t.Fatalf("d=%d: output is not a PNG: %v", d, err)
		}
		if cfg.ColorModel != color.NRGBAModel {
			t.Errorf("d=%d: expected an RGBA PNG, got colour model %T", d, cfg.ColorModel)
		}
	}
}

func TestEncodeWebP(t *testing.T) {
	opts := smallOptions()
	opts.Format = "webp"
	p := NewProcessor(opts, nil)

	var buf bytes.Buffer
	src := NewProcessor(smallOptions(), nil).Transform(imaging.New(300, 320, plateColour))
	if err := p.Encode(&buf, src); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	img, err := webp.Decode(&buf)
	if err != nil {
		t.Fatalf("Could not decode webp: %v", err)
	}
	out := imaging.Clone(img)
	if out.NRGBAAt(0, 0).A != 0 {
		t.Error("Lossless webp should keep the transparent corner")
	}
	if out.NRGBAAt(50, 50) != src.NRGBAAt(50, 50) {
		t.Errorf("Lossless webp changed the centre pixel: %v vs %v", out.NRGBAAt(50, 50), src.NRGBAAt(50, 50))
	}

	if got := p.OutputPath("/in/plate.JPG", "/out", "_circular"); got != filepath.Join("/out", "plate_circular.webp") {
		t.Errorf("Unexpected webp output path %s", got)
	}
}

func TestParseFilter(t *testing.T) {
	for _, name := range []string{"", "catmullrom", "Lanczos", "linear", "mitchell"} {
		if _, err := ParseFilter(name); err != nil {
			t.Errorf("ParseFilter(%q) failed: %v", name, err)
		}
	}
	if _, err := ParseFilter("nearest"); err == nil {
		t.Error("Nearest-neighbour must be rejected")
	}
}

func TestParseCompression(t *testing.T) {
	level, err := ParseCompression("best")
	if err != nil || level != png.BestCompression {
		t.Errorf("Expected BestCompression, got %v (%v)", level, err)
	}
	if _, err := ParseCompression("ultra"); err == nil {
		t.Error("Expected error for unknown compression")
	}
}

func BenchmarkTransform(b *testing.B) {
	p := NewProcessor(DefaultOptions(), nil)
	src := imaging.New(3000, 3200, plateColour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Transform(src)
	}
}
