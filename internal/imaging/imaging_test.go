package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// testImage returns a PNG-encoded solid image of the given size.
func testImage(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestValidate(t *testing.T) {
	if err := Validate(testImage(t, 100, 100)); err != nil {
		t.Errorf("Validate(png): %v", err)
	}
	if err := Validate([]byte("not an image")); err == nil {
		t.Error("Validate accepted garbage input")
	}
}

func TestGenerateVariantsSkipsUpscaling(t *testing.T) {
	// 800px wide source: thumb (320) and sm (640) resize, md caps at 800
	// and stops the chain, lg is never generated.
	src := testImage(t, 800, 400)

	results, err := GenerateVariants(src, nil)
	if err != nil {
		t.Fatalf("GenerateVariants: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("got %d variants, want 3", len(results))
	}

	wantWidths := map[string]int{"thumb": 320, "sm": 640, "md": 800}
	for _, res := range results {
		want, ok := wantWidths[res.Name]
		if !ok {
			t.Errorf("unexpected variant %q", res.Name)
			continue
		}
		if res.Width != want {
			t.Errorf("variant %s: width %d, want %d", res.Name, res.Width, want)
		}
		if res.ContentType != "image/jpeg" {
			t.Errorf("variant %s: content type %q", res.Name, res.ContentType)
		}
		if len(res.Data) == 0 {
			t.Errorf("variant %s: empty data", res.Name)
		}
	}
}

func TestGenerateVariantsTinySource(t *testing.T) {
	// Source narrower than every breakpoint: a single capped variant.
	src := testImage(t, 200, 200)

	results, err := GenerateVariants(src, nil)
	if err != nil {
		t.Fatalf("GenerateVariants: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d variants, want 1", len(results))
	}
	if results[0].Width != 200 {
		t.Errorf("width %d, want 200", results[0].Width)
	}
}

func TestGenerateVariantsPreservesAspect(t *testing.T) {
	src := testImage(t, 1000, 500)

	results, err := GenerateVariants(src, []Variant{{Name: "half", Width: 500, Quality: 80}})
	if err != nil {
		t.Fatalf("GenerateVariants: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d variants, want 1", len(results))
	}
	if results[0].Height != 250 {
		t.Errorf("height %d, want 250", results[0].Height)
	}
}
