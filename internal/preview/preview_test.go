package preview

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func encodePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDecodeValidPNG(t *testing.T) {
	f := Decode(encodePNG(t, 8, 4))
	if !f.OK() {
		t.Fatalf("expected ok frame, err=%v", f.Err)
	}
	w, h := f.Size()
	if w != 8 || h != 4 {
		t.Fatalf("size=%dx%d", w, h)
	}
}

func TestDecodeDataURL(t *testing.T) {
	f := Decode("data:image/png;base64," + encodePNG(t, 2, 2))
	if !f.OK() {
		t.Fatalf("data url should decode: %v", f.Err)
	}
}

func TestDecodeBrokenPayload(t *testing.T) {
	f := Decode("not base64!!")
	if f.OK() || f.Err == nil {
		t.Fatalf("expected broken frame")
	}
	f = Decode(base64.StdEncoding.EncodeToString([]byte("plain text")))
	if f.OK() || f.Err == nil || len(f.PNG) == 0 {
		t.Fatalf("expected broken frame with raw bytes kept")
	}
	if f.Render(10, 10) != "" {
		t.Fatalf("broken frame should render empty")
	}
}

func TestRenderRespectsBounds(t *testing.T) {
	f := Decode(encodePNG(t, 40, 20))
	out := f.Render(10, 4)
	lines := strings.Split(out, "\n")
	if len(lines) > 4 {
		t.Fatalf("rendered %d rows, want <= 4", len(lines))
	}
	if strings.Count(lines[0], "▀") != 10 {
		t.Fatalf("first row has %d cells, want 10", strings.Count(lines[0], "▀"))
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{100, 50, 10, 100, 10, 5},
		{100, 100, 50, 10, 10, 10},
		{1, 1000, 10, 4, 1, 4},
	}
	for _, tt := range tests {
		gotW, gotH := fit(tt.w, tt.h, tt.maxW, tt.maxH)
		if gotW != tt.wantW || gotH != tt.wantH {
			t.Errorf("fit(%d,%d,%d,%d)=%d,%d want %d,%d", tt.w, tt.h, tt.maxW, tt.maxH, gotW, gotH, tt.wantW, tt.wantH)
		}
	}
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	f := Decode(encodePNG(t, 2, 2))
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	path, err := Save(dir, f, now)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "screenshot_20250304_050607.png" {
		t.Fatalf("path=%q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || !bytes.Equal(data, f.PNG) {
		t.Fatalf("saved bytes mismatch: %v", err)
	}
	if _, err := Save(dir, nil, now); err == nil {
		t.Fatal("expected error for nil frame")
	}
}
