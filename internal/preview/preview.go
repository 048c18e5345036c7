// Package preview decodes backend screenshots and renders them for a terminal.
package preview

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Frame is one decoded screenshot. A frame whose payload failed to decode is
// still a frame: it occupies the preview the way a broken image would.
type Frame struct {
	PNG   []byte
	Image image.Image
	Err   error
}

// Decode builds a frame from a base64 PNG payload. A data-URL prefix is
// accepted and stripped.
func Decode(payload string) *Frame {
	payload = strings.TrimSpace(payload)
	if i := strings.Index(payload, ";base64,"); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+len(";base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return &Frame{Err: fmt.Errorf("decode base64: %w", err)}
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return &Frame{PNG: raw, Err: fmt.Errorf("decode png: %w", err)}
	}
	return &Frame{PNG: raw, Image: img}
}

// OK reports whether the frame holds a usable image.
func (f *Frame) OK() bool {
	return f != nil && f.Err == nil && f.Image != nil
}

// Size returns the pixel dimensions, or zeros for a broken frame.
func (f *Frame) Size() (int, int) {
	if !f.OK() {
		return 0, 0
	}
	b := f.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Render draws the frame into at most cols x rows terminal cells using upper
// half blocks, two pixel rows per cell. The aspect ratio is preserved.
func (f *Frame) Render(cols, rows int) string {
	if !f.OK() || cols <= 0 || rows <= 0 {
		return ""
	}
	w, h := f.Size()
	if w == 0 || h == 0 {
		return ""
	}

	outW, outH := fit(w, h, cols, rows*2)
	if outH%2 == 1 {
		outH++
	}

	bounds := f.Image.Bounds()
	var sb strings.Builder
	for y := 0; y < outH; y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < outW; x++ {
			sx := bounds.Min.X + x*w/outW
			top := bounds.Min.Y + y*h/outH
			bottom := bounds.Min.Y + (y+1)*h/outH
			if bottom >= bounds.Max.Y {
				bottom = bounds.Max.Y - 1
			}
			style := lipgloss.NewStyle().
				Foreground(hexColor(f.Image, sx, top)).
				Background(hexColor(f.Image, sx, bottom))
			sb.WriteString(style.Render("▀"))
		}
	}
	return sb.String()
}

// Save writes the raw PNG into dir and returns the file path.
func Save(dir string, f *Frame, now time.Time) (string, error) {
	if f == nil || len(f.PNG) == 0 {
		return "", fmt.Errorf("no screenshot data")
	}
	return WriteFile(dir, "screenshot_"+now.Format("20060102_150405")+".png", f.PNG)
}

// WriteFile stores data as dir/name, creating dir as needed.
func WriteFile(dir, name string, data []byte) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", fmt.Errorf("screenshot directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return path, nil
}

// fit scales w x h into maxW x maxH keeping the ratio; terminal cells are
// roughly twice as tall as wide, which the half-block rows already absorb.
func fit(w, h, maxW, maxH int) (int, int) {
	outW := maxW
	outH := h * maxW / w
	if outH > maxH {
		outH = maxH
		outW = w * maxH / h
	}
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}
	return outW, outH
}

func hexColor(img image.Image, x, y int) lipgloss.Color {
	r, g, b, _ := img.At(x, y).RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
