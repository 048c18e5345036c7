package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"taskconsole/internal/preview"
)

// RenderMarkdown 使用 Glamour 渲染 markdown 文本
// RenderMarkdown renders markdown text using Glamour
func RenderMarkdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	return strings.TrimRight(rendered, "\n")
}

// markdownCache 缓存上一次渲染结果 / Memoizes the last render
type markdownCache struct {
	src   string
	width int
	out   string
}

func (c *markdownCache) render(content string, width int) string {
	if c.out != "" && c.src == content && c.width == width {
		return c.out
	}
	c.src, c.width = content, width
	c.out = RenderMarkdown(content, width)
	return c.out
}

// previewCache 缓存截图的半块渲染 / Memoizes the half-block frame render
type previewCache struct {
	frame *preview.Frame
	cols  int
	rows  int
	out   string
}

func (c *previewCache) render(f *preview.Frame, cols, rows int) string {
	if c.frame == f && c.cols == cols && c.rows == rows {
		return c.out
	}
	c.frame, c.cols, c.rows = f, cols, rows
	c.out = f.Render(cols, rows)
	return c.out
}
