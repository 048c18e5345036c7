package linemode

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"taskconsole/internal/console"
	"taskconsole/internal/i18n"
)

// printer writes the difference between successive console views.
type printer struct {
	out    io.Writer
	locale *i18n.I18n
	width  int
	last   console.View

	info     *color.Color
	prompt   *color.Color
	terminal *color.Color
	errc     *color.Color
	dim      *color.Color
}

func newPrinter(out io.Writer, loc *i18n.I18n, width int, noColor bool) *printer {
	if out == nil {
		out = io.Discard
	}
	p := &printer{
		out:      out,
		locale:   loc,
		width:    width,
		info:     color.New(color.FgCyan),
		prompt:   color.New(color.FgYellow, color.Bold),
		terminal: color.New(color.FgHiBlack),
		errc:     color.New(color.FgRed),
		dim:      color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{p.info, p.prompt, p.terminal, p.errc, p.dim} {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) banner(baseURL string) {
	p.dim.Fprintln(p.out, p.locale.T("line.banner", baseURL))
	p.dim.Fprintln(p.out, p.locale.T("line.commands"))
}

func (p *printer) line(s string) {
	fmt.Fprintln(p.out, s)
}

func (p *printer) errorLine(s string) {
	p.errc.Fprintln(p.out, s)
}

// sync prints whatever changed since the previous view.
func (p *printer) sync(v console.View) {
	prev := p.last
	p.last = v

	if v.Terminal != prev.Terminal && v.Terminal != "" {
		chunk := v.Terminal
		if strings.HasPrefix(v.Terminal, prev.Terminal) {
			chunk = v.Terminal[len(prev.Terminal):]
		}
		if chunk = strings.Trim(chunk, "\n"); chunk != "" {
			p.terminal.Fprintln(p.out, chunk)
		}
	}

	if v.FrameSeq != prev.FrameSeq && v.Frame != nil {
		if v.Frame.OK() {
			w, h := v.Frame.Size()
			p.dim.Fprintln(p.out, p.locale.T("line.screenshot", w, h))
		} else {
			p.errc.Fprintln(p.out, p.locale.T("preview.broken"))
		}
	}

	if v.Insights != prev.Insights && v.Insights != "" {
		switch {
		case v.State == console.StateWaitingForInput && v.PromptEnabled && v.Insights == v.PromptPlaceholder:
			p.prompt.Fprintln(p.out, p.locale.T("line.prompt", v.Insights))
		case v.State == console.StateFailed:
			p.errc.Fprintln(p.out, v.Insights)
		default:
			p.info.Fprintln(p.out, v.Insights)
		}
	}
}

func (p *printer) status(v console.View) {
	parts := []string{v.State.String()}
	if v.TaskID != "" {
		parts = append(parts, p.locale.T("status.task", v.TaskID))
	}
	if v.Insights != "" {
		parts = append(parts, v.Insights)
	}
	s := strings.Join(parts, " · ")
	if p.width > 0 {
		s = runewidth.Truncate(s, p.width, "…")
	}
	fmt.Fprintln(p.out, s)
}
