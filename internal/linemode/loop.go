// Package linemode drives the task console from a plain line-oriented
// terminal: every line is either a slash command, a prompt response or new
// task instructions. Console state lives on a single goroutine; the reader
// and backend calls hand their results to it over channels.
package linemode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"taskconsole/internal/console"
	"taskconsole/internal/i18n"
	"taskconsole/internal/logging"
	"taskconsole/internal/preview"
)

// Prompts shown by the reader.
const (
	PromptIdle   = "> "
	PromptAnswer = "? "
)

// Options configures a Loop.
type Options struct {
	Console       *console.Console
	Input         LineInput
	Out           io.Writer
	Locale        *i18n.I18n
	Logger        *logging.Logger
	BaseURL       string
	ScreenshotDir string
	Width         int
	NoColor       bool
	Now           func() time.Time
}

type lineEvent struct {
	text string
	err  error
}

// Loop is one line-mode session.
type Loop struct {
	console *console.Console
	input   LineInput
	locale  *i18n.I18n
	log     *logging.Logger
	printer *printer

	baseURL       string
	screenshotDir string
	now           func() time.Time

	results  chan console.Msg
	done     chan struct{}
	draining bool
}

// New builds a Loop. Input and Console are required.
func New(opts Options) *Loop {
	loc := opts.Locale
	if loc == nil {
		loc = i18n.Global()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Loop{
		console:       opts.Console,
		input:         opts.Input,
		locale:        loc,
		log:           opts.Logger,
		printer:       newPrinter(opts.Out, loc, opts.Width, opts.NoColor),
		baseURL:       opts.BaseURL,
		screenshotDir: opts.ScreenshotDir,
		now:           now,
		results:       make(chan console.Msg, 16),
		done:          make(chan struct{}),
	}
}

// Run reads lines until /quit, end of input (after the active task
// settles) or ctx ends.
func (l *Loop) Run(ctx context.Context) error {
	if l.console == nil || l.input == nil {
		return fmt.Errorf("line mode needs a console and an input")
	}
	defer close(l.done)

	l.printer.banner(l.baseURL)
	l.printer.sync(l.console.View())

	lines := make(chan lineEvent)
	next := make(chan string, 1)
	go l.readLines(lines, next)
	next <- l.promptText()

	for {
		select {
		case <-ctx.Done():
			l.console.Cancel()
			return ctx.Err()

		case msg := <-l.results:
			l.dispatch(l.console.Handle(msg))
			l.printer.sync(l.console.View())
			if l.draining && l.console.Waiting() {
				l.abandonPrompt()
				return nil
			}
			if l.draining && !l.console.State().Busy() {
				return nil
			}

		case ev, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			if ev.err != nil {
				quit := l.handleReadError(ev.err)
				if quit {
					return nil
				}
				if l.draining {
					lines = nil
					continue
				}
				next <- l.promptText()
				continue
			}
			if l.handleLine(ev.text) {
				l.console.Cancel()
				return nil
			}
			l.printer.sync(l.console.View())
			next <- l.promptText()
		}
	}
}

// readLines reads one line per prompt received on next.
func (l *Loop) readLines(lines chan<- lineEvent, next <-chan string) {
	for {
		var prompt string
		select {
		case prompt = <-next:
		case <-l.done:
			return
		}
		text, err := l.input.ReadLine(prompt)
		select {
		case lines <- lineEvent{text: text, err: err}:
		case <-l.done:
			return
		}
		if err != nil && !errors.Is(err, readline.ErrInterrupt) {
			return
		}
	}
}

// handleReadError reports whether the loop should exit now.
func (l *Loop) handleReadError(err error) bool {
	switch {
	case errors.Is(err, readline.ErrInterrupt):
		if l.console.State().Busy() {
			l.console.Cancel()
			l.printer.sync(l.console.View())
			return false
		}
		return true
	case errors.Is(err, io.EOF):
		if !l.console.State().Busy() {
			return true
		}
		if l.console.Waiting() {
			l.abandonPrompt()
			return true
		}
		l.draining = true
		if id := l.console.TaskID(); id != "" {
			l.printer.line(l.locale.T("line.waiting", id))
		} else {
			l.printer.line(l.locale.T("line.waiting_start"))
		}
		return false
	default:
		l.log.Warn("read input failed", "error", err.Error())
		l.console.Cancel()
		return true
	}
}

// abandonPrompt cancels a task whose prompt can no longer be answered
// because input has ended.
func (l *Loop) abandonPrompt() {
	l.printer.errorLine(l.locale.T("line.unanswerable", l.console.LastPrompt()))
	l.console.Cancel()
	l.printer.sync(l.console.View())
}

// handleLine applies one input line. It reports whether to quit.
func (l *Loop) handleLine(line string) bool {
	text := strings.TrimSpace(line)
	if text == "" {
		return false
	}
	if strings.HasPrefix(text, "/") {
		if quit, handled := l.handleCommand(text); handled {
			return quit
		}
	}

	if l.console.Waiting() && l.console.View().PromptEnabled {
		l.console.Input(text)
		l.dispatch(l.console.Respond(text))
		// A line is committed once entered; there is no field left holding focus.
		l.console.Blur()
		return false
	}
	l.console.SetInstructions(text)
	l.dispatch(l.console.Submit(text))
	return false
}

func (l *Loop) handleCommand(text string) (quit bool, handled bool) {
	name := strings.Fields(text)[0]
	switch name {
	case "/quit", "/exit":
		return true, true
	case "/cancel":
		l.console.Cancel()
	case "/reset":
		l.console.Reset()
	case "/status":
		l.printer.status(l.console.View())
	case "/save":
		l.saveFrame()
	case "/help":
		l.printer.line(l.locale.T("line.help"))
		l.printer.line(l.locale.T("line.commands"))
	default:
		if l.console.Waiting() {
			return false, false
		}
		l.printer.errorLine(l.locale.T("line.unknown", name))
	}
	return false, true
}

func (l *Loop) saveFrame() {
	frame := l.console.View().Frame
	if frame == nil || len(frame.PNG) == 0 {
		l.printer.errorLine(l.locale.T("preview.none"))
		return
	}
	path, err := preview.Save(l.screenshotDir, frame, l.now())
	if err != nil {
		l.printer.errorLine(err.Error())
		return
	}
	l.printer.line(l.locale.T("preview.saved", path))
}

// dispatch runs cmds off the loop; results come back on l.results.
func (l *Loop) dispatch(cmds []console.Cmd) {
	for _, cmd := range cmds {
		go func() {
			msg := cmd()
			select {
			case l.results <- msg:
			case <-l.done:
			}
		}()
	}
}

func (l *Loop) promptText() string {
	if l.console.Waiting() {
		return PromptAnswer
	}
	return PromptIdle
}
