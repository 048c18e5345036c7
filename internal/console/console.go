// Package console is the task console's session core: it submits
// instructions, polls the backend on a fixed interval, surfaces prompts and
// relays responses. It owns no goroutines; frontends run the returned Cmds
// and feed their results back through Handle on a single event loop.
package console

import (
	"context"
	"strings"
	"time"

	"taskconsole/internal/backend"
	"taskconsole/internal/i18n"
	"taskconsole/internal/logging"
	"taskconsole/internal/preview"
)

// DefaultInterval is the poll period used when Options.Interval is zero.
const DefaultInterval = time.Second

// Backend is the subset of the HTTP client the console drives.
type Backend interface {
	CreateTask(ctx context.Context, instructions string) (backend.CreateResult, error)
	TaskStatus(ctx context.Context, taskID string) (backend.Snapshot, error)
	RespondToPrompt(ctx context.Context, taskID, response string) (backend.Ack, error)
}

// Journal records task lifecycle events. Failures are logged and never
// affect the session.
type Journal interface {
	TaskStarted(taskID, instructions string) error
	TaskFinished(taskID, status, message string) error
	PromptAnswered(taskID, prompt, response string) error
}

// Options configures a Console.
type Options struct {
	Backend  Backend
	Interval time.Duration
	Locale   *i18n.I18n
	Logger   *logging.Logger
	Journal  Journal
	// Wait blocks for d or until ctx ends. Tests replace it to tick instantly.
	Wait func(ctx context.Context, d time.Duration)
	Now  func() time.Time
}

// View is a copy of everything a frontend renders.
type View struct {
	State  State
	TaskID string

	Insights string
	Terminal string
	// Frame is nil until the first screenshot arrives.
	Frame    *preview.Frame
	FrameSeq int

	Instructions      string
	Prompt            string
	PromptPlaceholder string
	PromptEnabled     bool
	SendEnabled       bool
	Typing            bool
}

// Console holds one session. It is not safe for concurrent use; call it
// from the frontend's event loop only.
type Console struct {
	backend  Backend
	interval time.Duration
	locale   *i18n.I18n
	log      *logging.Logger
	journal  Journal
	wait     func(ctx context.Context, d time.Duration)
	now      func() time.Time

	state      State
	taskID     string
	epoch      uint64
	ctx        context.Context
	cancel     context.CancelFunc
	typing     bool
	lastPrompt string
	submitted  string

	insights          string
	terminal          string
	frame             *preview.Frame
	frameSeq          int
	instructions      string
	prompt            string
	promptPlaceholder string
	promptEnabled     bool
	sendEnabled       bool
}

// New creates an idle console.
func New(opts Options) *Console {
	c := &Console{
		backend:  opts.Backend,
		interval: opts.Interval,
		locale:   opts.Locale,
		log:      opts.Logger,
		journal:  opts.Journal,
		wait:     opts.Wait,
		now:      opts.Now,
	}
	if c.interval <= 0 {
		c.interval = DefaultInterval
	}
	if c.locale == nil {
		c.locale = i18n.Global()
	}
	if c.log == nil {
		c.log = logging.Nop()
	}
	if c.wait == nil {
		c.wait = sleepCtx
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.promptPlaceholder = c.t("prompt.placeholder")
	c.sendEnabled = true
	return c
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (c *Console) t(key string, args ...any) string {
	return c.locale.T(key, args...)
}

// State returns the current session state.
func (c *Console) State() State { return c.state }

// TaskID returns the active task id, or "" when none is held.
func (c *Console) TaskID() string { return c.taskID }

// Typing reports whether the user is editing the prompt response.
func (c *Console) Typing() bool { return c.typing }

// LastPrompt returns the most recently displayed prompt text.
func (c *Console) LastPrompt() string { return c.lastPrompt }

// Waiting reports whether a prompt is open for a response.
func (c *Console) Waiting() bool { return c.state == StateWaitingForInput }

// View returns a snapshot of the rendered fields.
func (c *Console) View() View {
	return View{
		State:             c.state,
		TaskID:            c.taskID,
		Insights:          c.insights,
		Terminal:          c.terminal,
		Frame:             c.frame,
		FrameSeq:          c.frameSeq,
		Instructions:      c.instructions,
		Prompt:            c.prompt,
		PromptPlaceholder: c.promptPlaceholder,
		PromptEnabled:     c.promptEnabled,
		SendEnabled:       c.sendEnabled,
		Typing:            c.typing,
	}
}

// SetInstructions mirrors the instructions field.
func (c *Console) SetInstructions(value string) { c.instructions = value }

// Input mirrors the prompt response field. Any edit counts as typing.
func (c *Console) Input(value string) {
	c.prompt = value
	c.typing = true
}

// Focus marks the prompt field as being edited.
func (c *Console) Focus() { c.typing = true }

// Blur ends editing. An empty field shows the last prompt again.
func (c *Console) Blur() {
	c.typing = false
	if c.prompt == "" && c.lastPrompt != "" {
		c.promptPlaceholder = c.lastPrompt
	}
}

// Release ends editing without touching the placeholder. Frontends call it
// when the prompt field is disabled while it holds focus.
func (c *Console) Release() { c.typing = false }

// Submit starts a task with the given instructions.
func (c *Console) Submit(instructions string) []Cmd {
	text := strings.TrimSpace(instructions)
	if text == "" {
		c.insights = c.t("console.enter_instructions")
		return nil
	}
	if c.state.Busy() {
		c.insights = c.t("console.task_running")
		return nil
	}

	c.beginSession()
	c.state = StateSubmitting
	c.instructions = instructions
	c.submitted = text
	c.insights = c.t("console.starting")
	c.sendEnabled = false
	c.log.Info("submitting task", "epoch", c.epoch)

	tk, ctx, be := c.ticket(), c.ctx, c.backend
	return []Cmd{func() Msg {
		res, err := be.CreateTask(ctx, text)
		return createdMsg{ticket: tk, result: res, err: err}
	}}
}

// Respond sends the prompt response for the active task.
func (c *Console) Respond(text string) []Cmd {
	if c.taskID == "" || !c.state.Polling() || !c.promptEnabled {
		return nil
	}
	response := strings.TrimSpace(text)
	if response == "" {
		return nil
	}
	c.promptEnabled = false

	tk, ctx, be, prompt := c.ticket(), c.ctx, c.backend, c.lastPrompt
	return []Cmd{func() Msg {
		ack, err := be.RespondToPrompt(ctx, tk.taskID, response)
		return respondedMsg{ticket: tk, prompt: prompt, response: response, ack: ack, err: err}
	}}
}

// Cancel abandons the active task on the console side and clears both
// inputs. The backend task keeps running.
func (c *Console) Cancel() {
	c.abandon("cancelled")
	c.instructions = ""
	c.prompt = ""
	c.promptEnabled = false
	c.promptPlaceholder = c.t("prompt.placeholder")
	c.sendEnabled = true
	c.insights = c.t("console.cancelled")
}

// Reset is Cancel plus forgetting the typing flag and the last prompt.
func (c *Console) Reset() {
	c.abandon("reset")
	c.instructions = ""
	c.prompt = ""
	c.promptEnabled = false
	c.promptPlaceholder = c.t("prompt.placeholder")
	c.sendEnabled = true
	c.insights = ""
	c.typing = false
	c.lastPrompt = ""
}

// Handle applies a Cmd result and returns follow-up Cmds.
func (c *Console) Handle(msg Msg) []Cmd {
	switch m := msg.(type) {
	case createdMsg:
		return c.onCreated(m)
	case tickMsg:
		return c.onTick(m)
	case snapshotMsg:
		return c.onSnapshot(m)
	case respondedMsg:
		return c.onResponded(m)
	}
	return nil
}

func (c *Console) onCreated(m createdMsg) []Cmd {
	if c.stale(m.ticket) {
		c.log.Debug("dropping stale create result", "epoch", m.epoch)
		return nil
	}
	c.sendEnabled = true

	if m.err != nil {
		c.log.Warn("create task failed", "error", m.err.Error())
		c.insights = c.t("console.error", m.err.Error())
		c.endSession(StateFailed)
		return nil
	}
	if m.result.Status != backend.StatusOK || strings.TrimSpace(m.result.TaskID) == "" {
		msg := m.result.Message
		if msg == "" || m.result.Status == backend.StatusOK {
			msg = c.t("console.start_failed")
		}
		c.log.Warn("backend refused task", "status", m.result.Status, "message", m.result.Message)
		c.insights = msg
		c.endSession(StateFailed)
		return nil
	}

	c.taskID = m.result.TaskID
	c.state = StatePolling
	c.insights = c.t("console.started")
	c.log.Info("task started", "task_id", c.taskID)
	if c.journal != nil {
		if err := c.journal.TaskStarted(c.taskID, c.submitted); err != nil {
			c.log.Warn("journal task start", "task_id", c.taskID, "error", err.Error())
		}
	}
	return []Cmd{c.tickCmd()}
}

func (c *Console) onTick(m tickMsg) []Cmd {
	if c.stale(m.ticket) || !c.state.Polling() {
		return nil
	}
	return []Cmd{c.pollCmd(), c.tickCmd()}
}

func (c *Console) onSnapshot(m snapshotMsg) []Cmd {
	if c.stale(m.ticket) {
		c.log.Debug("dropping stale snapshot", "task_id", m.taskID, "epoch", m.epoch)
		return nil
	}
	if m.err != nil {
		c.log.Warn("poll failed", "task_id", c.taskID, "error", m.err.Error())
		c.insights = c.t("console.poll_error", m.err.Error())
		c.finish(StateFailed, c.insights)
		return nil
	}

	snap := m.snap
	if snap.Status == backend.TaskStatusError {
		c.insights = snap.Message
		c.finish(StateFailed, snap.Message)
		return nil
	}
	if m.frame != nil {
		c.frame = m.frame
		c.frameSeq++
		if m.frame.Err != nil {
			c.log.Warn("screenshot decode failed", "task_id", c.taskID, "error", m.frame.Err.Error())
		}
	}
	if snap.TerminalOutput != "" {
		c.terminal = snap.TerminalOutput
	}
	if snap.HasPrompt() {
		c.showPrompt(snap.Prompt)
		return nil
	}

	msg := snap.Message
	if msg == "" {
		msg = c.t("console.status", snap.Status)
	}
	if c.state != StateWaitingForInput {
		c.insights = msg
	}
	if snap.Status == backend.TaskStatusCompleted {
		c.finish(StateCompleted, msg)
	}
	return nil
}

func (c *Console) showPrompt(prompt string) {
	if c.state == StateWaitingForInput && prompt == c.lastPrompt {
		return
	}
	c.lastPrompt = prompt
	c.state = StateWaitingForInput
	c.promptEnabled = true
	if !c.typing {
		c.promptPlaceholder = prompt
		c.insights = prompt
	}
	c.log.Info("prompt shown", "task_id", c.taskID)
}

func (c *Console) onResponded(m respondedMsg) []Cmd {
	if c.stale(m.ticket) {
		return nil
	}
	if m.err != nil {
		c.log.Warn("respond failed", "task_id", c.taskID, "error", m.err.Error())
		c.promptEnabled = true
		c.insights = c.t("console.error", m.err.Error())
		return nil
	}
	if !m.ack.OK() {
		c.promptEnabled = true
		c.insights = m.ack.Message
		if c.insights == "" {
			c.insights = c.t("console.respond_failed")
		}
		return nil
	}

	if c.state == StateWaitingForInput {
		c.state = StatePolling
	}
	c.prompt = ""
	c.promptPlaceholder = c.t("prompt.waiting")
	c.insights = c.t("console.response_sent")
	if c.journal != nil {
		if err := c.journal.PromptAnswered(m.taskID, m.prompt, m.response); err != nil {
			c.log.Warn("journal prompt answer", "task_id", m.taskID, "error", err.Error())
		}
	}
	return nil
}

func (c *Console) tickCmd() Cmd {
	tk, ctx, d, wait, now := c.ticket(), c.ctx, c.interval, c.wait, c.now
	return func() Msg {
		wait(ctx, d)
		return tickMsg{ticket: tk, at: now()}
	}
}

func (c *Console) pollCmd() Cmd {
	tk, ctx, be := c.ticket(), c.ctx, c.backend
	return func() Msg {
		snap, err := be.TaskStatus(ctx, tk.taskID)
		if err != nil {
			return snapshotMsg{ticket: tk, err: err}
		}
		var frame *preview.Frame
		if snap.Screenshot != "" {
			frame = preview.Decode(snap.Screenshot)
		}
		return snapshotMsg{ticket: tk, snap: snap, frame: frame}
	}
}

func (c *Console) ticket() ticket {
	return ticket{taskID: c.taskID, epoch: c.epoch}
}

func (c *Console) stale(tk ticket) bool {
	return tk.epoch != c.epoch || tk.taskID != c.taskID
}

func (c *Console) beginSession() {
	c.epoch++
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.taskID = ""
}

// endSession invalidates every outstanding Cmd and aborts in-flight requests.
func (c *Console) endSession(state State) {
	c.epoch++
	if c.cancel != nil {
		c.cancel()
	}
	c.ctx, c.cancel = nil, nil
	c.taskID = ""
	c.state = state
}

func (c *Console) finish(state State, message string) {
	if c.journal != nil && c.taskID != "" {
		if err := c.journal.TaskFinished(c.taskID, state.String(), message); err != nil {
			c.log.Warn("journal task finish", "task_id", c.taskID, "error", err.Error())
		}
	}
	c.log.Info("task finished", "task_id", c.taskID, "state", state.String())
	c.endSession(state)
}

func (c *Console) abandon(status string) {
	if c.journal != nil && c.taskID != "" {
		if err := c.journal.TaskFinished(c.taskID, status, ""); err != nil {
			c.log.Warn("journal task finish", "task_id", c.taskID, "error", err.Error())
		}
	}
	c.endSession(StateIdle)
}
