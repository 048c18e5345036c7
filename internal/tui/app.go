package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"taskconsole/internal/console"
	"taskconsole/internal/i18n"
	"taskconsole/internal/logging"
	"taskconsole/internal/preview"
)

// FocusID 输入焦点
// FocusID identifies the focused input
type FocusID int

const (
	FocusInstructions FocusID = iota
	FocusPrompt
)

// --- Tea Messages ---

// ConsoleMsg 包装控制台命令结果
// ConsoleMsg carries a console Cmd result back into Update
type ConsoleMsg struct{ Msg console.Msg }

// FrameSavedMsg 截图保存完成
// FrameSavedMsg reports the outcome of ctrl+s
type FrameSavedMsg struct {
	Path string
	Err  error
}

// Options 配置 TUI
// Options configures the TUI
type Options struct {
	Console       *console.Console
	Locale        *i18n.I18n
	Logger        *logging.Logger
	BaseURL       string
	ScreenshotDir string
	PreviewWidth  int
	Now           func() time.Time
}

// App Bubble Tea 主 Model
// App is the main Bubble Tea model
type App struct {
	// 布局 / Layout
	width        int
	height       int
	previewWidth int

	// 区域 / Regions
	insightsView viewport.Model
	terminalView viewport.Model
	lastTerminal string

	// 输入 / Inputs
	instructions textarea.Model
	prompt       textarea.Model
	focus        FocusID

	// 状态 / State
	console       *console.Console
	view          console.View
	flash         string
	baseURL       string
	screenshotDir string

	// 渲染缓存 / Render caches
	insightsMD *markdownCache
	frameOut   *previewCache

	// 配置 / Config
	theme   Theme
	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	locale  *i18n.I18n
	log     *logging.Logger
	now     func() time.Time
}

// NewApp 创建 TUI 应用
// NewApp creates a new TUI application
func NewApp(opts Options) App {
	loc := opts.Locale
	if loc == nil {
		loc = i18n.Global()
	}
	keys := DefaultKeyMap(loc)

	instr := textarea.New()
	instr.Placeholder = loc.T("input.placeholder")
	instr.CharLimit = 8192
	instr.ShowLineNumbers = false
	instr.SetHeight(3)
	instr.Focus()

	prompt := textarea.New()
	prompt.CharLimit = 4096
	prompt.ShowLineNumbers = false
	prompt.SetHeight(2)
	prompt.KeyMap.InsertNewline = keys.Newline

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	previewWidth := opts.PreviewWidth
	if previewWidth <= 0 {
		previewWidth = 48
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	theme := DarkTheme()
	sp.Style = lipgloss.NewStyle().Foreground(theme.Accent)

	a := App{
		instructions:  instr,
		prompt:        prompt,
		focus:         FocusInstructions,
		console:       opts.Console,
		baseURL:       opts.BaseURL,
		screenshotDir: opts.ScreenshotDir,
		previewWidth:  previewWidth,
		insightsMD:    &markdownCache{},
		frameOut:      &previewCache{},
		theme:         theme,
		keys:          keys,
		help:          help.New(),
		spinner:       sp,
		locale:        loc,
		log:           opts.Logger,
		now:           now,
	}
	a.sync()
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, a.spinner.Tick)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.relayout()
		return a, nil

	case ConsoleMsg:
		cmds := a.console.Handle(msg.Msg)
		a.sync()
		return a, adapt(cmds)

	case FrameSavedMsg:
		if msg.Err != nil {
			a.flash = msg.Err.Error()
			a.log.Warn("save screenshot failed", "error", msg.Err.Error())
		} else {
			a.flash = a.locale.T("preview.saved", msg.Path)
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a.forward(msg)
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		a.console.Cancel()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Send):
		a.flash = ""
		cmds := a.console.Submit(a.instructions.Value())
		a.sync()
		return a, adapt(cmds)

	case key.Matches(msg, a.keys.Cancel):
		a.flash = ""
		a.console.Cancel()
		a.sync()
		return a, nil

	case key.Matches(msg, a.keys.Reset):
		a.flash = ""
		a.console.Reset()
		a.sync()
		return a, nil

	case key.Matches(msg, a.keys.SwitchFocus):
		if a.focus == FocusInstructions {
			return a, a.setFocus(FocusPrompt)
		}
		return a, a.setFocus(FocusInstructions)

	case key.Matches(msg, a.keys.Save):
		return a, a.saveFrame()

	case key.Matches(msg, a.keys.ScrollUp):
		a.terminalView.SetYOffset(a.terminalView.YOffset - a.terminalView.Height)
		return a, nil

	case key.Matches(msg, a.keys.ScrollDown):
		a.terminalView.SetYOffset(a.terminalView.YOffset + a.terminalView.Height)
		return a, nil

	case a.focus == FocusPrompt && key.Matches(msg, a.keys.Respond):
		if !a.view.PromptEnabled {
			return a, nil
		}
		cmds := a.console.Respond(a.prompt.Value())
		a.sync()
		return a, adapt(cmds)
	}

	return a.forward(msg)
}

// forward 将其余消息交给获得焦点的输入框
// forward hands remaining messages to the focused input
func (a App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.focus {
	case FocusInstructions:
		a.instructions, cmd = a.instructions.Update(msg)
		a.console.SetInstructions(a.instructions.Value())
	case FocusPrompt:
		if !a.view.PromptEnabled {
			return a, nil
		}
		before := a.prompt.Value()
		a.prompt, cmd = a.prompt.Update(msg)
		if _, isKey := msg.(tea.KeyMsg); isKey || a.prompt.Value() != before {
			a.console.Input(a.prompt.Value())
		}
	}
	a.view = a.console.View()
	return a, cmd
}

func (a *App) setFocus(f FocusID) tea.Cmd {
	if a.focus == f {
		return nil
	}
	a.focus = f
	if f == FocusPrompt {
		a.instructions.Blur()
		if a.view.PromptEnabled {
			a.console.Focus()
		}
		a.sync()
		return a.prompt.Focus()
	}
	a.prompt.Blur()
	a.console.Blur()
	a.sync()
	return a.instructions.Focus()
}

func (a App) saveFrame() tea.Cmd {
	frame := a.view.Frame
	if frame == nil || len(frame.PNG) == 0 {
		return func() tea.Msg {
			return FrameSavedMsg{Err: fmt.Errorf("%s", a.locale.T("preview.none"))}
		}
	}
	dir, at := a.screenshotDir, a.now()
	return func() tea.Msg {
		path, err := preview.Save(dir, frame, at)
		return FrameSavedMsg{Path: path, Err: err}
	}
}

// sync 将控制台视图复制到各组件
// sync copies the console view into the widgets
func (a *App) sync() {
	v := a.console.View()
	// 禁用的输入框不算在输入 / A disabled prompt cannot hold an edit
	if v.Typing && !v.PromptEnabled {
		a.console.Release()
		v = a.console.View()
	}
	a.view = v

	if a.instructions.Value() != v.Instructions {
		a.instructions.SetValue(v.Instructions)
	}
	if a.prompt.Value() != v.Prompt {
		a.prompt.SetValue(v.Prompt)
	}
	a.prompt.Placeholder = v.PromptPlaceholder

	a.insightsView.SetContent(a.insightsMD.render(v.Insights, a.insightsView.Width))
	if v.Terminal != a.lastTerminal {
		a.lastTerminal = v.Terminal
		a.terminalView.SetContent(a.theme.TerminalStyle.Render(v.Terminal))
		a.terminalView.GotoBottom()
	}
}

// adapt 将控制台命令转为 tea.Cmd
// adapt turns console Cmds into tea Cmds
func adapt(cmds []console.Cmd) tea.Cmd {
	if len(cmds) == 0 {
		return nil
	}
	batch := make([]tea.Cmd, 0, len(cmds))
	for _, c := range cmds {
		batch = append(batch, func() tea.Msg { return ConsoleMsg{Msg: c()} })
	}
	return tea.Batch(batch...)
}

func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Initializing..."
	}

	previewWidth := a.previewCols()
	mainWidth := a.width
	if previewWidth > 0 {
		mainWidth -= previewWidth + 1 // border
	}

	top := a.renderRegions(mainWidth, a.regionHeight())
	if previewWidth > 0 {
		top = lipgloss.JoinHorizontal(lipgloss.Top, top, a.renderPreview(previewWidth, a.regionHeight()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		top,
		a.renderInput(a.locale.T("panel.instructions"), a.instructions, a.focus == FocusInstructions),
		a.renderInput(a.locale.T("panel.prompt"), a.prompt, a.focus == FocusPrompt),
		a.renderStatusBar(a.width),
		a.help.View(a.keys),
	)
}

// --- 内部方法 / Internal methods ---

const (
	instructionsHeight = 4
	promptHeight       = 3
	chromeHeight       = instructionsHeight + promptHeight + 2 + 2 // borders, status, help
)

func (a App) regionHeight() int {
	h := a.height - chromeHeight
	if h < 6 {
		h = 6
	}
	return h
}

func (a App) previewCols() int {
	if a.width < 60 {
		return 0
	}
	w := a.previewWidth
	if w > a.width/2 {
		w = a.width / 2
	}
	return w
}

func (a *App) relayout() {
	mainWidth := a.width
	if p := a.previewCols(); p > 0 {
		mainWidth -= p + 1
	}
	height := a.regionHeight() - 2 // region titles
	insightsHeight := height / 3
	if insightsHeight < 2 {
		insightsHeight = 2
	}

	a.insightsView = viewport.New(mainWidth, insightsHeight)
	a.terminalView = viewport.New(mainWidth, height-insightsHeight)
	a.lastTerminal = ""

	a.instructions.SetWidth(a.width - 2)
	a.prompt.SetWidth(a.width - 2)
	a.help.Width = a.width
	a.sync()
}

// --- 渲染方法 / Render methods ---

func (a App) renderRegions(width, height int) string {
	insights := a.insightsView.View()
	if strings.TrimSpace(a.view.Insights) == "" {
		insights = ""
	}
	terminal := a.terminalView.View()
	if a.view.Terminal == "" {
		terminal = ""
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		a.theme.TitleStyle.Render(" "+a.locale.T("panel.insights")),
		lipgloss.NewStyle().Height(a.insightsView.Height).Render(insights),
		a.theme.TitleStyle.Render(" "+a.locale.T("panel.terminal")),
		terminal,
	)
	return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).Render(content)
}

func (a App) renderPreview(width, height int) string {
	rows := height - 1
	var body string
	switch f := a.view.Frame; {
	case f == nil:
		body = a.theme.MutedStyle.Render(a.locale.T("preview.placeholder"))
	case !f.OK():
		body = a.theme.ErrorStyle.Render(a.locale.T("preview.broken"))
	default:
		body = a.frameOut.render(f, width-1, rows)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		a.theme.TitleStyle.Render(" "+a.locale.T("panel.preview")),
		body,
	)
	return a.theme.PreviewStyle.Width(width).Height(height).MaxHeight(height).Render(content)
}

func (a App) renderInput(title string, ta textarea.Model, focused bool) string {
	style := a.theme.TitleStyle
	if focused {
		style = a.theme.ActiveTitleStyle
	}
	body := lipgloss.JoinVertical(lipgloss.Left, style.Render(" "+title), ta.View())
	return a.theme.InputStyle.Width(a.width).Render(body)
}

func (a App) renderStatusBar(width int) string {
	state := a.view.State
	badge := a.theme.stateStyle(state == console.StateFailed, state == console.StateCompleted).
		Render(a.stateLabel(state))

	left := " " + badge
	if state.Busy() {
		left = " " + a.spinner.View() + badge
	}
	if a.view.TaskID != "" {
		left += " " + a.locale.T("status.task", a.view.TaskID)
	}

	right := a.baseURL
	if a.flash != "" {
		right = a.flash
	}
	room := width - lipgloss.Width(left) - 2
	if room < 0 {
		room = 0
	}
	right = runewidth.Truncate(right, room, "…") + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return a.theme.StatusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func (a App) stateLabel(s console.State) string {
	switch s {
	case console.StateSubmitting:
		return a.locale.T("status.submitting")
	case console.StatePolling:
		return a.locale.T("status.polling")
	case console.StateWaitingForInput:
		return a.locale.T("status.waiting")
	case console.StateCompleted:
		return a.locale.T("status.completed")
	case console.StateFailed:
		return a.locale.T("status.failed")
	default:
		return a.locale.T("status.idle")
	}
}

// Run 启动 Bubble Tea TUI
// Run starts the Bubble Tea TUI application
func Run(opts Options) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
