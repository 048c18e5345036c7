package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"taskconsole/internal/i18n"
)

// KeyMap 定义全局快捷键绑定
// KeyMap defines global keybindings
type KeyMap struct {
	Send        key.Binding
	Respond     key.Binding
	Newline     key.Binding
	Cancel      key.Binding
	Reset       key.Binding
	SwitchFocus key.Binding
	Save        key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	Quit        key.Binding
}

// DefaultKeyMap 默认快捷键
// DefaultKeyMap returns default keybindings
func DefaultKeyMap(loc *i18n.I18n) KeyMap {
	if loc == nil {
		loc = i18n.Global()
	}
	return KeyMap{
		Send: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", loc.T("keys.send")),
		),
		Respond: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", loc.T("keys.send")),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter", "shift+enter"),
			key.WithHelp("alt+enter", "newline"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", loc.T("keys.cancel")),
		),
		Reset: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", loc.T("keys.reset")),
		),
		SwitchFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", loc.T("keys.focus")),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", loc.T("keys.save")),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", loc.T("keys.quit")),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Cancel, k.Reset, k.SwitchFocus, k.Save, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Respond, k.Newline},
		{k.Cancel, k.Reset, k.SwitchFocus},
		{k.Save, k.ScrollUp, k.ScrollDown, k.Quit},
	}
}
