package tui

import (
	"github.com/charmbracelet/bubbles/v2/key"
)

type KeyMap struct {
	Quit         key.Binding
	Help         key.Binding
	SwitchFocus  key.Binding
	Send         key.Binding
	Search       key.Binding
	NewChat      key.Binding
	ToggleSearch key.Binding
	ToggleTheme  key.Binding
	AttachImage  key.Binding
	RemoveImage  key.Binding
	CopyReply    key.Binding
	APIKey       key.Binding
	APIType      key.Binding
	Model        key.Binding

	pageBindings []key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "more"),
		),
		SwitchFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "chats/input"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Search: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "web search"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new chat"),
		),
		ToggleSearch: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "search mode"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "theme"),
		),
		AttachImage: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "attach image"),
		),
		RemoveImage: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "remove image"),
		),
		CopyReply: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy reply"),
		),
		APIKey: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "api key"),
		),
		APIType: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "api type"),
		),
		Model: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "model"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return append([]key.Binding{k.Send, k.SwitchFocus, k.NewChat, k.Help, k.Quit}, k.pageBindings...)
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Search, k.NewChat, k.SwitchFocus},
		{k.ToggleSearch, k.ToggleTheme, k.Model},
		{k.AttachImage, k.RemoveImage, k.CopyReply},
		{k.APIKey, k.APIType, k.Help, k.Quit},
		k.pageBindings,
	}
}
