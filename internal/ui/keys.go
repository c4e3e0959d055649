package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global key bindings and the bindings listed in the help
// overlay. Views match their own keys; these only describe them.
type KeyMap struct {
	// Global
	Quit key.Binding
	Back key.Binding
	Help key.Binding

	// Lists
	Up     key.Binding
	Down   key.Binding
	Home   key.Binding
	End    key.Binding
	Search key.Binding
	Open   key.Binding

	// Home
	Read     key.Binding
	PDF      key.Binding
	Continue key.Binding
	Category key.Binding
	Featured key.Binding
	Recent   key.Binding
	Theme    key.Binding

	// Flipbook and reader
	NextPage   key.Binding
	PrevPage   key.Binding
	GoTo       key.Binding
	Thumbnails key.Binding
	Bookmark   key.Binding
	Bookmarks  key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	ZoomReset  key.Binding
	Rotate     key.Binding
	Layout     key.Binding
	Fullscreen key.Binding
	External   key.Binding
	Download   key.Binding
	Reload     key.Binding
}

// DefaultKeyMap returns the default vim-like key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("Ctrl+c", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q/Esc", "back (quit on home)"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "top"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "bottom"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "details / open"),
		),
		Read: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "read as flipbook"),
		),
		PDF: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "read the PDF"),
		),
		Continue: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "continue reading"),
		),
		Category: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "cycle category"),
		),
		Featured: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "featured only"),
		),
		Recent: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "recently read"),
		),
		Theme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "next theme"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("l", "right", "n", "pgdown"),
			key.WithHelp("l/n", "next"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("h", "left", "p", "pgup"),
			key.WithHelp("h/p", "previous"),
		),
		GoTo: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "go to page"),
		),
		Thumbnails: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "page overview"),
		),
		Bookmark: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "toggle bookmark"),
		),
		Bookmarks: key.NewBinding(
			key.WithKeys("B", "[", "]"),
			key.WithHelp("B [ ]", "bookmarks, jump"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "zoom out"),
		),
		ZoomReset: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "reset zoom"),
		),
		Rotate: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rotate"),
		),
		Layout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "single/spread"),
		),
		Fullscreen: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fullscreen"),
		),
		External: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open externally"),
		),
		Download: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "download PDF"),
		),
		Reload: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload / retry"),
		),
	}
}

// helpSection is a titled group of bindings in the help overlay
type helpSection struct {
	title    string
	bindings []key.Binding
}

// helpSections groups the bindings for the help overlay
func (k KeyMap) helpSections() []helpSection {
	return []helpSection{
		{"Issues", []key.Binding{k.Up, k.Down, k.Home, k.End, k.Search, k.Open, k.Read, k.PDF, k.Continue, k.Category, k.Featured, k.Recent, k.Theme}},
		{"Flipbook", []key.Binding{k.NextPage, k.PrevPage, k.GoTo, k.Thumbnails, k.Bookmark, k.Bookmarks, k.ZoomIn, k.ZoomOut, k.ZoomReset, k.Rotate, k.Layout, k.Fullscreen}},
		{"Reader", []key.Binding{k.External, k.Download, k.Reload}},
		{"General", []key.Binding{k.Back, k.Help, k.Quit}},
	}
}
