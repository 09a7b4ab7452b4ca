// Package tui is a terminal front end for the chat engine, built on
// tview. It implements client.Renderer and client.Downloader: the engine
// pushes display directives into the message board, and slash commands
// typed into the input field turn into engine calls.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/parley-chat/parley/pkg/client"
)

// UI owns the tview application and the widgets of the chat screen. It is
// constructed before the engine (the engine takes the UI as its renderer)
// and bound to the client afterwards with Bind.
type UI struct {
	App    *tview.Application
	Board  *tview.TextView
	Frame  *tview.Frame
	Input  *tview.InputField
	Status *tview.TextView

	// DownloadDir is where fetched attachments are written.
	// Default: "downloads" under the working directory.
	DownloadDir string

	mu       sync.Mutex
	client   *client.Client
	selfNick string
	lines    []*client.Message
}

// New builds the chat screen. The returned UI is not yet bound to an
// engine; call Bind before Run.
func New() *UI {
	app := tview.NewApplication()

	board := tview.NewTextView().SetChangedFunc(func() {
		app.Draw()
	})
	board.SetDynamicColors(true).SetScrollable(true)

	frame := tview.NewFrame(board)
	frame.SetTitle("[parley]").SetBorder(true).SetTitleAlign(0)

	status := tview.NewTextView().SetChangedFunc(func() {
		app.Draw()
	})
	status.SetDynamicColors(true)

	input := tview.NewInputField()
	input.SetPlaceholder("Send a message or type /help").
		SetPlaceholderTextColor(tcell.ColorDeepSkyBlue)
	input.SetLabel(">").SetLabelColor(tcell.ColorDeepSkyBlue).SetLabelWidth(2)
	input.SetFieldTextColor(tcell.ColorWhite).SetFieldBackgroundColor(tcell.ColorGrey)

	ui := &UI{
		App:         app,
		Board:       board,
		Frame:       frame,
		Input:       input,
		Status:      status,
		DownloadDir: "downloads",
	}

	input.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			text := input.GetText()
			if text == "" {
				return
			}
			input.SetText("")
			ui.handleInput(text)
		case tcell.KeyUp:
			app.SetFocus(board)
		}
	})
	board.SetDoneFunc(func(key tcell.Key) {
		app.SetFocus(input)
	})

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(frame, 0, 1, false).
		AddItem(status, 1, 0, false).
		AddItem(input, 3, 0, true)
	app.SetRoot(layout, true)

	ui.showWelcomeText()
	return ui
}

// Bind attaches the engine the input commands act on.
func (ui *UI) Bind(c *client.Client) {
	ui.mu.Lock()
	ui.client = c
	ui.mu.Unlock()
}

// SetNickname tells the board which sender to highlight as self. Call it
// before connecting; the engine callbacks must not be reached back into.
func (ui *UI) SetNickname(nickname string) {
	ui.mu.Lock()
	ui.selfNick = nickname
	ui.mu.Unlock()
}

// Run starts the terminal event loop and blocks until the screen exits.
func (ui *UI) Run() error {
	return ui.App.Run()
}

// Render implements client.Renderer.
func (ui *UI) Render(m *client.Message, pos client.Position) {
	ui.mu.Lock()
	if pos == client.PositionPrepend {
		ui.lines = append([]*client.Message{m}, ui.lines...)
	} else {
		ui.lines = append(ui.lines, m)
	}
	ui.redrawLocked()
	ui.mu.Unlock()
}

// Update implements client.Renderer.
func (ui *UI) Update(m *client.Message) {
	ui.mu.Lock()
	ui.redrawLocked()
	ui.mu.Unlock()
}

// Remove implements client.Renderer.
func (ui *UI) Remove(sender string, id int64) {
	ui.mu.Lock()
	kept := ui.lines[:0]
	for _, m := range ui.lines {
		if m.Sender != nil && m.ID != nil && *m.Sender == sender && *m.ID == id {
			continue
		}
		kept = append(kept, m)
	}
	ui.lines = kept
	ui.redrawLocked()
	ui.mu.Unlock()
}

// Notice implements client.Renderer.
func (ui *UI) Notice(kind client.NoticeKind, text string) {
	color := "yellow"
	if kind == client.NoticeError {
		color = "red"
	}
	fmt.Fprintf(ui.Board, "[%s]%s[::-]: %s\n\n", color, kind, text)
}

// AttachmentChanged implements client.Renderer.
func (ui *UI) AttachmentChanged(ch client.AttachmentChange) {
	if ch.Pending != nil {
		ui.Status.SetText(fmt.Sprintf("[green]attachment pending[::-] %s (/unattach to drop)", *ch.Pending))
		return
	}
	ui.Status.SetText("")
}

// SessionOpened implements client.Renderer.
func (ui *UI) SessionOpened() {
	fmt.Fprint(ui.Board, "[green]connected[::-]\n\n")
}

// Reset implements client.Renderer. The screen is cleared and the event
// loop stopped: a torn-down session does not reconnect on its own.
func (ui *UI) Reset() {
	ui.mu.Lock()
	ui.lines = nil
	ui.mu.Unlock()
	ui.Status.SetText("")
	fmt.Fprint(ui.Board, "[grey]session closed[::-]\n")
	ui.App.Stop()
}

// SaveAttachment implements client.Downloader. Files land in DownloadDir
// under their advertised name, directory components stripped.
func (ui *UI) SaveAttachment(name string, data []byte) error {
	if err := os.MkdirAll(ui.DownloadDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(ui.DownloadDir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(ui.Board, "[green]saved[::-] %s\n\n", path)
	return nil
}

func (ui *UI) redrawLocked() {
	var out string
	for _, m := range ui.lines {
		out += formatMessage(m, ui.selfNick)
	}
	ui.Board.SetText(out)
	ui.Board.ScrollToEnd()
}

func formatMessage(m *client.Message, self string) string {
	if m.Sender == nil {
		return fmt.Sprintf("[grey]%s[::-]\n\n", tview.Escape(m.Text))
	}

	name := tview.Escape(*m.Sender)
	if *m.Sender == self {
		name = fmt.Sprintf("[blue::b]%s[::-]", name)
	}
	info := fmt.Sprintf("[grey]%s[::-]", m.Timestamp.Format("Jan 2 15:04:05"))
	if m.ID != nil {
		info += fmt.Sprintf(" [grey]#%d[::-]", *m.ID)
	}
	if m.Edited {
		info += " [grey](edited)[::-]"
	}

	line := fmt.Sprintf("%s %s\n  [white]%s[::-]\n", name, info, tview.Escape(m.Text))
	if m.Attachment != nil {
		line += fmt.Sprintf("  [green]attachment[::-] %s\n", tview.Escape(*m.Attachment))
	}
	return line + "\n"
}
