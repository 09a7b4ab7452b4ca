package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parley-chat/parley/pkg/client"
)

func (ui *UI) handleInput(text string) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "/") {
		ui.handleCommand(trimmed)
		return
	}

	c := ui.boundClient()
	if c == nil {
		return
	}
	c.SetDraft(text)
	if err := c.Commit(); err != nil {
		ui.logError(err)
	}
}

func (ui *UI) handleCommand(text string) {
	fields := strings.Fields(text)
	cmd, args := fields[0], fields[1:]

	if cmd == "/help" {
		ui.listCommands()
		return
	}
	if cmd == "/quit" {
		if c := ui.boundClient(); c != nil {
			c.Close()
		}
		ui.App.Stop()
		return
	}

	c := ui.boundClient()
	if c == nil {
		ui.logError(fmt.Errorf("not connected"))
		return
	}

	switch cmd {
	case "/edit":
		id, err := parseID(args)
		if err != nil {
			ui.logError(err)
			return
		}
		if err := c.BeginEdit(c.Nickname(), id); err != nil {
			ui.logError(err)
			return
		}
		// Seed the field with the current text so editing starts from it.
		if m := c.Find(c.Nickname(), id); m != nil {
			ui.Input.SetText(m.Text)
		}
	case "/cancel":
		c.CancelEdit()
	case "/delete":
		id, err := parseID(args)
		if err != nil {
			ui.logError(err)
			return
		}
		if err := c.Delete(id); err != nil {
			ui.logError(err)
		}
	case "/attach":
		if len(args) != 1 {
			ui.logError(fmt.Errorf("usage: /attach <path>"))
			return
		}
		if err := c.Attach(&fileSource{path: args[0]}); err != nil {
			ui.logError(err)
		}
	case "/unattach":
		c.Unattach()
	case "/fetch":
		if len(args) != 1 {
			ui.logError(fmt.Errorf("usage: /fetch <attachment>"))
			return
		}
		if err := c.FetchAttachment(args[0]); err != nil {
			ui.logError(err)
		}
	default:
		ui.logError(fmt.Errorf("unknown command %s, try /help", cmd))
	}
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: expects a message id")
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad message id %q", args[0])
	}
	return id, nil
}

func (ui *UI) boundClient() *client.Client {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	return ui.client
}

func (ui *UI) logError(err error) {
	ui.Notice(client.NoticeError, err.Error())
}

type option struct {
	usage       string
	description string
}

func (ui *UI) listCommands() {
	options := []option{
		{usage: "/help", description: "Shows this commands list."},
		{usage: "/edit <id>", description: "Starts editing one of your messages."},
		{usage: "/cancel", description: "Abandons the edit in progress."},
		{usage: "/delete <id>", description: "Deletes one of your messages."},
		{usage: "/attach <path>", description: "Stages a file for the next message."},
		{usage: "/unattach", description: "Drops the staged file."},
		{usage: "/fetch <attachment>", description: "Downloads a message attachment."},
		{usage: "/quit", description: "Disconnects and exits."},
	}
	out := "[lightgrey::b]Commands[::-]\n"
	for _, o := range options {
		out += fmt.Sprintf("  [blue]%s[::-] [lightgrey]%s[::-]\n", o.usage, o.description)
	}
	out += "\n[lightgrey::b]Keys[::-]\n  [blue]UP ARROW[::-] [lightgrey]Focus the message list.[::-]\n  [blue]ESC[::-] [lightgrey]Back to the input field.[::-]\n"
	fmt.Fprint(ui.Board, out, "\n")
}

func (ui *UI) showWelcomeText() {
	fmt.Fprint(ui.Board, "[lightgrey::b]Welcome to Parley[::-]\n\n")
	ui.listCommands()
}

// fileSource adapts a filesystem path to the engine's attachment source.
// Stat happens up front so the size check never reads an oversized file.
type fileSource struct {
	path string
}

func (f *fileSource) Name() string {
	return filepath.Base(f.path)
}

func (f *fileSource) Size() int64 {
	info, err := os.Stat(f.path)
	if err != nil {
		return -1
	}
	return info.Size()
}

func (f *fileSource) Read() ([]byte, error) {
	return os.ReadFile(f.path)
}
