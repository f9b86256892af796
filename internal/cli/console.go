package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/aretw0/intake/internal/presentation/tui"
	"github.com/aretw0/intake/pkg/dispatch"
	"github.com/aretw0/intake/pkg/domain"
)

// ConsoleSessionKey is the session key of the local console user.
const ConsoleSessionKey = "console"

// ConsoleOptions configures RunConsole.
type ConsoleOptions struct {
	// Interactive enables the banner, markdown rendering and colours.
	Interactive bool
	// Sender is the identity recorded with submissions.
	Sender domain.Sender
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// LocalSender returns the identity of the OS user running the console.
func LocalSender() domain.Sender {
	s := domain.Sender{DisplayName: "Console user", ID: ConsoleSessionKey}
	if u, err := user.Current(); err == nil {
		s.Handle = u.Username
		if u.Name != "" {
			s.DisplayName = u.Name
		}
	}
	return s
}

// RunConsole chats with the agent over in/out until in is exhausted, the
// user types q, quit or exit, or ctx is done. "#n" picks the n-th quick
// reply of the last keyboard; a bare number does too, unless the prompt
// accepts free text.
func RunConsole(ctx context.Context, handle dispatch.Handler, in io.Reader, out io.Writer, opts ConsoleOptions) error {
	render := tui.Renderer(tui.PlainRenderer)
	if opts.Interactive {
		tui.PrintBanner(out)
		render = tui.NewRenderer()
	}
	if opts.Sender.ID == "" {
		opts.Sender.ID = ConsoleSessionKey
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	var last domain.Reply
	send := func(text string) error {
		reply, err := handle(ctx, domain.Message{
			SessionKey: ConsoleSessionKey,
			Text:       text,
			Sender:     opts.Sender,
			Timestamp:  time.Now(),
		})
		if err != nil {
			return err
		}
		last = reply
		return printReply(out, render, reply, opts.Interactive)
	}

	if err := send("/start"); err != nil {
		return err
	}

	for {
		fmt.Fprint(out, "> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case err := <-readErr:
			fmt.Fprintln(out)
			return err
		case line := <-lines:
			input := strings.TrimSpace(line)
			switch strings.ToLower(input) {
			case "":
				continue
			case "q", "quit", "exit":
				return nil
			}
			input = quickReply(input, last)
			if err := send(input); err != nil {
				return err
			}
		}
	}
}

// quickReply resolves a numeric pick against the keyboard of reply.
func quickReply(input string, reply domain.Reply) string {
	digits, explicit := strings.CutPrefix(input, "#")
	if !explicit && reply.FreeText {
		return input
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > len(reply.Keyboard) {
		return input
	}
	return reply.Keyboard[n-1]
}

func printReply(out io.Writer, render tui.Renderer, reply domain.Reply, colored bool) error {
	if reply.Text != "" {
		text, err := render(reply.Text)
		if err != nil {
			text = reply.Text + "\n"
		}
		if _, err := fmt.Fprint(out, text); err != nil {
			return err
		}
	}
	if reply.Document != nil {
		fmt.Fprintf(out, "📎 %s", reply.Document.Path)
		if reply.Document.Caption != "" {
			fmt.Fprintf(out, " (%s)", reply.Document.Caption)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprint(out, tui.FormatKeyboard(reply.Keyboard, colored))
	return nil
}
