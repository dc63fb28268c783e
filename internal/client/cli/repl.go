package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Refresh(ctx context.Context) error
	More(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	New(ctx context.Context) error
	Comment(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Mine(ctx context.Context) error
	Tags(ctx context.Context) error
	Doc(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register, login, list, exit"
	helpLoggedIn  = "Available commands: (l)ist, refresh, more, show <id>, new, comment <id>, search <text>, mine, tags, doc <id>, whoami, logout, exit"
)

// runREPL reads one command per line from in and dispatches it to a.
// The loop exits on EOF or when the user types "exit" or "quit".
//
// Errors returned by handlers are ignored here; handlers print their own.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("pl %s> ", statusFn()))

		line, err := in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		case "l", "list":
			_ = a.List(ctx)

		default:
			if !a.isLoggedIn() {
				if isSessionCommand(cmd) {
					printlnFn("Please log in first")
				} else {
					printlnFn("Unknown command:", cmd)
				}
				continue
			}
			dispatch(ctx, a, cmd, args)
		}
	}
}

func isSessionCommand(cmd string) bool {
	switch cmd {
	case "logout", "whoami", "refresh", "more", "show", "new", "comment", "search", "mine", "tags", "doc":
		return true
	}
	return false
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) {
	switch cmd {
	case "logout":
		_ = a.Logout(ctx)
	case "whoami":
		_ = a.WhoAmI(ctx)
	case "refresh":
		_ = a.Refresh(ctx)
	case "more":
		_ = a.More(ctx)
	case "show":
		_ = a.Show(ctx, args)
	case "new":
		_ = a.New(ctx)
	case "comment":
		_ = a.Comment(ctx, args)
	case "search":
		_ = a.Search(ctx, args)
	case "mine":
		_ = a.Mine(ctx)
	case "tags":
		_ = a.Tags(ctx)
	case "doc":
		_ = a.Doc(ctx, args)
	default:
		printlnFn("Unknown command:", cmd)
	}
}
