package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/backoffice/internal/client/guard"
)

// printlnFn and printFn are test seams for user-facing output. In tests,
// replace them with stubs.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Open(ctx context.Context, path string) error
	Back(ctx context.Context) error
	Search(ctx context.Context, term string) error
	Page(ctx context.Context, n int) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	Refresh(ctx context.Context) error
	Show(ctx context.Context, id int64) error
	Row(ctx context.Context, n int) error
	Delete(ctx context.Context, id int64) error
	Create(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Approve(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64, reason string) error
	Notifications(ctx context.Context) error
	Read(ctx context.Context, id int64) error
	Export(ctx context.Context, path string) error
	Import(ctx context.Context, path string) error
	Stats(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: login, whoami, help, exit"
	helpLoggedIn  = `Available commands:
  open <route>          brands, models, engineers, partners, suppliers, spare-parts,
                        quotations, contact-queries, staff, settings, dashboard
  back                  previous screen
  search [term]         search the open list (no term clears it)
  page <n> | next | prev | refresh
  show <id>             record details
  row <n>               open the n-th row of the page
  create f=v ...        new record (@field=path attaches a file)
  edit <id> f=v ...     change a record; on settings: edit f=v ...
  delete <id>           delete after confirmation
  approve <id>          approve a quotation
  reject <id> [reason]  reject a quotation
  notifications         notification panel
  read <id>             mark a notification as read
  export <file.xlsx>    save the visible page
  import <file.xlsx>    import spare parts
  stats                 dashboard counters
  whoami | logout | exit`
)

// runREPL starts the read–eval–print loop of the back office shell.
//
// It reads a line from in, splits it into arguments (double or single
// quotes keep spaces together), and dispatches to methods on 'a'. Unknown
// commands and malformed arguments are reported back to the user. The loop
// exits on EOF, when ctx is done, or when the user types "exit" or "quit".
//
// The prompt shows the current status (from statusFn), e.g.
//
//	backoffice (Administrator admin) [3]>
//
// Errors returned by command handlers are ignored here; handlers toast
// their own failures. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		if status := statusFn(); status != "" {
			printFn(fmt.Sprintf("backoffice %s> ", status))
		} else {
			printFn("backoffice> ")
		}

		line, err := in.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return
		}
		parts, perr := splitArgs(line)
		if perr != nil {
			printlnFn("Error:", perr)
			continue
		}
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if dispatch(ctx, a, cmd, args) {
			return
		}
	}
}

// dispatch runs one command. It reports true when the shell should exit.
func dispatch(ctx context.Context, a execIface, cmd string, args []string) bool {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpLoggedOut)
		}

	case "login":
		_ = a.Login(ctx)

	case "logout":
		_ = a.Logout(ctx)

	case "whoami":
		_ = a.Whoami(ctx)

	case "exit", "quit":
		printlnFn("Bye!")
		return true

	default:
		if !a.isLoggedIn() {
			printlnFn("Please log in first (type 'login').")
			return false
		}
		loggedInCommand(ctx, a, cmd, args)
	}
	return false
}

func loggedInCommand(ctx context.Context, a execIface, cmd string, args []string) {
	switch cmd {
	case "open", "o":
		if len(args) != 1 {
			printlnFn("Usage: open <route>")
			return
		}
		_ = a.Open(ctx, args[0])

	case "dashboard":
		_ = a.Open(ctx, guard.DashboardPath)

	case "back", "b":
		_ = a.Back(ctx)

	case "search", "s":
		_ = a.Search(ctx, strings.Join(args, " "))

	case "page":
		n, ok := intArg(args, "Usage: page <n>")
		if ok {
			_ = a.Page(ctx, int(n))
		}

	case "next", "n":
		_ = a.Next(ctx)

	case "prev", "p":
		_ = a.Prev(ctx)

	case "refresh", "r":
		_ = a.Refresh(ctx)

	case "show":
		if id, ok := intArg(args, "Usage: show <id>"); ok {
			_ = a.Show(ctx, id)
		}

	case "row":
		if n, ok := intArg(args, "Usage: row <n>"); ok {
			_ = a.Row(ctx, int(n))
		}

	case "delete", "rm":
		if id, ok := intArg(args, "Usage: delete <id>"); ok {
			_ = a.Delete(ctx, id)
		}

	case "create", "new":
		_ = a.Create(ctx, args)

	case "edit":
		_ = a.Edit(ctx, args)

	case "approve":
		if id, ok := intArg(args, "Usage: approve <id>"); ok {
			_ = a.Approve(ctx, id)
		}

	case "reject":
		if len(args) == 0 {
			printlnFn("Usage: reject <id> [reason]")
			return
		}
		if id, ok := intArg(args[:1], "Usage: reject <id> [reason]"); ok {
			_ = a.Reject(ctx, id, strings.Join(args[1:], " "))
		}

	case "notifications", "notes":
		_ = a.Notifications(ctx)

	case "read":
		if id, ok := intArg(args, "Usage: read <id>"); ok {
			_ = a.Read(ctx, id)
		}

	case "export":
		if len(args) != 1 {
			printlnFn("Usage: export <file.xlsx>")
			return
		}
		_ = a.Export(ctx, args[0])

	case "import":
		if len(args) != 1 {
			printlnFn("Usage: import <file.xlsx>")
			return
		}
		_ = a.Import(ctx, args[0])

	case "stats":
		_ = a.Stats(ctx)

	default:
		printlnFn("Unknown command:", cmd)
	}
}

// intArg parses the single positive integer argument of a command.
func intArg(args []string, usage string) (int64, bool) {
	if len(args) != 1 {
		printlnFn(usage)
		return 0, false
	}
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || n <= 0 {
		printlnFn(usage)
		return 0, false
	}
	return n, true
}

var errUnterminatedQuote = errors.New("unterminated quote")

// splitArgs splits line on whitespace. Quotes group words and are
// removed, so `create name="Galaxy S23"` yields one assignment.
func splitArgs(line string) ([]string, error) {
	var (
		out   []string
		cur   strings.Builder
		quote rune
		inArg bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if inArg {
				out = append(out, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 {
		return nil, errUnterminatedQuote
	}
	if inArg {
		out = append(out, cur.String())
	}
	return out, nil
}

// Shell runs the interactive back office until the user exits or ctx is
// done. The notification poller runs in the background while logged in.
func (a *App) Shell(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.pollMu.Lock()
	a.pollCtx = ctx
	a.pollMu.Unlock()
	defer a.stopPolling()
	if a.session.IsAuthenticated() {
		a.startPolling()
	}

	fmt.Fprintln(a.out, "Welcome to the back office (type 'help' for commands)")
	if err := a.navigate(ctx, guard.DashboardPath); err != nil {
		a.logger.Warn(ctx, "initial screen failed", "error", err)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}
