package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apierrors "github.com/vaibhav-sd/MissionControlProject/internal/errors"
	"github.com/vaibhav-sd/MissionControlProject/internal/model"
	"github.com/vaibhav-sd/MissionControlProject/internal/service"
)

const consoleHelp = `Commands:
  submit <description>   deploy a new mission
  list                   show the current mission snapshot
  refresh                sync now and show the result
  get <mission-id>       fetch one mission from the service
  feedback               show the latest submission result
  dismiss                clear the latest submission result
  health                 show the connection state
  help                   show this help
  exit                   quit`

func newConsoleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Interactive session with background sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, logger, err := opts.newSession()
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer session.Close()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "🚀 mission> ",
				InterruptPrompt: "",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return fmt.Errorf("failed to init terminal input: %w", err)
			}
			defer rl.Close()

			console := NewConsole(session, logger)
			console.Attach(rl)
			return console.Run(commandContext(cmd), rl)
		},
	}
}

// Console is a line-oriented front end over a client session.
type Console struct {
	session *service.Session
	logger  *zap.Logger

	mu  sync.Mutex
	rl  *readline.Instance
	out io.Writer
}

// NewConsole creates a console over session. Output goes to io.Discard until
// Attach or SetOutput is called.
func NewConsole(session *service.Session, logger *zap.Logger) *Console {
	c := &Console{
		session: session,
		logger:  logger,
		out:     io.Discard,
	}
	monitor := session.Monitor()
	monitor.Subscribe(func(_, _ model.ReachabilitySignal) {
		c.AsyncPrintln(FormatReachability(monitor.Signal()))
	})
	return c
}

// Attach routes output through the readline instance so background lines
// do not clobber the prompt.
func (c *Console) Attach(rl *readline.Instance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rl = rl
}

// SetOutput routes output to w.
func (c *Console) SetOutput(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rl = nil
	c.out = w
}

// AsyncPrintln prints a line above the prompt.
func (c *Console) AsyncPrintln(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rl == nil {
		fmt.Fprintln(c.out, s)
		return
	}
	_, _ = c.rl.Write([]byte("\r\n" + s + "\r\n"))
	c.rl.Refresh()
}

// Run starts background sync and reads commands until exit or EOF.
func (c *Console) Run(ctx context.Context, rl *readline.Instance) error {
	if err := c.session.Start(ctx); err != nil {
		return err
	}

	c.AsyncPrintln("Mission control console. Type 'help' for commands, 'exit' to quit.")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			// io.EOF on Ctrl+D
			c.AsyncPrintln("Goodbye!")
			return nil
		}

		out, quit := c.Handle(ctx, line)
		if out != "" {
			c.AsyncPrintln(out)
		}
		if quit {
			return nil
		}
	}
}

// Handle executes one console line and returns the text to show.
func (c *Console) Handle(ctx context.Context, line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}

	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	c.logger.Debug("console command", zap.String("command", verb))

	switch strings.ToLower(verb) {
	case "exit", "quit":
		return "Goodbye!", true

	case "help", "?":
		return consoleHelp, false

	case "submit", "deploy":
		attempt, err := c.session.SubmitMission(ctx, rest)
		if errors.Is(err, service.ErrSubmissionInFlight) {
			return errorStyle.Render("⏳ A mission is already being deployed"), false
		}
		return FormatAttempt(attempt), false

	case "list", "ls", "status":
		return FormatSnapshot(c.session.Snapshot(), c.session.Reachability()), false

	case "refresh":
		snap := c.session.ForceRefresh(ctx)
		return FormatSnapshot(snap, c.session.Reachability()), false

	case "get":
		if rest == "" {
			return "usage: get <mission-id>", false
		}
		record, err := c.session.LookupMission(ctx, rest)
		if err != nil {
			return errorStyle.Render("❌ " + apierrors.UserMessage(err)), false
		}
		return FormatRecord(record), false

	case "feedback":
		attempt := c.session.CreationAttempt()
		if attempt.IsIdle() {
			return mutedStyle.Render("No recent submission"), false
		}
		return FormatAttempt(attempt), false

	case "dismiss":
		if !c.session.DismissCreation() {
			return errorStyle.Render("⏳ A mission is still being deployed"), false
		}
		return mutedStyle.Render("Cleared"), false

	case "health":
		return FormatReachability(c.session.Reachability()), false

	default:
		return fmt.Sprintf("unknown command %q, type 'help' for commands", verb), false
	}
}
