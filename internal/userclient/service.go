package userclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"quizmaster/internal/apiclient"
	"quizmaster/internal/quiz"
	"quizmaster/internal/session"
	"quizmaster/internal/views"
)

const (
	defaultHTTPTimeout  = 10 * time.Second
	defaultUsersPerPage = 10
)

var errExit = errors.New("exit")

type Config struct {
	ServerURL          string
	HTTPTimeout        time.Duration
	LoginRedirectDelay time.Duration
	UsersPerPage       int
	// HTTPClient overrides the client built from HTTPTimeout.
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type access int

const (
	accessPublic access = iota
	accessUser
	accessAdmin
)

type command struct {
	usage  string
	access access
	run    func(ctx context.Context, args []string) error
}

// App owns the per-run client state: the service client, the login session,
// the quiz machine and the last lists shown so entries can be picked by
// number.
type App struct {
	cfg     Config
	reader  *bufio.Reader
	out     io.Writer
	logger  *zap.Logger
	client  *apiclient.Client
	session *session.State
	machine *quiz.Machine

	categories []quiz.Category
	quizzes    []quiz.QuizSummary
	attempts   []quiz.AttemptSummary

	commands map[string]command
}

func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	app := NewApp(in, out, cfg)

	fmt.Fprintf(out, "quizmaster\nserver=%s\n\n", app.client.BaseURL())
	app.printHelp()

	for {
		fmt.Fprint(out, "\n> ")
		line, err := app.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if strings.TrimSpace(line) != "" {
			if dispatchErr := app.Dispatch(ctx, line); errors.Is(dispatchErr, errExit) {
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func NewApp(in io.Reader, out io.Writer, cfg Config) *App {
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}
	if cfg.UsersPerPage <= 0 {
		cfg.UsersPerPage = defaultUsersPerPage
	}
	if cfg.LoginRedirectDelay < 0 {
		cfg.LoginRedirectDelay = 0
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	client := apiclient.New(cfg.ServerURL, httpClient, cfg.Logger.Named("api"))
	app := &App{
		cfg:     cfg,
		reader:  bufio.NewReader(in),
		out:     out,
		logger:  cfg.Logger,
		client:  client,
		session: session.New(client, cfg.Logger.Named("session")),
		machine: quiz.NewMachine(client),
	}
	app.commands = app.commandTable()
	return app
}

func (a *App) commandTable() map[string]command {
	return map[string]command{
		"help":       {usage: "help", access: accessPublic, run: a.cmdHelp},
		"health":     {usage: "health", access: accessPublic, run: a.cmdHealth},
		"register":   {usage: "register <email> <password> <name...>", access: accessPublic, run: a.cmdRegister},
		"login":      {usage: "login <email> <password>", access: accessPublic, run: a.cmdLogin},
		"logout":     {usage: "logout", access: accessUser, run: a.cmdLogout},
		"whoami":     {usage: "whoami", access: accessPublic, run: a.cmdWhoami},
		"categories": {usage: "categories", access: accessUser, run: a.cmdCategories},
		"quizzes":    {usage: "quizzes <category #|id>", access: accessUser, run: a.cmdQuizzes},
		"play":       {usage: "play <quiz #|id>", access: accessUser, run: a.cmdPlay},
		"question":   {usage: "question", access: accessUser, run: a.cmdQuestion},
		"answer":     {usage: "answer <letters>   e.g. answer A or answer A,C", access: accessUser, run: a.cmdAnswer},
		"submit":     {usage: "submit   (retry a failed submission)", access: accessUser, run: a.cmdSubmit},
		"reset":      {usage: "reset", access: accessUser, run: a.cmdReset},
		"attempts":   {usage: "attempts", access: accessUser, run: a.cmdAttempts},
		"attempt":    {usage: "attempt <attempt #|id>", access: accessUser, run: a.cmdAttempt},
		"stats":      {usage: "stats", access: accessUser, run: a.cmdStats},
		"progress":   {usage: "progress", access: accessUser, run: a.cmdProgress},
		"admin":      {usage: "admin stats | admin users [search] [page]", access: accessAdmin, run: a.cmdAdmin},
		"exit":       {usage: "exit", access: accessPublic, run: a.cmdExit},
	}
}

// Dispatch runs one command line: one operation followed by one render.
// Command failures are rendered and never end the session.
func (a *App) Dispatch(ctx context.Context, line string) error {
	args := strings.Fields(strings.TrimSpace(line))
	if len(args) == 0 {
		return nil
	}

	name := strings.ToLower(args[0])
	if name == "quit" {
		name = "exit"
	}
	cmd, ok := a.commands[name]
	if !ok {
		fmt.Fprintln(a.out, "unknown command. type 'help' for usage.")
		return nil
	}

	switch cmd.access {
	case accessUser:
		if !a.session.LoggedIn() {
			fmt.Fprintln(a.out, "please log in first.")
			return nil
		}
	case accessAdmin:
		if !a.session.LoggedIn() {
			fmt.Fprintln(a.out, "please log in first.")
			return nil
		}
		if !a.session.IsAdmin() {
			fmt.Fprintln(a.out, "admin access required.")
			return nil
		}
	}

	err := cmd.run(ctx, args[1:])
	if errors.Is(err, errExit) {
		return err
	}
	if err != nil {
		a.logger.Debug("command failed", zap.String("command", name), zap.Error(err))
		views.RenderError(a.out, err, a.client.BaseURL())
	}
	return nil
}

func (a *App) printHelp() {
	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(a.out, "Commands:")
	for _, name := range names {
		cmd := a.commands[name]
		if cmd.access == accessAdmin && !a.session.IsAdmin() {
			continue
		}
		fmt.Fprintf(a.out, "  %s\n", cmd.usage)
	}
}

func (a *App) Session() *session.State {
	return a.session
}

func (a *App) Machine() *quiz.Machine {
	return a.machine
}
