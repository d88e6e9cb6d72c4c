// Package cli implements the offline maintenance commands that work on the
// quiz database directly, without going through the HTTP service.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"quizmaster/internal/seed"
	"quizmaster/internal/store/sqlite"
)

const defaultTriviaAmount = 10

var ErrUsage = errors.New("usage: quiz-cli <seed | import-trivia [amount] | create-admin <email> <password> | users [search] | stats>")

type Env struct {
	Store  *sqlite.SQLiteStore
	Trivia seed.TriviaSource
	Seed   seed.Options
	Logger *zap.Logger
}

func Run(ctx context.Context, args []string, out io.Writer, env Env) error {
	if len(args) == 0 {
		return ErrUsage
	}
	if env.Logger == nil {
		env.Logger = zap.NewNop()
	}
	env.Seed.Logger = env.Logger

	switch strings.ToLower(args[0]) {
	case "seed":
		if err := seed.EnsureAdmin(ctx, env.Store, env.Seed); err != nil {
			return err
		}
		if err := seed.Demo(ctx, env.Store, env.Seed); err != nil {
			return err
		}
		fmt.Fprintln(out, "Demo catalog ready.")
		return nil

	case "import-trivia":
		amount := defaultTriviaAmount
		if len(args) > 1 {
			parsed, err := strconv.Atoi(args[1])
			if err != nil || parsed <= 0 {
				return fmt.Errorf("amount must be a positive integer, got %q", args[1])
			}
			amount = parsed
		}
		if env.Trivia == nil {
			return errors.New("no trivia source configured")
		}
		if err := seed.ImportTrivia(ctx, env.Store, env.Trivia, amount, env.Seed); err != nil {
			return err
		}
		fmt.Fprintln(out, "Trivia imported.")
		return nil

	case "create-admin":
		if len(args) != 3 {
			return ErrUsage
		}
		opts := env.Seed
		opts.AdminEmail, opts.AdminPassword = args[1], args[2]
		if err := seed.EnsureAdmin(ctx, env.Store, opts); err != nil {
			return err
		}
		fmt.Fprintf(out, "Admin %s ready.\n", args[1])
		return nil

	case "users":
		users, total, err := env.Store.ListUsers(ctx, strings.Join(args[1:], " "), 100, 0)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d users\n", total)
		for _, user := range users {
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", user.ID, user.Email, user.Name, user.Role)
		}
		return nil

	case "stats":
		stats, err := env.Store.AdminStats(ctx, 5)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "users=%d quizzes=%d categories=%d\n", stats.TotalUsers, stats.TotalQuizzes, stats.TotalCategories)
		for idx, popular := range stats.PopularQuizzes {
			fmt.Fprintf(out, "%d. %s attempts=%d avg=%.2f\n", idx+1, popular.Title, popular.Attempts, popular.AvgScore)
		}
		return nil

	default:
		return ErrUsage
	}
}
