package userclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"quizmaster/internal/quiz"
	"quizmaster/internal/views"
)

func (a *App) cmdHelp(context.Context, []string) error {
	a.printHelp()
	return nil
}

func (a *App) cmdExit(context.Context, []string) error {
	return errExit
}

func (a *App) cmdHealth(ctx context.Context, _ []string) error {
	status, err := a.client.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "service status: %s\n", status)
	return nil
}

func (a *App) cmdRegister(ctx context.Context, args []string) error {
	if len(args) < 3 {
		fmt.Fprintln(a.out, "usage: register <email> <password> <name...>")
		return nil
	}
	email, password, name := args[0], args[1], strings.Join(args[2:], " ")
	if err := a.session.Register(ctx, name, email, password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Registration successful. Log in with 'login <email> <password>'.")
	return nil
}

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Fprintln(a.out, "usage: login <email> <password>")
		return nil
	}

	a.resetLocalState()
	identity, err := a.session.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	views.RenderBanner(a.out, views.Banner(identity, true))

	if err := waitDelay(ctx, a.cfg.LoginRedirectDelay); err != nil {
		return err
	}
	return a.cmdCategories(ctx, nil)
}

func (a *App) cmdLogout(ctx context.Context, _ []string) error {
	a.resetLocalState()
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) cmdWhoami(context.Context, []string) error {
	identity, ok := a.session.Identity()
	views.RenderBanner(a.out, views.Banner(identity, ok))
	return nil
}

func (a *App) cmdCategories(ctx context.Context, _ []string) error {
	categories, err := a.client.Categories(ctx)
	if err != nil {
		return err
	}
	a.categories = categories
	views.RenderCategories(a.out, views.Categories(categories))
	return nil
}

func (a *App) cmdQuizzes(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "usage: quizzes <category #|id>")
		return nil
	}

	categoryID, categoryName := args[0], args[0]
	if idx, ok := pickIndex(args[0], len(a.categories)); ok {
		categoryID = a.categories[idx].ID
		categoryName = a.categories[idx].Name
	} else {
		for _, category := range a.categories {
			if category.ID == args[0] {
				categoryName = category.Name
				break
			}
		}
	}

	quizzes, err := a.client.AvailableQuizzes(ctx, categoryID)
	if err != nil {
		return err
	}
	a.quizzes = quizzes
	views.RenderQuizList(a.out, views.QuizList(categoryName, quizzes))
	return nil
}

func (a *App) cmdPlay(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "usage: play <quiz #|id>")
		return nil
	}

	summary, listed := a.lookupQuiz(args[0])
	quizID := args[0]
	if listed {
		quizID = summary.ID
		if !summary.IsAccessible {
			fmt.Fprintf(a.out, "%s is locked. Pass the previous level first.\n", summary.Title)
			return nil
		}
	}

	if a.machine.Phase() == quiz.PhaseActive {
		abandon, err := promptYesNo(a.reader, a.out, "A quiz is in progress. Abandon it? (yes/no): ")
		if err != nil {
			return err
		}
		if !abandon {
			return nil
		}
	}

	if err := a.machine.Start(ctx, quizID); err != nil {
		return err
	}
	a.logger.Info("quiz started", zap.String("quiz_id", quizID), zap.String("attempt_id", a.machine.Snapshot().AttemptID))
	return a.renderMachine()
}

func (a *App) cmdQuestion(context.Context, []string) error {
	if a.machine.Phase() == quiz.PhaseIdle {
		fmt.Fprintln(a.out, "No quiz in progress. Use 'play <quiz #|id>'.")
		return nil
	}
	return a.renderMachine()
}

func (a *App) cmdAnswer(ctx context.Context, args []string) error {
	snapshot := a.machine.Snapshot()
	if snapshot.Phase != quiz.PhaseActive {
		return quiz.ErrNotActive
	}

	var selected []string
	if !snapshot.PendingSubmit {
		current, _ := snapshot.Current()
		ids, err := parseSelection(args, current.Answers)
		if err != nil {
			return err
		}
		selected = ids
	}

	_, err := a.machine.ValidateCurrentAnswer(ctx, selected)
	return a.afterTransition(err)
}

func (a *App) cmdSubmit(ctx context.Context, _ []string) error {
	if !a.machine.PendingSubmit() {
		fmt.Fprintln(a.out, "Nothing to submit.")
		return nil
	}
	_, err := a.machine.RetrySubmit(ctx)
	return a.afterTransition(err)
}

func (a *App) cmdReset(context.Context, []string) error {
	a.machine.Reset()
	fmt.Fprintln(a.out, "Quiz reset.")
	return nil
}

func (a *App) cmdAttempts(ctx context.Context, _ []string) error {
	attempts, err := a.client.MyAttempts(ctx)
	if err != nil {
		return err
	}
	a.attempts = attempts
	views.RenderAttempts(a.out, views.Attempts(attempts))
	return nil
}

func (a *App) cmdAttempt(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "usage: attempt <attempt #|id>")
		return nil
	}

	attemptID := args[0]
	if idx, ok := pickIndex(args[0], len(a.attempts)); ok {
		attemptID = a.attempts[idx].ID
	}

	detail, err := a.client.Attempt(ctx, attemptID)
	if err != nil {
		return err
	}
	views.RenderAttemptDetail(a.out, views.AttemptDetail(detail))
	return nil
}

func (a *App) cmdStats(ctx context.Context, _ []string) error {
	stats, err := a.client.MyStats(ctx)
	if err != nil {
		return err
	}
	views.RenderUserStats(a.out, views.UserStats(stats))
	return nil
}

func (a *App) cmdProgress(ctx context.Context, _ []string) error {
	progress, err := a.client.Progress(ctx)
	if err != nil {
		return err
	}
	views.RenderProgress(a.out, views.Progress(progress))
	return nil
}

func (a *App) cmdAdmin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "usage: admin stats | admin users [search] [page]")
		return nil
	}

	switch strings.ToLower(args[0]) {
	case "stats":
		stats, err := a.client.AdminStats(ctx)
		if err != nil {
			return err
		}
		views.RenderAdminStats(a.out, views.AdminStats(stats))
		return nil
	case "users":
		query, err := parseUserQuery(args[1:], a.cfg.UsersPerPage)
		if err != nil {
			return err
		}
		page, err := a.client.AdminUsers(ctx, query)
		if err != nil {
			return err
		}
		views.RenderUsers(a.out, views.Users(page))
		return nil
	default:
		fmt.Fprintln(a.out, "usage: admin stats | admin users [search] [page]")
		return nil
	}
}

// afterTransition renders the machine after an answer or submit. A failed
// submission keeps the answers and tells the user how to retry.
func (a *App) afterTransition(err error) error {
	if err == nil {
		return a.renderMachine()
	}

	var validationErr *quiz.ValidationError
	if errors.As(err, &validationErr) || errors.Is(err, quiz.ErrStaleResponse) || errors.Is(err, quiz.ErrNotActive) {
		return err
	}

	views.RenderError(a.out, err, a.client.BaseURL())
	if a.machine.PendingSubmit() {
		a.logger.Warn("submission failed", zap.String("attempt_id", a.machine.Snapshot().AttemptID), zap.Error(err))
		fmt.Fprintln(a.out, "Your answers are kept. Type 'submit' to try again.")
	}
	return nil
}

func (a *App) renderMachine() error {
	snapshot := a.machine.Snapshot()
	switch snapshot.Phase {
	case quiz.PhaseActive:
		view, ok := views.Question(snapshot)
		if !ok {
			return quiz.ErrNotActive
		}
		views.RenderQuestion(a.out, view)
	case quiz.PhaseSubmitted:
		if snapshot.Result != nil {
			views.RenderResult(a.out, views.Result(snapshot.Quiz.Title, *snapshot.Result))
		}
	default:
		fmt.Fprintln(a.out, "No quiz in progress.")
	}
	return nil
}

func (a *App) lookupQuiz(arg string) (quiz.QuizSummary, bool) {
	if idx, ok := pickIndex(arg, len(a.quizzes)); ok {
		return a.quizzes[idx], true
	}
	for _, summary := range a.quizzes {
		if summary.ID == arg {
			return summary, true
		}
	}
	return quiz.QuizSummary{}, false
}

func (a *App) resetLocalState() {
	a.machine.Reset()
	a.categories = nil
	a.quizzes = nil
	a.attempts = nil
}
