package views

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"quizmaster/internal/apiclient"
	"quizmaster/internal/quiz"
)

func RenderCategories(out io.Writer, view CategoriesView) {
	if len(view.Items) == 0 {
		fmt.Fprintln(out, "No categories.")
		return
	}
	fmt.Fprintln(out, "Categories:")
	for _, item := range view.Items {
		fmt.Fprintf(out, "%d. %s - %s\n", item.Number, item.Name, item.Description)
	}
}

func RenderQuizList(out io.Writer, view QuizListView) {
	if len(view.Items) == 0 {
		fmt.Fprintf(out, "No quizzes in %s.\n", view.CategoryName)
		return
	}
	fmt.Fprintf(out, "Quizzes in %s:\n", view.CategoryName)
	for _, item := range view.Items {
		if item.Selectable {
			fmt.Fprintf(out, "%d. %s [%s]\n", item.Number, item.Title, item.Level)
			continue
		}
		fmt.Fprintf(out, "%d. %s [%s] (locked)\n", item.Number, item.Title, item.Level)
	}
}

func RenderQuestion(out io.Writer, view QuestionView) {
	fmt.Fprintf(out, "%s - question %d/%d (%d%%)\n\n", view.QuizTitle, view.Number, view.Total, view.ProgressPercent)
	fmt.Fprintf(out, "%s\n\n", view.Text)
	for _, option := range view.Options {
		fmt.Fprintf(out, "%s. %s\n", option.Letter, option.Text)
	}
	fmt.Fprintln(out)
	if view.PendingSubmit {
		fmt.Fprintf(out, "Answers recorded. Type 'submit' to %s.\n", strings.ToLower(view.ActionLabel))
		return
	}
	fmt.Fprintf(out, "Type 'answer <letters>' to %s.\n", strings.ToLower(view.ActionLabel))
}

func RenderResult(out io.Writer, view ResultView) {
	fmt.Fprintf(out, "Result for %s\n", view.QuizTitle)
	fmt.Fprintf(out, "Score: %s\n", view.Score)
	fmt.Fprintf(out, "Correct answers: %d/%d\n", view.CorrectAnswers, view.TotalQuestions)
	fmt.Fprintf(out, "%s\n", view.Verdict)
}

func RenderAttempts(out io.Writer, view AttemptsView) {
	if len(view.Rows) == 0 {
		fmt.Fprintln(out, "No attempts yet.")
		return
	}
	fmt.Fprintln(out, "Attempts:")
	for _, row := range view.Rows {
		fmt.Fprintf(out, "%d. %s score=%s status=%s completed=%s\n",
			row.Number,
			row.QuizTitle,
			row.Score,
			row.Status,
			row.CompletedAt,
		)
	}
}

func RenderAttemptDetail(out io.Writer, view AttemptDetailView) {
	fmt.Fprintf(out, "%s [%s]\n", view.QuizTitle, view.Level)
	fmt.Fprintf(out, "Score: %s status=%s completed=%s\n\n", view.Score, view.Status, view.CompletedAt)
	for _, question := range view.Questions {
		fmt.Fprintf(out, "%d. %s\n", question.Number, question.Text)
		if len(question.CorrectAnswers) == 0 {
			fmt.Fprintln(out, "   correct: (not available)")
			continue
		}
		for _, answer := range question.CorrectAnswers {
			fmt.Fprintf(out, "   correct: %s\n", answer)
		}
	}
	fmt.Fprintf(out, "\n%s\n", view.Notice)
}

func RenderAdminStats(out io.Writer, view AdminStatsView) {
	fmt.Fprintf(out, "Users: %d\n", view.TotalUsers)
	fmt.Fprintf(out, "Quizzes: %d\n", view.TotalQuizzes)
	fmt.Fprintf(out, "Categories: %d\n", view.TotalCategories)
	if len(view.Popular) == 0 {
		return
	}
	fmt.Fprintln(out, "Popular quizzes:")
	for idx, row := range view.Popular {
		fmt.Fprintf(out, "%d. %s attempts=%d avg=%s\n", idx+1, row.Title, row.Attempts, row.AvgScore)
	}
}

func RenderUsers(out io.Writer, view UsersView) {
	if len(view.Rows) == 0 {
		fmt.Fprintln(out, "No users.")
		return
	}
	fmt.Fprintf(out, "Users (page %d/%d, %d total):\n", view.Page, view.TotalPages, view.Total)
	for _, row := range view.Rows {
		fmt.Fprintf(out, "%d. %s <%s> role=%s created=%s\n", row.Number, row.Name, row.Email, row.Role, row.CreatedAt)
	}
}

func RenderBanner(out io.Writer, view BannerView) {
	if !view.LoggedIn {
		fmt.Fprintln(out, "Not logged in. Use 'login <email> <password>' or 'register <email> <password> <name>'.")
		return
	}
	if view.IsAdmin {
		fmt.Fprintf(out, "Logged in as %s (admin)\n", view.Name)
		return
	}
	fmt.Fprintf(out, "Logged in as %s\n", view.Name)
}

func RenderUserStats(out io.Writer, view UserStatsView) {
	fmt.Fprintf(out, "Attempts: %d\n", view.TotalAttempts)
	fmt.Fprintf(out, "Average score: %s\n", view.AverageScore)
	fmt.Fprintf(out, "Categories mastered: %d\n", view.CategoriesMastered)
	if len(view.Recent.Rows) > 0 {
		fmt.Fprintln(out, "Recent:")
		RenderAttempts(out, view.Recent)
	}
}

func RenderProgress(out io.Writer, view ProgressView) {
	if len(view.Rows) == 0 {
		fmt.Fprintln(out, "No progress recorded yet.")
		return
	}
	fmt.Fprintln(out, "Progress:")
	for _, row := range view.Rows {
		fmt.Fprintf(out, "- %s: %s (updated %s)\n", row.Category, row.Level, row.UpdatedAt)
	}
}

// ErrorMessage is the text shown for a failed command. Service errors keep
// the response body verbatim.
func ErrorMessage(err error, serverURL string) string {
	var validationErr *quiz.ValidationError
	var requestErr *apiclient.RequestError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return "warning: " + validationErr.Message
	case errors.Is(err, apiclient.ErrServiceUnavailable):
		return fmt.Sprintf("error: quiz service unavailable at %s", serverURL)
	case errors.As(err, &requestErr):
		return "error: " + requestErr.Error()
	default:
		return "error: " + err.Error()
	}
}

func RenderError(out io.Writer, err error, serverURL string) {
	if message := ErrorMessage(err, serverURL); message != "" {
		fmt.Fprintln(out, message)
	}
}
