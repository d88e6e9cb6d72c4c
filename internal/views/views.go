package views

import (
	"strconv"
	"strings"
	"time"

	"quizmaster/internal/quiz"
)

const (
	noDescription     = "No description"
	actionNext        = "Validate and continue"
	actionFinish      = "Finish quiz"
	actionRetry       = "Retry submission"
	selectionsNotice  = "Your own selections are not kept for past attempts; only the correct answers are shown."
	timeLayout        = "2006-01-02 15:04"
	notCompletedLabel = "in progress"
)

type CategoryItem struct {
	Number      int
	ID          string
	Name        string
	Description string
}

type CategoriesView struct {
	Items []CategoryItem
}

func Categories(categories []quiz.Category) CategoriesView {
	items := make([]CategoryItem, 0, len(categories))
	for idx, category := range categories {
		description := noDescription
		if category.Description != nil && strings.TrimSpace(*category.Description) != "" {
			description = strings.TrimSpace(*category.Description)
		}
		items = append(items, CategoryItem{
			Number:      idx + 1,
			ID:          category.ID,
			Name:        category.Name,
			Description: description,
		})
	}
	return CategoriesView{Items: items}
}

// QuizItem is one entry of a category listing. Locked entries are shown but
// cannot be selected; the service still enforces access on start.
type QuizItem struct {
	Number     int
	ID         string
	Title      string
	Level      string
	Selectable bool
}

type QuizListView struct {
	CategoryName string
	Items        []QuizItem
}

func QuizList(categoryName string, quizzes []quiz.QuizSummary) QuizListView {
	items := make([]QuizItem, 0, len(quizzes))
	for idx, summary := range quizzes {
		items = append(items, QuizItem{
			Number:     idx + 1,
			ID:         summary.ID,
			Title:      summary.Title,
			Level:      LevelLabel(summary.Level),
			Selectable: summary.IsAccessible,
		})
	}
	return QuizListView{CategoryName: categoryName, Items: items}
}

// LevelLabel turns a service level code into display text.
func LevelLabel(level string) string {
	switch level {
	case quiz.LevelBeginner:
		return "Beginner"
	case quiz.LevelIntermediate:
		return "Intermediate"
	case quiz.LevelAdvanced:
		return "Advanced"
	case "":
		return "Unrated"
	default:
		return level
	}
}

type OptionView struct {
	Letter string
	ID     string
	Text   string
}

type QuestionView struct {
	QuizTitle       string
	Number          int
	Total           int
	ProgressPercent int
	Text            string
	Options         []OptionView
	ActionLabel     string
	PendingSubmit   bool
}

// Question builds the view for the current question of an active attempt.
// Correctness flags are never copied into the view.
func Question(snapshot quiz.Snapshot) (QuestionView, bool) {
	current, ok := snapshot.Current()
	if !ok {
		return QuestionView{}, false
	}

	total := len(snapshot.Questions)
	options := make([]OptionView, 0, len(current.Answers))
	for idx, answer := range current.Answers {
		options = append(options, OptionView{
			Letter: Letter(idx),
			ID:     answer.ID,
			Text:   answer.Text,
		})
	}

	action := actionNext
	switch {
	case snapshot.PendingSubmit:
		action = actionRetry
	case snapshot.IsLast():
		action = actionFinish
	}

	return QuestionView{
		QuizTitle:       snapshot.Quiz.Title,
		Number:          snapshot.Index + 1,
		Total:           total,
		ProgressPercent: snapshot.Index * 100 / total,
		Text:            current.Text,
		Options:         options,
		ActionLabel:     action,
		PendingSubmit:   snapshot.PendingSubmit,
	}, true
}

// Letter maps 0 to "A", 25 to "Z", 26 to "AA" and so on.
func Letter(index int) string {
	if index < 0 {
		return ""
	}
	var letters []byte
	for index >= 0 {
		letters = append([]byte{byte('A' + index%26)}, letters...)
		index = index/26 - 1
	}
	return string(letters)
}

type ResultView struct {
	QuizTitle      string
	Score          string
	Passed         bool
	Verdict        string
	CorrectAnswers int
	TotalQuestions int
}

func Result(quizTitle string, result quiz.Result) ResultView {
	verdict := "Not passed"
	if result.Passed {
		verdict = "Passed"
	}
	return ResultView{
		QuizTitle:      quizTitle,
		Score:          FormatScore(result.Score),
		Passed:         result.Passed,
		Verdict:        verdict,
		CorrectAnswers: result.CorrectAnswers,
		TotalQuestions: result.TotalQuestions,
	}
}

type AttemptRow struct {
	Number      int
	ID          string
	QuizTitle   string
	Score       string
	Status      string
	CompletedAt string
}

type AttemptsView struct {
	Rows []AttemptRow
}

func Attempts(attempts []quiz.AttemptSummary) AttemptsView {
	rows := make([]AttemptRow, 0, len(attempts))
	for idx, attempt := range attempts {
		rows = append(rows, AttemptRow{
			Number:      idx + 1,
			ID:          attempt.ID,
			QuizTitle:   attempt.QuizTitle,
			Score:       optionalScore(attempt.Score),
			Status:      attemptStatus(attempt.Completed(), attempt.Passed),
			CompletedAt: optionalTime(attempt.CompletedAt),
		})
	}
	return AttemptsView{Rows: rows}
}

// DetailQuestion lists the correct answers of one question. There is no
// field for what the user picked: the service does not return it.
type DetailQuestion struct {
	Number         int
	Text           string
	CorrectAnswers []string
}

type AttemptDetailView struct {
	QuizTitle   string
	Level       string
	Score       string
	Status      string
	CompletedAt string
	Questions   []DetailQuestion
	Notice      string
}

func AttemptDetail(detail quiz.AttemptDetail) AttemptDetailView {
	questions := make([]DetailQuestion, 0, len(detail.Questions))
	for idx, question := range detail.Questions {
		correct := make([]string, 0, 1)
		for answerIdx, answer := range question.Answers {
			if answer.IsCorrect != nil && *answer.IsCorrect {
				correct = append(correct, Letter(answerIdx)+". "+answer.Text)
			}
		}
		questions = append(questions, DetailQuestion{
			Number:         idx + 1,
			Text:           question.Text,
			CorrectAnswers: correct,
		})
	}

	info := detail.Attempt
	completed := info.CompletedAt != nil && info.Score != nil
	return AttemptDetailView{
		QuizTitle:   detail.Quiz.Title,
		Level:       LevelLabel(detail.Quiz.Level),
		Score:       optionalScore(info.Score),
		Status:      attemptStatus(completed, info.Passed),
		CompletedAt: optionalTime(info.CompletedAt),
		Questions:   questions,
		Notice:      selectionsNotice,
	}
}

type AdminStatsView struct {
	TotalUsers      int
	TotalQuizzes    int
	TotalCategories int
	Popular         []PopularRow
}

type PopularRow struct {
	Title    string
	Attempts int
	AvgScore string
}

func AdminStats(stats quiz.AdminStats) AdminStatsView {
	popular := make([]PopularRow, 0, len(stats.PopularQuizzes))
	for _, item := range stats.PopularQuizzes {
		popular = append(popular, PopularRow{
			Title:    item.Title,
			Attempts: item.Attempts,
			AvgScore: FormatScore(item.AvgScore),
		})
	}
	return AdminStatsView{
		TotalUsers:      stats.TotalUsers,
		TotalQuizzes:    stats.TotalQuizzes,
		TotalCategories: stats.TotalCategories,
		Popular:         popular,
	}
}

type UserRow struct {
	Number    int
	ID        string
	Name      string
	Email     string
	Role      string
	CreatedAt string
}

type UsersView struct {
	Rows       []UserRow
	Page       int
	TotalPages int
	Total      int
}

func Users(page quiz.UserPage) UsersView {
	rows := make([]UserRow, 0, len(page.Users))
	for idx, user := range page.Users {
		rows = append(rows, UserRow{
			Number:    idx + 1,
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			Role:      string(user.Role),
			CreatedAt: optionalTime(user.CreatedAt),
		})
	}

	view := UsersView{
		Rows:       rows,
		Page:       page.Meta.Page,
		TotalPages: page.Meta.TotalPages,
		Total:      page.Meta.Total,
	}
	if view.Page == 0 {
		view.Page = 1
	}
	if view.Total == 0 {
		view.Total = len(rows)
	}
	if view.TotalPages == 0 && view.Total > 0 {
		view.TotalPages = 1
	}
	return view
}

type BannerView struct {
	LoggedIn bool
	Name     string
	Role     string
	IsAdmin  bool
}

func Banner(identity quiz.Identity, loggedIn bool) BannerView {
	if !loggedIn {
		return BannerView{}
	}
	return BannerView{
		LoggedIn: true,
		Name:     identity.Name,
		Role:     string(identity.Role),
		IsAdmin:  identity.IsAdmin(),
	}
}

type UserStatsView struct {
	TotalAttempts      int
	AverageScore       string
	CategoriesMastered int
	Recent             AttemptsView
}

func UserStats(stats quiz.UserStats) UserStatsView {
	return UserStatsView{
		TotalAttempts:      stats.TotalAttempts,
		AverageScore:       FormatScore(stats.AverageScore),
		CategoriesMastered: stats.CategoriesMastered,
		Recent:             Attempts(stats.RecentAttempts),
	}
}

type ProgressRow struct {
	Category  string
	Level     string
	UpdatedAt string
}

type ProgressView struct {
	Rows []ProgressRow
}

func Progress(progress []quiz.CategoryProgress) ProgressView {
	rows := make([]ProgressRow, 0, len(progress))
	for _, item := range progress {
		rows = append(rows, ProgressRow{
			Category:  item.Category.Name,
			Level:     LevelLabel(item.CurrentLevel),
			UpdatedAt: optionalTime(item.UpdatedAt),
		})
	}
	return ProgressView{Rows: rows}
}

func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64) + "%"
}

func optionalScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return FormatScore(*score)
}

func optionalTime(value *quiz.Timestamp) string {
	if value == nil || value.IsZero() {
		return "-"
	}
	return value.In(time.UTC).Format(timeLayout)
}

func attemptStatus(completed bool, passed *bool) string {
	if !completed {
		return notCompletedLabel
	}
	if passed != nil && *passed {
		return "passed"
	}
	return "failed"
}
