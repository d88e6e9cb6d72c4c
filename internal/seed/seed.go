// Package seed fills an empty store with a playable catalog and the
// administrator account.
package seed

import (
	"context"
	"errors"
	"fmt"
	"html"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"quizmaster/internal/opentdb"
	"quizmaster/internal/quiz"
	"quizmaster/internal/store/sqlite"
)

const triviaCategory = "Open Trivia"

type Options struct {
	AdminEmail    string
	AdminPassword string
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	NewID      func() string
	Logger     *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.BcryptCost == 0 {
		o.BcryptCost = bcrypt.DefaultCost
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// EnsureAdmin creates the administrator account unless a user with that
// email already exists.
func EnsureAdmin(ctx context.Context, store *sqlite.SQLiteStore, opts Options) error {
	opts = opts.withDefaults()
	email := strings.TrimSpace(opts.AdminEmail)
	if email == "" || opts.AdminPassword == "" {
		return nil
	}

	_, err := store.UserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sqlite.ErrNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := store.CreateUser(ctx, sqlite.UserRecord{
		ID:           opts.NewID(),
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hash),
		Role:         quiz.RoleAdmin,
	}); err != nil && !errors.Is(err, sqlite.ErrDuplicate) {
		return fmt.Errorf("create admin: %w", err)
	}

	opts.Logger.Info("admin account created", zap.String("email", email))
	return nil
}

// Demo loads the built-in catalog. Categories that already exist by name are
// left untouched, so running it twice is harmless.
func Demo(ctx context.Context, store *sqlite.SQLiteStore, opts Options) error {
	opts = opts.withDefaults()

	for _, category := range demoCatalog() {
		created, err := ensureCategory(ctx, store, opts, category.name, category.description, category.active)
		if err != nil {
			return err
		}
		if !created.fresh {
			continue
		}

		for _, q := range category.quizzes {
			questions := make([]sqlite.QuestionSeed, 0, len(q.questions))
			for _, question := range q.questions {
				questions = append(questions, question.seed(opts.NewID))
			}
			if err := store.CreateQuiz(ctx, sqlite.QuizRecord{
				ID:         opts.NewID(),
				CategoryID: created.id,
				Title:      q.title,
				Level:      q.level,
				Status:     sqlite.StatusPublished,
			}, questions); err != nil {
				return fmt.Errorf("create quiz %q: %w", q.title, err)
			}
		}
		opts.Logger.Info("demo category seeded", zap.String("category", category.name), zap.Int("quizzes", len(category.quizzes)))
	}
	return nil
}

type TriviaSource interface {
	FetchQuestions(ctx context.Context, amount int, difficulty ...string) ([]opentdb.RawQuestion, error)
}

var triviaLevels = []struct {
	difficulty string
	level      string
}{
	{difficulty: "easy", level: quiz.LevelBeginner},
	{difficulty: "medium", level: quiz.LevelIntermediate},
	{difficulty: "hard", level: quiz.LevelAdvanced},
}

// ImportTrivia builds one quiz per difficulty from OpenTriviaDB into the
// "Open Trivia" category. It does nothing when that category already exists.
func ImportTrivia(ctx context.Context, store *sqlite.SQLiteStore, source TriviaSource, amount int, opts Options) error {
	opts = opts.withDefaults()

	if _, err := store.CategoryByName(ctx, triviaCategory); err == nil {
		return nil
	} else if !errors.Is(err, sqlite.ErrNotFound) {
		return fmt.Errorf("look up category %q: %w", triviaCategory, err)
	}

	// Fetch everything first so a network failure leaves no partial category.
	fetched := make([][]opentdb.RawQuestion, len(triviaLevels))
	for idx, tier := range triviaLevels {
		raw, err := source.FetchQuestions(ctx, amount, tier.difficulty)
		if err != nil {
			return fmt.Errorf("fetch %s trivia: %w", tier.difficulty, err)
		}
		fetched[idx] = raw
	}

	created, err := ensureCategory(ctx, store, opts, triviaCategory, "Questions imported from OpenTriviaDB", true)
	if err != nil {
		return err
	}

	for idx, tier := range triviaLevels {
		questions := make([]sqlite.QuestionSeed, 0, len(fetched[idx]))
		for _, item := range fetched[idx] {
			questions = append(questions, ConvertQuestion(item, opts.NewID))
		}
		title := fmt.Sprintf("Open Trivia (%s)", tier.difficulty)
		if err := store.CreateQuiz(ctx, sqlite.QuizRecord{
			ID:         opts.NewID(),
			CategoryID: created.id,
			Title:      title,
			Level:      tier.level,
			Status:     sqlite.StatusPublished,
		}, questions); err != nil {
			return fmt.Errorf("create quiz %q: %w", title, err)
		}
		opts.Logger.Info("trivia quiz imported", zap.String("title", title), zap.Int("questions", len(questions)))
	}
	return nil
}

// ConvertQuestion turns an OpenTriviaDB question into a stored question with
// shuffled answers and decoded HTML entities.
func ConvertQuestion(raw opentdb.RawQuestion, newID func() string) sqlite.QuestionSeed {
	answers := make([]sqlite.AnswerSeed, 0, len(raw.IncorrectAnswers)+1)
	for _, incorrect := range raw.IncorrectAnswers {
		answers = append(answers, sqlite.AnswerSeed{
			ID:   newID(),
			Text: html.UnescapeString(incorrect),
		})
	}
	answers = append(answers, sqlite.AnswerSeed{
		ID:        newID(),
		Text:      html.UnescapeString(raw.CorrectAnswer),
		IsCorrect: true,
	})

	rand.Shuffle(len(answers), func(i, j int) {
		answers[i], answers[j] = answers[j], answers[i]
	})

	return sqlite.QuestionSeed{
		ID:      newID(),
		Text:    html.UnescapeString(raw.Question),
		Answers: answers,
	}
}

type ensuredCategory struct {
	id    string
	fresh bool
}

func ensureCategory(ctx context.Context, store *sqlite.SQLiteStore, opts Options, name, description string, active bool) (ensuredCategory, error) {
	existing, err := store.CategoryByName(ctx, name)
	if err == nil {
		return ensuredCategory{id: existing.ID}, nil
	}
	if !errors.Is(err, sqlite.ErrNotFound) {
		return ensuredCategory{}, fmt.Errorf("look up category %q: %w", name, err)
	}

	id := opts.NewID()
	if err := store.CreateCategory(ctx, sqlite.CategoryRecord{
		ID:          id,
		Name:        name,
		Description: description,
		IsActive:    active,
	}); err != nil {
		return ensuredCategory{}, fmt.Errorf("create category %q: %w", name, err)
	}
	return ensuredCategory{id: id, fresh: true}, nil
}
