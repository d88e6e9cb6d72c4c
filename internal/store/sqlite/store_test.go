package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizmaster/internal/quiz"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "quiz.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedCatalog(t *testing.T, store *SQLiteStore) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, UserRecord{ID: "u1", Name: "Ada", Email: "ada@example.com", PasswordHash: "x"}))
	require.NoError(t, store.CreateCategory(ctx, CategoryRecord{ID: "c1", Name: "Go", Description: "Gophers", IsActive: true}))
	require.NoError(t, store.CreateQuiz(ctx, QuizRecord{ID: "beg", CategoryID: "c1", Title: "Go beginner", Level: quiz.LevelBeginner}, []QuestionSeed{
		{ID: "q1", Text: "Single", Answers: []AnswerSeed{{ID: "a1", Text: "yes", IsCorrect: true}, {ID: "a2", Text: "no"}}},
		{ID: "q2", Text: "Multi", Answers: []AnswerSeed{{ID: "a3", Text: "x", IsCorrect: true}, {ID: "a4", Text: "y", IsCorrect: true}, {ID: "a5", Text: "z"}}},
	}))
	require.NoError(t, store.CreateQuiz(ctx, QuizRecord{ID: "mid", CategoryID: "c1", Title: "Go intermediate", Level: quiz.LevelIntermediate}, []QuestionSeed{
		{ID: "q3", Text: "Mid", Answers: []AnswerSeed{{ID: "a6", Text: "ok", IsCorrect: true}}},
	}))
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, UserRecord{ID: "u1", Name: "Ada", Email: "ada@example.com", PasswordHash: "x"}))
	err := store.CreateUser(ctx, UserRecord{ID: "u2", Name: "Other", Email: "ADA@example.com", PasswordHash: "y"})
	require.ErrorIs(t, err, ErrDuplicate)

	user, err := store.UserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, quiz.RoleUser, user.Role)

	_, err = store.UserByID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestQuestionsHideCorrectnessUnlessAsked(t *testing.T) {
	store := newTestStore(t)
	seedCatalog(t, store)
	ctx := context.Background()

	questions, err := store.Questions(ctx, "beg", false)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "q1", questions[0].ID)
	assert.Equal(t, []string{"a3", "a4", "a5"}, answerIDs(questions[1]))
	for _, question := range questions {
		for _, answer := range question.Answers {
			assert.Nil(t, answer.IsCorrect)
		}
	}

	withCorrect, err := store.Questions(ctx, "beg", true)
	require.NoError(t, err)
	require.NotNil(t, withCorrect[0].Answers[0].IsCorrect)
	assert.True(t, *withCorrect[0].Answers[0].IsCorrect)
	assert.False(t, *withCorrect[0].Answers[1].IsCorrect)
}

func TestPublishedQuizzesOrderedByLevel(t *testing.T) {
	store := newTestStore(t)
	seedCatalog(t, store)

	quizzes, err := store.PublishedQuizzes(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, quizzes, 2)
	assert.Equal(t, "beg", quizzes[0].ID)
	assert.Equal(t, "mid", quizzes[1].ID)
}

func TestStartAttemptReusesOpenAttempt(t *testing.T) {
	store := newTestStore(t)
	seedCatalog(t, store)
	ctx := context.Background()

	first, err := store.StartAttempt(ctx, "u1", "beg", "att-1")
	require.NoError(t, err)
	second, err := store.StartAttempt(ctx, "u1", "beg", "att-2")
	require.NoError(t, err)
	assert.Equal(t, "att-1", first)
	assert.Equal(t, first, second)
}

func TestSubmitAttemptScoresBySetEquality(t *testing.T) {
	store := newTestStore(t)
	seedCatalog(t, store)
	ctx := context.Background()

	_, err := store.StartAttempt(ctx, "u1", "beg", "att-1")
	require.NoError(t, err)

	outcome, err := store.SubmitAttempt(ctx, "att-1", "u1", []quiz.AnswerRecord{
		{QuestionID: "q1", AnswerIDs: []string{"a1"}},
		{QuestionID: "q2", AnswerIDs: []string{"a4", "a3"}},
		{QuestionID: "not-in-quiz", AnswerIDs: []string{"a6"}},
	}, 80)
	require.NoError(t, err)
	assert.Equal(t, quiz.Result{Score: 100, Passed: true, CorrectAnswers: 2, TotalQuestions: 2}, outcome.Result)
	require.Len(t, outcome.Details, 2)
	assert.Equal(t, []string{"a3", "a4"}, outcome.Details[1].CorrectAnswers)

	_, err = store.SubmitAttempt(ctx, "att-1", "u1", nil, 80)
	require.ErrorIs(t, err, ErrAttemptFinished)
}

func TestSubmitAttemptPartialAnswerIsWrong(t *testing.T) {
	store := newTestStore(t)
	seedCatalog(t, store)
	ctx := context.Background()

	_, err := store.StartAttempt(ctx, "u1", "beg", "att-1")
	require.NoError(t, err)

	outcome, err := store.SubmitAttempt(ctx, "att-1", "u1", []quiz.AnswerRecord{
		{QuestionID: "q1", AnswerIDs: []string{"a1"}},
		{QuestionID: "q2", AnswerIDs: []string{"a3"}},
	}, 80)
	require.NoError(t, err)
	assert.Equal(t, quiz.Result{Score: 50, Passed: false, CorrectAnswers: 1, TotalQuestions: 2}, outcome.Result)

	passed, err := store.HasPassedLevel(ctx, "u1", "c1", quiz.LevelBeginner)
	require.NoError(t, err)
	assert.False(t, passed)
}

func TestSubmitAttemptRejectsOtherUsers(t *testing.T) {
	store := newTestStore(t)
	seedCatalog(t, store)
	ctx := context.Background()
	require.NoError(t, store.CreateUser(ctx, UserRecord{ID: "u2", Name: "Eve", Email: "eve@example.com", PasswordHash: "x"}))

	_, err := store.StartAttempt(ctx, "u1", "beg", "att-1")
	require.NoError(t, err)

	_, err = store.SubmitAttempt(ctx, "att-1", "u2", nil, 80)
	require.ErrorIs(t, err, ErrAttemptFinished)
}

func TestPassingRaisesProgressAndUnlocksNextLevel(t *testing.T) {
	store := newTestStore(t)
	seedCatalog(t, store)
	ctx := context.Background()

	_, err := store.StartAttempt(ctx, "u1", "beg", "att-1")
	require.NoError(t, err)
	_, err = store.SubmitAttempt(ctx, "att-1", "u1", []quiz.AnswerRecord{
		{QuestionID: "q1", AnswerIDs: []string{"a1"}},
		{QuestionID: "q2", AnswerIDs: []string{"a3", "a4"}},
	}, 80)
	require.NoError(t, err)

	passed, err := store.HasPassedLevel(ctx, "u1", "c1", quiz.LevelBeginner)
	require.NoError(t, err)
	assert.True(t, passed)

	progress, err := store.Progress(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, quiz.LevelBeginner, progress[0].CurrentLevel)
	assert.Equal(t, "Go", progress[0].Category.Name)

	_, err = store.StartAttempt(ctx, "u1", "mid", "att-2")
	require.NoError(t, err)
	_, err = store.SubmitAttempt(ctx, "att-2", "u1", []quiz.AnswerRecord{{QuestionID: "q3", AnswerIDs: []string{"a6"}}}, 80)
	require.NoError(t, err)

	progress, err = store.Progress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, quiz.LevelIntermediate, progress[0].CurrentLevel)
}

func TestAttemptsListsOpenAndCompleted(t *testing.T) {
	store := newTestStore(t)
	seedCatalog(t, store)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	_, err := store.StartAttempt(ctx, "u1", "beg", "att-1")
	require.NoError(t, err)
	_, err = store.SubmitAttempt(ctx, "att-1", "u1", []quiz.AnswerRecord{{QuestionID: "q1", AnswerIDs: []string{"a2"}}}, 80)
	require.NoError(t, err)
	_, err = store.StartAttempt(ctx, "u1", "beg", "att-2")
	require.NoError(t, err)

	attempts, err := store.Attempts(ctx, "u1", 0, false)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, "att-1", attempts[0].ID)
	assert.True(t, attempts[0].Completed())
	assert.Equal(t, "Go beginner", attempts[0].QuizTitle)
	assert.False(t, attempts[1].Completed())

	stats, err := store.UserStats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalAttempts)
	assert.Equal(t, 0.0, stats.AverageScore)
	assert.Len(t, stats.RecentAttempts, 1)
}

func TestAttemptDetailIncludesCorrectAnswers(t *testing.T) {
	store := newTestStore(t)
	seedCatalog(t, store)
	ctx := context.Background()

	_, err := store.StartAttempt(ctx, "u1", "beg", "att-1")
	require.NoError(t, err)
	_, err = store.SubmitAttempt(ctx, "att-1", "u1", []quiz.AnswerRecord{{QuestionID: "q1", AnswerIDs: []string{"a1"}}}, 80)
	require.NoError(t, err)

	detail, err := store.AttemptDetail(ctx, "att-1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "Go beginner", detail.Quiz.Title)
	require.NotNil(t, detail.Attempt.Score)
	assert.Equal(t, 50.0, *detail.Attempt.Score)
	require.Len(t, detail.Questions, 2)
	require.NotNil(t, detail.Questions[1].Answers[1].IsCorrect)
	assert.True(t, *detail.Questions[1].Answers[1].IsCorrect)

	_, err = store.AttemptDetail(ctx, "att-1", "someone-else")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAdminStatsAndUserListing(t *testing.T) {
	store := newTestStore(t)
	seedCatalog(t, store)
	ctx := context.Background()
	require.NoError(t, store.CreateUser(ctx, UserRecord{ID: "u2", Name: "Grace", Email: "grace@example.com", PasswordHash: "x", Role: quiz.RoleAdmin}))

	_, err := store.StartAttempt(ctx, "u1", "beg", "att-1")
	require.NoError(t, err)
	_, err = store.SubmitAttempt(ctx, "att-1", "u1", []quiz.AnswerRecord{{QuestionID: "q1", AnswerIDs: []string{"a1"}}}, 80)
	require.NoError(t, err)

	stats, err := store.AdminStats(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 2, stats.TotalQuizzes)
	assert.Equal(t, 1, stats.TotalCategories)
	require.Len(t, stats.PopularQuizzes, 1)
	assert.Equal(t, quiz.PopularQuiz{Title: "Go beginner", Attempts: 1, AvgScore: 50}, stats.PopularQuizzes[0])

	users, total, err := store.ListUsers(ctx, "grace", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, quiz.RoleAdmin, users[0].Role)

	users, total, err = store.ListUsers(ctx, "", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, users, 1)
}

func TestCategoriesFilterInactive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateCategory(ctx, CategoryRecord{ID: "c1", Name: "Active", IsActive: true}))
	require.NoError(t, store.CreateCategory(ctx, CategoryRecord{ID: "c2", Name: "Hidden", IsActive: false}))

	active, err := store.ListCategories(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Nil(t, active[0].Public().Description)

	all, err := store.ListCategories(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byName, err := store.CategoryByName(ctx, "Hidden")
	require.NoError(t, err)
	assert.Equal(t, "c2", byName.ID)

	require.ErrorIs(t, store.CreateCategory(ctx, CategoryRecord{ID: "c3", Name: "Active"}), ErrDuplicate)
}

func answerIDs(question quiz.Question) []string {
	ids := make([]string, 0, len(question.Answers))
	for _, answer := range question.Answers {
		ids = append(ids, answer.ID)
	}
	return ids
}
