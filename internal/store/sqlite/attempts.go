package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"quizmaster/internal/quiz"
)

const recentAttemptsLimit = 5

// ResultDetail explains the scoring of one submitted question.
type ResultDetail struct {
	QuestionID     string   `json:"question_id"`
	QuestionText   string   `json:"question_text"`
	UserAnswers    []string `json:"user_answers"`
	CorrectAnswers []string `json:"correct_answers"`
	IsCorrect      bool     `json:"is_correct"`
}

type SubmitOutcome struct {
	Result  quiz.Result
	Details []ResultDetail
}

// StartAttempt returns the user's open attempt for the quiz, or creates one
// with newID when there is none.
func (s *SQLiteStore) StartAttempt(ctx context.Context, userID, quizID, newID string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(
		ctx,
		`SELECT id FROM attempts
		 WHERE user_id = ? AND quiz_id = ? AND completed_at_unix IS NULL
		 ORDER BY started_at_unix DESC LIMIT 1`,
		userID,
		quizID,
	).Scan(&existing)
	switch {
	case err == nil:
		return existing, tx.Commit()
	case !errors.Is(err, sql.ErrNoRows):
		return "", err
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO attempts (id, user_id, quiz_id, started_at_unix) VALUES (?, ?, ?, ?)`,
		newID,
		userID,
		quizID,
		s.now().UnixNano(),
	); err != nil {
		return "", err
	}
	return newID, tx.Commit()
}

type questionKey struct {
	text    string
	correct map[string]struct{}
	ordered []string
}

// SubmitAttempt scores and closes an open attempt in one transaction.
//
// A question counts as correct only when the submitted answer ids equal its
// correct answer set. Questions that are not part of the quiz are ignored and
// a question submitted twice is scored once. Unanswered questions count as
// wrong. A passing attempt raises the user's level for the category.
func (s *SQLiteStore) SubmitAttempt(ctx context.Context, attemptID, userID string, answers []quiz.AnswerRecord, passThreshold float64) (SubmitOutcome, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SubmitOutcome{}, err
	}
	defer tx.Rollback()

	var quizID string
	err = tx.QueryRowContext(
		ctx,
		`SELECT quiz_id FROM attempts WHERE id = ? AND user_id = ? AND completed_at_unix IS NULL`,
		attemptID,
		userID,
	).Scan(&quizID)
	if errors.Is(err, sql.ErrNoRows) {
		return SubmitOutcome{}, ErrAttemptFinished
	}
	if err != nil {
		return SubmitOutcome{}, err
	}

	rows, err := tx.QueryContext(
		ctx,
		`SELECT q.id, q.question_text, a.id, a.is_correct
		 FROM questions q
		 LEFT JOIN answers a ON a.question_id = q.id
		 WHERE q.quiz_id = ?
		 ORDER BY q.position ASC, a.position ASC`,
		quizID,
	)
	if err != nil {
		return SubmitOutcome{}, err
	}

	lookup := make(map[string]*questionKey)
	for rows.Next() {
		var (
			questionID string
			text       string
			answerID   sql.NullString
			isCorrect  sql.NullBool
		)
		if err := rows.Scan(&questionID, &text, &answerID, &isCorrect); err != nil {
			_ = rows.Close()
			return SubmitOutcome{}, err
		}
		key, ok := lookup[questionID]
		if !ok {
			key = &questionKey{text: text, correct: make(map[string]struct{})}
			lookup[questionID] = key
		}
		if answerID.Valid && isCorrect.Bool {
			key.correct[answerID.String] = struct{}{}
			key.ordered = append(key.ordered, answerID.String)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return SubmitOutcome{}, err
	}
	_ = rows.Close()

	total := len(lookup)
	correctCount := 0
	details := make([]ResultDetail, 0, len(answers))
	scored := make(map[string]struct{}, len(answers))

	for _, record := range answers {
		key, ok := lookup[record.QuestionID]
		if !ok {
			continue
		}
		if _, done := scored[record.QuestionID]; done {
			continue
		}
		scored[record.QuestionID] = struct{}{}

		isCorrect := sameSet(record.AnswerIDs, key.correct)
		if isCorrect {
			correctCount++
		}

		for _, answerID := range record.AnswerIDs {
			if _, err := tx.ExecContext(
				ctx,
				`INSERT OR IGNORE INTO attempt_answers (attempt_id, question_id, answer_id, is_correct) VALUES (?, ?, ?, ?)`,
				attemptID,
				record.QuestionID,
				answerID,
				isCorrect,
			); err != nil {
				return SubmitOutcome{}, err
			}
		}

		details = append(details, ResultDetail{
			QuestionID:     record.QuestionID,
			QuestionText:   key.text,
			UserAnswers:    append([]string{}, record.AnswerIDs...),
			CorrectAnswers: append([]string{}, key.ordered...),
			IsCorrect:      isCorrect,
		})
	}

	score := 0.0
	if total > 0 {
		score = math.Round(float64(correctCount)/float64(total)*10000) / 100
	}
	passed := score >= passThreshold

	now := s.now()
	if _, err := tx.ExecContext(
		ctx,
		`UPDATE attempts SET score = ?, passed = ?, completed_at_unix = ? WHERE id = ?`,
		score,
		passed,
		now.UnixNano(),
		attemptID,
	); err != nil {
		return SubmitOutcome{}, err
	}

	if passed {
		if err := raiseProgress(ctx, tx, userID, quizID, now.UnixNano()); err != nil {
			return SubmitOutcome{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return SubmitOutcome{}, err
	}

	return SubmitOutcome{
		Result: quiz.Result{
			Score:          score,
			Passed:         passed,
			CorrectAnswers: correctCount,
			TotalQuestions: total,
		},
		Details: details,
	}, nil
}

func raiseProgress(ctx context.Context, tx *sql.Tx, userID, quizID string, nowNs int64) error {
	var categoryID, level string
	if err := tx.QueryRowContext(ctx, `SELECT category_id, level FROM quizzes WHERE id = ?`, quizID).Scan(&categoryID, &level); err != nil {
		return err
	}

	var current string
	err := tx.QueryRowContext(
		ctx,
		`SELECT current_level FROM user_progress WHERE user_id = ? AND category_id = ?`,
		userID,
		categoryID,
	).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO user_progress (user_id, category_id, current_level, updated_at_unix) VALUES (?, ?, ?, ?)`,
			userID, categoryID, level, nowNs,
		)
		return err
	case err != nil:
		return err
	}

	if quiz.LevelOrder(level) <= quiz.LevelOrder(current) {
		return nil
	}
	_, err = tx.ExecContext(
		ctx,
		`UPDATE user_progress SET current_level = ?, updated_at_unix = ? WHERE user_id = ? AND category_id = ?`,
		level, nowNs, userID, categoryID,
	)
	return err
}

func sameSet(submitted []string, correct map[string]struct{}) bool {
	seen := make(map[string]struct{}, len(submitted))
	for _, id := range submitted {
		if _, ok := correct[id]; !ok {
			return false
		}
		seen[id] = struct{}{}
	}
	return len(seen) == len(correct)
}

// HasPassedLevel reports whether the user passed any published quiz of the
// given level in the category.
func (s *SQLiteStore) HasPassedLevel(ctx context.Context, userID, categoryID, level string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (
			SELECT 1 FROM attempts a
			JOIN quizzes q ON q.id = a.quiz_id
			WHERE a.user_id = ? AND q.category_id = ? AND q.level = ? AND q.status = ? AND a.passed = 1
		)`,
		userID, categoryID, level, StatusPublished,
	).Scan(&exists)
	return exists, err
}

func (s *SQLiteStore) Attempts(ctx context.Context, userID string, limit int, completedOnly bool) ([]quiz.AttemptSummary, error) {
	query := `SELECT a.id, COALESCE(q.title, 'Unknown Quiz'), a.score, a.passed, a.completed_at_unix
		 FROM attempts a
		 LEFT JOIN quizzes q ON q.id = a.quiz_id
		 WHERE a.user_id = ?`
	if completedOnly {
		query += ` AND a.completed_at_unix IS NOT NULL`
	}
	query += ` ORDER BY a.completed_at_unix DESC, a.started_at_unix DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]quiz.AttemptSummary, 0)
	for rows.Next() {
		var (
			summary     quiz.AttemptSummary
			score       sql.NullFloat64
			passed      sql.NullBool
			completedNs sql.NullInt64
		)
		if err := rows.Scan(&summary.ID, &summary.QuizTitle, &score, &passed, &completedNs); err != nil {
			return nil, err
		}
		summary.Score = nullableFloat(score)
		summary.Passed = nullableBool(passed)
		summary.CompletedAt = nullableTimestamp(completedNs)
		attempts = append(attempts, summary)
	}
	return attempts, rows.Err()
}

// AttemptDetail returns one of the user's attempts with the quiz questions
// and their correct answers.
func (s *SQLiteStore) AttemptDetail(ctx context.Context, attemptID, userID string) (quiz.AttemptDetail, error) {
	var (
		detail      quiz.AttemptDetail
		quizID      string
		score       sql.NullFloat64
		passed      sql.NullBool
		completedNs sql.NullInt64
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT id, quiz_id, score, passed, completed_at_unix FROM attempts WHERE id = ? AND user_id = ?`,
		attemptID,
		userID,
	).Scan(&detail.Attempt.ID, &quizID, &score, &passed, &completedNs)
	if errors.Is(err, sql.ErrNoRows) {
		return quiz.AttemptDetail{}, ErrNotFound
	}
	if err != nil {
		return quiz.AttemptDetail{}, err
	}
	detail.Attempt.Score = nullableFloat(score)
	detail.Attempt.Passed = nullableBool(passed)
	detail.Attempt.CompletedAt = nullableTimestamp(completedNs)

	record, err := s.Quiz(ctx, quizID)
	if err != nil {
		return quiz.AttemptDetail{}, err
	}
	detail.Quiz = record.Detail()

	detail.Questions, err = s.Questions(ctx, quizID, true)
	if err != nil {
		return quiz.AttemptDetail{}, err
	}
	return detail, nil
}

func (s *SQLiteStore) UserStats(ctx context.Context, userID string) (quiz.UserStats, error) {
	var (
		stats   quiz.UserStats
		average sql.NullFloat64
	)
	if err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*), AVG(score) FROM attempts WHERE user_id = ?`,
		userID,
	).Scan(&stats.TotalAttempts, &average); err != nil {
		return quiz.UserStats{}, err
	}
	if average.Valid {
		stats.AverageScore = math.Round(average.Float64*100) / 100
	}

	if err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM user_progress WHERE user_id = ?`,
		userID,
	).Scan(&stats.CategoriesMastered); err != nil {
		return quiz.UserStats{}, err
	}

	recent, err := s.Attempts(ctx, userID, recentAttemptsLimit, true)
	if err != nil {
		return quiz.UserStats{}, err
	}
	stats.RecentAttempts = recent
	return stats, nil
}

func (s *SQLiteStore) Progress(ctx context.Context, userID string) ([]quiz.CategoryProgress, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT c.id, c.name, c.description, c.is_active, c.created_at_unix, p.current_level, p.updated_at_unix
		 FROM user_progress p
		 JOIN categories c ON c.id = p.category_id
		 WHERE p.user_id = ?
		 ORDER BY c.name ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	progress := make([]quiz.CategoryProgress, 0)
	for rows.Next() {
		var (
			category    CategoryRecord
			description sql.NullString
			createdNs   int64
			level       string
			updatedNs   int64
		)
		if err := rows.Scan(&category.ID, &category.Name, &description, &category.IsActive, &createdNs, &level, &updatedNs); err != nil {
			return nil, err
		}
		category.Description = description.String
		category.CreatedAt = unixTime(createdNs)
		progress = append(progress, quiz.CategoryProgress{
			Category:     category.Public(),
			CurrentLevel: level,
			UpdatedAt:    &quiz.Timestamp{Time: unixTime(updatedNs)},
		})
	}
	return progress, rows.Err()
}

func (s *SQLiteStore) AdminStats(ctx context.Context, popularLimit int) (quiz.AdminStats, error) {
	var stats quiz.AdminStats
	if err := s.db.QueryRowContext(
		ctx,
		`SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM quizzes),
			(SELECT COUNT(*) FROM categories)`,
	).Scan(&stats.TotalUsers, &stats.TotalQuizzes, &stats.TotalCategories); err != nil {
		return quiz.AdminStats{}, err
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT q.title, COUNT(a.id) AS attempts, COALESCE(AVG(a.score), 0)
		 FROM attempts a
		 JOIN quizzes q ON q.id = a.quiz_id
		 WHERE a.completed_at_unix IS NOT NULL
		 GROUP BY q.id
		 ORDER BY attempts DESC, q.title ASC
		 LIMIT ?`,
		popularLimit,
	)
	if err != nil {
		return quiz.AdminStats{}, err
	}
	defer rows.Close()

	stats.PopularQuizzes = make([]quiz.PopularQuiz, 0)
	for rows.Next() {
		var item quiz.PopularQuiz
		if err := rows.Scan(&item.Title, &item.Attempts, &item.AvgScore); err != nil {
			return quiz.AdminStats{}, err
		}
		item.AvgScore = math.Round(item.AvgScore*100) / 100
		stats.PopularQuizzes = append(stats.PopularQuizzes, item)
	}
	return stats, rows.Err()
}

func nullableFloat(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	v := value.Float64
	return &v
}

func nullableBool(value sql.NullBool) *bool {
	if !value.Valid {
		return nil
	}
	v := value.Bool
	return &v
}

func nullableTimestamp(ns sql.NullInt64) *quiz.Timestamp {
	t := nullableTime(ns)
	if t == nil {
		return nil
	}
	return &quiz.Timestamp{Time: *t}
}
