package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"quizmaster/internal/quiz"
)

const StatusPublished = "published"

type CategoryRecord struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
}

func (c CategoryRecord) Public() quiz.Category {
	category := quiz.Category{
		ID:       c.ID,
		Name:     c.Name,
		IsActive: c.IsActive,
	}
	if c.Description != "" {
		description := c.Description
		category.Description = &description
	}
	return category
}

type QuizRecord struct {
	ID         string
	CategoryID string
	Title      string
	Level      string
	Status     string
	CreatedAt  time.Time
}

func (q QuizRecord) Detail() quiz.QuizDetail {
	return quiz.QuizDetail{
		ID:         q.ID,
		Title:      q.Title,
		Level:      q.Level,
		CategoryID: q.CategoryID,
	}
}

type AnswerSeed struct {
	ID        string
	Text      string
	IsCorrect bool
}

type QuestionSeed struct {
	ID      string
	Text    string
	Answers []AnswerSeed
}

func (s *SQLiteStore) CreateCategory(ctx context.Context, category CategoryRecord) error {
	if category.ID == "" || strings.TrimSpace(category.Name) == "" {
		return errors.New("category id and name are required")
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = s.now()
	}

	var description sql.NullString
	if category.Description != "" {
		description = sql.NullString{String: category.Description, Valid: true}
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO categories (id, name, description, is_active, created_at_unix) VALUES (?, ?, ?, ?, ?)`,
		category.ID,
		category.Name,
		description,
		category.IsActive,
		category.CreatedAt.UnixNano(),
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (s *SQLiteStore) ListCategories(ctx context.Context, includeInactive bool) ([]CategoryRecord, error) {
	query := `SELECT id, name, description, is_active, created_at_unix FROM categories`
	if !includeInactive {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]CategoryRecord, 0)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (s *SQLiteStore) Category(ctx context.Context, id string) (CategoryRecord, error) {
	return s.categoryWhere(ctx, `id = ?`, id)
}

func (s *SQLiteStore) CategoryByName(ctx context.Context, name string) (CategoryRecord, error) {
	return s.categoryWhere(ctx, `name = ?`, name)
}

func (s *SQLiteStore) categoryWhere(ctx context.Context, where string, arg any) (CategoryRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, name, description, is_active, created_at_unix FROM categories WHERE `+where+` LIMIT 1`,
		arg,
	)
	if err != nil {
		return CategoryRecord{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return CategoryRecord{}, err
		}
		return CategoryRecord{}, ErrNotFound
	}
	return scanCategory(rows)
}

func scanCategory(rows *sql.Rows) (CategoryRecord, error) {
	var (
		category    CategoryRecord
		description sql.NullString
		createdNs   int64
	)
	if err := rows.Scan(&category.ID, &category.Name, &description, &category.IsActive, &createdNs); err != nil {
		return CategoryRecord{}, err
	}
	category.Description = description.String
	category.CreatedAt = unixTime(createdNs)
	return category, nil
}

// CreateQuiz stores a quiz with its questions and answers in one
// transaction. Question and answer order follows the slices.
func (s *SQLiteStore) CreateQuiz(ctx context.Context, record QuizRecord, questions []QuestionSeed) error {
	if record.ID == "" || record.CategoryID == "" {
		return errors.New("quiz id and category id are required")
	}
	if record.Status == "" {
		record.Status = StatusPublished
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO quizzes (id, category_id, title, level, status, created_at_unix) VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.CategoryID,
		record.Title,
		record.Level,
		record.Status,
		record.CreatedAt.UnixNano(),
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}

	for questionIdx, question := range questions {
		if question.ID == "" {
			return errors.New("question id is required")
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO questions (id, quiz_id, question_text, position) VALUES (?, ?, ?, ?)`,
			question.ID,
			record.ID,
			question.Text,
			questionIdx+1,
		); err != nil {
			return err
		}

		for answerIdx, answer := range question.Answers {
			if answer.ID == "" {
				return errors.New("answer id is required")
			}
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO answers (id, question_id, answer_text, position, is_correct) VALUES (?, ?, ?, ?, ?)`,
				answer.ID,
				question.ID,
				answer.Text,
				answerIdx+1,
				answer.IsCorrect,
			); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Quiz(ctx context.Context, id string) (QuizRecord, error) {
	var (
		record    QuizRecord
		createdNs int64
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT id, category_id, title, level, status, created_at_unix FROM quizzes WHERE id = ?`,
		id,
	).Scan(&record.ID, &record.CategoryID, &record.Title, &record.Level, &record.Status, &createdNs)
	if errors.Is(err, sql.ErrNoRows) {
		return QuizRecord{}, ErrNotFound
	}
	if err != nil {
		return QuizRecord{}, err
	}
	record.CreatedAt = unixTime(createdNs)
	return record, nil
}

// PublishedQuizzes lists a category's published quizzes from easiest level
// to hardest.
func (s *SQLiteStore) PublishedQuizzes(ctx context.Context, categoryID string) ([]QuizRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, category_id, title, level, status, created_at_unix FROM quizzes
		 WHERE category_id = ? AND status = ?
		 ORDER BY CASE level WHEN ? THEN 1 WHEN ? THEN 2 WHEN ? THEN 3 ELSE 4 END, created_at_unix ASC`,
		categoryID,
		StatusPublished,
		quiz.LevelBeginner,
		quiz.LevelIntermediate,
		quiz.LevelAdvanced,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quizzes := make([]QuizRecord, 0)
	for rows.Next() {
		var (
			record    QuizRecord
			createdNs int64
		)
		if err := rows.Scan(&record.ID, &record.CategoryID, &record.Title, &record.Level, &record.Status, &createdNs); err != nil {
			return nil, err
		}
		record.CreatedAt = unixTime(createdNs)
		quizzes = append(quizzes, record)
	}
	return quizzes, rows.Err()
}

// Questions returns a quiz's questions in order. Correctness flags are only
// filled when withCorrect is set.
func (s *SQLiteStore) Questions(ctx context.Context, quizID string, withCorrect bool) ([]quiz.Question, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT q.id, q.question_text, q.position, a.id, a.answer_text, a.position, a.is_correct
		 FROM questions q
		 LEFT JOIN answers a ON a.question_id = q.id
		 WHERE q.quiz_id = ?
		 ORDER BY q.position ASC, a.position ASC`,
		quizID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]quiz.Question, 0)
	for rows.Next() {
		var (
			questionID    string
			questionText  string
			questionOrder int
			answerID      sql.NullString
			answerText    sql.NullString
			answerOrder   sql.NullInt64
			isCorrect     sql.NullBool
		)
		if err := rows.Scan(&questionID, &questionText, &questionOrder, &answerID, &answerText, &answerOrder, &isCorrect); err != nil {
			return nil, err
		}

		if len(questions) == 0 || questions[len(questions)-1].ID != questionID {
			questions = append(questions, quiz.Question{
				ID:      questionID,
				Text:    questionText,
				Order:   questionOrder,
				Answers: make([]quiz.AnswerOption, 0),
			})
		}
		if !answerID.Valid {
			continue
		}

		option := quiz.AnswerOption{
			ID:    answerID.String,
			Text:  answerText.String,
			Order: int(answerOrder.Int64),
		}
		if withCorrect {
			correct := isCorrect.Bool
			option.IsCorrect = &correct
		}
		current := &questions[len(questions)-1]
		current.Answers = append(current.Answers, option)
	}
	return questions, rows.Err()
}
