package sqlite

import (
	"context"
)

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			created_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS quizzes (
			id TEXT PRIMARY KEY,
			category_id TEXT NOT NULL REFERENCES categories(id),
			title TEXT NOT NULL,
			level TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'published',
			created_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS questions (
			id TEXT PRIMARY KEY,
			quiz_id TEXT NOT NULL REFERENCES quizzes(id),
			question_text TEXT NOT NULL,
			position INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS answers (
			id TEXT PRIMARY KEY,
			question_id TEXT NOT NULL REFERENCES questions(id),
			answer_text TEXT NOT NULL,
			position INTEGER NOT NULL,
			is_correct INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			quiz_id TEXT NOT NULL REFERENCES quizzes(id),
			score REAL,
			passed INTEGER,
			started_at_unix INTEGER NOT NULL,
			completed_at_unix INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS attempt_answers (
			attempt_id TEXT NOT NULL REFERENCES attempts(id),
			question_id TEXT NOT NULL,
			answer_id TEXT NOT NULL,
			is_correct INTEGER NOT NULL,
			PRIMARY KEY (attempt_id, question_id, answer_id)
		);`,
		`CREATE TABLE IF NOT EXISTS user_progress (
			user_id TEXT NOT NULL REFERENCES users(id),
			category_id TEXT NOT NULL REFERENCES categories(id),
			current_level TEXT NOT NULL,
			updated_at_unix INTEGER NOT NULL,
			PRIMARY KEY (user_id, category_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_quizzes_category ON quizzes(category_id, level);`,
		`CREATE INDEX IF NOT EXISTS idx_questions_quiz ON questions(quiz_id, position);`,
		`CREATE INDEX IF NOT EXISTS idx_answers_question ON answers(question_id, position);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_user ON attempts(user_id, completed_at_unix DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_open ON attempts(user_id, quiz_id) WHERE completed_at_unix IS NULL;`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
