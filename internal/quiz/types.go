package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

const (
	LevelBeginner     = "debutant"
	LevelIntermediate = "intermediaire"
	LevelAdvanced     = "avance"
)

// LevelOrder ranks quiz levels; unknown levels rank 0.
func LevelOrder(level string) int {
	switch level {
	case LevelBeginner:
		return 1
	case LevelIntermediate:
		return 2
	case LevelAdvanced:
		return 3
	default:
		return 0
	}
}

type Identity struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

type Category struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"is_active"`
}

type QuizSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Level        string `json:"level"`
	IsAccessible bool   `json:"is_accessible"`
}

type QuizDetail struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Level      string `json:"level"`
	CategoryID string `json:"category_id,omitempty"`
}

type AnswerOption struct {
	ID        string `json:"id"`
	Text      string `json:"answer_text"`
	Order     int    `json:"order"`
	IsCorrect *bool  `json:"is_correct,omitempty"`
}

type Question struct {
	ID      string         `json:"id"`
	Text    string         `json:"question_text"`
	Order   int            `json:"order"`
	Answers []AnswerOption `json:"answers"`
}

// StartedAttempt is the service response to starting a quiz.
type StartedAttempt struct {
	AttemptID string     `json:"attempt_id"`
	Quiz      QuizDetail `json:"quiz"`
	Questions []Question `json:"questions"`
}

type AnswerRecord struct {
	QuestionID string   `json:"question_id"`
	AnswerIDs  []string `json:"answer_ids"`
}

type Submission struct {
	Answers []AnswerRecord `json:"answers"`
}

type Result struct {
	Score          float64 `json:"score"`
	Passed         bool    `json:"passed"`
	CorrectAnswers int     `json:"correct_answers"`
	TotalQuestions int     `json:"total_questions"`
}

type AttemptSummary struct {
	ID          string     `json:"id"`
	QuizTitle   string     `json:"quiz_title"`
	Score       *float64   `json:"score"`
	Passed      *bool      `json:"passed"`
	CompletedAt *Timestamp `json:"completed_at"`
}

// Completed reports whether the attempt has been scored.
func (a AttemptSummary) Completed() bool {
	return a.CompletedAt != nil && a.Score != nil
}

type AttemptInfo struct {
	ID          string     `json:"id"`
	Score       *float64   `json:"score"`
	Passed      *bool      `json:"passed"`
	CompletedAt *Timestamp `json:"completed_at"`
}

// AttemptDetail deliberately has no field for the user's own selections.
type AttemptDetail struct {
	Attempt   AttemptInfo `json:"attempt"`
	Quiz      QuizDetail  `json:"quiz"`
	Questions []Question  `json:"questions_with_answers"`
}

type PopularQuiz struct {
	Title    string  `json:"title"`
	Attempts int     `json:"attempts"`
	AvgScore float64 `json:"avg_score"`
}

type AdminStats struct {
	TotalUsers      int           `json:"total_users"`
	TotalQuizzes    int           `json:"total_quizzes"`
	TotalCategories int           `json:"total_categories"`
	PopularQuizzes  []PopularQuiz `json:"popular_quizzes,omitempty"`
}

type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
}

type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

type UserPage struct {
	Users []User   `json:"data"`
	Meta  PageMeta `json:"meta"`
}

type UserQuery struct {
	Search  string
	Page    int
	PerPage int
}

type UserStats struct {
	TotalAttempts      int              `json:"total_attempts"`
	AverageScore       float64          `json:"average_score"`
	CategoriesMastered int              `json:"categories_mastered"`
	RecentAttempts     []AttemptSummary `json:"recent_attempts"`
}

type CategoryProgress struct {
	Category     Category   `json:"category"`
	CurrentLevel string     `json:"current_level"`
	UpdatedAt    *Timestamp `json:"updated_at,omitempty"`
}

// Timestamp accepts RFC3339 as well as the zone-less ISO layouts some
// services emit, treating the latter as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}
