package httpapi

import (
	"quizmaster/internal/quiz"
	"quizmaster/internal/store/sqlite"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type availableQuiz struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Level        string `json:"level"`
	CategoryID   string `json:"category_id"`
	Status       string `json:"status"`
	IsAccessible bool   `json:"is_accessible"`
}

type envelope struct {
	Data    any            `json:"data"`
	Meta    map[string]any `json:"meta"`
	Message string         `json:"message,omitempty"`
}

type submitResponse struct {
	quiz.Result
	Details []sqlite.ResultDetail `json:"details"`
}

type usersResponse struct {
	Data []quiz.User   `json:"data"`
	Meta quiz.PageMeta `json:"meta"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}
