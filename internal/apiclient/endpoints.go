package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"quizmaster/internal/quiz"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type quizListResponse struct {
	Data []quiz.QuizSummary `json:"data"`
}

type attemptDetailResponse struct {
	Data quiz.AttemptDetail `json:"data"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) error {
	return c.Call(ctx, http.MethodPost, "/auth/register", registerRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}, nil)
}

// Login authenticates; the service answers with a session cookie that the
// client's jar sends on every later call.
func (c *Client) Login(ctx context.Context, email, password string) error {
	return c.Call(ctx, http.MethodPost, "/auth/login", loginRequest{
		Email:    email,
		Password: password,
	}, nil)
}

func (c *Client) Me(ctx context.Context) (quiz.Identity, error) {
	var identity quiz.Identity
	if err := c.Call(ctx, http.MethodGet, "/auth/me", nil, &identity); err != nil {
		return quiz.Identity{}, err
	}
	return identity, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.Call(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *Client) Categories(ctx context.Context) ([]quiz.Category, error) {
	var categories []quiz.Category
	if err := c.Call(ctx, http.MethodGet, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) AvailableQuizzes(ctx context.Context, categoryID string) ([]quiz.QuizSummary, error) {
	if strings.TrimSpace(categoryID) == "" {
		return nil, errors.New("category id is required")
	}

	var payload quizListResponse
	path := "/categories/" + url.PathEscape(categoryID) + "/quizzes/available"
	if err := c.Call(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

func (c *Client) StartAttempt(ctx context.Context, quizID string) (quiz.StartedAttempt, error) {
	var started quiz.StartedAttempt
	path := "/attempts/start/" + url.PathEscape(quizID)
	if err := c.Call(ctx, http.MethodPost, path, nil, &started); err != nil {
		return quiz.StartedAttempt{}, err
	}
	return started, nil
}

func (c *Client) SubmitAttempt(ctx context.Context, attemptID string, answers []quiz.AnswerRecord) (quiz.Result, error) {
	if answers == nil {
		answers = []quiz.AnswerRecord{}
	}

	var result quiz.Result
	path := "/attempts/submit/" + url.PathEscape(attemptID)
	if err := c.Call(ctx, http.MethodPost, path, quiz.Submission{Answers: answers}, &result); err != nil {
		return quiz.Result{}, err
	}
	return result, nil
}

func (c *Client) MyAttempts(ctx context.Context) ([]quiz.AttemptSummary, error) {
	var attempts []quiz.AttemptSummary
	if err := c.Call(ctx, http.MethodGet, "/users/me/attempts", nil, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

func (c *Client) Attempt(ctx context.Context, attemptID string) (quiz.AttemptDetail, error) {
	if strings.TrimSpace(attemptID) == "" {
		return quiz.AttemptDetail{}, errors.New("attempt id is required")
	}

	var payload attemptDetailResponse
	if err := c.Call(ctx, http.MethodGet, "/attempts/"+url.PathEscape(attemptID), nil, &payload); err != nil {
		return quiz.AttemptDetail{}, err
	}
	return payload.Data, nil
}

func (c *Client) AdminStats(ctx context.Context) (quiz.AdminStats, error) {
	var stats quiz.AdminStats
	if err := c.Call(ctx, http.MethodGet, "/admin/stats", nil, &stats); err != nil {
		return quiz.AdminStats{}, err
	}
	return stats, nil
}

func (c *Client) AdminUsers(ctx context.Context, query quiz.UserQuery) (quiz.UserPage, error) {
	values := url.Values{}
	if search := strings.TrimSpace(query.Search); search != "" {
		values.Set("search", search)
	}
	if query.Page > 0 {
		values.Set("page", strconv.Itoa(query.Page))
	}
	if query.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(query.PerPage))
	}

	path := "/admin/users"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page quiz.UserPage
	if err := c.Call(ctx, http.MethodGet, path, nil, &page); err != nil {
		return quiz.UserPage{}, err
	}
	return page, nil
}

func (c *Client) Health(ctx context.Context) (string, error) {
	var payload healthResponse
	if err := c.Call(ctx, http.MethodGet, "/health", nil, &payload); err != nil {
		return "", err
	}
	return payload.Status, nil
}

func (c *Client) MyStats(ctx context.Context) (quiz.UserStats, error) {
	var stats quiz.UserStats
	if err := c.Call(ctx, http.MethodGet, "/users/me/stats", nil, &stats); err != nil {
		return quiz.UserStats{}, err
	}
	return stats, nil
}

func (c *Client) Progress(ctx context.Context) ([]quiz.CategoryProgress, error) {
	var progress []quiz.CategoryProgress
	if err := c.Call(ctx, http.MethodGet, "/attempts/progress", nil, &progress); err != nil {
		return nil, err
	}
	return progress, nil
}
