package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"quizmaster/internal/quiz"
	"quizmaster/internal/store/sqlite"
)

func (a *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Ping(r.Context()); err != nil {
		a.logger.Error("database ping failed", zap.Error(err))
		writeDetail(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (a *API) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	switch {
	case req.Name == "":
		writeDetail(w, http.StatusUnprocessableEntity, "name is required")
		return
	case !validEmail(req.Email):
		writeDetail(w, http.StatusUnprocessableEntity, "a valid email is required")
		return
	case req.Password == "":
		writeDetail(w, http.StatusUnprocessableEntity, "password is required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), a.bcryptCost)
	if err != nil {
		a.logger.Error("hash password failed", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "request failed")
		return
	}

	user := sqlite.UserRecord{
		ID:           a.newID(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         quiz.RoleUser,
	}
	if err := a.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, sqlite.ErrDuplicate) {
			writeDetail(w, http.StatusBadRequest, "Email already registered")
			return
		}
		a.logger.Error("create user failed", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "request failed")
		return
	}

	a.logger.Info("user registered", zap.String("user_id", user.ID))
	writeJSON(w, http.StatusOK, registerResponse{Message: "User created successfully", UserID: user.ID})
}

func (a *API) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	user, err := a.store.UserByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, sqlite.ErrNotFound) {
		a.logger.Error("load user failed", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "request failed")
		return
	}
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	token, err := a.tokens.Issue(user)
	if err != nil {
		a.logger.Error("sign token failed", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "request failed")
		return
	}

	a.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, TokenType: "bearer", UserID: user.ID})
}

func (a *API) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, user.Public())
}

func (a *API) HandleLogout(w http.ResponseWriter, r *http.Request) {
	a.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Successfully logged out"})
}

func (a *API) HandleCategories(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	records, err := a.store.ListCategories(r.Context(), user.Role == quiz.RoleAdmin)
	if err != nil {
		a.logger.Error("list categories failed", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "request failed")
		return
	}

	categories := make([]quiz.Category, 0, len(records))
	for _, record := range records {
		categories = append(categories, record.Public())
	}
	writeJSON(w, http.StatusOK, categories)
}

func (a *API) HandleAvailableQuizzes(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	categoryID := r.PathValue("category_id")

	category, err := a.store.Category(r.Context(), categoryID)
	if err == nil && !category.IsActive && user.Role != quiz.RoleAdmin {
		err = sqlite.ErrNotFound
	}
	if err != nil {
		writeStoreError(w, err, "Category not found")
		return
	}

	records, err := a.store.PublishedQuizzes(r.Context(), category.ID)
	if err != nil {
		a.logger.Error("list quizzes failed", zap.String("category_id", category.ID), zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "request failed")
		return
	}

	unlocked := make(map[string]bool)
	quizzes := make([]availableQuiz, 0, len(records))
	for _, record := range records {
		accessible, seen := unlocked[record.Level]
		if !seen {
			accessible, err = a.levelUnlocked(r, user.ID, category.ID, record.Level)
			if err != nil {
				a.logger.Error("check level access failed", zap.String("category_id", category.ID), zap.Error(err))
				writeDetail(w, http.StatusInternalServerError, "request failed")
				return
			}
			unlocked[record.Level] = accessible
		}
		quizzes = append(quizzes, availableQuiz{
			ID:           record.ID,
			Title:        record.Title,
			Level:        record.Level,
			CategoryID:   record.CategoryID,
			Status:       record.Status,
			IsAccessible: accessible,
		})
	}

	writeJSON(w, http.StatusOK, envelope{
		Data:    quizzes,
		Meta:    map[string]any{},
		Message: "Quizzes retrieved successfully",
	})
}

// levelUnlocked reports whether the user may take quizzes of level in the
// category. Beginner quizzes are always open; every other level needs a
// passed attempt at the level below it.
func (a *API) levelUnlocked(r *http.Request, userID, categoryID, level string) (bool, error) {
	var previous string
	switch level {
	case quiz.LevelBeginner:
		return true, nil
	case quiz.LevelIntermediate:
		previous = quiz.LevelBeginner
	case quiz.LevelAdvanced:
		previous = quiz.LevelIntermediate
	default:
		return false, nil
	}
	return a.store.HasPassedLevel(r.Context(), userID, categoryID, previous)
}
