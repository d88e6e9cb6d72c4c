package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"quizmaster/internal/quiz"
	"quizmaster/internal/store/sqlite"
)

func (a *API) HandleStartQuiz(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	record, err := a.store.Quiz(r.Context(), r.PathValue("quiz_id"))
	if err == nil && record.Status != sqlite.StatusPublished {
		err = sqlite.ErrNotFound
	}
	if err != nil {
		writeStoreError(w, err, "Quiz not found or not published")
		return
	}

	if user.Role != quiz.RoleAdmin {
		unlocked, err := a.levelUnlocked(r, user.ID, record.CategoryID, record.Level)
		if err != nil {
			a.logger.Error("check level access failed", zap.String("quiz_id", record.ID), zap.Error(err))
			writeDetail(w, http.StatusInternalServerError, "request failed")
			return
		}
		if !unlocked {
			writeDetail(w, http.StatusForbidden, "Quiz locked: pass the previous level first")
			return
		}
	}

	attemptID, err := a.store.StartAttempt(r.Context(), user.ID, record.ID, a.newID())
	if err != nil {
		a.logger.Error("start attempt failed", zap.String("quiz_id", record.ID), zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "request failed")
		return
	}

	questions, err := a.store.Questions(r.Context(), record.ID, false)
	if err != nil {
		a.logger.Error("load questions failed", zap.String("quiz_id", record.ID), zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "request failed")
		return
	}

	a.logger.Info("attempt started", zap.String("attempt_id", attemptID), zap.String("quiz_id", record.ID), zap.String("user_id", user.ID))
	writeJSON(w, http.StatusOK, quiz.StartedAttempt{
		AttemptID: attemptID,
		Quiz:      record.Detail(),
		Questions: questions,
	})
}

func (a *API) HandleSubmitAttempt(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	var req quiz.Submission
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if req.Answers == nil {
		writeDetail(w, http.StatusUnprocessableEntity, "answers is required")
		return
	}

	attemptID := r.PathValue("attempt_id")
	outcome, err := a.store.SubmitAttempt(r.Context(), attemptID, user.ID, req.Answers, a.passThreshold)
	if err != nil {
		if !errors.Is(err, sqlite.ErrNotFound) && !errors.Is(err, sqlite.ErrAttemptFinished) {
			a.logger.Error("submit attempt failed", zap.String("attempt_id", attemptID), zap.Error(err))
		}
		writeStoreError(w, err, "Attempt not found or already completed")
		return
	}

	a.logger.Info("attempt submitted",
		zap.String("attempt_id", attemptID),
		zap.String("user_id", user.ID),
		zap.Float64("score", outcome.Result.Score),
		zap.Bool("passed", outcome.Result.Passed),
	)
	writeJSON(w, http.StatusOK, submitResponse{Result: outcome.Result, Details: outcome.Details})
}

func (a *API) HandleMyAttempts(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	limit, err := parseIntParam(r, "limit", 0)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	attempts, err := a.store.Attempts(r.Context(), user.ID, limit, false)
	if err != nil {
		a.logger.Error("list attempts failed", zap.String("user_id", user.ID), zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "request failed")
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (a *API) HandleAttemptDetail(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	attemptID := r.PathValue("attempt_id")

	detail, err := a.store.AttemptDetail(r.Context(), attemptID, user.ID)
	if err != nil {
		if !errors.Is(err, sqlite.ErrNotFound) {
			a.logger.Error("load attempt failed", zap.String("attempt_id", attemptID), zap.Error(err))
		}
		writeStoreError(w, err, "Attempt not found")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Data:    detail,
		Meta:    map[string]any{},
		Message: "Attempt details retrieved successfully",
	})
}

func (a *API) HandleMyStats(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	stats, err := a.store.UserStats(r.Context(), user.ID)
	if err != nil {
		a.logger.Error("load user stats failed", zap.String("user_id", user.ID), zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "request failed")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) HandleProgress(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	progress, err := a.store.Progress(r.Context(), user.ID)
	if err != nil {
		a.logger.Error("load progress failed", zap.String("user_id", user.ID), zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "request failed")
		return
	}
	writeJSON(w, http.StatusOK, progress)
}
