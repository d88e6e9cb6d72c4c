package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"quizmaster/internal/quiz"
)

const maxUsersPerPage = 100

func (a *API) HandleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.store.AdminStats(r.Context(), popularQuizLimit)
	if err != nil {
		a.logger.Error("load admin stats failed", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "request failed")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) HandleAdminUsers(w http.ResponseWriter, r *http.Request) {
	page, err := parseIntParam(r, "page", 1)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	perPage, err := parseIntParam(r, "per_page", 10)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	perPage = min(perPage, maxUsersPerPage)
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	users, total, err := a.store.ListUsers(r.Context(), search, perPage, (page-1)*perPage)
	if err != nil {
		a.logger.Error("list users failed", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "request failed")
		return
	}

	writeJSON(w, http.StatusOK, usersResponse{
		Data: users,
		Meta: quiz.PageMeta{
			Total:      total,
			Page:       page,
			PerPage:    perPage,
			TotalPages: (total + perPage - 1) / perPage,
		},
	})
}
