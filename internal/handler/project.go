package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"reelstudio/internal/mw"
	"reelstudio/internal/service"
)

type submitProjectRequest struct {
	Title    string `json:"title"`
	Brief    string `json:"brief"`
	Template string `json:"template"`
}

func SubmitProjectHandler(projectSvc *service.ProjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID := r.Context().Value(mw.UserCtxKey).(string)

		var req submitProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if req.Title == "" || req.Brief == "" {
			http.Error(w, "title and brief required", http.StatusBadRequest)
			return
		}

		project, err := projectSvc.Submit(r.Context(), userID, service.ProjectParams{
			Title:    req.Title,
			Brief:    req.Brief,
			Template: req.Template,
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInsufficientCredits):
				http.Error(w, "insufficient video credits", http.StatusPaymentRequired)
			default:
				slog.Error("project submit failed", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(project); err != nil {
			slog.Error("project response encode failed", "error", err)
		}
	}
}

func ListProjectsHandler(projectSvc *service.ProjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID := r.Context().Value(mw.UserCtxKey).(string)

		projects, err := projectSvc.ListByUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if len(projects) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(projects); err != nil {
			http.Error(w, "encode error", http.StatusInternalServerError)
		}
	}
}

func ListAllProjectsHandler(projectSvc *service.ProjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := projectSvc.ListAll(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(projects); err != nil {
			http.Error(w, "encode error", http.StatusInternalServerError)
		}
	}
}

type updateProjectStatusRequest struct {
	Status string `json:"status"`
}

func UpdateProjectStatusHandler(projectSvc *service.ProjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "id")

		var req updateProjectStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		err := projectSvc.UpdateStatus(r.Context(), projectID, req.Status)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidStatus):
				http.Error(w, "invalid status", http.StatusBadRequest)
			case errors.Is(err, service.ErrProjectNotFound):
				http.Error(w, "project not found", http.StatusNotFound)
			default:
				slog.Error("project status update failed", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
