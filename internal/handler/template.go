package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"reelstudio/internal/model"
	"reelstudio/internal/service"
)

func ListTemplatesHandler(templateSvc *service.TemplateService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		templates, err := templateSvc.ListActive(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(templates); err != nil {
			http.Error(w, "encode error", http.StatusInternalServerError)
		}
	}
}

type templateRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	PreviewURL  string `json:"preview_url"`
	Active      *bool  `json:"active"`
}

func (req templateRequest) toModel() model.Template {
	t := model.Template{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		PreviewURL:  req.PreviewURL,
		Active:      true,
	}
	if req.Active != nil {
		t.Active = *req.Active
	}
	return t
}

func CreateTemplateHandler(templateSvc *service.TemplateService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req templateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if req.Name == "" || req.Category == "" {
			http.Error(w, "name and category required", http.StatusBadRequest)
			return
		}

		created, err := templateSvc.Create(r.Context(), req.toModel())
		if err != nil {
			slog.Error("template create failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(created); err != nil {
			slog.Error("template response encode failed", "error", err)
		}
	}
}

func UpdateTemplateHandler(templateSvc *service.TemplateService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req templateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if req.Name == "" || req.Category == "" {
			http.Error(w, "name and category required", http.StatusBadRequest)
			return
		}

		if err := templateSvc.Update(r.Context(), id, req.toModel()); err != nil {
			switch {
			case errors.Is(err, service.ErrTemplateNotFound):
				http.Error(w, "template not found", http.StatusNotFound)
			default:
				slog.Error("template update failed", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func DeleteTemplateHandler(templateSvc *service.TemplateService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := templateSvc.Delete(r.Context(), id); err != nil {
			switch {
			case errors.Is(err, service.ErrTemplateNotFound):
				http.Error(w, "template not found", http.StatusNotFound)
			default:
				slog.Error("template delete failed", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
