package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"reelstudio/internal/model"
	"reelstudio/internal/service"
)

type registerRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

func RegisterHandler(authSvc *service.AuthService, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if req.Email == "" || req.Password == "" {
			http.Error(w, "email and password required", http.StatusBadRequest)
			return
		}

		user, err := authSvc.Register(r.Context(), req.Email, req.FullName, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrEmailTaken):
				http.Error(w, "email already registered", http.StatusConflict)
			default:
				slog.Error("register failed", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		tokenString, err := issueToken(user, secret)
		if err != nil {
			http.Error(w, "token generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Authorization", "Bearer "+tokenString)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(user); err != nil {
			slog.Error("register response encode failed", "error", err)
		}
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func LoginHandler(authSvc *service.AuthService, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		user, err := authSvc.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCredentials):
				http.Error(w, "invalid email or password", http.StatusUnauthorized)
			default:
				slog.Error("login failed", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		tokenString, err := issueToken(user, secret)
		if err != nil {
			http.Error(w, "token generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Authorization", "Bearer "+tokenString)
		w.WriteHeader(http.StatusOK)
	}
}

type resetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func ResetPasswordHandler(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req resetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if req.Token == "" || req.Password == "" {
			http.Error(w, "token and password required", http.StatusBadRequest)
			return
		}

		if err := authSvc.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
			switch {
			case errors.Is(err, service.ErrResetTokenInvalid):
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			default:
				slog.Error("password reset failed", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func issueToken(user *model.User, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	return token.SignedString([]byte(secret))
}
