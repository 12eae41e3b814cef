package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gojipedia/gojipedia/lib/auth"
	"github.com/gojipedia/gojipedia/lib/lock"
	"github.com/gojipedia/gojipedia/lib/store"
	"github.com/gojipedia/gojipedia/lib/validation"
	"github.com/gojipedia/gojipedia/models"
	"gorm.io/gorm"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
}

// HandleLogin checks credentials and issues a JWT. Unknown emails and wrong
// passwords get the same response.
func HandleLogin(s *store.Store, tokens auth.TokenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			validation.WriteError(w, errors.New("invalid request body"), http.StatusBadRequest)
			return
		}
		if req.Email == "" || req.Password == "" {
			validation.WriteError(w, errors.New("email and password are required"), http.StatusBadRequest)
			return
		}

		user, err := s.GetUserByEmail(r.Context(), req.Email)
		if err != nil {
			slog.Error("Failed to look up user", slog.Any("error", err))
			validation.WriteError(w, errors.New("login failed"), http.StatusInternalServerError)
			return
		}
		if user == nil || auth.CheckPassword(user.PasswordHash, req.Password) != nil {
			validation.WriteError(w, errors.New("invalid credentials"), http.StatusUnauthorized)
			return
		}

		token, exp, err := tokens.Sign(user)
		if err != nil {
			slog.Error("Failed to sign token", slog.Any("error", err))
			validation.WriteError(w, errors.New("login failed"), http.StatusInternalServerError)
			return
		}
		writeJSON(w, loginResponse{Token: token, ExpiresAt: exp, Email: user.Email, Role: user.Role})
	}
}

// Admin listings bypass the is_active filter.

func HandleAdminMonsters(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		monsters, err := s.AllMonsters(r.Context())
		if err != nil {
			slog.Error("Failed to list monsters", slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to list monsters"), http.StatusInternalServerError)
			return
		}
		writeJSON(w, monsters)
	}
}

func HandleAdminWorks(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		works, err := s.AllWorks(r.Context())
		if err != nil {
			slog.Error("Failed to list works", slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to list works"), http.StatusInternalServerError)
			return
		}
		writeJSON(w, works)
	}
}

func HandleAdminProducts(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := s.AllProducts(r.Context())
		if err != nil {
			slog.Error("Failed to list products", slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to list products"), http.StatusInternalServerError)
			return
		}
		writeJSON(w, products)
	}
}

func HandleSuggestedProducts(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := s.SuggestedProducts(r.Context())
		if err != nil {
			slog.Error("Failed to list suggestions", slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to list suggestions"), http.StatusInternalServerError)
			return
		}
		writeJSON(w, products)
	}
}

// HandleApproveProduct activates a suggested product.
func HandleApproveProduct(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			validation.WriteError(w, errors.New("product id is required"), http.StatusBadRequest)
			return
		}

		err := s.ApproveSuggestedProduct(r.Context(), id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			validation.WriteError(w, errNotFound, http.StatusNotFound)
			return
		}
		if err != nil {
			slog.Error("Failed to approve product", slog.String("id", id), slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to approve product"), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"status": "approved"})
	}
}

// HandleSaveMonster upserts a monster. The Fan Power Index is recomputed
// server-side; any client-sent value is discarded.
func HandleSaveMonster(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var monster models.Monster
		if err := json.NewDecoder(r.Body).Decode(&monster); err != nil {
			validation.WriteError(w, errors.New("invalid request body"), http.StatusBadRequest)
			return
		}
		if monster.Name == "" || monster.Slug == "" {
			validation.WriteError(w, errors.New("name and slug are required"), http.StatusBadRequest)
			return
		}
		if err := validation.ValidateSlug(monster.Slug); err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		if err := s.SaveMonster(r.Context(), &monster); err != nil {
			slog.Error("Failed to save monster", slog.String("slug", monster.Slug), slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to save monster"), http.StatusInternalServerError)
			return
		}
		writeJSON(w, monster)
	}
}

// JobRunner is a background job the admin can trigger.
type JobRunner interface {
	Run(ctx context.Context) (*models.JobResult, error)
}

// HandleRunJob kicks off a job in the background under the file lock and
// returns immediately. A second trigger while the job is running is refused.
func HandleRunJob(name string, job JobRunner, locks *lock.FileLock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acquired, err := locks.TryLock(r.Context(), name, 2*time.Second)
		if err != nil {
			slog.Error("Failed to acquire job lock", slog.String("job", name), slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to start job"), http.StatusInternalServerError)
			return
		}
		if !acquired {
			validation.WriteError(w, errors.New("job already running"), http.StatusConflict)
			return
		}

		triggeredBy := ""
		if claims := auth.ClaimsFrom(r.Context()); claims != nil {
			triggeredBy = claims.Email
		}

		go func() {
			ctx := context.Background()
			defer func() {
				if err := locks.Unlock(ctx, name); err != nil {
					slog.Error("Failed to release job lock", slog.String("job", name), slog.Any("error", err))
				}
			}()

			slog.Info("Job started", slog.String("job", name), slog.String("triggeredBy", triggeredBy))
			if _, err := job.Run(ctx); err != nil {
				slog.Error("Job failed", slog.String("job", name), slog.Any("error", err))
			}
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(map[string]string{"status": "started", "job": name}); err != nil {
			slog.Error("Failed to encode response", slog.Any("error", err))
		}
	}
}
