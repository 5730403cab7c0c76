package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/campusfind/apiserver/config"
	"github.com/campusfind/apiserver/internal/services"
	"github.com/campusfind/apiserver/internal/store"
	"github.com/campusfind/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 30 * 24 * time.Hour

const (
	msgDuplicateStudentNumber = "student number already registered"
	msgInvalidCredentials     = "invalid student number or password"
)

// AuthHandler provides registration, login, and profile endpoints backed
// by bcrypt password hashes and HS256 bearer tokens.
type AuthHandler struct {
	userService *services.UserService
	secret      []byte
	tokenTTL    time.Duration
}

// NewAuthHandler constructs an AuthHandler. The signing key lives only
// here; nothing else in the process reads it.
func NewAuthHandler(userService *services.UserService, cfg config.AuthConfig) *AuthHandler {
	ttl := defaultTokenTTL
	if cfg.TokenTTLDays > 0 {
		ttl = time.Duration(cfg.TokenTTLDays) * 24 * time.Hour
	}
	return &AuthHandler{
		userService: userService,
		secret:      []byte(cfg.TokenSecret),
		tokenTTL:    ttl,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, userService *services.UserService, cfg config.AuthConfig) {
	handler := NewAuthHandler(userService, cfg)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.With(handler.RequireAuth).Get("/profile", handler.GetProfile)
	r.With(handler.RequireAuth).Put("/profile", handler.UpdateProfile)
}

// RequireAuth enforces bearer authentication and injects the subject into
// the request context.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return requireAuth(h.secret)(next)
}

// RequireAuth constructs auth middleware for other routers.
func RequireAuth(cfg config.AuthConfig) func(http.Handler) http.Handler {
	return requireAuth([]byte(cfg.TokenSecret))
}

func requireAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			subject, err := parseTokenSubject(tokenString, secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), contextSubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Register creates a new account and returns the identity plus a token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.StudentNumber = strings.TrimSpace(req.StudentNumber)
	if req.Name == "" || req.StudentNumber == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	if _, err := h.userService.GetByStudentNumber(r.Context(), req.StudentNumber); err == nil {
		writeError(w, http.StatusBadRequest, msgDuplicateStudentNumber)
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user, err := h.userService.Create(r.Context(), types.User{
		Name:          req.Name,
		StudentNumber: req.StudentNumber,
		Email:         req.Email,
		Phone:         req.Phone,
		PasswordHash:  string(hashed),
	})
	if err != nil {
		// The unique index backstops the pre-check under concurrent registration.
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, msgDuplicateStudentNumber)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeIdentity(w, http.StatusCreated, user)
}

// Login verifies credentials and returns the identity plus a fresh token.
// Unknown student numbers and wrong passwords produce identical responses.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.StudentNumber = strings.TrimSpace(req.StudentNumber)
	if req.StudentNumber == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	user, err := h.userService.GetByStudentNumber(r.Context(), req.StudentNumber)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	h.writeIdentity(w, http.StatusOK, user)
}

// GetProfile returns the caller's own contact details.
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{
		Name:          user.Name,
		StudentNumber: user.StudentNumber,
		Email:         user.Email,
		Phone:         user.Phone,
	})
}

// UpdateProfile applies a partial update to name, email, and phone. The
// student number and password are not mutable here.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, strings.TrimSpace(req.Name), req.Email, req.Phone)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeIdentity(w, http.StatusOK, user)
}

type RegisterRequest struct {
	Name          string `json:"name"`
	StudentNumber string `json:"studentNumber"`
	Password      string `json:"password"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
}

type LoginRequest struct {
	StudentNumber string `json:"studentNumber"`
	Password      string `json:"password"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// IdentityResponse pairs the caller's identity with an issued token.
type IdentityResponse struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	StudentNumber string `json:"studentNumber"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Token         string `json:"token"`
}

type ProfileResponse struct {
	Name          string `json:"name"`
	StudentNumber string `json:"studentNumber"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
}

func (h *AuthHandler) writeIdentity(w http.ResponseWriter, status int, user types.User) {
	token, err := issueToken(user.ID, h.secret, h.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, status, IdentityResponse{
		ID:            user.ID,
		Name:          user.Name,
		StudentNumber: user.StudentNumber,
		Email:         user.Email,
		Phone:         user.Phone,
		Token:         token,
	})
}

func issueToken(userID int, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseTokenSubject(tokenString string, secret []byte) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("missing subject")
	}
	return claims.Subject, nil
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
