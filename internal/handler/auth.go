package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/BuzzLyutic/task-sync/internal/auth"
	"github.com/BuzzLyutic/task-sync/internal/repo"
	"github.com/BuzzLyutic/task-sync/pkg/respond"
)

type AuthHandler struct {
	repo   repo.UserRepository
	tokens *auth.Manager
	logger *zap.Logger
}

func NewAuthHandler(userRepo repo.UserRepository, tokens *auth.Manager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		repo:   userRepo,
		tokens: tokens,
		logger: logger,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type session struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Email) == "" || len(req.Password) < 6 {
		respond.Error(w, r, http.StatusBadRequest, "validation error")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	user, err := h.repo.CreateUser(r.Context(), req.Email, string(hashed))
	if err != nil {
		if errors.Is(err, repo.ErrorConflict) {
			respond.Error(w, r, http.StatusConflict, "email already registered")
			return
		}
		h.logger.Error("create user", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	respond.JSON(w, r, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	user, err := h.repo.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repo.ErrorNotFound) {
			respond.Error(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		h.logger.Error("get user", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		respond.Error(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.logger.Error("issue token", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	respond.JSON(w, r, http.StatusOK, session{Token: token, UserID: user.ID})
}
