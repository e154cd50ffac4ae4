package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"user-service/internal/usecase/user"
	"user-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// CreateUserRequest represents the HTTP request body for creating a user.
// Missing fields are empty strings.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// GetAllUsers handles GET /user/all
func (h *UserHandler) GetAllUsers(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)
	log.Debug("Gin GetAllUsers request")

	users, err := h.uc.GetAllUsers(c.Request.Context())
	if err != nil {
		log.Error("Gin GetAllUsers failed", zap.Error(err))
		h.internalError(c)
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetUserByID handles GET /user/:id. An id that is not a number matches
// no user, so the response is null rather than an error.
func (h *UserHandler) GetUserByID(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)
	idStr := c.Param("id")

	// Ids are millisecond timestamps, so only plain base-10 integers can match.
	// Forms like "1e3" or " 12" render null.
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		log.Debug("Gin GetUserByID with non-numeric id", zap.String("id", idStr))
		c.JSON(http.StatusOK, nil)
		return
	}

	log.Debug("Gin GetUserByID request", zap.Int64("id", id))

	u, err := h.uc.GetUserByID(c.Request.Context(), id)
	if err != nil {
		log.Error("Gin GetUserByID failed", zap.Int64("id", id), zap.Error(err))
		h.internalError(c)
		return
	}
	if u == nil {
		c.JSON(http.StatusOK, nil)
		return
	}

	c.JSON(http.StatusOK, u)
}

// CreateUser handles POST /user
func (h *UserHandler) CreateUser(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("Invalid create user body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_body",
			Message: err.Error(),
		})
		return
	}

	log.Info("Gin CreateUser request", zap.String("name", req.Name), zap.String("email", req.Email))

	created, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		log.Error("Gin CreateUser failed", zap.Error(err))
		h.internalError(c)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *UserHandler) internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
