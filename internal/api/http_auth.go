package api

import (
	"net/http"

	"marketplace/internal/entity"
	"marketplace/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func (h *HTTPHandler) Register(c *gin.Context) {
	var req entity.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	user, err := h.credentials.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.RegisterResponse{
		Message: "user registered",
		UserID:  user.ID,
	})
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req entity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	user, err := h.credentials.Authenticate(ctx, req.Identifier, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, expiresAt, err := h.authManager.Issue(user)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to issue token")
		InternalError(c, "failed to create session")
		return
	}

	c.JSON(http.StatusOK, entity.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        makeUserSummary(user),
	})
}

func (h *HTTPHandler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, ErrCodeUnauthorized, "authentication required")
		return
	}
	c.JSON(http.StatusOK, makeUserSummary(user))
}

func makeUserSummary(user *entity.DbUser) entity.UserSummary {
	if user == nil {
		return entity.UserSummary{}
	}
	return entity.UserSummary{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.EmailValue(),
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
