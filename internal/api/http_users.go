package api

import (
	"net/http"
	"strconv"
	"strings"

	"marketplace/internal/entity"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) ListUsers(c *gin.Context) {
	var query entity.UserQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	users, meta, err := h.credentials.ListUsers(ctx, CurrentUser(c), query)
	if err != nil {
		respondError(c, err)
		return
	}

	response := entity.UserListResponse{
		Users: make([]entity.UserSummary, 0, len(users)),
		Meta:  meta,
	}
	for idx := range users {
		response.Users = append(response.Users, makeUserSummary(&users[idx]))
	}

	c.JSON(http.StatusOK, response)
}

// GetUserProfile is the public view of an account. Email is left out.
func (h *HTTPHandler) GetUserProfile(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	user, err := h.credentials.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	summary := makeUserSummary(user)
	summary.Email = ""
	c.JSON(http.StatusOK, summary)
}

func (h *HTTPHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req entity.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}
	if req.Role == nil && req.IsActive == nil {
		BadRequest(c, ErrCodeInvalidRequest, "no updatable fields provided")
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	user, err := h.credentials.UpdateUser(ctx, CurrentUser(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, makeUserSummary(user))
}

func (h *HTTPHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	if err := h.credentials.DeleteUser(ctx, CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

// parseIDParam reads a positive integer path parameter, responding with 400
// when it is malformed.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		ErrorResponseWithFields(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid "+name, map[string]string{name: "must be a positive integer"})
		return 0, false
	}
	return uint(value), true
}
