package handlers

import (
	"net/http"

	"github.com/dimitrije/teamforge-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type UserHandler struct {
	base
	userService UserServiceInterface
}

func NewUserHandler(userService UserServiceInterface, log *zap.Logger) *UserHandler {
	return &UserHandler{base: newBase(log), userService: userService}
}

func (h *UserHandler) GetMe(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

// Create registers a participant account. Admin only.
func (h *UserHandler) Create(c *drift.Context) {
	if _, ok := adminCaller(c); !ok {
		return
	}

	var req dto.CreateUserRequest
	if !bind(c, &req) {
		return
	}

	user, err := h.userService.Create(c.Request.Context(), req.Email, req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, user)
}
