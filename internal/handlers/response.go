package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/dimitrije/teamforge-api/internal/apperror"
	"github.com/dimitrije/teamforge-api/internal/middleware"
	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/pkg/dto"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// base carries what every handler needs to answer with the shared envelope.
type base struct {
	log *zap.Logger
}

func newBase(log *zap.Logger) base {
	if log == nil {
		log = zap.NewNop()
	}
	return base{log: log.Named("http")}
}

func respond(c *drift.Context, status int, data any) {
	_ = c.JSON(status, dto.Response{Success: true, Data: data})
}

func respondMessage(c *drift.Context, status int, msg string) {
	_ = c.JSON(status, dto.Response{Success: true, Message: msg})
}

func reject(c *drift.Context, status int, code, msg string) {
	_ = c.JSON(status, dto.Response{Success: false, Code: code, Message: msg})
}

func badRequest(c *drift.Context, msg string) {
	reject(c, http.StatusBadRequest, "BAD_REQUEST", msg)
}

// fail maps a service error onto its status code. Unclassified errors are
// logged and reported without detail.
func (b base) fail(c *drift.Context, err error) {
	kind := apperror.KindOf(err)
	status := apperror.HTTPStatus(kind)
	if status == http.StatusInternalServerError {
		b.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}
	reject(c, status, apperror.CodeOf(err), apperror.MessageOf(err))
}

// bind decodes the body into v and validates it, answering 400 on failure.
func bind(c *drift.Context, v any) bool {
	if err := c.BindJSON(v); err != nil {
		badRequest(c, "invalid request body")
		return false
	}
	if err := validate.Struct(v); err != nil {
		badRequest(c, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
	return "invalid request body"
}

func pathID(c *drift.Context, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		badRequest(c, fmt.Sprintf("invalid %s id", label))
		return uuid.Nil, false
	}
	return id, true
}

func caller(c *drift.Context) (uuid.UUID, bool) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		reject(c, http.StatusUnauthorized, "UNAUTHENTICATED", "not authenticated")
		return uuid.Nil, false
	}
	return userID, true
}

func adminCaller(c *drift.Context) (uuid.UUID, bool) {
	userID, ok := caller(c)
	if !ok {
		return uuid.Nil, false
	}
	if middleware.GetUserRole(c) != models.RoleAdmin {
		reject(c, http.StatusForbidden, "FORBIDDEN", "admin role required")
		return uuid.Nil, false
	}
	return userID, true
}
