package handler

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/taskdeck/backend/internal/model"
	"github.com/taskdeck/backend/internal/observability"
	"github.com/taskdeck/backend/internal/service"
)

const credentialsError = "could not validate credentials"

var registerTagNames sync.Once

// useJSONFieldNames makes validator report json/form names instead of Go
// field names.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(service.FieldName)
	})
}

// writeUnauthorized - the single 401 shape, with the bearer challenge.
func writeUnauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Error: message})
}

func writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.AbortWithStatusJSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request", Fields: service.FieldErrors(verrs)})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request body"})
}

// writeError maps service errors onto status codes.
func writeError(c *gin.Context, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request", Fields: verr.Fields})
	case errors.Is(err, service.ErrInvalidInput):
		c.AbortWithStatusJSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
	case errors.Is(err, service.ErrUnauthorized):
		writeUnauthorized(c, credentialsError)
	case errors.Is(err, service.ErrUsernameTaken):
		c.AbortWithStatusJSON(http.StatusConflict, model.ErrorResponse{Error: "username already taken"})
	case errors.Is(err, service.ErrEmailTaken):
		c.AbortWithStatusJSON(http.StatusConflict, model.ErrorResponse{Error: "email already registered"})
	case errors.Is(err, service.ErrConflict):
		c.AbortWithStatusJSON(http.StatusConflict, model.ErrorResponse{Error: "conflict"})
	case errors.Is(err, service.ErrTodoNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, model.ErrorResponse{Error: "todo not found"})
	default:
		writeInternalError(c, err)
	}
}

// writeInternalError logs and reports err; the client only sees a generic body.
func writeInternalError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	zerolog.Ctx(ctx).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	observability.CaptureError(ctx, err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse{Error: "internal server error"})
}
