package response

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vietanh2810/medal-board-api/internal/domain"
)

// Err is the body of every failed request.
type Err struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string             `json:"status_text"`
	ErrorText  string             `json:"error_text,omitempty"`
	Field      string             `json:"field,omitempty"`
	Items      []domain.ItemError `json:"items,omitempty"`
}

func (e *Err) Error() string {
	return e.ErrorText
}

func newErr(status int, err error) *Err {
	e := &Err{
		Err:            err,
		HTTPStatusCode: status,
		StatusText:     http.StatusText(status),
	}
	if err != nil {
		e.ErrorText = err.Error()
	}
	return e
}

func ErrBadRequest(err error) *Err {
	return newErr(http.StatusBadRequest, err)
}

func ErrWrongCredentials(err error) *Err {
	return newErr(http.StatusUnauthorized, err)
}

func ErrUnauthorized(err error) *Err {
	return newErr(http.StatusUnauthorized, err)
}

func ErrNotFound(err error) *Err {
	return newErr(http.StatusNotFound, err)
}

func ErrConflict(err error) *Err {
	return newErr(http.StatusConflict, err)
}

func ErrServiceUnavailable(err error) *Err {
	e := newErr(http.StatusServiceUnavailable, err)
	e.ErrorText = "storage is temporarily unavailable"
	return e
}

func ErrInternalServerError(err error) *Err {
	e := newErr(http.StatusInternalServerError, err)
	e.ErrorText = ""
	return e
}

// ErrFromDomain maps a service error onto its HTTP status by error kind.
// Client-fixable errors keep the reason and field; the rest hide the chain.
func ErrFromDomain(err error) *Err {
	var e *Err
	switch {
	case errors.Is(err, domain.ErrStorage):
		return ErrServiceUnavailable(err)
	case errors.Is(err, domain.ErrValidation):
		e = ErrBadRequest(err)
	case errors.Is(err, domain.ErrNotFound):
		e = ErrNotFound(err)
	case errors.Is(err, domain.ErrConflict):
		e = ErrConflict(err)
	default:
		return ErrInternalServerError(err)
	}

	var se *domain.SubmissionError
	if errors.As(err, &se) {
		e.ErrorText = se.Error()
		e.Items = se.Items
		return e
	}

	var de *domain.Error
	if errors.As(err, &de) {
		e.ErrorText = de.Reason
		e.Field = de.Field
	}
	return e
}

// RenderErr writes e and aborts the chain. Server-side failures are logged
// with the request id.
func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error(e.StatusText,
			zap.String("request_id", requestid.Get(ctx)),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Error(e.Err),
		)
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}
