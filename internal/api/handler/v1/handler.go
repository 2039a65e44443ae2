package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/medal-board-api/internal/api/handler/v1/response"
)

// pathID parses a positive integer path parameter. It renders a 400 and
// returns false when the value is malformed.
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("%s must be a positive integer", name)))
		return 0, false
	}

	return uint(id), true
}

// queryID parses an optional positive integer query parameter.
func queryID(ctx *gin.Context, name string) (*uint, bool) {
	raw, ok := ctx.GetQuery(name)
	if !ok || raw == "" {
		return nil, true
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("%s must be a positive integer", name)))
		return nil, false
	}

	v := uint(id)
	return &v, true
}

// bind decodes the JSON body and runs its Validate method.
func bind(ctx *gin.Context, req interface{ Validate() error }) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		renderBindErr(ctx, err)
		return false
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return false
	}

	return true
}

func renderBindErr(ctx *gin.Context, err error) {
	response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid request body: %w", err)))
}

// renderServiceErr maps err by kind and logs the call path for 5xx.
func renderServiceErr(ctx *gin.Context, where string, err error) {
	response.RenderErr(ctx, response.ErrFromDomain(fmt.Errorf("%s -> %w", where, err)))
}

func noContent(ctx *gin.Context) {
	ctx.Status(http.StatusNoContent)
}
