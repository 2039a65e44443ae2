package v1

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/medal-board-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/medal-board-api/internal/domain"
)

// HandleHealthcheck godoc
// @Summary      Liveness check
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Health
// @Router       / [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, response.Health{Status: "ok"})
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HandleReadiness godoc
// @Summary      Readiness check, pings Postgres
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Health
// @Failure      503  {object}  response.Err
// @Router       /healthz [get]
func (h *HealthHandler) HandleReadiness(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(pingCtx); err != nil {
		err = fmt.Errorf("v1.HandleReadiness -> h.db.PingContext -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(domain.Storage(err)))
		return
	}

	ctx.JSON(http.StatusOK, response.Health{Status: "ok"})
}
