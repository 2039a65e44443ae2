package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/medal-board-api/internal/domain"
)

type ScoreboardService interface {
	Standings(ctx context.Context) ([]domain.Standing, error)
	EventResults(ctx context.Context) ([]domain.EventResult, error)
	EventResult(ctx context.Context, eventID uint) (domain.EventResult, error)
}

type ScoreboardHandler struct {
	svc ScoreboardService
}

func NewScoreboardHandler(svc ScoreboardService) *ScoreboardHandler {
	return &ScoreboardHandler{svc: svc}
}

// HandleGetScoreboard godoc
// @Summary      Ranked standings of every team
// @Tags         scoreboard
// @Produce      json
// @Success      200  {array}   domain.Standing
// @Failure      503  {object}  response.Err
// @Router       /scoreboard [get]
func (h *ScoreboardHandler) HandleGetScoreboard(ctx *gin.Context) {
	standings, err := h.svc.Standings(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetScoreboard -> h.svc.Standings", err)
		return
	}

	ctx.JSON(http.StatusOK, standings)
}

// HandleGetEventResults godoc
// @Summary      Podium of every event
// @Tags         scoreboard
// @Produce      json
// @Success      200  {array}   domain.EventResult
// @Router       /events/results [get]
func (h *ScoreboardHandler) HandleGetEventResults(ctx *gin.Context) {
	results, err := h.svc.EventResults(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetEventResults -> h.svc.EventResults", err)
		return
	}

	ctx.JSON(http.StatusOK, results)
}

// HandleGetEventResult godoc
// @Summary      Podium of one event
// @Tags         scoreboard
// @Produce      json
// @Param        id   path      int  true  "Event ID"
// @Success      200  {object}  domain.EventResult
// @Failure      404  {object}  response.Err
// @Router       /events/{id}/result [get]
func (h *ScoreboardHandler) HandleGetEventResult(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	result, err := h.svc.EventResult(ctx.Request.Context(), id)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetEventResult -> h.svc.EventResult", err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}
