package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/medal-board-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/medal-board-api/internal/domain"
)

type SettingsService interface {
	Get(ctx context.Context) (domain.ScoreSettings, error)
	Update(ctx context.Context, patch domain.SettingsPatch) (domain.ScoreSettings, error)
}

type SettingsHandler struct {
	svc SettingsService
}

func NewSettingsHandler(svc SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// HandleGetSettings godoc
// @Summary      Current point values per medal kind
// @Tags         settings
// @Produce      json
// @Success      200  {object}  domain.ScoreSettings
// @Failure      503  {object}  response.Err
// @Router       /score-settings [get]
func (h *SettingsHandler) HandleGetSettings(ctx *gin.Context) {
	settings, err := h.svc.Get(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetSettings -> h.svc.Get", err)
		return
	}

	ctx.JSON(http.StatusOK, settings)
}

// HandleUpdateSettings godoc
// @Summary      Change point values
// @Description  Fields left out keep their value. Medals already recorded keep their points.
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request  body      request.UpdateSettingsRequest true "request body"
// @Success      200      {object}  domain.ScoreSettings
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Router       /score-settings [put]
// @Security BearerAuth
func (h *SettingsHandler) HandleUpdateSettings(ctx *gin.Context) {
	var req request.UpdateSettingsRequest
	if !bind(ctx, &req) {
		return
	}

	updated, err := h.svc.Update(ctx.Request.Context(), domain.SettingsPatch{
		GoldPoints:      req.GoldPoints,
		SilverPoints:    req.SilverPoints,
		BronzePoints:    req.BronzePoints,
		NonWinnerPoints: req.NonWinnerPoints,
		NoEntryPoints:   req.NoEntryPoints,
	})
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdateSettings -> h.svc.Update", err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}
