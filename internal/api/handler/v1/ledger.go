package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/medal-board-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/medal-board-api/internal/domain"
	"github.com/vietanh2810/medal-board-api/internal/service"
)

type LedgerService interface {
	Record(ctx context.Context, req service.MedalRequest) (domain.Medal, error)
	List(ctx context.Context, filter domain.MedalFilter) ([]domain.Medal, error)
	Get(ctx context.Context, id uint) (domain.Medal, error)
	Delete(ctx context.Context, id uint) error
}

type SubmissionService interface {
	Submit(ctx context.Context, sub domain.ResultSubmission) (service.SubmissionResult, error)
}

type LedgerHandler struct {
	svc        LedgerService
	submission SubmissionService
}

func NewLedgerHandler(svc LedgerService, submission SubmissionService) *LedgerHandler {
	return &LedgerHandler{
		svc:        svc,
		submission: submission,
	}
}

// HandleListMedals godoc
// @Summary      List ledger rows
// @Tags         medals
// @Produce      json
// @Param        eventId  query     int  false  "Filter by event"
// @Param        teamId   query     int  false  "Filter by team"
// @Success      200      {array}   domain.Medal
// @Failure      400      {object}  response.Err
// @Router       /medals [get]
func (h *LedgerHandler) HandleListMedals(ctx *gin.Context) {
	eventID, ok := queryID(ctx, "eventId")
	if !ok {
		return
	}
	teamID, ok := queryID(ctx, "teamId")
	if !ok {
		return
	}

	medals, err := h.svc.List(ctx.Request.Context(), domain.MedalFilter{EventID: eventID, TeamID: teamID})
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListMedals -> h.svc.List", err)
		return
	}

	ctx.JSON(http.StatusOK, medals)
}

// HandleGetMedal godoc
// @Summary      Get one ledger row
// @Tags         medals
// @Produce      json
// @Param        id   path      int  true  "Medal ID"
// @Success      200  {object}  domain.Medal
// @Failure      404  {object}  response.Err
// @Router       /medals/{id} [get]
func (h *LedgerHandler) HandleGetMedal(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	medal, err := h.svc.Get(ctx.Request.Context(), id)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetMedal -> h.svc.Get", err)
		return
	}

	ctx.JSON(http.StatusOK, medal)
}

// HandleCreateMedal godoc
// @Summary      Record one medal
// @Description  Points default to the current score settings and are frozen on the row.
// @Tags         medals
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateMedalRequest true "request body"
// @Success      201      {object}  domain.Medal
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /medals [post]
// @Security BearerAuth
func (h *LedgerHandler) HandleCreateMedal(ctx *gin.Context) {
	var req request.CreateMedalRequest
	if !bind(ctx, &req) {
		return
	}

	medal, err := h.svc.Record(ctx.Request.Context(), service.MedalRequest{
		EventID:   req.EventID,
		TeamID:    req.TeamID,
		MedalType: domain.MedalType(req.MedalType),
		Points:    req.Points,
	})
	if err != nil {
		renderServiceErr(ctx, "v1.HandleCreateMedal -> h.svc.Record", err)
		return
	}

	ctx.JSON(http.StatusCreated, medal)
}

// HandleDeleteMedal godoc
// @Summary      Remove one ledger row
// @Tags         medals
// @Param        id   path  int  true  "Medal ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Router       /medals/{id} [delete]
// @Security BearerAuth
func (h *LedgerHandler) HandleDeleteMedal(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), id); err != nil {
		renderServiceErr(ctx, "v1.HandleDeleteMedal -> h.svc.Delete", err)
		return
	}

	noContent(ctx)
}

// HandleSubmitResults godoc
// @Summary      Submit the full outcome of an event
// @Description  All medal rows and the COMPLETED status are stored together or not at all.
// @Description  Rejections list every failing item.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        id       path      int  true  "Event ID"
// @Param        request  body      request.SubmitResultsRequest true "request body"
// @Success      201      {object}  service.SubmissionResult
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /events/{id}/results [post]
// @Security BearerAuth
func (h *LedgerHandler) HandleSubmitResults(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req request.SubmitResultsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		renderBindErr(ctx, err)
		return
	}

	result, err := h.submission.Submit(ctx.Request.Context(), domain.ResultSubmission{
		EventID:        id,
		GoldTeamID:     req.GoldTeamID,
		SilverTeamID:   req.SilverTeamID,
		BronzeTeamID:   req.BronzeTeamID,
		NonWinners:     req.NonWinners,
		NoEntryTeamIDs: req.NoEntryTeamIDs,
	})
	if err != nil {
		renderServiceErr(ctx, "v1.HandleSubmitResults -> h.submission.Submit", err)
		return
	}

	ctx.JSON(http.StatusCreated, result)
}
