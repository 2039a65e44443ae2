package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/medal-board-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/medal-board-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/medal-board-api/internal/domain"
)

type RosterService interface {
	CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	DeleteCategory(ctx context.Context, id uint) error

	CreateTeam(ctx context.Context, team domain.Team) (domain.Team, error)
	ListTeams(ctx context.Context) ([]domain.Team, error)
	GetTeam(ctx context.Context, id uint) (domain.Team, error)
	UpdateTeam(ctx context.Context, id uint, patch domain.TeamPatch) (domain.Team, error)
	DeleteTeam(ctx context.Context, id uint) error

	CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, id uint) (domain.Event, error)
	UpdateEvent(ctx context.Context, id uint, patch domain.EventPatch) (domain.Event, error)
	SetEventStatus(ctx context.Context, id uint, status domain.EventStatus) (domain.Event, error)
	DeleteEvent(ctx context.Context, id uint) error
}

type RosterHandler struct {
	svc RosterService
}

func NewRosterHandler(svc RosterService) *RosterHandler {
	return &RosterHandler{svc: svc}
}

// HandleListCategories godoc
// @Summary      List event categories
// @Tags         categories
// @Produce      json
// @Success      200  {array}   domain.Category
// @Router       /categories [get]
func (h *RosterHandler) HandleListCategories(ctx *gin.Context) {
	categories, err := h.svc.ListCategories(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListCategories -> h.svc.ListCategories", err)
		return
	}

	ctx.JSON(http.StatusOK, categories)
}

// HandleCreateCategory godoc
// @Summary      Create an event category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateCategoryRequest true "request body"
// @Success      201      {object}  domain.Category
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /categories [post]
// @Security BearerAuth
func (h *RosterHandler) HandleCreateCategory(ctx *gin.Context) {
	var req request.CreateCategoryRequest
	if !bind(ctx, &req) {
		return
	}

	created, err := h.svc.CreateCategory(ctx.Request.Context(), domain.Category{Name: req.Name})
	if err != nil {
		renderServiceErr(ctx, "v1.HandleCreateCategory -> h.svc.CreateCategory", err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleDeleteCategory godoc
// @Summary      Delete a category no event uses
// @Tags         categories
// @Param        id   path  int  true  "Category ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /categories/{id} [delete]
// @Security BearerAuth
func (h *RosterHandler) HandleDeleteCategory(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteCategory(ctx.Request.Context(), id); err != nil {
		renderServiceErr(ctx, "v1.HandleDeleteCategory -> h.svc.DeleteCategory", err)
		return
	}

	noContent(ctx)
}

// HandleListTeams godoc
// @Summary      List teams
// @Tags         teams
// @Produce      json
// @Success      200  {array}   domain.Team
// @Router       /teams [get]
func (h *RosterHandler) HandleListTeams(ctx *gin.Context) {
	teams, err := h.svc.ListTeams(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListTeams -> h.svc.ListTeams", err)
		return
	}

	ctx.JSON(http.StatusOK, teams)
}

// HandleGetTeam godoc
// @Summary      Get a team
// @Tags         teams
// @Produce      json
// @Param        id   path      int  true  "Team ID"
// @Success      200  {object}  domain.Team
// @Failure      404  {object}  response.Err
// @Router       /teams/{id} [get]
func (h *RosterHandler) HandleGetTeam(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	team, err := h.svc.GetTeam(ctx.Request.Context(), id)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetTeam -> h.svc.GetTeam", err)
		return
	}

	ctx.JSON(http.StatusOK, team)
}

// HandleCreateTeam godoc
// @Summary      Create a team
// @Tags         teams
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateTeamRequest true "request body"
// @Success      201      {object}  domain.Team
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /teams [post]
// @Security BearerAuth
func (h *RosterHandler) HandleCreateTeam(ctx *gin.Context) {
	var req request.CreateTeamRequest
	if !bind(ctx, &req) {
		return
	}

	created, err := h.svc.CreateTeam(ctx.Request.Context(), domain.Team{
		Name:  req.Name,
		Icon:  req.Icon,
		Color: req.Color,
	})
	if err != nil {
		renderServiceErr(ctx, "v1.HandleCreateTeam -> h.svc.CreateTeam", err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUpdateTeam godoc
// @Summary      Rename or restyle a team
// @Tags         teams
// @Accept       json
// @Produce      json
// @Param        id       path      int  true  "Team ID"
// @Param        request  body      request.UpdateTeamRequest true "request body"
// @Success      200      {object}  domain.Team
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /teams/{id} [put]
// @Security BearerAuth
func (h *RosterHandler) HandleUpdateTeam(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req request.UpdateTeamRequest
	if !bind(ctx, &req) {
		return
	}

	updated, err := h.svc.UpdateTeam(ctx.Request.Context(), id, domain.TeamPatch{
		Name:  req.Name,
		Icon:  req.Icon,
		Color: req.Color,
	})
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdateTeam -> h.svc.UpdateTeam", err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteTeam godoc
// @Summary      Delete a team without medals
// @Tags         teams
// @Param        id   path  int  true  "Team ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /teams/{id} [delete]
// @Security BearerAuth
func (h *RosterHandler) HandleDeleteTeam(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteTeam(ctx.Request.Context(), id); err != nil {
		renderServiceErr(ctx, "v1.HandleDeleteTeam -> h.svc.DeleteTeam", err)
		return
	}

	noContent(ctx)
}

// HandleListEvents godoc
// @Summary      List events
// @Tags         events
// @Produce      json
// @Success      200  {array}   domain.Event
// @Router       /events [get]
func (h *RosterHandler) HandleListEvents(ctx *gin.Context) {
	events, err := h.svc.ListEvents(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListEvents -> h.svc.ListEvents", err)
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetEvent godoc
// @Summary      Get an event
// @Tags         events
// @Produce      json
// @Param        id   path      int  true  "Event ID"
// @Success      200  {object}  domain.Event
// @Failure      404  {object}  response.Err
// @Router       /events/{id} [get]
func (h *RosterHandler) HandleGetEvent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	event, err := h.svc.GetEvent(ctx.Request.Context(), id)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetEvent -> h.svc.GetEvent", err)
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleCreateEvent godoc
// @Summary      Create a PENDING event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateEventRequest true "request body"
// @Success      201      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /events [post]
// @Security BearerAuth
func (h *RosterHandler) HandleCreateEvent(ctx *gin.Context) {
	var req request.CreateEventRequest
	if !bind(ctx, &req) {
		return
	}

	created, err := h.svc.CreateEvent(ctx.Request.Context(), domain.Event{
		Name:       req.Name,
		CategoryID: req.CategoryID,
		EventDate:  req.EventDate.Ptr(),
	})
	if err != nil {
		renderServiceErr(ctx, "v1.HandleCreateEvent -> h.svc.CreateEvent", err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUpdateEvent godoc
// @Summary      Edit an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        id       path      int  true  "Event ID"
// @Param        request  body      request.UpdateEventRequest true "request body"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /events/{id} [put]
// @Security BearerAuth
func (h *RosterHandler) HandleUpdateEvent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req request.UpdateEventRequest
	if !bind(ctx, &req) {
		return
	}

	updated, err := h.svc.UpdateEvent(ctx.Request.Context(), id, domain.EventPatch{
		Name:       req.Name,
		CategoryID: req.CategoryID,
		EventDate:  req.EventDate.Ptr(),
		ClearDate:  req.ClearEventDate,
	})
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdateEvent -> h.svc.UpdateEvent", err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleSetEventStatus godoc
// @Summary      Move an event between PENDING and COMPLETED
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        id       path      int  true  "Event ID"
// @Param        request  body      request.EventStatusRequest true "request body"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /events/{id} [post]
// @Security BearerAuth
func (h *RosterHandler) HandleSetEventStatus(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req request.EventStatusRequest
	if !bind(ctx, &req) {
		return
	}

	status, err := domain.ParseEventStatus(req.Status)
	if err != nil {
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	updated, err := h.svc.SetEventStatus(ctx.Request.Context(), id, status)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleSetEventStatus -> h.svc.SetEventStatus", err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteEvent godoc
// @Summary      Delete an event without medals
// @Tags         events
// @Param        id   path  int  true  "Event ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /events/{id} [delete]
// @Security BearerAuth
func (h *RosterHandler) HandleDeleteEvent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteEvent(ctx.Request.Context(), id); err != nil {
		renderServiceErr(ctx, "v1.HandleDeleteEvent -> h.svc.DeleteEvent", err)
		return
	}

	noContent(ctx)
}
