package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pollstream/pollstream-api/internal/domain/poll"
	"github.com/pollstream/pollstream-api/internal/logger"
	"github.com/pollstream/pollstream-api/internal/middleware"
	"github.com/pollstream/pollstream-api/internal/response"
	"github.com/pollstream/pollstream-api/internal/services"
)

// PollHandler serves poll CRUD and like/dislike endpoints.
type PollHandler struct {
	pollService *services.PollService
	log         *log.Logger
}

// NewPollHandler creates a new poll handler
func NewPollHandler(pollService *services.PollService) *PollHandler {
	return &PollHandler{
		pollService: pollService,
		log:         logger.Handler("poll_handler"),
	}
}

// Create handles POST /api/polls
func (h *PollHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.UnauthorizedError(c, "could not validate credentials")
		return
	}

	var req services.CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	created, err := h.pollService.Create(userID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "poll created", created)
}

// List handles POST /api/polls/list
func (h *PollHandler) List(c *gin.Context) {
	var req services.ListPollsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	var maybeUser *uuid.UUID
	if userID, ok := middleware.UserID(c); ok {
		maybeUser = &userID
	}

	polls, err := h.pollService.List(req, maybeUser)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", polls)
}

// ListMine handles POST /api/polls/mine
func (h *PollHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.UnauthorizedError(c, "could not validate credentials")
		return
	}

	var req services.ListPollsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	polls, err := h.pollService.ListByUser(userID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", polls)
}

// Like handles POST /api/polls/:id/like
func (h *PollHandler) Like(c *gin.Context) {
	h.react(c, h.pollService.Like)
}

// Dislike handles POST /api/polls/:id/dislike
func (h *PollHandler) Dislike(c *gin.Context) {
	h.react(c, h.pollService.Dislike)
}

// Delete handles DELETE /api/polls/:id. Only the creator or an admin may
// delete a poll.
func (h *PollHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.UnauthorizedError(c, "could not validate credentials")
		return
	}

	pollID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequestError(c, "invalid poll id")
		return
	}

	p, err := h.pollService.Get(pollID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if p.CreatedBy != userID && !middleware.IsAdmin(c) {
		response.ForbiddenError(c, "not allowed to delete this poll")
		return
	}

	if err := h.pollService.Delete(pollID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *PollHandler) react(c *gin.Context, fn func(pollID, userID uuid.UUID) (*poll.Poll, error)) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.UnauthorizedError(c, "could not validate credentials")
		return
	}

	pollID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequestError(c, "invalid poll id")
		return
	}

	updated, err := fn(pollID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", updated)
}
