package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pollstream/pollstream-api/internal/logger"
	"github.com/pollstream/pollstream-api/internal/middleware"
	"github.com/pollstream/pollstream-api/internal/response"
	"github.com/pollstream/pollstream-api/internal/services"
)

// VoteHandler serves vote casting and lookup endpoints.
type VoteHandler struct {
	voteService *services.VoteService
	log         *log.Logger
}

// NewVoteHandler creates a new vote handler
func NewVoteHandler(voteService *services.VoteService) *VoteHandler {
	return &VoteHandler{
		voteService: voteService,
		log:         logger.Handler("vote_handler"),
	}
}

// Cast handles POST /api/votes. Casting twice for the same option is
// idempotent; casting for a different option moves the vote.
func (h *VoteHandler) Cast(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.UnauthorizedError(c, "could not validate credentials")
		return
	}

	var req services.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	pollID, err := uuid.Parse(req.PollID)
	if err != nil {
		response.BadRequestError(c, "poll_id must be a valid UUID")
		return
	}
	optionID, err := uuid.Parse(req.OptionID)
	if err != nil {
		response.BadRequestError(c, "option_id must be a valid UUID")
		return
	}

	updated, err := h.voteService.CastVote(userID, pollID, optionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "vote recorded", updated)
}

// MyVote handles GET /api/votes/poll/:id
func (h *VoteHandler) MyVote(c *gin.Context) {
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

	v, err := h.voteService.GetUserVoteForPoll(userID, pollID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if v == nil {
		response.NotFoundError(c, "no vote for this poll")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", v)
}
