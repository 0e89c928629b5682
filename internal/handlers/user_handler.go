package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/pollstream/pollstream-api/internal/logger"
	"github.com/pollstream/pollstream-api/internal/middleware"
	"github.com/pollstream/pollstream-api/internal/response"
	"github.com/pollstream/pollstream-api/internal/services"
)

// UserHandler serves registration, login and profile endpoints.
type UserHandler struct {
	userService *services.UserService
	log         *log.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		log:         logger.Handler("user_handler"),
	}
}

// TokenResponse carries an issued access token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register handles POST /api/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	u, err := h.userService.Register(req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "user registered", u)
}

// Login handles POST /api/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	u, err := h.userService.Authenticate(req.Email, req.Password)
	if err != nil {
		// Credential failures are deliberately indistinguishable from
		// unknown accounts.
		response.UnauthorizedError(c, "invalid email or password")
		return
	}

	token, err := h.userService.IssueToken(u)
	if err != nil {
		h.log.Error("failed to issue token", "user_id", u.ID, "error", err)
		response.InternalServerError(c, "failed to issue token")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "login successful", TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// Me handles GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.UnauthorizedError(c, "could not validate credentials")
		return
	}

	u, err := h.userService.GetByID(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", u)
}
