package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bourse/internal/errors"
	"bourse/internal/middleware"
	"bourse/internal/services"
)

// AuthHandler handles team login requests
type AuthHandler struct {
	playerService services.PlayerServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(playerService services.PlayerServicer) *AuthHandler {
	return &AuthHandler{playerService: playerService}
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	TeamName string `json:"team_name" binding:"required,max=50"`
}

// PlayerResponse represents the player data in the response
type PlayerResponse struct {
	PlayerID uint    `json:"player_id"`
	Name     string  `json:"name"`
	Balance  float64 `json:"balance"`
}

// AuthResponse represents the authentication response with token
type AuthResponse struct {
	Token  string         `json:"token"`
	Player PlayerResponse `json:"player"`
}

// Login handles team login. A new team name creates the player on the spot;
// a returning team picks up its existing balance and portfolio.
// @Summary     Login or register a team
// @Description Authenticate a team by name, creating the player on first login
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "Team login data"
// @Success     200 {object} AuthResponse "Player logged in and token generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	player, err := h.playerService.LoginOrCreate(req.TeamName)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := middleware.GenerateToken(player)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"player": gin.H{
			"player_id": player.ID,
			"name":      player.Name,
			"balance":   player.Balance,
		},
	})
}

// GetProfile returns the authenticated player's state
// @Summary     Get player profile
// @Description Get the authenticated player's balance and portfolio value
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} PlayerResponse "Player profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	playerID, err := getPlayerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	player, err := h.playerService.GetPlayerByID(playerID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"player": player})
}
