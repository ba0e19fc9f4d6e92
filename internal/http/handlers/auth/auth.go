package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/GnandeepVenigalla/gd25th-backend/internal/utils/jwt"
	"github.com/GnandeepVenigalla/gd25th-backend/internal/utils/password"
	"github.com/GnandeepVenigalla/gd25th-backend/internal/utils/response"
)

type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// Login handles gallery authentication
// @Summary Authenticate with the shared gallery password
// @Description Check the shared password and return a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Gallery password"
// @Success 200 {object} LoginResponse "Authenticated successfully"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Wrong password"
// @Router /api/login [post]
func Login(passwordHash, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var loginReq LoginRequest

		err := json.NewDecoder(r.Body).Decode(&loginReq)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		// Validate request
		validate := validator.New()
		err = validate.Struct(loginReq)
		if err != nil {
			if ve, ok := err.(validator.ValidationErrors); ok {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if !password.CheckPasswordHash(loginReq.Password, passwordHash) {
			slog.Warn("Login attempt with wrong password")
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("invalid password")))
			return
		}

		token, err := jwt.CreateToken("gallery", jwtSecret)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to generate token")))
			return
		}

		response.WriteJSON(w, http.StatusOK, LoginResponse{
			Success: true,
			Token:   token,
		})
	}
}
