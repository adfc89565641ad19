// FilePath: api/resources/api.resource.auth.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/fieldworks/meterhub/internal/errors"
	"github.com/fieldworks/meterhub/internal/hubservice"
	nuts "github.com/vaudience/go-nuts"
)

// AuthHandlers encapsulates the authentication HTTP handlers
type AuthHandlers struct {
	hubservice *hubservice.HubService
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type signOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// SignIn performs a password login and returns the token pair
func (h *AuthHandlers) SignIn(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}
	if req.Email == "" || req.Password == "" {
		respondWithError(w, errors.NewValidationError("email and password are required", nil).WithRequestID(requestID))
		return
	}

	token, err := h.hubservice.Gateway.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, token)
}

// SignUp registers a new account with its profile
func (h *AuthHandlers) SignUp(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}
	if req.Email == "" || req.Password == "" {
		respondWithError(w, errors.NewValidationError("email and password are required", nil).WithRequestID(requestID))
		return
	}

	profile, err := h.hubservice.Gateway.Auth.SignUp(r.Context(), req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusCreated, profile)
}

// SignOut revokes the caller's refresh token
func (h *AuthHandlers) SignOut(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var req signOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.hubservice.Gateway.Auth.SignOut(r.Context(), req.RefreshToken); err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
