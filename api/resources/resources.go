// FilePath: api/resources/resources.go
package resources

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fieldworks/meterhub/internal/errors"
	"github.com/fieldworks/meterhub/internal/hubservice"
	nuts "github.com/vaudience/go-nuts"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Auth     *AuthHandlers
	Readings *ReadingHandlers
	Meters   *MeterHandlers
	Photos   *PhotoHandlers
}

// NewResources creates a new Resources instance
func NewResources(svc *hubservice.HubService) *Resources {
	return &Resources{
		Auth:     &AuthHandlers{hubservice: svc},
		Readings: &ReadingHandlers{hubservice: svc},
		Meters:   &MeterHandlers{hubservice: svc},
		Photos:   &PhotoHandlers{hubservice: svc},
	}
}

// Helper functions

// getPaginationParams parses offset/limit as-is; the service layer owns
// defaulting and clamping.
func getPaginationParams(r *http.Request) (offset, limit int) {
	query := r.URL.Query()
	offset, _ = strconv.Atoi(query.Get("offset"))
	limit, _ = strconv.Atoi(query.Get("limit"))
	return offset, limit
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

// respondWithAPIError keeps a gateway-originated APIError intact instead
// of rewrapping it, so error types reach the caller verbatim.
func respondWithAPIError(w http.ResponseWriter, err error, requestID string) {
	if apiErr, ok := err.(*errors.APIError); ok {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}
	respondWithError(w, errors.NewInternalError("unexpected error", err).WithRequestID(requestID))
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
