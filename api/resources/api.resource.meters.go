// FilePath: api/resources/api.resource.meters.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/fieldworks/meterhub/api/middleware"
	"github.com/fieldworks/meterhub/internal/errors"
	"github.com/fieldworks/meterhub/internal/hubservice"
	"github.com/fieldworks/meterhub/internal/models"
	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"
)

// MeterHandlers encapsulates the meter-related HTTP handlers
type MeterHandlers struct {
	hubservice *hubservice.HubService
}

// CreateMeter registers a new meter
func (h *MeterHandlers) CreateMeter(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	caller := middleware.CallerFrom(r.Context())

	var meter models.Meter
	if err := json.NewDecoder(r.Body).Decode(&meter); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.hubservice.CreateMeter(r.Context(), caller, &meter); err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusCreated, meter)
}

// GetMeter returns one meter by id
func (h *MeterHandlers) GetMeter(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)
	caller := middleware.CallerFrom(r.Context())

	meter, err := h.hubservice.GetMeter(r.Context(), caller, id)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, meter)
}

// ListMeters returns a paginated list of meters
func (h *MeterHandlers) ListMeters(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	caller := middleware.CallerFrom(r.Context())
	offset, limit := getPaginationParams(r)

	meters, err := h.hubservice.ListMeters(r.Context(), caller, offset, limit)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, meters)
}

// UpdateMeter updates an existing meter
func (h *MeterHandlers) UpdateMeter(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)
	caller := middleware.CallerFrom(r.Context())

	var meter models.Meter
	if err := json.NewDecoder(r.Body).Decode(&meter); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	meter.ID = id
	if err := h.hubservice.UpdateMeter(r.Context(), caller, &meter); err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, meter)
}

// DeleteMeter removes a meter
func (h *MeterHandlers) DeleteMeter(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)
	caller := middleware.CallerFrom(r.Context())

	if err := h.hubservice.DeleteMeter(r.Context(), caller, id); err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// FleetStats returns fleet-wide consumption statistics
func (h *MeterHandlers) FleetStats(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	caller := middleware.CallerFrom(r.Context())

	stats, err := h.hubservice.FleetStats(r.Context(), caller)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}
