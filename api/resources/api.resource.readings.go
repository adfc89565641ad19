// FilePath: api/resources/api.resource.readings.go
package resources

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/fieldworks/meterhub/api/middleware"
	"github.com/fieldworks/meterhub/internal/capture"
	"github.com/fieldworks/meterhub/internal/errors"
	"github.com/fieldworks/meterhub/internal/hubservice"
	"github.com/fieldworks/meterhub/internal/models"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	nuts "github.com/vaudience/go-nuts"
)

const maxSubmissionMemory = 32 << 20 // 32MB

var queryDecoder = schema.NewDecoder()

func init() {
	queryDecoder.IgnoreUnknownKeys(true)
	// created_after / created_before arrive as RFC 3339 strings
	queryDecoder.RegisterConverter(time.Time{}, func(value string) reflect.Value {
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(t)
	})
}

// ReadingHandlers encapsulates the reading-related HTTP handlers
type ReadingHandlers struct {
	hubservice *hubservice.HubService
}

// SubmitReading accepts a multipart reading submission: form fields plus
// the photo files. The form is loaded into a capture session so the same
// validation and pipeline path runs as for any other client.
func (h *ReadingHandlers) SubmitReading(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	caller := middleware.CallerFrom(r.Context())

	if err := r.ParseMultipartForm(maxSubmissionMemory); err != nil {
		respondWithError(w, errors.NewValidationError("invalid multipart form", err).WithRequestID(requestID))
		return
	}

	sess := h.hubservice.NewCaptureSession()
	sess.MeterNumber = r.FormValue("meter_number")
	sess.Notes = r.FormValue("notes")

	if raw := r.FormValue("meter_value"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondWithError(w, errors.NewValidationError("meter value is not a number", err).WithRequestID(requestID))
			return
		}
		sess.SetMeterValue(value)
	}

	lat, lon := r.FormValue("latitude"), r.FormValue("longitude")
	if lat != "" || lon != "" {
		if err := sess.SetLocationManually(lat, lon); err != nil {
			respondWithAPIError(w, err, requestID)
			return
		}
	}

	if err := attachFormPhoto(r, sess, "meter_photo", capture.SlotMeter); err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}
	if err := attachFormPhoto(r, sess, "facade_photo", capture.SlotFacade); err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	reading, err := h.hubservice.SubmitReading(r.Context(), caller, sess)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}
	sess.Reset()

	respondWithJSON(w, http.StatusCreated, reading)
}

// GetReading returns one reading by id
func (h *ReadingHandlers) GetReading(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)
	caller := middleware.CallerFrom(r.Context())

	reading, err := h.hubservice.GetReading(r.Context(), caller, id)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, reading)
}

// ListReadings returns a paginated, filtered list of readings
func (h *ReadingHandlers) ListReadings(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	caller := middleware.CallerFrom(r.Context())
	offset, limit := getPaginationParams(r)

	var filters models.ReadingFilters
	if err := queryDecoder.Decode(&filters, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid filter parameters", err).WithRequestID(requestID))
		return
	}

	readings, err := h.hubservice.ListReadings(r.Context(), caller, filters, offset, limit)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, readings)
}

// DeleteReading removes a reading
func (h *ReadingHandlers) DeleteReading(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)
	caller := middleware.CallerFrom(r.Context())

	if err := h.hubservice.DeleteReading(r.Context(), caller, id); err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type reviewRequest struct {
	Status models.ReadingStatus `json:"status"`
	Notes  string               `json:"notes"`
}

// ReviewReading sets the review status of a reading (admin only)
func (h *ReadingHandlers) ReviewReading(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)
	caller := middleware.CallerFrom(r.Context())

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.hubservice.ReviewReading(r.Context(), caller, id, req.Status, req.Notes); err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ConsumptionStats returns the consumption summary over the caller's
// visible readings
func (h *ReadingHandlers) ConsumptionStats(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	caller := middleware.CallerFrom(r.Context())

	summary, err := h.hubservice.ConsumptionSummary(r.Context(), caller)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// attachFormPhoto reads an optional multipart file into a session slot.
// A missing file is not an error; validation decides later whether the
// slot was required.
func attachFormPhoto(r *http.Request, sess *capture.Session, field string, slot capture.PhotoSlot) error {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil
		}
		return errors.NewValidationError("invalid "+field+" upload", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return errors.NewValidationError("failed to read "+field, err)
	}

	sess.AttachPhoto(slot, &capture.Photo{
		Data:     data,
		MimeType: photoMimeType(header),
	})
	return nil
}

func photoMimeType(header *multipart.FileHeader) string {
	if mt := header.Header.Get("Content-Type"); mt != "" {
		return mt
	}
	return "image/jpeg"
}
