// FilePath: api/resources/api.resource.photos.go
package resources

import (
	"net/http"
	"strings"

	"github.com/fieldworks/meterhub/internal/hubservice"
	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"
)

// PhotoHandlers serves stored photo blobs. Paths mirror the public-URL
// layout the pipeline writes into reading records.
type PhotoHandlers struct {
	hubservice *hubservice.HubService
}

// GetPhoto streams one stored photo
func (h *PhotoHandlers) GetPhoto(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	path := vars["path"]
	requestID := nuts.NID("req", 12)

	data, err := h.hubservice.Gateway.Blobs.Open(r.Context(), path)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	w.Header().Set("Content-Type", photoContentType(path))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// DeletePhoto removes one stored photo (admin only, routed accordingly)
func (h *PhotoHandlers) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	path := vars["path"]
	requestID := nuts.NID("req", 12)

	if err := h.hubservice.Gateway.Blobs.Delete(r.Context(), path); err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func photoContentType(path string) string {
	if strings.HasSuffix(path, ".png") {
		return "image/png"
	}
	return "image/jpeg"
}
