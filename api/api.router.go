package api

import (
	"net/http"

	"github.com/fieldworks/meterhub/api/middleware"
	"github.com/fieldworks/meterhub/api/resources"
	"github.com/fieldworks/meterhub/internal/hubservice"
	"github.com/fieldworks/meterhub/internal/models"
	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"
)

type Router struct {
	router    *mux.Router
	auth      *middleware.AuthMiddleware
	resources *resources.Resources
}

func NewRouter(svc *hubservice.HubService) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		auth:      middleware.NewAuthMiddleware(svc.Gateway.Auth),
		resources: resources.NewResources(svc),
	}

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/auth/signin", r.resources.Auth.SignIn).Methods(http.MethodPost)
	api.HandleFunc("/auth/signup", r.resources.Auth.SignUp).Methods(http.MethodPost)
	api.HandleFunc("/auth/signout", r.resources.Auth.SignOut).Methods(http.MethodPost)
	api.HandleFunc("/photos/{path:.+}", r.resources.Photos.GetPhoto).Methods(http.MethodGet)

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(r.auth.Authenticate)

	// Readings
	readings := protected.PathPrefix("/readings").Subrouter()
	readings.HandleFunc("", r.resources.Readings.ListReadings).Methods(http.MethodGet)
	readings.HandleFunc("", r.resources.Readings.SubmitReading).Methods(http.MethodPost)
	readings.HandleFunc("/stats", r.resources.Readings.ConsumptionStats).Methods(http.MethodGet)
	readings.HandleFunc("/{id}", r.resources.Readings.GetReading).Methods(http.MethodGet)
	readings.HandleFunc("/{id}", r.resources.Readings.DeleteReading).Methods(http.MethodDelete)

	// Review is admin only
	review := protected.PathPrefix("/readings").Subrouter()
	review.Use(r.auth.RequireRoles(models.RoleAdmin))
	review.HandleFunc("/{id}/status", r.resources.Readings.ReviewReading).Methods(http.MethodPut)

	// Meters
	meters := protected.PathPrefix("/meters").Subrouter()
	meters.HandleFunc("", r.resources.Meters.ListMeters).Methods(http.MethodGet)
	meters.HandleFunc("", r.resources.Meters.CreateMeter).Methods(http.MethodPost)
	meters.HandleFunc("/stats", r.resources.Meters.FleetStats).Methods(http.MethodGet)
	meters.HandleFunc("/{id}", r.resources.Meters.GetMeter).Methods(http.MethodGet)
	meters.HandleFunc("/{id}", r.resources.Meters.UpdateMeter).Methods(http.MethodPut)
	meters.HandleFunc("/{id}", r.resources.Meters.DeleteMeter).Methods(http.MethodDelete)

	// Photo deletion is admin only
	photos := protected.PathPrefix("/photos").Subrouter()
	photos.Use(r.auth.RequireRoles(models.RoleAdmin))
	photos.HandleFunc("/{path:.+}", r.resources.Photos.DeletePhoto).Methods(http.MethodDelete)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok","version":"` + nuts.GetVersion() + `"}`))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
