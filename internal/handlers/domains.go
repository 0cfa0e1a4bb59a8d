package handlers

import (
	"errors"
	"net/http"

	"github.com/benvon/cinemate/internal/catalog"
	"github.com/benvon/cinemate/internal/models"
	"github.com/benvon/cinemate/internal/services/recommender"
	"github.com/gorilla/mux"
)

// DomainHandler exposes the registered domain schemas
type DomainHandler struct {
	svc *recommender.Service
}

// NewDomainHandler creates a new domain handler
func NewDomainHandler(svc *recommender.Service) *DomainHandler {
	return &DomainHandler{svc: svc}
}

// RegisterRoutes registers domain routes on a router already prefixed with /domains
func (h *DomainHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListDomains).Methods(http.MethodGet)
	r.HandleFunc("/{domain}", h.GetDomain).Methods(http.MethodGet)
}

// DomainResponse is a domain schema with the values its widgets start at
type DomainResponse struct {
	*catalog.Domain
	Defaults models.PreferenceSet `json:"defaults"`
}

func newDomainResponse(d *catalog.Domain) DomainResponse {
	return DomainResponse{Domain: d, Defaults: d.Defaults()}
}

// ListDomains lists every registered domain
func (h *DomainHandler) ListDomains(w http.ResponseWriter, r *http.Request) {
	domains := h.svc.Domains()
	out := make([]DomainResponse, 0, len(domains))
	for _, d := range domains {
		out = append(out, newDomainResponse(d))
	}
	respondJSON(w, http.StatusOK, out)
}

// GetDomain returns one domain schema
func (h *DomainHandler) GetDomain(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Domain(mux.Vars(r)["domain"])
	if errors.Is(err, catalog.ErrUnknownDomain) {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Domain not found")
		return
	}
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred")
		return
	}
	respondJSON(w, http.StatusOK, newDomainResponse(d))
}
