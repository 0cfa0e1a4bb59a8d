package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/benvon/cinemate/internal/catalog"
	"github.com/benvon/cinemate/internal/export"
	logpkg "github.com/benvon/cinemate/internal/logger"
	"github.com/benvon/cinemate/internal/models"
	"github.com/benvon/cinemate/internal/recommend"
	"github.com/benvon/cinemate/internal/request"
	"github.com/benvon/cinemate/internal/services/recommender"
	"github.com/benvon/cinemate/internal/session"
	"github.com/benvon/cinemate/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SessionHandler handles session, preference and recommendation requests
type SessionHandler struct {
	svc    *recommender.Service
	logger *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(svc *recommender.Service, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers session routes on a router already prefixed with /sessions
func (h *SessionHandler) RegisterRoutes(r *mux.Router) {
	r.Use(sessionContext)
	r.HandleFunc("", h.CreateSession).Methods(http.MethodPost)
	r.HandleFunc("/{id}", h.GetSession).Methods(http.MethodGet)
	r.HandleFunc("/{id}", h.EnsureSession).Methods(http.MethodPut)
	r.HandleFunc("/{id}", h.DeleteSession).Methods(http.MethodDelete)
	r.HandleFunc("/{id}/preferences", h.GetPreferences).Methods(http.MethodGet)
	r.HandleFunc("/{id}/preferences", h.UpdatePreferences).Methods(http.MethodPatch)
	r.HandleFunc("/{id}/recommendations", h.GetRecommendations).Methods(http.MethodGet)
	r.HandleFunc("/{id}/recommendations", h.Generate).Methods(http.MethodPost)
	r.HandleFunc("/{id}/interactions", h.GetInteractions).Methods(http.MethodGet)
	r.HandleFunc("/{id}/interactions.csv", h.GetInteractionsCSV).Methods(http.MethodGet)
	r.HandleFunc("/{id}/exports", h.Export).Methods(http.MethodPost)
}

// sessionContext stores the path's session id on the request context
func sessionContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := mux.Vars(r)["id"]; ok {
			r = r.WithContext(request.WithSessionID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// CreateSessionRequest starts or initializes a session
type CreateSessionRequest struct {
	Domain string `json:"domain" validate:"required,domain_name"`
}

// UpdatePreferencesRequest is a partial preference set; absent keys are left unchanged
type UpdatePreferencesRequest struct {
	Selections map[string][]string     `json:"selections,omitempty" validate:"omitempty,max=16,dive,keys,criterion_key,endkeys,max=32,dive,max=100"`
	Choices    map[string]string       `json:"choices,omitempty" validate:"omitempty,max=16,dive,keys,criterion_key,endkeys,max=100"`
	Numbers    map[string]float64      `json:"numbers,omitempty" validate:"omitempty,max=16,dive,keys,criterion_key,endkeys"`
	Ranges     map[string]models.Range `json:"ranges,omitempty" validate:"omitempty,max=16,dive,keys,criterion_key,endkeys"`
}

// PreferenceSet maps the request onto the domain model, trimming free text
func (req UpdatePreferencesRequest) PreferenceSet() models.PreferenceSet {
	p := models.PreferenceSet{Numbers: req.Numbers, Ranges: req.Ranges}
	if req.Selections != nil {
		p.Selections = make(map[string][]string, len(req.Selections))
		for k, values := range req.Selections {
			clean := make([]string, 0, len(values))
			for _, v := range values {
				clean = append(clean, validation.SanitizeText(v))
			}
			p.Selections[k] = clean
		}
	}
	if req.Choices != nil {
		p.Choices = make(map[string]string, len(req.Choices))
		for k, v := range req.Choices {
			p.Choices[k] = validation.SanitizeText(v)
		}
	}
	return p
}

// PreferencesResponse carries what the user set and what the gate will see
type PreferencesResponse struct {
	Stored    models.PreferenceSet `json:"stored"`
	Effective models.PreferenceSet `json:"effective"`
}

// ExportResponse reports where the interaction log was written
type ExportResponse struct {
	Location string `json:"location"`
}

func (h *SessionHandler) decodeSessionRequest(w http.ResponseWriter, r *http.Request) (CreateSessionRequest, bool) {
	var req CreateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return req, false
	}
	if err := validation.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return req, false
	}
	return req, true
}

// CreateSession starts a session with a server generated id
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSessionRequest(w, r)
	if !ok {
		return
	}
	sess, err := h.svc.StartSession(r.Context(), req.Domain)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, sess)
}

// EnsureSession initializes the session with the path id on first access and
// returns the existing one afterwards
func (h *SessionHandler) EnsureSession(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSessionRequest(w, r)
	if !ok {
		return
	}
	sess, err := h.svc.EnsureSession(r.Context(), mux.Vars(r)["id"], req.Domain)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

// GetSession returns the whole session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Session(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

// DeleteSession ends the session
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.EndSession(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPreferences returns stored and effective preferences
func (h *SessionHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	stored, effective, err := h.svc.Preferences(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, PreferencesResponse{Stored: stored, Effective: effective})
}

// UpdatePreferences merges the request into the stored preferences
func (h *SessionHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req UpdatePreferencesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	id := mux.Vars(r)["id"]
	sess, err := h.svc.UpdatePreferences(r.Context(), id, req.PreferenceSet())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	d, err := h.svc.Domain(sess.Domain)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, PreferencesResponse{
		Stored:    sess.Preferences,
		Effective: recommender.Effective(d, sess.Preferences),
	})
}

// Generate runs the validation gate and, when it passes, replaces the recommendations
func (h *SessionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Generate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sess.Recommendations)
}

// GetRecommendations returns the current recommendation records
func (h *SessionHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.Recommendations(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if records == nil {
		records = []models.RecommendationRecord{}
	}
	respondJSON(w, http.StatusOK, records)
}

// GetInteractions returns the interaction log as JSON
func (h *SessionHandler) GetInteractions(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.Interactions(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if events == nil {
		events = []models.InteractionEvent{}
	}
	respondJSON(w, http.StatusOK, events)
}

// GetInteractionsCSV downloads the interaction log
func (h *SessionHandler) GetInteractionsCSV(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	// Buffered so a failure can still produce a JSON error
	var buf bytes.Buffer
	if err := h.svc.ExportCSV(r.Context(), id, &buf); err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(id, time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("failed_to_write_csv_response", zap.Error(err))
	}
}

// Export writes the interaction log to the configured sink
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	location, err := h.svc.ExportToSink(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, ExportResponse{Location: location})
}

// respondError maps service errors onto HTTP statuses
func (h *SessionHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSONErrorWithCode(w, http.StatusUnprocessableEntity, "Validation Failed", verr.Message, string(verr.Code))
	case errors.Is(err, recommend.ErrIncomplete):
		respondJSONErrorWithCode(w, http.StatusUnprocessableEntity, "Validation Failed", "Preferences are incomplete", "incomplete")
	case errors.Is(err, session.ErrNotFound):
		respondJSONError(w, http.StatusNotFound, "Not Found", "Session not found")
	case errors.Is(err, catalog.ErrUnknownDomain),
		errors.Is(err, catalog.ErrUnknownCriterion),
		errors.Is(err, recommender.ErrInvalidSessionID):
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, export.ErrNoSink):
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "No export destination configured")
	case errors.Is(err, recommender.ErrExportFailed):
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Export failed")
	default:
		h.logger.Error("request_failed",
			zap.String("session_id", logpkg.SanitizeID(request.SessionID(r.Context()))),
			zap.String("request_id", request.RequestID(r)),
			zap.String("path", logpkg.SanitizePath(r.URL.Path)),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred")
	}
}
