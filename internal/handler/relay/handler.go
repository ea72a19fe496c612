package relay

import (
	"errors"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/aurion-studio/aurion-web/backend/internal/middleware"
	"github.com/aurion-studio/aurion-web/backend/internal/model/chat"
	"github.com/aurion-studio/aurion-web/backend/internal/model/profile"
	aiService "github.com/aurion-studio/aurion-web/backend/internal/service/ai"
	relayService "github.com/aurion-studio/aurion-web/backend/internal/service/relay"
	"github.com/aurion-studio/aurion-web/backend/pkg/utils"
)

const (
	errNotConnected    = "engine not connected"
	errUpstream        = "AI response error"
	errInternal        = "internal server error"
	errProfileNotFound = "profile not found"
)

// Options tune the relay handler.
type Options struct {
	// DefaultProfile is served on the bare endpoint.
	DefaultProfile string
	// ExposeUpstreamDetail includes the provider's diagnostic text in 500
	// responses.
	ExposeUpstreamDetail bool
	// MaxBodyBytes caps the request body; 0 means 1 MiB.
	MaxBodyBytes int64
}

// Handler is the HTTP face of the relay.
type Handler struct {
	relay    *relayService.Service
	profiles profile.Store
	opts     Options
}

// New creates a relay handler.
func New(relay *relayService.Service, profiles profile.Store, opts Options) *Handler {
	if opts.DefaultProfile == "" {
		opts.DefaultProfile = profile.DefaultID
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	return &Handler{relay: relay, profiles: profiles, opts: opts}
}

// RegisterRoutes mounts the relay on path and path/{profileID} for every
// method; method handling happens in the handler.
func (h *Handler) RegisterRoutes(r chi.Router, path string) {
	r.HandleFunc(path, h.ServeHTTP)
	r.HandleFunc(path+"/{profileID}", func(w http.ResponseWriter, r *http.Request) {
		h.serve(w, r, chi.URLParam(r, "profileID"))
	})
}

// ServeHTTP serves the default profile.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.opts.DefaultProfile)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, profileID string) {
	middleware.SetCORSHeaders(w.Header())

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		utils.RespondText(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Interface("panic", rec).
				Str("stack", string(debug.Stack())).
				Str("req_id", chimiddleware.GetReqID(r.Context())).
				Msg("[relay] recovered from panic")
			utils.RespondError(w, http.StatusInternalServerError, errInternal)
		}
	}()

	p, ok := h.profiles.FindByID(profileID)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, errProfileNotFound)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes))
	if err != nil {
		log.Warn().Err(err).Msg("[relay] unreadable request body, treating as empty")
		body = nil
	}

	reply, err := h.relay.Relay(r.Context(), p, chat.ParseRequest(body))
	if err != nil {
		h.respondFailure(w, r, p, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, chat.Reply{Reply: reply})
}

func (h *Handler) respondFailure(w http.ResponseWriter, r *http.Request, p profile.Profile, err error) {
	var (
		validation *relayService.ValidationError
		limited    *relayService.RateLimitError
		upstream   *aiService.UpstreamError
	)
	reqID := chimiddleware.GetReqID(r.Context())

	switch {
	case errors.Is(err, relayService.ErrNotConnected):
		utils.RespondError(w, http.StatusInternalServerError, errNotConnected)
	case errors.As(err, &validation):
		log.Warn().Str("reason", validation.Reason).Str("profile", p.ID).Str("req_id", reqID).Msg("[relay] rejected request")
		utils.RespondError(w, http.StatusBadRequest, validation.Reason)
	case errors.As(err, &limited):
		utils.RespondJSON(w, http.StatusTooManyRequests, chat.LimitNotice{Message: limited.Message})
	case errors.As(err, &upstream):
		log.Error().
			Int("status", upstream.Status).
			Str("detail", upstream.Detail).
			Str("profile", p.ID).
			Str("req_id", reqID).
			Msg("[relay] completion provider error")
		detail := ""
		if h.opts.ExposeUpstreamDetail {
			detail = upstream.Detail
		}
		utils.RespondErrorDetail(w, http.StatusInternalServerError, errUpstream, detail)
	default:
		log.Error().Err(err).Str("profile", p.ID).Str("req_id", reqID).Msg("[relay] request failed")
		utils.RespondError(w, http.StatusInternalServerError, errInternal)
	}
}
