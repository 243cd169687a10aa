// Package api provides the REST surface of the tour guide backend: chat
// sessions, the destination catalog, and travel badges.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/hoed/wisata-ai/api/validator"
	"github.com/hoed/wisata-ai/badge"
	"github.com/hoed/wisata-ai/guide"
)

// A DB provides the badge reads served directly by the API.
type DB interface {
	ListBadges(ctx context.Context) ([]badge.Badge, error)
	ListUserBadges(ctx context.Context, userID string) ([]badge.UserBadge, error)
}

// A Cache provides a storage layer that caches the badge catalog.
type Cache interface {
	ListBadges(ctx context.Context) ([]badge.Badge, error)
	SetBadges(ctx context.Context, badges []badge.Badge) error
}

// An Awarder decides whether a named badge is granted to a user.
type Awarder interface {
	CheckAndAward(ctx context.Context, userID, badgeName string, condition bool) (bool, error)
}

// API provides the REST endpoints for the application.
type API struct {
	Logger   *slog.Logger
	Sessions *guide.Service
	Awards   Awarder
	DB       DB
	Cache    Cache
	Val      *validator.Validator

	once sync.Once
	mux  *http.ServeMux
}

func (a *API) setupRoutes() {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /sessions", a.createSession)
	mux.HandleFunc("GET /sessions/{sessionID}/messages", a.listSessionMessages)
	mux.HandleFunc("POST /sessions/{sessionID}/messages", a.createSessionMessage)
	mux.HandleFunc("GET /destinations", a.listDestinations)
	mux.HandleFunc("GET /badges", a.listBadges)
	mux.HandleFunc("GET /users/{userID}/badges", a.listUserBadges)
	mux.HandleFunc("POST /users/{userID}/badges", a.awardBadge)

	a.mux = mux
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.once.Do(a.setupRoutes)
	a.Logger.Info("Request received", "method", r.Method, "path", r.URL.Path)
	a.mux.ServeHTTP(w, r)
}

func (a *API) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.Logger.Error("Could not encode JSON body", "error", err.Error())
	}
}

func (a *API) respondError(w http.ResponseWriter, status int, err error, msg string) {
	type response struct {
		Error string `json:"error"`
	}
	a.Logger.Error("Error", "error", err.Error())
	a.respond(w, status, response{Error: msg})
}

func (a *API) validateBody(w http.ResponseWriter, s interface{}) bool {
	errs := a.Val.ValidateStruct(s)
	type response struct {
		Errors []validator.ValidationError `json:"errors"`
	}

	if len(errs) > 0 {
		a.respond(w, http.StatusBadRequest, &response{
			Errors: errs,
		})
		return false
	}
	return true
}

func (a *API) createSession(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Session  guide.Session   `json:"session"`
		Messages []guide.Message `json:"messages"`
	}

	sess := a.Sessions.CreateSession(r.Context())
	msgs, err := a.Sessions.Transcript(r.Context(), sess.ID)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not create session")
		return
	}

	a.respond(w, http.StatusCreated, response{
		Session:  sess,
		Messages: msgs,
	})
}

func (a *API) listSessionMessages(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Messages []guide.Message `json:"messages"`
	}

	sessionID := r.PathValue("sessionID")
	msgs, err := a.Sessions.Transcript(r.Context(), sessionID)
	if errors.Is(err, guide.ErrSessionNotFound) {
		a.respondError(w, http.StatusNotFound, err, "Session not found")
		return
	}
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not list messages")
		return
	}

	a.respond(w, http.StatusOK, response{Messages: msgs})
}

func (a *API) createSessionMessage(w http.ResponseWriter, r *http.Request) {
	type (
		request struct {
			Text            string `json:"text" validate:"required"`
			WalletConnected bool   `json:"wallet_connected"`
		}
		response struct {
			Message guide.Message `json:"message"`
		}
	)

	sessionID := r.PathValue("sessionID")
	var body request
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Could not decode request body")
		return
	}

	if valid := a.validateBody(w, &body); !valid {
		return
	}

	reply, err := a.Sessions.Send(r.Context(), sessionID, body.Text, body.WalletConnected)
	switch {
	case errors.Is(err, guide.ErrSessionNotFound):
		a.respondError(w, http.StatusNotFound, err, "Session not found")
		return
	case errors.Is(err, guide.ErrReplyPending):
		a.respondError(w, http.StatusConflict, err, "A reply is already pending for this session")
		return
	case err != nil:
		a.respondError(w, http.StatusInternalServerError, err, "Could not produce a reply")
		return
	}

	a.respond(w, http.StatusCreated, response{Message: reply})
}

func (a *API) listDestinations(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Destinations []guide.Destination `json:"destinations"`
	}

	query := r.URL.Query().Get("q")
	tags := r.URL.Query()["tag"]

	a.respond(w, http.StatusOK, response{
		Destinations: guide.FilterDestinations(query, tags),
	})
}

func (a *API) listBadges(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Badges []badge.Badge `json:"badges"`
	}

	// Serve from cache when possible. Cache failures are logged, never
	// surfaced; the database stays the source of truth.
	badges, err := a.Cache.ListBadges(r.Context())
	if err != nil {
		a.Logger.Error("Could not list badges from cache", "error", err.Error())
		badges = nil
	}
	if len(badges) > 0 {
		a.Logger.Info("Got badges from cache", "count", len(badges))
		a.respond(w, http.StatusOK, response{Badges: badges})
		return
	}

	badges, err = a.DB.ListBadges(r.Context())
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not list badges")
		return
	}

	if len(badges) > 0 {
		if err := a.Cache.SetBadges(r.Context(), badges); err != nil {
			a.Logger.Error("Could not cache badges", "error", err.Error())
		}
	}

	if badges == nil {
		badges = []badge.Badge{}
	}
	a.respond(w, http.StatusOK, response{Badges: badges})
}

func (a *API) listUserBadges(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Badges []badge.UserBadge `json:"badges"`
	}

	userID := r.PathValue("userID")
	badges, err := a.DB.ListUserBadges(r.Context(), userID)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not list user badges")
		return
	}

	if badges == nil {
		badges = []badge.UserBadge{}
	}
	a.respond(w, http.StatusOK, response{Badges: badges})
}

func (a *API) awardBadge(w http.ResponseWriter, r *http.Request) {
	type (
		request struct {
			BadgeName string `json:"badge_name" validate:"required"`
			Condition bool   `json:"condition"`
		}
		response struct {
			Awarded bool `json:"awarded"`
		}
	)

	userID := r.PathValue("userID")
	var body request
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Could not decode request body")
		return
	}

	if valid := a.validateBody(w, &body); !valid {
		return
	}

	awarded, err := a.Awards.CheckAndAward(r.Context(), userID, body.BadgeName, body.Condition)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not award badge")
		return
	}

	a.respond(w, http.StatusOK, response{Awarded: awarded})
}
