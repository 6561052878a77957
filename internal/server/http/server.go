// Package httpserver exposes the Zest JSON API over HTTP.
package httpserver

import (
	"net/http"
	"time"

	"github.com/and161185/zest/internal/model"
	"github.com/and161185/zest/internal/service"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Services groups the application services the handlers depend on.
type Services struct {
	Auth      service.AuthService
	Recipes   service.RecipeService
	Shares    service.ShareService
	Access    service.AccessService
	Assistant service.AssistantService
}

// Server wires services into HTTP handlers.
type Server struct {
	svc           Services
	log           *zap.Logger
	secureCookies bool
}

// New constructs the HTTP server. secureCookies sets the Secure flag on the
// session cookie and is meant for production deployments.
func New(svc Services, log *zap.Logger, secureCookies bool) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, log: log, secureCookies: secureCookies}
}

type handle func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) error

type authedHandle func(w http.ResponseWriter, r *http.Request, ps httprouter.Params, u model.User) error

// public adapts a handle that reports failures as errors.
func (s *Server) public(h handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if err := h(w, r, ps); err != nil {
			s.writeError(w, r, err)
		}
	}
}

// authed resolves the session before calling h. Sessions are looked up on
// every request.
func (s *Server) authed(h authedHandle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		u, err := s.svc.Auth.ResolveSession(r.Context(), sessionToken(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		r = r.WithContext(WithUser(r.Context(), u))
		if err := h(w, r, ps, u); err != nil {
			s.writeError(w, r, err)
		}
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.PanicHandler = s.recovered
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
	})

	route := func(method, path string, h httprouter.Handle) {
		router.Handle(method, path, s.logged(path, h))
	}

	route(http.MethodPost, "/api/auth/sign-up", s.public(s.signUp))
	route(http.MethodPost, "/api/auth/sign-in", s.public(s.signIn))
	route(http.MethodPost, "/api/auth/sign-out", s.public(s.signOut))
	route(http.MethodGet, "/api/me", s.authed(s.me))
	route(http.MethodPatch, "/api/me", s.authed(s.updateMe))

	route(http.MethodGet, "/api/recipes", s.authed(s.listRecipes))
	route(http.MethodPost, "/api/recipes", s.authed(s.createRecipe))
	route(http.MethodGet, "/api/recipes/:id", s.authed(s.getRecipe))
	route(http.MethodPatch, "/api/recipes/:id", s.authed(s.updateRecipe))
	route(http.MethodDelete, "/api/recipes/:id", s.authed(s.deleteRecipe))

	route(http.MethodPost, "/api/shares", s.authed(s.createShare))
	route(http.MethodGet, "/api/shares/sent", s.authed(s.listSent))
	route(http.MethodGet, "/api/shares/received", s.authed(s.listReceived))
	route(http.MethodPatch, "/api/shares/:id/revoke", s.authed(s.revokeShare))
	route(http.MethodPost, "/api/shares/accept/:token", s.authed(s.acceptShare))
	route(http.MethodGet, "/api/shared/:token", s.authed(s.sharedRecipe))

	route(http.MethodPost, "/api/ai/parse-recipe", s.authed(s.parseRecipe))
	route(http.MethodPost, "/api/ai/adapt-recipe", s.authed(s.adaptRecipe))
	route(http.MethodPost, "/api/ai/suggest-from-pantry", s.authed(s.suggestFromPantry))

	return router
}

func (s *Server) setSessionCookie(w http.ResponseWriter, tok model.SessionToken) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
