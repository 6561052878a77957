package httpserver

import (
	"net/http"

	"github.com/and161185/zest/internal/model"
	"github.com/julienschmidt/httprouter"
)

type userBody struct {
	User model.User `json:"user"`
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request, _ httprouter.Params) error {
	var in model.SignUpInput
	if err := decodeBody(w, r, &in); err != nil {
		return err
	}
	u, tok, err := s.svc.Auth.SignUp(r.Context(), in)
	if err != nil {
		return err
	}
	s.setSessionCookie(w, tok)
	writeJSON(w, http.StatusOK, userBody{User: u})
	return nil
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) error {
	var in model.SignInInput
	if err := decodeBody(w, r, &in); err != nil {
		return err
	}
	u, tok, err := s.svc.Auth.SignIn(r.Context(), in, clientIP(r))
	if err != nil {
		return err
	}
	s.setSessionCookie(w, tok)
	writeJSON(w, http.StatusOK, userBody{User: u})
	return nil
}

// signOut always clears the cookie, even for unknown sessions.
func (s *Server) signOut(w http.ResponseWriter, r *http.Request, _ httprouter.Params) error {
	if err := s.svc.Auth.InvalidateSession(r.Context(), sessionToken(r)); err != nil {
		return err
	}
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, okBody{OK: true})
	return nil
}

func (s *Server) me(w http.ResponseWriter, _ *http.Request, _ httprouter.Params, u model.User) error {
	writeJSON(w, http.StatusOK, userBody{User: u})
	return nil
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params, u model.User) error {
	var in model.ProfileInput
	if err := decodeBody(w, r, &in); err != nil {
		return err
	}
	updated, err := s.svc.Auth.UpdateProfile(r.Context(), u.ID, in)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, userBody{User: updated})
	return nil
}
