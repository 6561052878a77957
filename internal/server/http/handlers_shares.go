package httpserver

import (
	"net/http"

	"github.com/and161185/zest/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/julienschmidt/httprouter"
)

type createShareRequest struct {
	RecipeID     uuid.UUID `json:"recipeId"`
	Email        string    `json:"email"`
	GenerateLink bool      `json:"generateLink"`
}

type sharesBody[T any] struct {
	Shares []T `json:"shares"`
}

func (s *Server) createShare(w http.ResponseWriter, r *http.Request, _ httprouter.Params, u model.User) error {
	var in createShareRequest
	if err := decodeBody(w, r, &in); err != nil {
		return err
	}
	res, err := s.svc.Shares.CreateShare(r.Context(), u, model.ShareRequest{
		RecipeID:     in.RecipeID,
		Email:        in.Email,
		GenerateLink: in.GenerateLink,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

func (s *Server) revokeShare(w http.ResponseWriter, r *http.Request, ps httprouter.Params, u model.User) error {
	id, err := pathID(ps, "id", "Share not found.")
	if err != nil {
		return err
	}
	if err := s.svc.Shares.RevokeShare(r.Context(), u, id); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, okBody{OK: true})
	return nil
}

type acceptedShare struct {
	ID         uuid.UUID `json:"id"`
	RecipeID   uuid.UUID `json:"recipeId"`
	ShareToken string    `json:"shareToken"`
}

type acceptBody struct {
	OK              bool           `json:"ok"`
	Share           *acceptedShare `json:"share,omitempty"`
	RecipeID        *uuid.UUID     `json:"recipeId,omitempty"`
	AlreadyAccepted bool           `json:"alreadyAccepted,omitempty"`
}

func (s *Server) acceptShare(w http.ResponseWriter, r *http.Request, ps httprouter.Params, u model.User) error {
	res, err := s.svc.Shares.AcceptShare(r.Context(), u, ps.ByName("token"))
	if err != nil {
		return err
	}
	body := acceptBody{OK: true}
	if res.AlreadyAccepted {
		body.RecipeID = &res.RecipeID
		body.AlreadyAccepted = true
	} else {
		body.Share = &acceptedShare{ID: res.ShareID, RecipeID: res.RecipeID, ShareToken: res.ShareToken}
	}
	writeJSON(w, http.StatusOK, body)
	return nil
}

func (s *Server) listSent(w http.ResponseWriter, r *http.Request, _ httprouter.Params, u model.User) error {
	shares, err := s.svc.Shares.ListSent(r.Context(), u)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, sharesBody[model.SentShare]{Shares: shares})
	return nil
}

func (s *Server) listReceived(w http.ResponseWriter, r *http.Request, _ httprouter.Params, u model.User) error {
	shares, err := s.svc.Shares.ListReceived(r.Context(), u)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, sharesBody[model.ReceivedShare]{Shares: shares})
	return nil
}
