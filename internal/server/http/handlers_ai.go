package httpserver

import (
	"net/http"

	"github.com/and161185/zest/internal/model"
	"github.com/julienschmidt/httprouter"
)

// AI handlers pass the request context down so a disconnect cancels the
// upstream call.

func (s *Server) parseRecipe(w http.ResponseWriter, r *http.Request, _ httprouter.Params, u model.User) error {
	var in model.ParseRequest
	if err := decodeBody(w, r, &in); err != nil {
		return err
	}
	draft, err := s.svc.Assistant.ParseRecipe(r.Context(), u, in)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, struct {
		Recipe model.RecipeDraft `json:"recipe"`
	}{draft})
	return nil
}

func (s *Server) adaptRecipe(w http.ResponseWriter, r *http.Request, _ httprouter.Params, u model.User) error {
	var in model.AdaptRequest
	if err := decodeBody(w, r, &in); err != nil {
		return err
	}
	out, err := s.svc.Assistant.AdaptRecipe(r.Context(), u, in)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, struct {
		Adaptation model.Adaptation `json:"adaptation"`
	}{out})
	return nil
}

func (s *Server) suggestFromPantry(w http.ResponseWriter, r *http.Request, _ httprouter.Params, u model.User) error {
	var in model.PantryRequest
	if err := decodeBody(w, r, &in); err != nil {
		return err
	}
	out, err := s.svc.Assistant.SuggestFromPantry(r.Context(), u, in)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, struct {
		Suggestions []model.PantrySuggestion `json:"suggestions"`
	}{out})
	return nil
}
