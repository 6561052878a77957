package httpserver

import (
	"net/http"
	"strconv"

	"github.com/and161185/zest/internal/errs"
	"github.com/and161185/zest/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/julienschmidt/httprouter"
)

type recipeBody struct {
	Recipe model.Recipe `json:"recipe"`
}

type accessBody struct {
	Recipe model.Recipe `json:"recipe"`
	Access string       `json:"access"`
}

// pathID parses a UUID path parameter. A malformed id cannot name any row,
// so it is reported as not found.
func pathID(ps httprouter.Params, name, msg string) (uuid.UUID, error) {
	id, err := uuid.FromString(ps.ByName(name))
	if err != nil {
		return uuid.Nil, errs.New(errs.ErrNotFound, msg)
	}
	return id, nil
}

func recipeFilter(r *http.Request) (model.RecipeFilter, error) {
	q := r.URL.Query()
	f := model.RecipeFilter{
		Query:      q.Get("q"),
		Ingredient: q.Get("ingredient"),
		Cuisine:    q.Get("cuisine"),
		Status:     model.RecipeStatus(q.Get("status")),
	}
	if v := q.Get("maxPrepTime"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, errs.Validation("Invalid recipe filters.", errs.Issue{Path: "maxPrepTime", Message: "must be a whole number"})
		}
		f.MaxPrepTime = &n
	}
	return f, nil
}

func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request, _ httprouter.Params, u model.User) error {
	f, err := recipeFilter(r)
	if err != nil {
		return err
	}
	recipes, err := s.svc.Recipes.List(r.Context(), u, f)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, struct {
		Recipes []model.Recipe `json:"recipes"`
	}{recipes})
	return nil
}

func (s *Server) createRecipe(w http.ResponseWriter, r *http.Request, _ httprouter.Params, u model.User) error {
	var in model.RecipeInput
	if err := decodeBody(w, r, &in); err != nil {
		return err
	}
	rec, err := s.svc.Recipes.Create(r.Context(), u, in)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, recipeBody{Recipe: rec})
	return nil
}

func (s *Server) getRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params, u model.User) error {
	id, err := pathID(ps, "id", "Recipe not found.")
	if err != nil {
		return err
	}
	acc, err := s.svc.Recipes.Get(r.Context(), u, id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, accessBody{Recipe: acc.Recipe, Access: acc.Role.String()})
	return nil
}

func (s *Server) updateRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params, u model.User) error {
	id, err := pathID(ps, "id", "Recipe not found.")
	if err != nil {
		return err
	}
	var p model.RecipePatch
	if err := decodeBody(w, r, &p); err != nil {
		return err
	}
	rec, err := s.svc.Recipes.Update(r.Context(), u, id, p)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, recipeBody{Recipe: rec})
	return nil
}

func (s *Server) deleteRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params, u model.User) error {
	id, err := pathID(ps, "id", "Recipe not found.")
	if err != nil {
		return err
	}
	if err := s.svc.Recipes.Delete(r.Context(), u, id); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, okBody{OK: true})
	return nil
}

// sharedRecipe resolves a share link for the signed-in visitor.
func (s *Server) sharedRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params, u model.User) error {
	acc, err := s.svc.Access.ResolveAccessByToken(r.Context(), u, ps.ByName("token"))
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			return errs.New(errs.ErrNotFound, "Shared recipe not available.")
		}
		return err
	}
	writeJSON(w, http.StatusOK, accessBody{Recipe: acc.Recipe, Access: acc.Role.String()})
	return nil
}
