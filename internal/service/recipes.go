package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/and161185/zest/internal/convert"
	"github.com/and161185/zest/internal/errs"
	"github.com/and161185/zest/internal/model"
	"github.com/and161185/zest/internal/repository"
	"github.com/gofrs/uuid/v5"
)

const msgNoIngredients = "Recipe must include at least one ingredient."

const msgBadStatus = "must be one of: favorite, to_try, made_before"

var errRecipeNotFound = errs.New(errs.ErrNotFound, "Recipe not found.")

// RecipeService owns recipe CRUD. Mutations are owner-scoped; any other
// caller gets errs.ErrNotFound.
type RecipeService interface {
	Create(ctx context.Context, owner model.User, in model.RecipeInput) (model.Recipe, error)
	Get(ctx context.Context, user model.User, id uuid.UUID) (model.RecipeAccess, error)
	Update(ctx context.Context, owner model.User, id uuid.UUID, p model.RecipePatch) (model.Recipe, error)
	Delete(ctx context.Context, owner model.User, id uuid.UUID) error
	List(ctx context.Context, owner model.User, f model.RecipeFilter) ([]model.Recipe, error)
}

type RecipeServiceImpl struct {
	recipes repository.RecipeRepository
	access  AccessService
	now     func() time.Time
}

// NewRecipeService constructs RecipeService.
func NewRecipeService(recipes repository.RecipeRepository, access AccessService) *RecipeServiceImpl {
	return &RecipeServiceImpl{recipes: recipes, access: access, now: time.Now}
}

// optionalText trims s and maps blank to nil.
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// Create sanitizes, validates and stores a new recipe.
func (s *RecipeServiceImpl) Create(ctx context.Context, owner model.User, in model.RecipeInput) (model.Recipe, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Instructions = strings.TrimSpace(in.Instructions)
	in.Cuisine = optionalText(in.Cuisine)
	in.Notes = optionalText(in.Notes)
	in.Ingredients = convert.SanitizeIngredients(in.Ingredients)
	in.Tags = convert.SanitizeTags(in.Tags)
	if in.Status == "" {
		in.Status = model.StatusToTry
	}

	if len(in.Ingredients) == 0 {
		return model.Recipe{}, errs.Validation(msgNoIngredients, errs.Issue{Path: "ingredients", Message: "is required"})
	}
	if err := checkStruct("Invalid recipe payload.", in); err != nil {
		return model.Recipe{}, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return model.Recipe{}, err
	}
	now := s.now().UTC()
	rec := model.Recipe{
		ID:              id,
		OwnerID:         owner.ID,
		Name:            in.Name,
		Cuisine:         in.Cuisine,
		PrepTimeMinutes: in.PrepTimeMinutes,
		CookTimeMinutes: in.CookTimeMinutes,
		Servings:        in.Servings,
		Ingredients:     in.Ingredients,
		Instructions:    in.Instructions,
		Notes:           in.Notes,
		Status:          in.Status,
		Tags:            in.Tags,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.recipes.Create(ctx, &rec); err != nil {
		return model.Recipe{}, fmt.Errorf("create recipe: %w", err)
	}
	return rec, nil
}

// Get returns the recipe through the access resolver.
func (s *RecipeServiceImpl) Get(ctx context.Context, user model.User, id uuid.UUID) (model.RecipeAccess, error) {
	return s.access.ResolveAccess(ctx, user, id)
}

// Update applies a partial update scoped to (id, owner).
func (s *RecipeServiceImpl) Update(ctx context.Context, owner model.User, id uuid.UUID, p model.RecipePatch) (model.Recipe, error) {
	p, err := sanitizePatch(p)
	if err != nil {
		return model.Recipe{}, err
	}
	rec, err := s.recipes.Update(ctx, owner.ID, id, p, s.now().UTC())
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Recipe{}, errRecipeNotFound
		}
		return model.Recipe{}, fmt.Errorf("update recipe: %w", err)
	}
	return *rec, nil
}

func sanitizeText(n model.Nullable[string]) model.Nullable[string] {
	if !n.Set || n.Null {
		return n
	}
	if t := strings.TrimSpace(n.Value); t != "" {
		return model.Some(t)
	}
	return model.Null[string]()
}

// sanitizePatch normalizes the present fields and validates them.
func sanitizePatch(p model.RecipePatch) (model.RecipePatch, error) {
	if p.Empty() {
		return p, errs.Validation("Provide at least one field to update.")
	}
	var issues errs.Issues

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
		checkVar(&issues, "name", name, "required,max=160")
	}
	p.Cuisine = sanitizeText(p.Cuisine)
	if v := p.Cuisine.Ptr(); v != nil {
		checkVar(&issues, "cuisine", *v, "max=80")
	}
	if v := p.PrepTimeMinutes.Ptr(); v != nil {
		checkVar(&issues, "prepTimeMinutes", *v, "min=0,max=10080")
	}
	if v := p.CookTimeMinutes.Ptr(); v != nil {
		checkVar(&issues, "cookTimeMinutes", *v, "min=0,max=10080")
	}
	if v := p.Servings.Ptr(); v != nil {
		checkVar(&issues, "servings", *v, "min=1,max=1000")
	}
	if p.Ingredients != nil {
		ings := convert.SanitizeIngredients(*p.Ingredients)
		p.Ingredients = &ings
		if len(ings) == 0 {
			issues.Add("ingredients", msgNoIngredients)
		}
		for i, ing := range ings {
			checkVar(&issues, fmt.Sprintf("ingredients[%d].item", i), ing.Item, "max=120")
			checkVar(&issues, fmt.Sprintf("ingredients[%d].quantity", i), ing.Quantity, "max=40")
			checkVar(&issues, fmt.Sprintf("ingredients[%d].unit", i), ing.Unit, "max=40")
		}
	}
	if p.Instructions != nil {
		text := strings.TrimSpace(*p.Instructions)
		p.Instructions = &text
		checkVar(&issues, "instructions", text, "required")
	}
	p.Notes = sanitizeText(p.Notes)
	if v := p.Notes.Ptr(); v != nil {
		checkVar(&issues, "notes", *v, "max=2000")
	}
	if p.Status != nil {
		issues.Check(p.Status.Valid(), "status", msgBadStatus)
	}
	if p.Tags != nil {
		tags := convert.SanitizeTags(*p.Tags)
		p.Tags = &tags
		for i, t := range tags {
			checkVar(&issues, fmt.Sprintf("tags[%d]", i), t, "max=40")
		}
	}
	return p, issues.Err("Invalid recipe update.")
}

// Delete removes an owned recipe and its shares.
func (s *RecipeServiceImpl) Delete(ctx context.Context, owner model.User, id uuid.UUID) error {
	if err := s.recipes.Delete(ctx, owner.ID, id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errRecipeNotFound
		}
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

// List returns the owner's recipes matching f.
func (s *RecipeServiceImpl) List(ctx context.Context, owner model.User, f model.RecipeFilter) ([]model.Recipe, error) {
	f.Query = strings.TrimSpace(f.Query)
	f.Ingredient = strings.TrimSpace(f.Ingredient)
	f.Cuisine = strings.TrimSpace(f.Cuisine)

	var issues errs.Issues
	if f.MaxPrepTime != nil {
		checkVar(&issues, "maxPrepTime", *f.MaxPrepTime, "min=0,max=10080")
	}
	issues.Check(f.Status == "" || f.Status.Valid(), "status", msgBadStatus)
	if err := issues.Err("Invalid recipe filters."); err != nil {
		return nil, err
	}
	return s.recipes.List(ctx, owner.ID, f)
}
