package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/and161185/zest/internal/errs"
	"github.com/and161185/zest/internal/genai"
	"github.com/and161185/zest/internal/model"
	"github.com/and161185/zest/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// Pantry prompt bounds.
const (
	pantryRecipeLimit     = 40
	pantryIngredientLimit = 8
)

// AssistantService offers the AI features. Every call blocks on the backend.
type AssistantService interface {
	// ParseRecipe turns free text into a recipe draft.
	ParseRecipe(ctx context.Context, user model.User, req model.ParseRequest) (model.RecipeDraft, error)
	// AdaptRecipe rewrites an owned recipe.
	AdaptRecipe(ctx context.Context, user model.User, req model.AdaptRequest) (model.Adaptation, error)
	// SuggestFromPantry returns exactly three ideas, linked to saved recipes by name.
	SuggestFromPantry(ctx context.Context, user model.User, req model.PantryRequest) ([]model.PantrySuggestion, error)
}

type AssistantServiceImpl struct {
	ai      *genai.Client
	access  AccessService
	recipes repository.RecipeRepository
}

// NewAssistantService constructs AssistantService.
func NewAssistantService(ai *genai.Client, access AccessService, recipes repository.RecipeRepository) *AssistantServiceImpl {
	return &AssistantServiceImpl{ai: ai, access: access, recipes: recipes}
}

// ParseRecipe implements AssistantService.
func (s *AssistantServiceImpl) ParseRecipe(ctx context.Context, _ model.User, req model.ParseRequest) (model.RecipeDraft, error) {
	req.Text = strings.TrimSpace(req.Text)
	if err := checkStruct("Invalid parse request.", req); err != nil {
		return model.RecipeDraft{}, err
	}

	prompt := `Extract this messy recipe into strict JSON.
Schema keys: name, cuisine, prep_time_minutes, cook_time_minutes, servings, ingredients[{item,quantity,unit}], instructions, tags, notes.
Rules: valid JSON only, no markdown, unknown numeric values should be null, instructions can be string or array.
Recipe text:
` + req.Text
	const retry = `Return ONLY valid JSON matching this exact schema: {"name":"","cuisine":null,"prep_time_minutes":null,` +
		`"cook_time_minutes":null,"servings":null,"ingredients":[{"item":"","quantity":"","unit":""}],` +
		`"instructions":"","tags":[],"notes":""}. No markdown.`

	draft, err := genai.GenerateStrictJSON[model.RecipeDraft](ctx, s.ai, prompt, retry)
	if err != nil {
		return model.RecipeDraft{}, err
	}
	if draft.Tags == nil {
		draft.Tags = []string{}
	}
	return draft, nil
}

func adaptInstruction(mode model.AdaptMode, target *int) string {
	switch mode {
	case model.AdaptHealthier:
		return "Adjust this recipe to be healthier while preserving flavor."
	case model.AdaptVegetarian:
		return "Adapt this recipe to vegetarian form while keeping it practical and tasty."
	default:
		return fmt.Sprintf("Scale this recipe to %d servings.", *target)
	}
}

// AdaptRecipe implements AssistantService. Only the owner may adapt; shared
// readers get errs.ErrForbidden, everyone else errs.ErrNotFound.
func (s *AssistantServiceImpl) AdaptRecipe(ctx context.Context, user model.User, req model.AdaptRequest) (model.Adaptation, error) {
	if err := checkStruct("Invalid adapt request.", req); err != nil {
		return model.Adaptation{}, err
	}
	if req.Mode == model.AdaptScale && req.TargetServings == nil {
		return model.Adaptation{}, errs.Validation("targetServings is required when mode is scale.",
			errs.Issue{Path: "targetServings", Message: "is required"})
	}

	acc, err := s.access.ResolveAccess(ctx, user, req.RecipeID)
	if err != nil {
		return model.Adaptation{}, err
	}
	if !acc.IsOwner() {
		return model.Adaptation{}, errs.New(errs.ErrForbidden, "Only owners can generate recipe adaptations.")
	}

	compact, err := json.Marshal(struct {
		Name         string             `json:"name"`
		Cuisine      *string            `json:"cuisine"`
		Servings     *int               `json:"servings"`
		Ingredients  []model.Ingredient `json:"ingredients"`
		Instructions string             `json:"instructions"`
	}{acc.Recipe.Name, acc.Recipe.Cuisine, acc.Recipe.Servings, acc.Recipe.Ingredients, acc.Recipe.Instructions})
	if err != nil {
		return model.Adaptation{}, err
	}

	prompt := `Adapt this recipe and return strict JSON only.
JSON schema: {"ingredients":[{"item":"","quantity":"","unit":""}],"instructions":"","servings":1,"summary":""}
Task: ` + adaptInstruction(req.Mode, req.TargetServings) + `
Recipe: ` + string(compact)
	const retry = `Return ONLY valid JSON with keys ingredients, instructions, servings, summary.`

	return genai.GenerateStrictJSON[model.Adaptation](ctx, s.ai, prompt, retry)
}

type pantryRecipe struct {
	Name        string   `json:"name"`
	Cuisine     *string  `json:"cuisine"`
	Ingredients []string `json:"ingredients"`
}

// SuggestFromPantry implements AssistantService.
func (s *AssistantServiceImpl) SuggestFromPantry(
	ctx context.Context, user model.User, req model.PantryRequest,
) ([]model.PantrySuggestion, error) {
	req.Pantry = strings.TrimSpace(req.Pantry)
	if err := checkStruct("Invalid pantry input.", req); err != nil {
		return nil, err
	}

	saved, err := s.recipes.List(ctx, user.ID, model.RecipeFilter{Limit: pantryRecipeLimit})
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	compact := make([]pantryRecipe, 0, len(saved))
	byName := make(map[string]uuid.UUID, len(saved))
	for _, r := range saved {
		items := make([]string, 0, pantryIngredientLimit)
		for _, ing := range r.Ingredients {
			if len(items) == pantryIngredientLimit {
				break
			}
			items = append(items, ing.Item)
		}
		compact = append(compact, pantryRecipe{Name: r.Name, Cuisine: r.Cuisine, Ingredients: items})
		key := strings.ToLower(r.Name)
		if _, seen := byName[key]; !seen {
			byName[key] = r.ID
		}
	}
	savedJSON, err := json.Marshal(compact)
	if err != nil {
		return nil, err
	}

	prompt := `Given pantry items and user's saved recipes, suggest exactly 3 recipe ideas in strict JSON.
JSON schema: {"suggestions":[{"name":"","rationale":"","match_recipe_name":"optional","draft":{"cuisine":"","ingredients":[{"item":"","quantity":"","unit":""}],"instructions":"","tags":[]}}]}
Rules: no markdown, deterministic, short rationales, use match_recipe_name only if it exactly matches one saved recipe name.
Pantry: ` + req.Pantry + `
Saved recipes: ` + string(savedJSON)
	const retry = `Return strict JSON only with exactly 3 suggestions and the schema key "suggestions".`

	out, err := genai.GenerateStrictJSON[model.PantrySuggestions](ctx, s.ai, prompt, retry)
	if err != nil {
		return nil, err
	}
	for i := range out.Suggestions {
		sg := &out.Suggestions[i]
		sg.MatchedRecipeID = nil
		if sg.MatchRecipeName == "" {
			continue
		}
		if id, ok := byName[strings.ToLower(sg.MatchRecipeName)]; ok {
			sg.MatchedRecipeID = &id
		}
	}
	return out.Suggestions, nil
}
