package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
)

// AdaptMode selects how a recipe should be rewritten.
type AdaptMode string

const (
	AdaptHealthier  AdaptMode = "healthier"
	AdaptVegetarian AdaptMode = "vegetarian"
	AdaptScale      AdaptMode = "scale"
)

// DraftIngredient is an ingredient as produced by the generative backend.
type DraftIngredient struct {
	Item     string `json:"item" validate:"required"`
	Quantity string `json:"quantity,omitempty"`
	Unit     string `json:"unit,omitempty"`
}

// Steps accepts instructions either as one string or as a list of steps.
// A list is rendered as numbered lines.
type Steps string

// UnmarshalJSON implements json.Unmarshaler.
func (s *Steps) UnmarshalJSON(b []byte) error {
	var text string
	if err := json.Unmarshal(b, &text); err == nil {
		*s = Steps(text)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(b, &lines); err != nil {
		return errors.New("instructions: want a string or a list of strings")
	}
	if len(lines) == 0 {
		return errors.New("instructions: empty list")
	}
	var sb strings.Builder
	for i, line := range lines {
		if line == "" {
			return fmt.Errorf("instructions[%d]: empty step", i)
		}
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d. %s", i+1, line)
	}
	*s = Steps(sb.String())
	return nil
}

// RecipeDraft is a structured recipe extracted from free text. It is not
// persisted; the caller may submit it as a RecipeInput.
type RecipeDraft struct {
	Name            string            `json:"name" validate:"required"`
	Cuisine         *string           `json:"cuisine"`
	PrepTimeMinutes *int              `json:"prep_time_minutes" validate:"omitnil,min=0"`
	CookTimeMinutes *int              `json:"cook_time_minutes" validate:"omitnil,min=0"`
	Servings        *int              `json:"servings" validate:"omitnil,min=1"`
	Ingredients     []DraftIngredient `json:"ingredients" validate:"required,min=1,dive"`
	Instructions    Steps             `json:"instructions" validate:"required"`
	Tags            []string          `json:"tags"`
	Notes           string            `json:"notes,omitempty"`
}

// Adaptation is a rewritten version of an existing recipe.
type Adaptation struct {
	Ingredients  []Ingredient `json:"ingredients" validate:"required,min=1,dive"`
	Instructions string       `json:"instructions" validate:"required"`
	Servings     *int         `json:"servings,omitempty" validate:"omitnil,min=1"`
	Summary      string       `json:"summary" validate:"required"`
}

// PantryDraft is the optional recipe sketch attached to a suggestion.
type PantryDraft struct {
	Cuisine      string            `json:"cuisine,omitempty"`
	Ingredients  []DraftIngredient `json:"ingredients,omitempty" validate:"omitempty,dive"`
	Instructions string            `json:"instructions,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
}

// PantrySuggestion is one recipe idea built from pantry contents.
// MatchedRecipeID is filled server-side, never taken from the backend.
type PantrySuggestion struct {
	Name            string       `json:"name" validate:"required"`
	Rationale       string       `json:"rationale" validate:"required"`
	MatchRecipeName string       `json:"match_recipe_name,omitempty"`
	Draft           *PantryDraft `json:"draft,omitempty"`
	MatchedRecipeID *uuid.UUID   `json:"matchedRecipeId,omitempty"`
}

// PantrySuggestions is the backend response envelope.
type PantrySuggestions struct {
	Suggestions []PantrySuggestion `json:"suggestions" validate:"len=3,dive"`
}

// ParseRequest carries free recipe text to structure.
type ParseRequest struct {
	Text string `json:"text" validate:"required,min=10"`
}

// AdaptRequest asks for a rewritten version of an owned recipe.
type AdaptRequest struct {
	RecipeID       uuid.UUID `json:"recipeId" validate:"required"`
	Mode           AdaptMode `json:"mode" validate:"required,oneof=healthier vegetarian scale"`
	TargetServings *int      `json:"targetServings" validate:"omitnil,min=1,max=1000"`
}

// PantryRequest lists what the user has on hand.
type PantryRequest struct {
	Pantry string `json:"pantry" validate:"required,min=2"`
}
