// Package convert translates between the persisted form of recipes (ingredient
// and tag lists stored as JSON text) and the structured domain form.
package convert

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/and161185/zest/internal/model"
	"github.com/gofrs/uuid/v5"
)

// MaxTags is the number of tags kept after sanitization.
const MaxTags = 20

// RecipeRow is a recipe exactly as stored.
type RecipeRow struct {
	ID              uuid.UUID
	OwnerID         uuid.UUID
	Name            string
	Cuisine         *string
	PrepTimeMinutes *int
	CookTimeMinutes *int
	Servings        *int
	IngredientsJSON string
	Instructions    string
	Notes           *string
	Status          string
	TagsJSON        *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SanitizeIngredients trims every field and drops entries whose item is blank.
// Blank quantity/unit become empty (omitted). The result is never nil.
func SanitizeIngredients(in []model.Ingredient) []model.Ingredient {
	out := make([]model.Ingredient, 0, len(in))
	for _, ing := range in {
		item := strings.TrimSpace(ing.Item)
		if item == "" {
			continue
		}
		out = append(out, model.Ingredient{
			Item:     item,
			Quantity: strings.TrimSpace(ing.Quantity),
			Unit:     strings.TrimSpace(ing.Unit),
		})
	}
	return out
}

// SanitizeTags trims, drops blanks and keeps at most MaxTags entries.
func SanitizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}

// encodeText marshals v without HTML escaping so stored text matches what
// users type ("salt & pepper") under ILIKE filters.
func encodeText(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// EncodeIngredients renders the ingredient list as stored text.
func EncodeIngredients(in []model.Ingredient) (string, error) {
	if in == nil {
		in = []model.Ingredient{}
	}
	return encodeText(in)
}

// EncodeTags renders the tag list as stored text.
func EncodeTags(in []string) (string, error) {
	if in == nil {
		in = []string{}
	}
	return encodeText(in)
}

// DecodeIngredients parses stored text. Malformed input yields an empty list;
// entries without a non-blank string item are skipped.
func DecodeIngredients(text string) []model.Ingredient {
	var raw []map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return []model.Ingredient{}
	}
	out := make([]model.Ingredient, 0, len(raw))
	for _, e := range raw {
		item, _ := e["item"].(string)
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		q, _ := e["quantity"].(string)
		u, _ := e["unit"].(string)
		out = append(out, model.Ingredient{Item: item, Quantity: q, Unit: u})
	}
	return out
}

// DecodeTags parses stored text. NULL or malformed input yields an empty list.
func DecodeTags(text *string) []string {
	if text == nil || *text == "" {
		return []string{}
	}
	var raw []any
	if err := json.Unmarshal([]byte(*text), &raw); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// RecipeFromRow builds the domain recipe from its stored form.
func RecipeFromRow(r RecipeRow) model.Recipe {
	return model.Recipe{
		ID:              r.ID,
		OwnerID:         r.OwnerID,
		Name:            r.Name,
		Cuisine:         r.Cuisine,
		PrepTimeMinutes: r.PrepTimeMinutes,
		CookTimeMinutes: r.CookTimeMinutes,
		Servings:        r.Servings,
		Ingredients:     DecodeIngredients(r.IngredientsJSON),
		Instructions:    r.Instructions,
		Notes:           r.Notes,
		Status:          model.RecipeStatus(r.Status),
		Tags:            DecodeTags(r.TagsJSON),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// RecipeToRow builds the stored form. Lists are expected to be sanitized.
func RecipeToRow(r model.Recipe) (RecipeRow, error) {
	ings, err := EncodeIngredients(r.Ingredients)
	if err != nil {
		return RecipeRow{}, err
	}
	tags, err := EncodeTags(r.Tags)
	if err != nil {
		return RecipeRow{}, err
	}
	return RecipeRow{
		ID:              r.ID,
		OwnerID:         r.OwnerID,
		Name:            r.Name,
		Cuisine:         r.Cuisine,
		PrepTimeMinutes: r.PrepTimeMinutes,
		CookTimeMinutes: r.CookTimeMinutes,
		Servings:        r.Servings,
		IngredientsJSON: ings,
		Instructions:    r.Instructions,
		Notes:           r.Notes,
		Status:          string(r.Status),
		TagsJSON:        &tags,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}, nil
}
