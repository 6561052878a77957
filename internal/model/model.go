// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// User represents an account. PasswordHash is never serialized.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"` // normalized: trimmed, lower-cased
	FullName     string    `json:"fullName"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// Session is a persisted bearer credential with an absolute expiry.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// SessionToken is what a caller receives after sign-in/sign-up.
type SessionToken struct {
	Token     string
	ExpiresAt time.Time
}

// RecipeStatus is the owner's personal tracking state for a recipe.
type RecipeStatus string

const (
	StatusFavorite   RecipeStatus = "favorite"
	StatusToTry      RecipeStatus = "to_try"
	StatusMadeBefore RecipeStatus = "made_before"
)

// Valid reports whether s is one of the known statuses.
func (s RecipeStatus) Valid() bool {
	switch s {
	case StatusFavorite, StatusToTry, StatusMadeBefore:
		return true
	}
	return false
}

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	Item     string `json:"item" validate:"required,max=120"`
	Quantity string `json:"quantity,omitempty" validate:"max=40"`
	Unit     string `json:"unit,omitempty" validate:"max=40"`
}

// Recipe is the structured in-memory form of a stored recipe.
type Recipe struct {
	ID              uuid.UUID    `json:"id"`
	OwnerID         uuid.UUID    `json:"ownerId"`
	Name            string       `json:"name"`
	Cuisine         *string      `json:"cuisine"`
	PrepTimeMinutes *int         `json:"prepTimeMinutes"`
	CookTimeMinutes *int         `json:"cookTimeMinutes"`
	Servings        *int         `json:"servings"`
	Ingredients     []Ingredient `json:"ingredients"`
	Instructions    string       `json:"instructions"`
	Notes           *string      `json:"notes"`
	Status          RecipeStatus `json:"status"`
	Tags            []string     `json:"tags"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// RecipeInput is the payload for creating a recipe.
type RecipeInput struct {
	Name            string       `json:"name" validate:"required,max=160"`
	Cuisine         *string      `json:"cuisine" validate:"omitempty,max=80"`
	PrepTimeMinutes *int         `json:"prepTimeMinutes" validate:"omitnil,min=0,max=10080"`
	CookTimeMinutes *int         `json:"cookTimeMinutes" validate:"omitnil,min=0,max=10080"`
	Servings        *int         `json:"servings" validate:"omitnil,min=1,max=1000"`
	Ingredients     []Ingredient `json:"ingredients" validate:"required,min=1,dive"`
	Instructions    string       `json:"instructions" validate:"required"`
	Notes           *string      `json:"notes" validate:"omitempty,max=2000"`
	Status          RecipeStatus `json:"status" validate:"omitempty,oneof=favorite to_try made_before"`
	Tags            []string     `json:"tags" validate:"dive,max=40"`
}

// RecipePatch is a partial update. Absent fields are left untouched;
// Nullable fields distinguish "absent" from explicit null.
type RecipePatch struct {
	Name            *string          `json:"name"`
	Cuisine         Nullable[string] `json:"cuisine"`
	PrepTimeMinutes Nullable[int]    `json:"prepTimeMinutes"`
	CookTimeMinutes Nullable[int]    `json:"cookTimeMinutes"`
	Servings        Nullable[int]    `json:"servings"`
	Ingredients     *[]Ingredient    `json:"ingredients"`
	Instructions    *string          `json:"instructions"`
	Notes           Nullable[string] `json:"notes"`
	Status          *RecipeStatus    `json:"status"`
	Tags            *[]string        `json:"tags"`
}

// Empty reports whether the patch carries no field at all.
func (p RecipePatch) Empty() bool {
	return p.Name == nil && !p.Cuisine.Set && !p.PrepTimeMinutes.Set && !p.CookTimeMinutes.Set &&
		!p.Servings.Set && p.Ingredients == nil && p.Instructions == nil && !p.Notes.Set &&
		p.Status == nil && p.Tags == nil
}

// RecipeFilter narrows a recipe listing. Zero values mean "no constraint";
// all set constraints must hold.
type RecipeFilter struct {
	Query       string       // case-insensitive substring of name
	Ingredient  string       // case-insensitive substring of the encoded ingredient list
	Cuisine     string       // case-insensitive substring of cuisine
	MaxPrepTime *int         // inclusive upper bound on prep time
	Status      RecipeStatus // exact match
	Limit       int          // 0 = unlimited
}
