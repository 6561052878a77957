package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// AccessRead is the only access level a share currently grants.
const AccessRead = "read"

// RecipeShare is a one-way read grant from a recipe owner to a recipient.
// The recipient is identified by user, by email, both, or neither (open link).
type RecipeShare struct {
	ID               uuid.UUID     `json:"id"`
	RecipeID         uuid.UUID     `json:"recipeId"`
	SharedBy         uuid.UUID     `json:"sharedBy"`
	SharedWithUserID uuid.NullUUID `json:"sharedWithUserId"`
	SharedWithEmail  *string       `json:"sharedWithEmail"`
	ShareToken       string        `json:"shareToken"`
	Access           string        `json:"access"`
	RevokedAt        *time.Time    `json:"revokedAt"`
	CreatedAt        time.Time     `json:"createdAt"`
}

// Active reports whether the share has not been revoked.
func (s RecipeShare) Active() bool { return s.RevokedAt == nil }

// BoundElsewhere reports whether the share is bound to an identity other than u.
func (s RecipeShare) BoundElsewhere(u User) bool {
	if s.SharedWithUserID.Valid && s.SharedWithUserID.UUID != u.ID {
		return true
	}
	return s.SharedWithEmail != nil && *s.SharedWithEmail != u.Email
}

// ShareRequest asks for a new grant. At least one of Email or GenerateLink is required.
type ShareRequest struct {
	RecipeID     uuid.UUID
	Email        string
	GenerateLink bool
}

// ShareResult is a created or reactivated share with its public URL.
type ShareResult struct {
	Share RecipeShare `json:"share"`
	URL   string      `json:"shareUrl"`
}

// AcceptResult reports the outcome of accepting a share token.
type AcceptResult struct {
	ShareID         uuid.UUID `json:"shareId"`
	RecipeID        uuid.UUID `json:"recipeId"`
	ShareToken      string    `json:"shareToken,omitempty"`
	AlreadyAccepted bool      `json:"alreadyAccepted"`
}

// SentShare is the owner's view of a grant, revoked ones included.
type SentShare struct {
	ID               uuid.UUID     `json:"id"`
	RecipeID         uuid.UUID     `json:"recipeId"`
	RecipeName       string        `json:"recipeName"`
	SharedWithEmail  *string       `json:"sharedWithEmail"`
	SharedWithUserID uuid.NullUUID `json:"sharedWithUserId"`
	RecipientName    *string       `json:"recipientName"`
	ShareToken       string        `json:"shareToken"`
	RevokedAt        *time.Time    `json:"revokedAt"`
	Active           bool          `json:"active"`
	CreatedAt        time.Time     `json:"createdAt"`
}

// ReceivedShare is the recipient's view of an active grant.
type ReceivedShare struct {
	ID              uuid.UUID    `json:"id"`
	RecipeID        uuid.UUID    `json:"recipeId"`
	RecipeName      string       `json:"recipeName"`
	Cuisine         *string      `json:"cuisine"`
	Status          RecipeStatus `json:"status"`
	PrepTimeMinutes *int         `json:"prepTimeMinutes"`
	Tags            []string     `json:"tags"`
	SharedByName    string       `json:"sharedByName"`
	SharedByEmail   string       `json:"sharedByEmail"`
	ShareToken      string       `json:"shareToken"`
	CreatedAt       time.Time    `json:"createdAt"`
}

// Role is the outcome of an access check.
type Role int

const (
	RoleDenied Role = iota
	RoleOwner
	RoleSharedReader
)

// String renders the role as exposed by the API.
func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleSharedReader:
		return "shared"
	default:
		return "denied"
	}
}

// RecipeAccess is a granted view of a recipe.
type RecipeAccess struct {
	Recipe  Recipe
	Role    Role
	ShareID uuid.NullUUID
}

// IsOwner reports whether the caller owns the recipe.
func (a RecipeAccess) IsOwner() bool { return a.Role == RoleOwner }
