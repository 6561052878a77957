package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/and161185/zest/internal/convert"
	"github.com/and161185/zest/internal/errs"
	"github.com/and161185/zest/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// RecipeRepo implements RecipeRepository using PostgreSQL.
type RecipeRepo struct{ db *DB }

// NewRecipeRepo constructs a recipe repository.
func NewRecipeRepo(db *DB) *RecipeRepo { return &RecipeRepo{db: db} }

const recipeColumns = `id, owner_id, name, cuisine, prep_time_minutes, cook_time_minutes, servings, ` +
	`ingredients_json, instructions, notes, status, tags_json, created_at, updated_at`

func scanRecipe(row pgx.Row) (*model.Recipe, error) {
	var rr convert.RecipeRow
	err := row.Scan(&rr.ID, &rr.OwnerID, &rr.Name, &rr.Cuisine, &rr.PrepTimeMinutes, &rr.CookTimeMinutes,
		&rr.Servings, &rr.IngredientsJSON, &rr.Instructions, &rr.Notes, &rr.Status, &rr.TagsJSON,
		&rr.CreatedAt, &rr.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	rec := convert.RecipeFromRow(rr)
	return &rec, nil
}

// Create inserts a recipe row.
func (r *RecipeRepo) Create(ctx context.Context, rec *model.Recipe) error {
	rr, err := convert.RecipeToRow(*rec)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO recipes (` + recipeColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = r.db.Pool.Exec(ctx, q, rr.ID, rr.OwnerID, rr.Name, rr.Cuisine, rr.PrepTimeMinutes,
		rr.CookTimeMinutes, rr.Servings, rr.IngredientsJSON, rr.Instructions, rr.Notes, rr.Status,
		rr.TagsJSON, rr.CreatedAt, rr.UpdatedAt)
	return err
}

// GetByID selects a recipe regardless of owner.
func (r *RecipeRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	const q = `SELECT ` + recipeColumns + ` FROM recipes WHERE id=$1`
	return scanRecipe(r.db.Pool.QueryRow(ctx, q, id))
}

// GetOwned selects a recipe scoped to its owner.
func (r *RecipeRepo) GetOwned(ctx context.Context, ownerID, id uuid.UUID) (*model.Recipe, error) {
	const q = `SELECT ` + recipeColumns + ` FROM recipes WHERE id=$1 AND owner_id=$2`
	return scanRecipe(r.db.Pool.QueryRow(ctx, q, id, ownerID))
}

// Update writes the fields present in p. The statement is scoped by
// (id, owner_id), so zero affected rows means not found or not owned.
func (r *RecipeRepo) Update(
	ctx context.Context, ownerID, id uuid.UUID, p model.RecipePatch, now time.Time,
) (*model.Recipe, error) {
	sets := make([]string, 0, 11)
	args := []any{id, ownerID}
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)))
	}

	if p.Name != nil {
		set("name", *p.Name)
	}
	if p.Cuisine.Set {
		set("cuisine", p.Cuisine.Ptr())
	}
	if p.PrepTimeMinutes.Set {
		set("prep_time_minutes", p.PrepTimeMinutes.Ptr())
	}
	if p.CookTimeMinutes.Set {
		set("cook_time_minutes", p.CookTimeMinutes.Ptr())
	}
	if p.Servings.Set {
		set("servings", p.Servings.Ptr())
	}
	if p.Ingredients != nil {
		enc, err := convert.EncodeIngredients(*p.Ingredients)
		if err != nil {
			return nil, err
		}
		set("ingredients_json", enc)
	}
	if p.Instructions != nil {
		set("instructions", *p.Instructions)
	}
	if p.Notes.Set {
		set("notes", p.Notes.Ptr())
	}
	if p.Status != nil {
		set("status", string(*p.Status))
	}
	if p.Tags != nil {
		enc, err := convert.EncodeTags(*p.Tags)
		if err != nil {
			return nil, err
		}
		set("tags_json", enc)
	}
	set("updated_at", now)

	q := `UPDATE recipes SET ` + strings.Join(sets, ", ") +
		` WHERE id=$1 AND owner_id=$2 RETURNING ` + recipeColumns
	return scanRecipe(r.db.Pool.QueryRow(ctx, q, args...))
}

// Delete removes a recipe scoped to its owner; shares go with it.
func (r *RecipeRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM recipes WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// List selects the owner's recipes matching every set filter.
func (r *RecipeRepo) List(ctx context.Context, ownerID uuid.UUID, f model.RecipeFilter) ([]model.Recipe, error) {
	where := []string{"owner_id=$1"}
	args := []any{ownerID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.Query != "" {
		add("name ILIKE $%d", containsPattern(f.Query))
	}
	if f.Ingredient != "" {
		add("ingredients_json ILIKE $%d", containsPattern(f.Ingredient))
	}
	if f.Cuisine != "" {
		add("cuisine ILIKE $%d", containsPattern(f.Cuisine))
	}
	if f.MaxPrepTime != nil {
		add("prep_time_minutes <= $%d", *f.MaxPrepTime)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}

	q := `SELECT ` + recipeColumns + ` FROM recipes WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY updated_at DESC`
	if f.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Recipe, 0)
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}
