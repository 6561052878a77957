package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/and161185/zest/internal/errs"
	"github.com/and161185/zest/internal/model"
)

const (
	demoEmail    = "demo@zest.app"
	demoPassword = "password123"
)

type userLookup interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type registrar interface {
	Register(ctx context.Context, in model.SignUpInput) (model.User, error)
}

type recipeCreator interface {
	Create(ctx context.Context, owner model.User, in model.RecipeInput) (model.Recipe, error)
}

func demoRecipe() model.RecipeInput {
	return model.RecipeInput{
		Name:            "Lemon Herb Quinoa Bowl",
		Cuisine:         ptr("Mediterranean"),
		PrepTimeMinutes: ptr(15),
		CookTimeMinutes: ptr(20),
		Servings:        ptr(2),
		Ingredients: []model.Ingredient{
			{Item: "quinoa", Quantity: "1", Unit: "cup"},
			{Item: "chickpeas", Quantity: "1", Unit: "cup"},
			{Item: "lemon", Quantity: "1", Unit: "whole"},
		},
		Instructions: "Cook quinoa. Warm chickpeas. Toss with lemon juice and herbs.",
		Status:       model.StatusFavorite,
		Tags:         []string{"quick", "healthy"},
	}
}

// seed creates the demo account and its recipe. An existing demo account is
// left alone.
func seed(ctx context.Context, users userLookup, auth registrar, recipes recipeCreator, w io.Writer) error {
	_, err := users.GetByEmail(ctx, demoEmail)
	switch {
	case err == nil:
		fmt.Fprintln(w, "Seed skipped: demo user already exists.")
		return nil
	case !errors.Is(err, errs.ErrNotFound):
		return fmt.Errorf("lookup demo user: %w", err)
	}

	u, err := auth.Register(ctx, model.SignUpInput{FullName: "Demo Chef", Email: demoEmail, Password: demoPassword})
	if err != nil {
		return fmt.Errorf("register demo user: %w", err)
	}
	if _, err := recipes.Create(ctx, u, demoRecipe()); err != nil {
		return fmt.Errorf("create demo recipe: %w", err)
	}

	fmt.Fprintf(w, "Seed completed. Demo account: %s / %s\n", demoEmail, demoPassword)
	return nil
}

func ptr[T any](v T) *T { return &v }
