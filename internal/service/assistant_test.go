package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/and161185/zest/internal/errs"
	"github.com/and161185/zest/internal/genai"
	"github.com/and161185/zest/internal/model"
	"go.uber.org/zap/zaptest"
)

// scriptedCompleter replays canned responses and records prompts.
type scriptedCompleter struct {
	mu        sync.Mutex
	responses []string
	prompts   []string
}

var _ genai.Completer = (*scriptedCompleter)(nil)

func (c *scriptedCompleter) Complete(_ context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	if len(c.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	r := c.responses[0]
	c.responses = c.responses[1:]
	return r, nil
}

func newAssistant(t *testing.T, a *app, responses ...string) (*AssistantServiceImpl, *scriptedCompleter) {
	c := &scriptedCompleter{responses: responses}
	ai := genai.NewClient(c, zaptest.NewLogger(t))
	return NewAssistantService(ai, a.access, memRecipes{a.store}), c
}

func TestAssistant_ParseRecipe(t *testing.T) {
	t.Parallel()
	a := newApp()
	ctx := context.Background()
	u := a.addUser(t, "Cook", "cook@example.com")

	svc, c := newAssistant(t, a,
		"Sure! Here is your recipe.",
		"```json\n"+`{"name":"Pancakes","cuisine":null,"prep_time_minutes":5,"cook_time_minutes":null,"servings":2,`+
			`"ingredients":[{"item":"flour","quantity":"1","unit":"cup"}],"instructions":["Mix","Fry"],"notes":""}`+"\n```",
	)

	if _, err := svc.ParseRecipe(ctx, u, model.ParseRequest{Text: " too short "}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("short text: %v", err)
	}
	if len(c.prompts) != 0 {
		t.Fatalf("backend called for invalid input")
	}

	draft, err := svc.ParseRecipe(ctx, u, model.ParseRequest{Text: "pancakes: flour, milk, eggs. mix and fry."})
	if err != nil {
		t.Fatalf("ParseRecipe: %v", err)
	}
	if draft.Name != "Pancakes" || draft.Instructions != "1. Mix\n2. Fry" {
		t.Fatalf("draft: %+v", draft)
	}
	if draft.PrepTimeMinutes == nil || *draft.PrepTimeMinutes != 5 || draft.CookTimeMinutes != nil {
		t.Fatalf("numbers: %+v", draft)
	}
	if draft.Tags == nil || len(draft.Tags) != 0 {
		t.Fatalf("tags should default to empty: %#v", draft.Tags)
	}
	if len(c.prompts) != 2 || !strings.HasPrefix(c.prompts[1], "Return ONLY valid JSON") {
		t.Fatalf("expected one retry with the strict prompt, got %q", c.prompts)
	}
	if !strings.Contains(c.prompts[0], "pancakes: flour, milk") {
		t.Fatalf("recipe text missing from prompt")
	}
}

func TestAssistant_ParseRecipeGivesUp(t *testing.T) {
	t.Parallel()
	a := newApp()
	u := a.addUser(t, "Cook", "cook@example.com")
	svc, c := newAssistant(t, a, "nope", `{"name":""}`, "never used")

	_, err := svc.ParseRecipe(context.Background(), u, model.ParseRequest{Text: "some messy recipe text"})
	if !errors.Is(err, errs.ErrUpstream) {
		t.Fatalf("want ErrUpstream, got %v", err)
	}
	var ge *genai.GenerationError
	if !errors.As(err, &ge) || ge.Raw != `{"name":""}` {
		t.Fatalf("raw not kept: %v", err)
	}
	if len(c.prompts) != 2 {
		t.Fatalf("want exactly two attempts, got %d", len(c.prompts))
	}
}

func TestAssistant_AdaptRecipe(t *testing.T) {
	t.Parallel()
	a := newApp()
	ctx := context.Background()
	owner := a.addUser(t, "Owner", "owner@example.com")
	reader := a.addUser(t, "Reader", "reader@example.com")
	stranger := a.addUser(t, "Stranger", "stranger@example.com")
	r := a.addRecipe(t, owner, "Soup")
	if _, err := a.shares.CreateShare(ctx, owner, model.ShareRequest{RecipeID: r.ID, Email: reader.Email}); err != nil {
		t.Fatalf("CreateShare: %v", err)
	}

	svc, c := newAssistant(t, a,
		`{"ingredients":[{"item":"water","quantity":"2","unit":"l"}],"instructions":"Boil more.","servings":4,"summary":"Doubled."}`)

	_, err := svc.AdaptRecipe(ctx, owner, model.AdaptRequest{RecipeID: r.ID, Mode: model.AdaptScale})
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("scale without target: %v", err)
	}
	if _, err := svc.AdaptRecipe(ctx, owner, model.AdaptRequest{RecipeID: r.ID, Mode: "spicier"}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("bad mode: %v", err)
	}
	if _, err := svc.AdaptRecipe(ctx, reader, model.AdaptRequest{RecipeID: r.ID, Mode: model.AdaptHealthier}); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("reader: want ErrForbidden, got %v", err)
	}
	if _, err := svc.AdaptRecipe(ctx, stranger, model.AdaptRequest{RecipeID: r.ID, Mode: model.AdaptHealthier}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("stranger: want ErrNotFound, got %v", err)
	}
	if len(c.prompts) != 0 {
		t.Fatalf("backend called before access was granted")
	}

	out, err := svc.AdaptRecipe(ctx, owner, model.AdaptRequest{RecipeID: r.ID, Mode: model.AdaptScale, TargetServings: ptr(4)})
	if err != nil {
		t.Fatalf("AdaptRecipe: %v", err)
	}
	if out.Summary != "Doubled." || out.Servings == nil || *out.Servings != 4 {
		t.Fatalf("adaptation: %+v", out)
	}
	if !strings.Contains(c.prompts[0], "Scale this recipe to 4 servings.") || !strings.Contains(c.prompts[0], `"name":"Soup"`) {
		t.Fatalf("prompt: %s", c.prompts[0])
	}
	if a.store.recipes[r.ID].Instructions != "Boil." {
		t.Fatalf("adaptation must not modify the stored recipe")
	}
}

func TestAssistant_SuggestFromPantry(t *testing.T) {
	t.Parallel()
	a := newApp()
	ctx := context.Background()
	u := a.addUser(t, "Cook", "cook@example.com")
	soup := a.addRecipe(t, u, "Tomato Soup")
	a.addRecipe(t, u, "Green Curry")

	resp := `{"suggestions":[
		{"name":"Tomato Soup","rationale":"You have tomatoes.","match_recipe_name":"tomato soup"},
		{"name":"Shakshuka","rationale":"Eggs and tomatoes.","match_recipe_name":"Shakshuka"},
		{"name":"Omelette","rationale":"Quick.","matchedRecipeId":"6f1c2f7e-0000-4000-8000-000000000000",
		 "draft":{"ingredients":[{"item":"eggs"}],"instructions":"Whisk and cook."}}]}`
	svc, c := newAssistant(t, a, resp)

	if _, err := svc.SuggestFromPantry(ctx, u, model.PantryRequest{Pantry: " x "}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("short pantry: %v", err)
	}

	got, err := svc.SuggestFromPantry(ctx, u, model.PantryRequest{Pantry: "eggs, tomatoes"})
	if err != nil {
		t.Fatalf("SuggestFromPantry: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 suggestions, got %d", len(got))
	}
	if got[0].MatchedRecipeID == nil || *got[0].MatchedRecipeID != soup.ID {
		t.Fatalf("first suggestion should link to saved soup: %+v", got[0])
	}
	if got[1].MatchedRecipeID != nil || got[2].MatchedRecipeID != nil {
		t.Fatalf("only saved names may link: %+v %+v", got[1], got[2])
	}
	if got[2].Draft == nil || len(got[2].Draft.Ingredients) != 1 {
		t.Fatalf("draft lost: %+v", got[2])
	}
	if !strings.Contains(c.prompts[0], `"name":"Green Curry"`) || !strings.Contains(c.prompts[0], "Pantry: eggs, tomatoes") {
		t.Fatalf("prompt: %s", c.prompts[0])
	}
}

func TestAssistant_SuggestFromPantryWrongCount(t *testing.T) {
	t.Parallel()
	a := newApp()
	u := a.addUser(t, "Cook", "cook@example.com")
	two := `{"suggestions":[{"name":"a","rationale":"b"},{"name":"c","rationale":"d"}]}`
	svc, _ := newAssistant(t, a, two, two)

	if _, err := svc.SuggestFromPantry(context.Background(), u, model.PantryRequest{Pantry: "rice"}); !errors.Is(err, errs.ErrUpstream) {
		t.Fatalf("want ErrUpstream, got %v", err)
	}
}
