package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mealmax/mealmax-smoke/internal/api/types"
)

var (
	ErrInvalidPrice      = errors.New("price must be a positive number")
	ErrInvalidDifficulty = errors.New("difficulty must be LOW, MED or HIGH")
	ErrInvalidSort       = errors.New("sort must be wins or win_pct")
	ErrEmptyName         = errors.New("meal name must not be empty")
)

// --- health ---

func (c *Client) Health(ctx context.Context) (*Response, error) {
	return c.Do(ctx, Call{Method: http.MethodGet, Path: "/api/health"})
}

func (c *Client) DBCheck(ctx context.Context) (*Response, error) {
	return c.Do(ctx, Call{Method: http.MethodGet, Path: "/api/db-check"})
}

// --- meals ---

func (c *Client) ClearMeals(ctx context.Context) (*Response, error) {
	return c.Do(ctx, Call{Method: http.MethodDelete, Path: "/api/clear-meals"})
}

// CreateMeal validates the meal locally before sending it so a bad fixture
// fails without touching the service.
func (c *Client) CreateMeal(ctx context.Context, req types.CreateMealRequest) (*Response, error) {
	if req.Meal == "" {
		return nil, ErrEmptyName
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("invalid price %v: %w", req.Price, ErrInvalidPrice)
	}
	if !req.Difficulty.Valid() {
		return nil, fmt.Errorf("invalid difficulty %q: %w", req.Difficulty, ErrInvalidDifficulty)
	}
	return c.Do(ctx, Call{Method: http.MethodPost, Path: "/api/create-meal", Body: req})
}

func (c *Client) DeleteMeal(ctx context.Context, id int) (*Response, error) {
	return c.Do(ctx, Call{Method: http.MethodDelete, Path: "/api/delete-meal/" + strconv.Itoa(id)})
}

func (c *Client) GetMealByID(ctx context.Context, id int) (*Response, error) {
	return c.Do(ctx, Call{Method: http.MethodGet, Path: "/api/get-meal-by-id/" + strconv.Itoa(id)})
}

func (c *Client) GetMealByName(ctx context.Context, name string) (*Response, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return c.Do(ctx, Call{Method: http.MethodGet, Path: "/api/get-meal-by-name/" + url.PathEscape(name)})
}

// Leaderboard fetches the ranked meal list. An empty sort means wins.
func (c *Client) Leaderboard(ctx context.Context, sort string) (*Response, error) {
	if sort == "" {
		sort = types.SortByWins
	}
	if sort != types.SortByWins && sort != types.SortByWinPct {
		return nil, fmt.Errorf("invalid sort %q: %w", sort, ErrInvalidSort)
	}
	return c.Do(ctx, Call{Method: http.MethodGet, Path: "/api/leaderboard", Query: url.Values{"sort": {sort}}})
}

// --- battle ---

func (c *Client) PrepCombatant(ctx context.Context, meal string) (*Response, error) {
	if meal == "" {
		return nil, ErrEmptyName
	}
	return c.Do(ctx, Call{Method: http.MethodPost, Path: "/api/prep-combatant", Body: types.PrepCombatantRequest{Meal: meal}})
}

func (c *Client) Battle(ctx context.Context) (*Response, error) {
	return c.Do(ctx, Call{Method: http.MethodGet, Path: "/api/battle"})
}

func (c *Client) GetCombatants(ctx context.Context) (*Response, error) {
	return c.Do(ctx, Call{Method: http.MethodGet, Path: "/api/get-combatants"})
}

func (c *Client) ClearCombatants(ctx context.Context) (*Response, error) {
	return c.Do(ctx, Call{Method: http.MethodPost, Path: "/api/clear-combatants"})
}
