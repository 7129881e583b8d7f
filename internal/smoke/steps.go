package smoke

import (
	"context"
	"fmt"

	"github.com/mealmax/mealmax-smoke/internal/api/types"
	"github.com/mealmax/mealmax-smoke/internal/client"
)

// --- health ---

func HealthCheck() Step {
	return Step{Name: "health check", Run: func(ctx context.Context, s *Session) error {
		_, err := s.expect(ctx, types.MarkerHealthy, false, s.Client.Health)
		return err
	}}
}

func DBCheck() Step {
	return Step{Name: "database check", Run: func(ctx context.Context, s *Session) error {
		_, err := s.expect(ctx, types.MarkerDatabaseHealthy, false, s.Client.DBCheck)
		return err
	}}
}

// --- meals ---

func ClearMeals() Step {
	return Step{Name: "clear meals", Run: func(ctx context.Context, s *Session) error {
		_, err := s.expect(ctx, types.MarkerSuccess, false, s.Client.ClearMeals)
		return err
	}}
}

func CreateMeal(m types.CreateMealRequest) Step {
	return Step{Name: "create meal " + m.Meal, Run: func(ctx context.Context, s *Session) error {
		_, err := s.expect(ctx, types.MarkerSuccess, false, func(ctx context.Context) (*client.Response, error) {
			return s.Client.CreateMeal(ctx, m)
		})
		return err
	}}
}

// GetMealByName fetches a meal by name and records its id for later steps.
func GetMealByName(name string) Step {
	return Step{Name: "get meal by name " + name, Run: func(ctx context.Context, s *Session) error {
		res, err := s.expect(ctx, types.MarkerSuccess, true, func(ctx context.Context) (*client.Response, error) {
			return s.Client.GetMealByName(ctx, name)
		})
		if err != nil {
			return err
		}
		m, err := decodeMeal(res, name)
		if err != nil {
			return err
		}
		s.rememberMeal(m)
		return nil
	}}
}

// GetMealByID fetches the meal whose id an earlier GetMealByName recorded and
// checks that the service returns the same name.
func GetMealByID(name string) Step {
	return Step{Name: "get meal by id (" + name + ")", Run: func(ctx context.Context, s *Session) error {
		id, err := resolve(s, name)
		if err != nil {
			return err
		}
		res, err := s.expect(ctx, types.MarkerSuccess, true, func(ctx context.Context) (*client.Response, error) {
			return s.Client.GetMealByID(ctx, id)
		})
		if err != nil {
			return err
		}
		_, err = decodeMeal(res, name)
		return err
	}}
}

func DeleteMeal(name string) Step {
	return Step{Name: "delete meal (" + name + ")", Run: func(ctx context.Context, s *Session) error {
		id, err := resolve(s, name)
		if err != nil {
			return err
		}
		_, err = s.expect(ctx, types.MarkerSuccess, false, func(ctx context.Context) (*client.Response, error) {
			return s.Client.DeleteMeal(ctx, id)
		})
		return err
	}}
}

func Leaderboard(sort string) Step {
	if sort == "" {
		sort = types.SortByWins
	}
	return Step{Name: "leaderboard by " + sort, Run: func(ctx context.Context, s *Session) error {
		_, err := s.expect(ctx, types.MarkerSuccess, true, func(ctx context.Context) (*client.Response, error) {
			return s.Client.Leaderboard(ctx, sort)
		})
		return err
	}}
}

// --- battle ---

func PrepCombatant(name string) Step {
	return Step{Name: "prep combatant " + name, Run: func(ctx context.Context, s *Session) error {
		_, err := s.expect(ctx, types.MarkerSuccess, false, func(ctx context.Context) (*client.Response, error) {
			return s.Client.PrepCombatant(ctx, name)
		})
		return err
	}}
}

func Battle() Step {
	return Step{Name: "battle", Run: func(ctx context.Context, s *Session) error {
		_, err := s.expect(ctx, types.MarkerSuccess, false, s.Client.Battle)
		return err
	}}
}

func GetCombatants() Step {
	return Step{Name: "get combatants", Run: func(ctx context.Context, s *Session) error {
		_, err := s.expect(ctx, types.MarkerSuccess, true, s.Client.GetCombatants)
		return err
	}}
}

func ClearCombatants() Step {
	return Step{Name: "clear combatants", Run: func(ctx context.Context, s *Session) error {
		_, err := s.expect(ctx, types.MarkerSuccess, false, s.Client.ClearCombatants)
		return err
	}}
}

func resolve(s *Session, name string) (int, error) {
	id, ok := s.MealID(name)
	if !ok {
		return 0, fmt.Errorf("no id recorded for meal %q; look it up by name first", name)
	}
	return id, nil
}

func decodeMeal(res types.Result, want string) (types.Meal, error) {
	var mr types.MealResponse
	if err := res.Into(&mr); err != nil {
		return types.Meal{}, fmt.Errorf("decode meal: %w", err)
	}
	if mr.Meal.Name != want {
		return mr.Meal, fmt.Errorf("expected meal %q, got %q", want, mr.Meal.Name)
	}
	return mr.Meal, nil
}
