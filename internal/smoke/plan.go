package smoke

import "github.com/mealmax/mealmax-smoke/internal/api/types"

// DefaultMeals are the fixtures the default plan creates. Names are distinct.
var DefaultMeals = []types.CreateMealRequest{
	{Meal: "Spaghetti", Cuisine: "Italian", Price: 12.5, Difficulty: types.DifficultyMed},
	{Meal: "Sushi", Cuisine: "Japanese", Price: 15.0, Difficulty: types.DifficultyHigh},
	{Meal: "Tacos", Cuisine: "Mexican", Price: 8.0, Difficulty: types.DifficultyLow},
	{Meal: "Pizza", Cuisine: "Italian", Price: 10.0, Difficulty: types.DifficultyMed},
}

// DefaultPlan is the full smoke sequence: checks, catalog setup, lookups, a
// delete, then one battle between the first two meals.
func DefaultPlan() []Step {
	return Plan(DefaultMeals)
}

// Plan builds the smoke sequence around the given meals. Battle steps are
// included only when at least three meals are given: the last meal is
// deleted and the first two fight.
func Plan(meals []types.CreateMealRequest) []Step {
	steps := []Step{
		HealthCheck(),
		DBCheck(),
		ClearMeals(),
		ClearMeals(),
	}
	for _, m := range meals {
		steps = append(steps, CreateMeal(m))
	}
	for _, m := range meals {
		steps = append(steps, GetMealByName(m.Meal))
	}
	for _, m := range meals {
		steps = append(steps, GetMealByID(m.Meal))
	}
	if len(meals) < 3 {
		return append(steps, Leaderboard(types.SortByWins))
	}

	steps = append(steps,
		DeleteMeal(meals[len(meals)-1].Meal),
		Leaderboard(types.SortByWins),
		ClearCombatants(),
		PrepCombatant(meals[0].Meal),
		PrepCombatant(meals[1].Meal),
		GetCombatants(),
		Battle(),
		Leaderboard(types.SortByWinPct),
		ClearCombatants(),
	)
	return steps
}
