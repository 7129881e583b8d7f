package mealmaxtest

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mealmax/mealmax-smoke/internal/api/types"
	"github.com/mealmax/mealmax-smoke/internal/web"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	web.JSON(w, 200, map[string]string{"status": types.StatusHealthy})
}

func (s *Server) handleDBCheck(w http.ResponseWriter, r *http.Request) {
	web.JSON(w, 200, map[string]string{"database_status": types.StatusHealthy})
}

// --- meals ---

func (s *Server) handleClearMeals(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.meals = nil
	s.nextID = 1
	s.combatants = nil
	s.mu.Unlock()
	web.Success(w, 200, nil)
}

func (s *Server) handleCreateMeal(w http.ResponseWriter, r *http.Request) {
	var req types.CreateMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, 400, fmt.Errorf("invalid JSON body: %w", err))
		return
	}
	if req.Meal == "" || req.Cuisine == "" || req.Difficulty == "" {
		web.Error(w, 400, fmt.Errorf("invalid input, all fields are required with valid values"))
		return
	}
	if req.Price <= 0 {
		web.Error(w, 400, fmt.Errorf("invalid price: %v. Price must be a positive number", req.Price))
		return
	}
	if !req.Difficulty.Valid() {
		web.Error(w, 400, fmt.Errorf("invalid difficulty level: %s. Must be 'LOW', 'MED', or 'HIGH'", req.Difficulty))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.meals {
		if m.Name == req.Meal {
			web.Error(w, 400, fmt.Errorf("meal with name '%s' already exists", req.Meal))
			return
		}
	}
	m := &meal{Meal: types.Meal{
		ID:         s.nextID,
		Name:       req.Meal,
		Cuisine:    req.Cuisine,
		Price:      req.Price,
		Difficulty: req.Difficulty,
	}}
	s.nextID++
	s.meals = append(s.meals, m)
	web.Success(w, 201, map[string]any{"meal": m.Name})
}

// lookup returns a live meal by predicate. Callers hold s.mu.
func (s *Server) lookup(match func(*meal) bool, label string) (*meal, error) {
	for _, m := range s.meals {
		if match(m) {
			if m.deleted {
				return nil, fmt.Errorf("meal with %s has been deleted", label)
			}
			return m, nil
		}
	}
	return nil, fmt.Errorf("meal with %s not found", label)
}

func (s *Server) byID(r *http.Request) (*meal, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return nil, fmt.Errorf("invalid meal id: %w", err)
	}
	return s.lookup(func(m *meal) bool { return m.ID == id }, "ID "+strconv.Itoa(id))
}

func (s *Server) handleDeleteMeal(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.byID(r)
	if err != nil {
		web.Error(w, 400, err)
		return
	}
	m.deleted = true
	web.Success(w, 200, nil)
}

func (s *Server) handleGetMealByID(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.byID(r)
	if err != nil {
		web.Error(w, 400, err)
		return
	}
	web.Success(w, 200, map[string]any{"meal": m.Meal})
}

func (s *Server) handleGetMealByName(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(mux.Vars(r)["name"])
	if err != nil {
		web.Error(w, 400, fmt.Errorf("invalid meal name: %w", err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.lookup(func(m *meal) bool { return m.Name == name }, "name "+name)
	if err != nil {
		web.Error(w, 400, err)
		return
	}
	web.Success(w, 200, map[string]any{"meal": m.Meal})
}

// handleLeaderboard lists live meals that have fought at least once.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("sort")
	if key == "" {
		key = types.SortByWins
	}
	if key != types.SortByWins && key != types.SortByWinPct {
		web.Error(w, 400, fmt.Errorf("invalid sort_by parameter: %s", key))
		return
	}

	s.mu.Lock()
	board := make([]types.LeaderboardEntry, 0, len(s.meals))
	for _, m := range s.meals {
		if m.deleted || m.battles == 0 {
			continue
		}
		board = append(board, types.LeaderboardEntry{
			Meal:    m.Meal,
			Battles: m.battles,
			Wins:    m.wins,
			WinPct:  math.Round(float64(m.wins)/float64(m.battles)*1000) / 10,
		})
	}
	s.mu.Unlock()

	sort.SliceStable(board, func(i, j int) bool {
		if key == types.SortByWinPct {
			return board[i].WinPct > board[j].WinPct
		}
		return board[i].Wins > board[j].Wins
	})
	web.Success(w, 200, map[string]any{"leaderboard": board})
}

// --- battle ---

func (s *Server) handlePrepCombatant(w http.ResponseWriter, r *http.Request) {
	var req types.PrepCombatantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Meal == "" {
		web.Error(w, 400, fmt.Errorf("you must name a combatant"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.lookup(func(m *meal) bool { return m.Name == req.Meal }, "name "+req.Meal)
	if err != nil {
		web.Error(w, 400, err)
		return
	}
	if len(s.combatants) >= maxCombatants {
		web.Error(w, 400, fmt.Errorf("combatant list is full, cannot add more combatants"))
		return
	}
	s.combatants = append(s.combatants, m.Meal)
	web.Success(w, 200, map[string]any{"combatants": s.combatants})
}

// Score is price times cuisine length, minus 3, 2 or 1 for LOW, MED, HIGH.
func Score(m types.Meal) float64 {
	return m.Price*float64(len(m.Cuisine)) - float64(4-m.Difficulty.Rank())
}

func (s *Server) handleBattle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.combatants) < maxCombatants {
		web.Error(w, 400, fmt.Errorf("two combatants must be prepped for a battle"))
		return
	}

	c1, c2 := s.combatants[0], s.combatants[1]
	delta := math.Abs(Score(c1)-Score(c2)) / 100
	winner, loser := c2, c1
	if delta > s.Rand() {
		winner, loser = c1, c2
	}

	for _, m := range s.meals {
		switch m.ID {
		case winner.ID:
			m.battles++
			m.wins++
		case loser.ID:
			m.battles++
		}
	}
	s.combatants = []types.Meal{winner}
	web.Success(w, 200, map[string]any{"winner": winner.Name})
}

func (s *Server) handleGetCombatants(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	combatants := append([]types.Meal{}, s.combatants...)
	s.mu.Unlock()
	web.Success(w, 200, map[string]any{"combatants": combatants})
}

func (s *Server) handleClearCombatants(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.combatants = nil
	s.mu.Unlock()
	web.Success(w, 200, nil)
}
