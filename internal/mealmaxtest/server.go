// Package mealmaxtest provides an in-process MealMax service for tests,
// in the spirit of net/http/httptest. It keeps meals and combatants in memory
// and serves the same wire contract as the real service.
package mealmaxtest

import (
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gorilla/mux"
	"github.com/mealmax/mealmax-smoke/internal/api/types"
	"github.com/mealmax/mealmax-smoke/internal/web"
)

// Route names, usable with Override.
const (
	RouteHealth          = "health"
	RouteDBCheck         = "db-check"
	RouteClearMeals      = "clear-meals"
	RouteCreateMeal      = "create-meal"
	RouteDeleteMeal      = "delete-meal"
	RouteGetMealByID     = "get-meal-by-id"
	RouteGetMealByName   = "get-meal-by-name"
	RouteLeaderboard     = "leaderboard"
	RoutePrepCombatant   = "prep-combatant"
	RouteBattle          = "battle"
	RouteGetCombatants   = "get-combatants"
	RouteClearCombatants = "clear-combatants"
)

const maxCombatants = 2

type meal struct {
	types.Meal
	battles int
	wins    int
	deleted bool
}

type override struct {
	code int
	body string
}

type Server struct {
	*httptest.Server

	mu         sync.Mutex
	meals      []*meal
	nextID     int
	combatants []types.Meal
	overrides  map[string]override
	requests   []string

	// Rand returns the battle tie-breaker in [0, 1). Replace it for
	// deterministic winners.
	Rand func() float64
}

// NewServer starts a service with an empty catalog. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		nextID:    1,
		overrides: make(map[string]override),
		Rand:      rand.Float64,
	}
	s.Server = httptest.NewServer(s.Handler())
	return s
}

// Handler returns the service router without starting a listener.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter().UseEncodedPath()
	r.Use(s.record, s.injectOverrides)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet).Name(RouteHealth)
	api.HandleFunc("/db-check", s.handleDBCheck).Methods(http.MethodGet).Name(RouteDBCheck)
	api.HandleFunc("/clear-meals", s.handleClearMeals).Methods(http.MethodDelete).Name(RouteClearMeals)
	api.HandleFunc("/create-meal", s.handleCreateMeal).Methods(http.MethodPost).Name(RouteCreateMeal)
	api.HandleFunc("/delete-meal/{id:[0-9]+}", s.handleDeleteMeal).Methods(http.MethodDelete).Name(RouteDeleteMeal)
	api.HandleFunc("/get-meal-by-id/{id:[0-9]+}", s.handleGetMealByID).Methods(http.MethodGet).Name(RouteGetMealByID)
	api.HandleFunc("/get-meal-by-name/{name}", s.handleGetMealByName).Methods(http.MethodGet).Name(RouteGetMealByName)
	api.HandleFunc("/leaderboard", s.handleLeaderboard).Methods(http.MethodGet).Name(RouteLeaderboard)
	api.HandleFunc("/prep-combatant", s.handlePrepCombatant).Methods(http.MethodPost).Name(RoutePrepCombatant)
	api.HandleFunc("/battle", s.handleBattle).Methods(http.MethodGet).Name(RouteBattle)
	api.HandleFunc("/get-combatants", s.handleGetCombatants).Methods(http.MethodGet).Name(RouteGetCombatants)
	api.HandleFunc("/clear-combatants", s.handleClearCombatants).Methods(http.MethodPost).Name(RouteClearCombatants)
	return r
}

// Override makes the named route answer with a fixed status and raw body
// instead of running its handler.
func (s *Server) Override(route string, code int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[route] = override{code: code, body: body}
}

// Requests returns "METHOD /path" for every request served, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.EscapedPath())
		s.mu.Unlock()

		sw := &web.StatusWriter{ResponseWriter: w, Code: 200}
		next.ServeHTTP(sw, r)
		slog.Debug("mealmaxtest request", "method", r.Method, "path", r.URL.Path, "status", sw.Code)
	})
}

func (s *Server) injectOverrides(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := mux.CurrentRoute(r)
		if route != nil {
			s.mu.Lock()
			o, ok := s.overrides[route.GetName()]
			s.mu.Unlock()
			if ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(o.code)
				_, _ = w.Write([]byte(o.body))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
