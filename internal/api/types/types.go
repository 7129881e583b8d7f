// Package types contains the MealMax wire types shared by the client, the
// smoke runner and the in-process test service.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Success markers reported by the service.
const (
	StatusSuccess = "success"
	StatusHealthy = "healthy"
	StatusError   = "error"
)

// Difficulty is the ordinal preparation level of a meal.
type Difficulty string

const (
	DifficultyLow  Difficulty = "LOW"
	DifficultyMed  Difficulty = "MED"
	DifficultyHigh Difficulty = "HIGH"
)

// Valid reports whether d is one of LOW, MED or HIGH.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyLow, DifficultyMed, DifficultyHigh:
		return true
	}
	return false
}

// Rank orders difficulties from 1 (LOW) to 3 (HIGH); 0 for unknown values.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyLow:
		return 1
	case DifficultyMed:
		return 2
	case DifficultyHigh:
		return 3
	}
	return 0
}

// Meal is a catalog record. The service calls the name field "meal" and the
// category "cuisine".
type Meal struct {
	ID         int        `json:"id,omitempty"`
	Name       string     `json:"meal"`
	Cuisine    string     `json:"cuisine"`
	Price      float64    `json:"price"`
	Difficulty Difficulty `json:"difficulty"`
}

// LeaderboardEntry is a meal with its battle record.
type LeaderboardEntry struct {
	Meal
	Battles int     `json:"battles"`
	Wins    int     `json:"wins"`
	WinPct  float64 `json:"win_pct"`
}

// Leaderboard sort keys accepted by the service.
const (
	SortByWins   = "wins"
	SortByWinPct = "win_pct"
)

// Result is the common envelope every MealMax response carries. Endpoint
// specific fields are decoded lazily from Raw.
type Result struct {
	Status         string `json:"status,omitempty"`
	DatabaseStatus string `json:"database_status,omitempty"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// Status field names a Marker can inspect.
const (
	FieldStatus         = "status"
	FieldDatabaseStatus = "database_status"
)

// Marker is the success condition of one endpoint: the field it reports in
// and the value that field must hold.
type Marker struct {
	Field string
	Value string
}

var (
	MarkerSuccess         = Marker{Field: FieldStatus, Value: StatusSuccess}
	MarkerHealthy         = Marker{Field: FieldStatus, Value: StatusHealthy}
	MarkerDatabaseHealthy = Marker{Field: FieldDatabaseStatus, Value: StatusHealthy}
)

// Get returns the value of a status field, or "" for unknown fields.
func (r Result) Get(field string) string {
	switch field {
	case FieldStatus:
		return r.Status
	case FieldDatabaseStatus:
		return r.DatabaseStatus
	}
	return ""
}

// OK reports whether the marker's field holds the marker's value. Other
// status fields are ignored.
func (r Result) OK(m Marker) bool {
	return m.Field != "" && r.Get(m.Field) == m.Value
}

// Reason returns the best available explanation for a result that failed m.
func (r Result) Reason(m Marker) string {
	switch {
	case r.Error != "":
		return r.Error
	case r.Message != "":
		return r.Message
	}
	if got := r.Get(m.Field); got != "" {
		return m.Field + " " + got
	}
	return "no " + m.Field + " field in response"
}

// Into decodes the raw body into v.
func (r Result) Into(v any) error {
	return json.Unmarshal(r.Raw, v)
}

// DecodeError is returned when a response body is not a JSON object.
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("response is not a JSON object (%v): %s", e.Err, body)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode parses a MealMax response body into a Result.
func Decode(body []byte) (Result, error) {
	var r Result
	if err := json.Unmarshal(body, &r); err != nil {
		return Result{}, &DecodeError{Body: string(body), Err: err}
	}
	r.Raw = append(json.RawMessage(nil), body...)
	return r, nil
}

// MealResponse is returned by the get-meal-by-id and get-meal-by-name endpoints.
type MealResponse struct {
	Status string `json:"status"`
	Meal   Meal   `json:"meal"`
}

// LeaderboardResponse is returned by the leaderboard endpoint.
type LeaderboardResponse struct {
	Status      string             `json:"status"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// CombatantsResponse is returned by the get-combatants endpoint.
type CombatantsResponse struct {
	Status     string `json:"status"`
	Combatants []Meal `json:"combatants"`
}

// BattleResponse is returned by the battle endpoint.
type BattleResponse struct {
	Status string `json:"status"`
	Winner string `json:"winner"`
}

// CreateMealRequest is the body of create-meal.
type CreateMealRequest struct {
	Meal       string     `json:"meal"`
	Cuisine    string     `json:"cuisine"`
	Price      float64    `json:"price"`
	Difficulty Difficulty `json:"difficulty"`
}

// PrepCombatantRequest is the body of prep-combatant.
type PrepCombatantRequest struct {
	Meal string `json:"meal"`
}
