package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mealmax/mealmax-smoke/internal/api/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockServer records the last request and returns a configurable response.
type mockServer struct {
	server      *httptest.Server
	calls       int
	lastMethod  string
	lastPath    string
	lastQuery   string
	lastBody    string
	lastHeaders http.Header
	response    string
	statusCode  int
}

func newMockServer(t *testing.T) *mockServer {
	m := &mockServer{statusCode: 200, response: `{"status":"success"}`}
	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.calls++
		m.lastMethod = r.Method
		m.lastPath = r.URL.EscapedPath()
		m.lastQuery = r.URL.RawQuery
		m.lastHeaders = r.Header
		if r.Body != nil {
			body, _ := io.ReadAll(r.Body)
			m.lastBody = string(body)
		}
		w.WriteHeader(m.statusCode)
		_, _ = w.Write([]byte(m.response))
	}))
	t.Cleanup(m.server.Close)
	return m
}

func (m *mockServer) client() *Client { return New(m.server.URL+"/", m.server.Client()) }

func TestEndpointsRouteToContract(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		call   func(c *Client) (*Response, error)
		method string
		path   string
		query  string
	}{
		{"health", func(c *Client) (*Response, error) { return c.Health(ctx) }, "GET", "/api/health", ""},
		{"db check", func(c *Client) (*Response, error) { return c.DBCheck(ctx) }, "GET", "/api/db-check", ""},
		{"clear meals", func(c *Client) (*Response, error) { return c.ClearMeals(ctx) }, "DELETE", "/api/clear-meals", ""},
		{"delete", func(c *Client) (*Response, error) { return c.DeleteMeal(ctx, 3) }, "DELETE", "/api/delete-meal/3", ""},
		{"by id", func(c *Client) (*Response, error) { return c.GetMealByID(ctx, 2) }, "GET", "/api/get-meal-by-id/2", ""},
		{"by name", func(c *Client) (*Response, error) { return c.GetMealByName(ctx, "Mac and Cheese") }, "GET", "/api/get-meal-by-name/Mac%20and%20Cheese", ""},
		{"leaderboard", func(c *Client) (*Response, error) { return c.Leaderboard(ctx, "") }, "GET", "/api/leaderboard", "sort=wins"},
		{"leaderboard pct", func(c *Client) (*Response, error) { return c.Leaderboard(ctx, "win_pct") }, "GET", "/api/leaderboard", "sort=win_pct"},
		{"battle", func(c *Client) (*Response, error) { return c.Battle(ctx) }, "GET", "/api/battle", ""},
		{"combatants", func(c *Client) (*Response, error) { return c.GetCombatants(ctx) }, "GET", "/api/get-combatants", ""},
		{"clear combatants", func(c *Client) (*Response, error) { return c.ClearCombatants(ctx) }, "POST", "/api/clear-combatants", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockServer(t)
			resp, err := tt.call(m.client())
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
			assert.Equal(t, tt.method, m.lastMethod)
			assert.Equal(t, tt.path, m.lastPath)
			assert.Equal(t, tt.query, m.lastQuery)
		})
	}
}

func TestCreateMealSendsJSON(t *testing.T) {
	m := newMockServer(t)
	_, err := m.client().CreateMeal(context.Background(), types.CreateMealRequest{
		Meal: "Spaghetti", Cuisine: "Italian", Price: 12.5, Difficulty: types.DifficultyMed,
	})
	require.NoError(t, err)

	assert.Equal(t, "POST", m.lastMethod)
	assert.Equal(t, "/api/create-meal", m.lastPath)
	assert.Equal(t, "application/json", m.lastHeaders.Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(m.lastBody), &body))
	assert.Equal(t, "Spaghetti", body["meal"])
	assert.Equal(t, "Italian", body["cuisine"])
	assert.Equal(t, 12.5, body["price"])
	assert.Equal(t, "MED", body["difficulty"])
}

func TestPrepCombatantSendsName(t *testing.T) {
	m := newMockServer(t)
	_, err := m.client().PrepCombatant(context.Background(), "Sushi")
	require.NoError(t, err)
	assert.JSONEq(t, `{"meal":"Sushi"}`, m.lastBody)
}

func TestLocalValidationSkipsRequest(t *testing.T) {
	ctx := context.Background()
	m := newMockServer(t)
	c := m.client()

	_, err := c.CreateMeal(ctx, types.CreateMealRequest{Meal: "Pasta", Cuisine: "Italian", Price: -10, Difficulty: types.DifficultyMed})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = c.CreateMeal(ctx, types.CreateMealRequest{Meal: "Pasta", Cuisine: "Italian", Price: 10.99, Difficulty: "EASY"})
	assert.ErrorIs(t, err, ErrInvalidDifficulty)

	_, err = c.CreateMeal(ctx, types.CreateMealRequest{Cuisine: "Italian", Price: 10.99, Difficulty: types.DifficultyLow})
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = c.Leaderboard(ctx, "invalid_sort")
	assert.ErrorIs(t, err, ErrInvalidSort)

	_, err = c.PrepCombatant(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyName)

	assert.Equal(t, 0, m.calls)
}

func TestErrorStatusIsNotTransportError(t *testing.T) {
	m := newMockServer(t)
	m.statusCode = 400
	m.response = `{"status":"error","error":"Meal with ID 9 not found"}`

	resp, err := m.client().GetMealByID(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	r, err := resp.Result()
	require.NoError(t, err)
	assert.False(t, r.OK(types.MarkerSuccess))
	assert.Equal(t, "Meal with ID 9 not found", r.Reason(types.MarkerSuccess))
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := New(base, nil).Health(context.Background())
	var te *TransportError
	require.True(t, errors.As(err, &te), "expected *TransportError, got %v", err)
	assert.Equal(t, "GET", te.Method)
	assert.Equal(t, "/api/health", te.Path)
}

func TestCanceledContext(t *testing.T) {
	m := newMockServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.client().Health(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, m.calls)
}

func TestCallString(t *testing.T) {
	assert.Equal(t, "GET /api/health", Call{Method: "GET", Path: "/api/health"}.String())
	c := Call{Method: "GET", Path: "/api/leaderboard"}
	c.Query = map[string][]string{"sort": {"wins"}}
	assert.Equal(t, "GET /api/leaderboard?sort=wins", c.String())
}
