package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mealmax/mealmax-smoke/internal/api/types"
	"github.com/mealmax/mealmax-smoke/internal/client"
	"github.com/mealmax/mealmax-smoke/internal/config"
)

// ErrNoSuccessMarker means the service answered but did not report success.
var ErrNoSuccessMarker = errors.New("success marker missing")

// ResponseError is a semantic failure: the service answered, but the body is
// not what the step expects.
type ResponseError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
}

func (e *ResponseError) Unwrap() error { return e.Err }

// Session is the per-run state shared by steps: the client, the immutable run
// configuration, and meal ids learned from earlier responses.
type Session struct {
	Client *client.Client
	Config config.RunConfig

	out io.Writer
	ids map[string]int
}

func newSession(cfg config.RunConfig, c *client.Client, out io.Writer) *Session {
	return &Session{Client: c, Config: cfg, out: out, ids: make(map[string]int)}
}

// MealID returns the id recorded for name by an earlier lookup.
func (s *Session) MealID(name string) (int, bool) {
	id, ok := s.ids[name]
	return id, ok
}

func (s *Session) rememberMeal(m types.Meal) {
	if m.Name != "" && m.ID > 0 {
		s.ids[m.Name] = m.ID
	}
}

type callFunc func(ctx context.Context) (*client.Response, error)

// expect performs call and requires the decoded body to satisfy marker. When echo is
// set and the run is verbose, a successful body is pretty-printed. Echoing
// happens only after the verdict, so it cannot change it.
func (s *Session) expect(ctx context.Context, marker types.Marker, echo bool, call callFunc) (types.Result, error) {
	resp, err := call(ctx)
	if err != nil {
		return types.Result{}, err
	}
	res, err := resp.Result()
	if err != nil {
		return types.Result{}, &ResponseError{StatusCode: resp.StatusCode, Body: resp.Body, Err: err}
	}
	if !res.OK(marker) {
		return res, &ResponseError{
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
			Err:        fmt.Errorf("%w: %s", ErrNoSuccessMarker, res.Reason(marker)),
		}
	}
	if echo && s.Config.EchoJSON {
		s.echo(resp.Body)
	}
	return res, nil
}

func (s *Session) echo(body []byte) {
	var buf bytes.Buffer
	if json.Indent(&buf, bytes.TrimSpace(body), "", "  ") == nil {
		_, _ = fmt.Fprintln(s.out, buf.String())
	} else {
		_, _ = fmt.Fprintln(s.out, string(body))
	}
}
