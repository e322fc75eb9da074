package motion_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi"

	"github.com/nasa-jpl/golascan/generichttp"
	httpmotion "github.com/nasa-jpl/golascan/generichttp/motion"
	"github.com/nasa-jpl/golascan/motion"
	"github.com/nasa-jpl/golascan/util"
)

func TestMockMoves(t *testing.T) {
	c := motion.NewMockController("x", "y")
	if err := c.MoveAbs("x", 3); err != nil {
		t.Fatal(err)
	}
	if err := c.MoveRel("x", -1); err != nil {
		t.Fatal(err)
	}
	pos, _ := c.GetPos("x")
	if pos != 2 {
		t.Errorf("expected x at 2, got %g", pos)
	}
	if pos, _ := c.GetPos("y"); pos != 0 {
		t.Errorf("expected y untouched, got %g", pos)
	}
	if err := c.Home("x"); err != nil {
		t.Fatal(err)
	}
	if pos, _ := c.GetPos("x"); pos != 0 {
		t.Errorf("expected home at 0, got %g", pos)
	}
	if c.Moves() != 3 {
		t.Errorf("expected 3 completed moves, got %d", c.Moves())
	}
}

func TestMockUnknownAxis(t *testing.T) {
	c := motion.NewMockController("x")
	if err := c.MoveAbs("z", 1); !errors.Is(err, motion.ErrUnknownAxis) {
		t.Errorf("expected ErrUnknownAxis, got %v", err)
	}
}

func TestMockDisabled(t *testing.T) {
	c := motion.NewMockController("x")
	_ = c.Disable("x")
	if err := c.MoveAbs("x", 1); !errors.Is(err, motion.ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
	_ = c.Enable("x")
	if err := c.MoveAbs("x", 1); err != nil {
		t.Error(err)
	}
}

func TestMockFaults(t *testing.T) {
	c := motion.NewMockController("x")
	c.FailMoves(2)
	for i := 0; i < 2; i++ {
		if err := c.MoveAbs("x", 1); !errors.Is(err, motion.ErrNotReady) {
			t.Errorf("move %d: expected ErrNotReady, got %v", i, err)
		}
	}
	if err := c.MoveAbs("x", 1); err != nil {
		t.Errorf("faults should be exhausted, got %v", err)
	}
}

func TestMockTravelTime(t *testing.T) {
	c := motion.NewMockController("x")
	_ = c.SetVelocity("x", 1000)
	start := time.Now()
	if err := c.MoveAbs("x", 20); err != nil {
		t.Fatal(err)
	}
	if el := time.Since(start); el < 15*time.Millisecond {
		t.Errorf("a 20 unit move at 1000 units/s took only %v", el)
	}
	if pos, _ := c.GetPos("x"); pos != 20 {
		t.Errorf("expected x at 20, got %g", pos)
	}
}

func TestMockStop(t *testing.T) {
	c := motion.NewMockController("x")
	_ = c.SetVelocity("x", 10)
	done := make(chan error)
	go func() { done <- c.MoveAbs("x", 100) }()
	time.Sleep(20 * time.Millisecond)
	if err := c.Stop("x"); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not abort the move")
	}
	pos, _ := c.GetPos("x")
	if pos <= 0 || pos >= 100 {
		t.Errorf("expected a partial move, got %g", pos)
	}
	inpos, _ := c.GetInPosition("x")
	if !inpos {
		t.Error("axis should be at rest after a stop")
	}
}

func TestLimited(t *testing.T) {
	c := motion.NewMockController("x", "y")
	l := motion.NewLimited(c, map[string]util.Limiter{"x": {Min: -1, Max: 1}})
	if err := l.MoveAbs("x", 2); !errors.Is(err, motion.ErrClamped) {
		t.Errorf("expected ErrClamped, got %v", err)
	}
	if err := l.MoveAbs("x", 0.5); err != nil {
		t.Fatal(err)
	}
	if err := l.MoveRel("x", 0.6); !errors.Is(err, motion.ErrClamped) {
		t.Errorf("expected relative move to be clamped, got %v", err)
	}
	if err := l.MoveAbs("y", 1e6); err != nil {
		t.Errorf("y has no limit, got %v", err)
	}
}

func newRemoteServer(t *testing.T, c *motion.MockController) *httptest.Server {
	t.Helper()
	h := httpmotion.NewHTTPMotionController(c)
	r := chi.NewRouter()
	h.RT().Bind(r)
	root := chi.NewRouter()
	root.Mount(generichttp.SubMuxSanitize("stage"), r)
	srv := httptest.NewServer(root)
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteRoundTrip(t *testing.T) {
	c := motion.NewMockController("x")
	srv := newRemoteServer(t, c)
	r := motion.NewRemote(srv.URL + "/stage/")

	if err := r.MoveAbs("x", 1.5); err != nil {
		t.Fatal(err)
	}
	if err := r.MoveRel("x", 1); err != nil {
		t.Fatal(err)
	}
	pos, err := r.GetPos("x")
	if err != nil {
		t.Fatal(err)
	}
	if pos != 2.5 {
		t.Errorf("expected 2.5, got %g", pos)
	}
	if err := r.Home("x"); err != nil {
		t.Fatal(err)
	}
	if pos, _ := c.GetPos("x"); pos != 0 {
		t.Errorf("expected the mock to be homed, got %g", pos)
	}
}

func TestRemoteServerError(t *testing.T) {
	c := motion.NewMockController("x")
	srv := newRemoteServer(t, c)
	r := motion.NewRemote(srv.URL + "/stage")
	if err := r.MoveAbs("nope", 1); err == nil {
		t.Error("expected an error for an unknown axis")
	}
}

func TestRemoteLimitRejectionIsClamped(t *testing.T) {
	c := motion.NewMockController("x")
	h := httpmotion.NewHTTPMotionController(c)
	lim := httpmotion.LimitMiddleware{Limits: map[string]util.Limiter{"x": {Min: -1, Max: 1}}, Mov: c}
	r := chi.NewRouter()
	r.Use(lim.Check)
	h.RT().Bind(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	rm := motion.NewRemote(srv.URL)
	rm.MaxElapsed = time.Minute
	start := time.Now()
	err := rm.MoveAbs("x", 5)
	if !errors.Is(err, motion.ErrClamped) {
		t.Errorf("expected ErrClamped, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("limit rejection was retried for %v", time.Since(start))
	}
	if pos, _ := c.GetPos("x"); pos != 0 {
		t.Errorf("expected x to stay at 0, got %g", pos)
	}
}

func TestRemoteRejectedNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "controller is locked", http.StatusLocked)
	}))
	defer srv.Close()
	r := motion.NewRemote(srv.URL)
	err := r.MoveAbs("x", 1)
	if !errors.Is(err, motion.ErrRejected) {
		t.Errorf("expected ErrRejected, got %v", err)
	}
	if errors.Is(err, motion.ErrClamped) {
		t.Errorf("a locked controller is not a limit violation: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected a single request, got %d", n)
	}
}

func TestRemoteRetriesTransport(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			// drop the connection without a response
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("server does not support hijacking")
			}
			conn, _, _ := hj.Hijack()
			conn.Close()
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"f64": 4.25}`))
	}))
	defer srv.Close()
	r := motion.NewRemote(srv.URL)
	pos, err := r.GetPos("x")
	if err != nil {
		t.Fatal(err)
	}
	if pos != 4.25 {
		t.Errorf("expected 4.25, got %g", pos)
	}
	if n := atomic.LoadInt32(&calls); n < 3 {
		t.Errorf("expected retries, got %d calls", n)
	}
}
