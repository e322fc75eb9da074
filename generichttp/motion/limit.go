package motion

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi"

	"github.com/nasa-jpl/golascan/generichttp"
	"github.com/nasa-jpl/golascan/motion"
	"github.com/nasa-jpl/golascan/util"
)

// LimitMiddleware imposes axis-specific limits on POST .../pos requests.
// A request whose target violates a limit is answered with 400 and never
// reaches the controller.
type LimitMiddleware struct {
	// Limits contains the server imposed limits on the controller
	Limits map[string]util.Limiter

	// Mov is a reference to the mover, used to query axis positions
	Mov motion.Mover
}

// Check is the middleware func
func (l *LimitMiddleware) Check(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/pos") {
			next.ServeHTTP(w, r)
			return
		}
		// chi has not routed the request yet, so the axis comes from the path
		parts := strings.Split(strings.TrimSuffix(r.URL.Path, "/pos"), "/")
		axis := parts[len(parts)-1]
		if _, ok := l.Limits[axis]; !ok {
			next.ServeHTTP(w, r)
			return
		}
		relative := r.URL.Query().Get("relative") == "true"

		// downstream handlers want the body, read it here and put it back
		body, err := io.ReadAll(r.Body)
		r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		f := generichttp.FloatT{}
		if err := json.Unmarshal(body, &f); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		lim := motion.NewLimited(l.Mov, l.Limits)
		target := f.F64
		if relative {
			pos, err := l.Mov.GetPos(axis)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			target += pos
		}
		if err := lim.CheckTarget(axis, target); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, motion.ErrClamped) {
				status = http.StatusBadRequest
			}
			http.Error(w, err.Error(), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Inject places a /axis/{axis}/limits route on the table of the HTTPer
func (l LimitMiddleware) Inject(h generichttp.HTTPer) {
	h.RT()[axisRoute(http.MethodGet, "limits")] = Limits(l)
}

// Limits returns an HTTP handler func that returns the limits for an axis,
// or null if the axis is not limited
func Limits(l LimitMiddleware) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lim, ok := l.Limits[chi.URLParam(r, "axis")]
		if !ok {
			generichttp.WriteJSON(w, nil)
			return
		}
		generichttp.WriteJSON(w, lim)
	}
}
