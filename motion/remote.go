package motion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
)

// floatT mirrors the {"f64": x} payload of generichttp servers
type floatT struct {
	F64 float64 `json:"f64"`
}

// Remote is a Mover talking to a motion server that exposes
// /axis/{axis}/pos and /axis/{axis}/home, such as generichttp/motion
type Remote struct {
	// Addr is the base URL of the controller, e.g. http://localhost:8000/stage
	Addr string

	// Client is the HTTP client used for requests
	Client *http.Client

	// MaxElapsed bounds the time spent retrying requests that failed in
	// transport.  Requests the server answered with an error are not retried;
	// 4xx replies are returned as ErrRejected, or ErrClamped when the server
	// refused a move outside its limits.
	MaxElapsed time.Duration
}

// NewRemote returns a Remote for the controller at addr
func NewRemote(addr string) *Remote {
	return &Remote{
		Addr:       strings.TrimSuffix(addr, "/"),
		Client:     &http.Client{Timeout: 30 * time.Second},
		MaxElapsed: 3 * time.Second,
	}
}

func (r *Remote) url(axis, leaf string) string {
	return fmt.Sprintf("%s/axis/%s/%s", r.Addr, url.PathEscape(axis), leaf)
}

// do performs the request built by mk, retrying transport failures with an
// exponential backoff.  Non-2xx responses are returned as errors without retry.
func (r *Remote) do(mk func() (*http.Request, error), out interface{}) error {
	var reqErr error
	op := func() error {
		req, err := mk()
		if err != nil {
			reqErr = err
			return nil
		}
		resp, err := r.Client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(resp.Body)
			msg := strings.TrimSpace(string(body))
			reqErr = fmt.Errorf("%s %s: %s: %s", req.Method, req.URL.Path, resp.Status, msg)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				cause := ErrRejected
				if strings.Contains(msg, ErrClamped.Error()) {
					cause = ErrClamped
				}
				reqErr = fmt.Errorf("%w: %v", cause, reqErr)
			}
			return nil
		}
		if out != nil {
			reqErr = json.NewDecoder(resp.Body).Decode(out)
		}
		return nil
	}
	err := backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     25 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         1 * time.Second,
		MaxElapsedTime:      r.MaxElapsed,
		Clock:               backoff.SystemClock})
	if err != nil {
		return err
	}
	return reqErr
}

func (r *Remote) post(u string, body interface{}) error {
	return r.do(func() (*http.Request, error) {
		var buf bytes.Buffer
		if body != nil {
			if err := json.NewEncoder(&buf).Encode(body); err != nil {
				return nil, err
			}
		}
		req, err := http.NewRequest(http.MethodPost, u, &buf)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, nil)
}

// GetPos gets the current position of an axis
func (r *Remote) GetPos(axis string) (float64, error) {
	f := floatT{}
	err := r.do(func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, r.url(axis, "pos"), nil)
	}, &f)
	return f.F64, err
}

// MoveAbs moves an axis to an absolute position
func (r *Remote) MoveAbs(axis string, pos float64) error {
	return r.post(r.url(axis, "pos"), floatT{F64: pos})
}

// MoveRel moves an axis a relative amount
func (r *Remote) MoveRel(axis string, delta float64) error {
	return r.post(r.url(axis, "pos")+"?relative=true", floatT{F64: delta})
}

// Home homes an axis
func (r *Remote) Home(axis string) error {
	return r.post(r.url(axis, "home"), nil)
}
