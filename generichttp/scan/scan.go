// Package scan provides an HTTP interface to a scanner and the acquisition
// runner that consumes it.
package scan

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/nasa-jpl/golascan/acquire"
	"github.com/nasa-jpl/golascan/adaptive"
	"github.com/nasa-jpl/golascan/generichttp"
	"github.com/nasa-jpl/golascan/motion"
	"github.com/nasa-jpl/golascan/scan"
	"github.com/nasa-jpl/golascan/scanner"
)

// TypeT is the JSON form of a scan type selection
type TypeT struct {
	Type    scan.Type    `json:"type"`
	Subtype scan.Subtype `json:"subtype"`
}

var badRequest = []error{
	scan.ErrInvalidType,
	scan.ErrInvalidSubtype,
	scan.ErrAdaptiveUnavailable,
	scan.ErrAxesMismatch,
	scan.ErrNoPositions,
	scan.ErrSpiralAxisMismatch,
	scan.ErrDegenerateAxis,
	motion.ErrClamped,
	acquire.ErrNoActuator,
}

// status maps an error to the HTTP status it is reported with
func status(err error) int {
	for _, e := range badRequest {
		if errors.Is(err, e) {
			return http.StatusBadRequest
		}
	}
	if errors.Is(err, acquire.ErrBusy) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func replyErr(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), status(err))
}

// decode unmarshals the request body into v, replying 400 on failure
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// setter decodes a T and passes it to fcn
func setter[T any](fcn func(T) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v T
		if !decode(w, r, &v) {
			return
		}
		if err := fcn(v); err != nil {
			replyErr(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// getter replies with the JSON encoding of what fcn returns
func getter[T any](fcn func() T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		generichttp.WriteJSON(w, fcn())
	}
}

// GetType replies with the selected type and subtype
func GetType(s *scanner.Scanner) http.HandlerFunc {
	return getter(func() TypeT {
		t, sub := s.ScanType()
		return TypeT{Type: t, Subtype: sub}
	})
}

// SetType selects the scan type, and optionally its subtype
func SetType(s *scanner.Scanner) http.HandlerFunc {
	return setter(func(v TypeT) error {
		return s.SetScanType(v.Type, v.Subtype)
	})
}

// GetSubtypes replies with the subtypes of the type in the query string,
// or of the selected type if there is none
func GetSubtypes(s *scanner.Scanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := scan.Type(r.URL.Query().Get("type"))
		if t == "" {
			t, _ = s.ScanType()
		}
		subs := scan.AllowedSubtypes(t)
		if len(subs) == 0 {
			http.Error(w, fmt.Sprintf("%v %q", scan.ErrInvalidType, t), http.StatusBadRequest)
			return
		}
		generichttp.WriteJSON(w, subs)
	}
}

// GetLosses replies with the adaptive loss names available to the scan type
// named by the type query parameter, the current type if absent.  The
// default loss comes first.
func GetLosses(s *scanner.Scanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := scan.Type(r.URL.Query().Get("type"))
		if t == "" {
			t, _ = s.ScanType()
		}
		if len(scan.AllowedSubtypes(t)) == 0 {
			http.Error(w, fmt.Sprintf("%v %q", scan.ErrInvalidType, t), http.StatusBadRequest)
			return
		}
		losses := adaptive.Losses(scan.AdaptiveDim(t))
		if losses == nil {
			losses = []string{}
		}
		generichttp.WriteJSON(w, losses)
	}
}

// GetSettings replies with the settings of the scan type named in the URL
func GetSettings(s *scanner.Scanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v interface{}
		switch chi.URLParam(r, "kind") {
		case "scan1d":
			v = s.Scan1D()
		case "scan2d":
			v = s.Scan2D()
		case "sequential":
			v = s.Sequential()
		case "tabular":
			v = s.Tabular()
		default:
			http.NotFound(w, r)
			return
		}
		generichttp.WriteJSON(w, v)
	}
}

// SetSettings replaces the settings of the scan type named in the URL
func SetSettings(s *scanner.Scanner) http.HandlerFunc {
	kinds := map[string]http.HandlerFunc{
		"scan1d":     setter(s.SetScan1D),
		"scan2d":     setter(s.SetScan2D),
		"sequential": setter(s.SetSequential),
		"tabular":    setter(s.SetTabular),
	}
	return func(w http.ResponseWriter, r *http.Request) {
		h, ok := kinds[chi.URLParam(r, "kind")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}
}

// HTTPScanner binds a scanner and, optionally, an acquisition runner to a route table
type HTTPScanner struct {
	Scanner *scanner.Scanner
	Runner  *acquire.Runner

	RouteTable generichttp.RouteTable
}

// NewHTTPScanner returns the HTTP interface to s.  r may be nil, in which
// case the acquisition routes are not bound.
func NewHTTPScanner(s *scanner.Scanner, r *acquire.Runner) HTTPScanner {
	h := HTTPScanner{Scanner: s, Runner: r}
	rt := generichttp.RouteTable{
		{Method: http.MethodGet, Path: "/scan/types"}:            getter(scan.Types),
		{Method: http.MethodGet, Path: "/scan/type"}:             GetType(s),
		{Method: http.MethodPost, Path: "/scan/type"}:            SetType(s),
		{Method: http.MethodGet, Path: "/scan/subtypes"}:         GetSubtypes(s),
		{Method: http.MethodGet, Path: "/scan/losses"}:           GetLosses(s),
		{Method: http.MethodGet, Path: "/scan/actuators"}:        getter(s.Actuators),
		{Method: http.MethodPost, Path: "/scan/actuators"}:       setter(s.SetActuators),
		{Method: http.MethodGet, Path: "/scan/settings/{kind}"}:  GetSettings(s),
		{Method: http.MethodPost, Path: "/scan/settings/{kind}"}: SetSettings(s),
		{Method: http.MethodPost, Path: "/scan/positions"}:       setter(s.SetPositions),
		{Method: http.MethodPost, Path: "/scan/roi"}:             setter(s.SetROI),
		{Method: http.MethodPost, Path: "/scan/seed"}:            generichttp.SetInt(func(i int) error { return s.SetSeed(int64(i)) }),
		{Method: http.MethodGet, Path: "/scan/info"}:             getter(s.Info),
		{Method: http.MethodGet, Path: "/scan/nsteps"}:           generichttp.GetInt(func() (int, error) { return s.NSteps(), nil }),
		{Method: http.MethodGet, Path: "/scan/estimate"}:         generichttp.GetFloat(func() (float64, error) { return s.Estimate(), nil }),
		{Method: http.MethodGet, Path: "/scan/overshoot"}:        generichttp.GetBool(func() (bool, error) { return s.Overshoot(), nil }),
		{Method: http.MethodGet, Path: "/scan/spiral/stops"}:     getter(s.SpiralStops),
	}
	if r != nil {
		rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/acquire/start"}] = h.start
		rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/acquire/stop"}] = h.stop
		rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/acquire/status"}] = getter(r.Status)
	}
	h.RouteTable = rt
	return h
}

// RT satisfies generichttp.HTTPer
func (h HTTPScanner) RT() generichttp.RouteTable {
	return h.RouteTable
}

func (h HTTPScanner) start(w http.ResponseWriter, r *http.Request) {
	snap := h.Scanner.Snapshot()
	if snap.Overshoot {
		http.Error(w, "scan exceeds the steps limit", http.StatusBadRequest)
		return
	}
	if err := h.Runner.Start(snap.Actuators, snap.Params, snap.Info); err != nil {
		replyErr(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h HTTPScanner) stop(w http.ResponseWriter, r *http.Request) {
	h.Runner.Stop()
	w.WriteHeader(http.StatusOK)
}
