// Package motion provides an HTTP interface to motion controllers.
//
// NewHTTPMotionController binds the routes of every capability interface of
// the motion package the controller implements, discovered by type assertion.
package motion

import (
	"encoding/json"
	"go/types"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/nasa-jpl/golascan/generichttp"
	"github.com/nasa-jpl/golascan/motion"
)

func axisRoute(method, leaf string) generichttp.MethodPath {
	return generichttp.MethodPath{Method: method, Path: "/axis/{axis}/" + leaf}
}

// getAxis replies with the value fcn returns for the axis in the URL
func getAxis[T float64 | bool](fcn func(string) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := fcn(chi.URLParam(r, "axis"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		var hp generichttp.HumanPayload
		switch x := any(v).(type) {
		case float64:
			hp = generichttp.HumanPayload{T: types.Float64, Float: x}
		case bool:
			hp = generichttp.HumanPayload{T: types.Bool, Bool: x}
		}
		hp.EncodeAndRespond(w, r)
	}
}

// axisAction calls fcn with the axis in the URL
func axisAction(fcn func(string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fcn(chi.URLParam(r, "axis")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func popAxisRelative(r *http.Request) (string, bool, error) {
	axis := chi.URLParam(r, "axis")
	relative := r.URL.Query().Get("relative")
	if relative == "" {
		relative = "false"
	}
	b, err := strconv.ParseBool(relative)
	return axis, b, err
}

// SetPos returns an HTTP handler func from a mover that triggers an absolute or
// relative move on an axis based on the relative query parameter
func SetPos(m motion.Mover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		axis, rel, err := popAxisRelative(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f := generichttp.FloatT{}
		err = json.NewDecoder(r.Body).Decode(&f)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if rel {
			err = m.MoveRel(axis, f.F64)
		} else {
			err = m.MoveAbs(axis, f.F64)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// SetEnabled returns an HTTP handler func that enables or disables the axis
// according to {"bool": x}
func SetEnabled(e motion.Enabler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		axis := chi.URLParam(r, "axis")
		b := generichttp.BoolT{}
		err := json.NewDecoder(r.Body).Decode(&b)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if b.Bool {
			err = e.Enable(axis)
		} else {
			err = e.Disable(axis)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// SetVelocity returns an HTTP handler func which sets the velocity setpoint on an axis
func SetVelocity(s motion.Speeder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		axis := chi.URLParam(r, "axis")
		generichttp.SetFloat(func(f float64) error {
			return s.SetVelocity(axis, f)
		})(w, r)
	}
}

// HTTPMove adds routes for the mover to the route table
func HTTPMove(m motion.Mover, table generichttp.RouteTable) {
	table[axisRoute(http.MethodGet, "pos")] = getAxis(m.GetPos)
	table[axisRoute(http.MethodPost, "pos")] = SetPos(m)
	table[axisRoute(http.MethodPost, "home")] = axisAction(m.Home)
}

// HTTPEnable adds routes for the enabler to the route table
func HTTPEnable(e motion.Enabler, table generichttp.RouteTable) {
	table[axisRoute(http.MethodGet, "enabled")] = getAxis(e.GetEnabled)
	table[axisRoute(http.MethodPost, "enabled")] = SetEnabled(e)
}

// HTTPSpeed adds routes for the speeder to the route table
func HTTPSpeed(s motion.Speeder, table generichttp.RouteTable) {
	table[axisRoute(http.MethodGet, "velocity")] = getAxis(s.GetVelocity)
	table[axisRoute(http.MethodPost, "velocity")] = SetVelocity(s)
}

// HTTPStop adds the stop route to the route table
func HTTPStop(s motion.Stopper, table generichttp.RouteTable) {
	table[axisRoute(http.MethodPost, "stop")] = axisAction(s.Stop)
}

// HTTPInPosition adds the inposition route to the route table
func HTTPInPosition(i motion.InPositionQueryer, table generichttp.RouteTable) {
	table[axisRoute(http.MethodGet, "inposition")] = getAxis(i.GetInPosition)
}

// HTTPMotionController wraps a motion controller with HTTP
type HTTPMotionController struct {
	motion.Controller

	RouteTable generichttp.RouteTable
}

// NewHTTPMotionController returns a new HTTP wrapper with the route table pre-configured
func NewHTTPMotionController(c motion.Controller) HTTPMotionController {
	w := HTTPMotionController{Controller: c}
	rt := generichttp.RouteTable{}
	HTTPMove(c, rt)
	if enabler, ok := c.(motion.Enabler); ok {
		HTTPEnable(enabler, rt)
	}
	if speeder, ok := c.(motion.Speeder); ok {
		HTTPSpeed(speeder, rt)
	}
	if stopper, ok := c.(motion.Stopper); ok {
		HTTPStop(stopper, rt)
	}
	if inpos, ok := c.(motion.InPositionQueryer); ok {
		HTTPInPosition(inpos, rt)
	}
	w.RouteTable = rt
	return w
}

// RT satisfies the HTTPer interface
func (h HTTPMotionController) RT() generichttp.RouteTable {
	return h.RouteTable
}
