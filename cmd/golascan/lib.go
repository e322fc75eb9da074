package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/astrogo/fitsio"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/nasa-jpl/golascan/acquire"
	"github.com/nasa-jpl/golascan/config"
	"github.com/nasa-jpl/golascan/detector"
	"github.com/nasa-jpl/golascan/generichttp"
	httpmotion "github.com/nasa-jpl/golascan/generichttp/motion"
	httpscan "github.com/nasa-jpl/golascan/generichttp/scan"
	"github.com/nasa-jpl/golascan/motion"
	"github.com/nasa-jpl/golascan/scanner"
	"github.com/nasa-jpl/golascan/server"
	"github.com/nasa-jpl/golascan/server/middleware/locker"
	"github.com/nasa-jpl/golascan/storage"
	"github.com/nasa-jpl/golascan/util"
)

// stage is a configured controller with the actuators it provides
type stage struct {
	cfg       config.Stage
	ctrl      motion.Controller
	actuators []acquire.Actuator
}

// rig holds everything an acquisition needs
type rig struct {
	stages  []stage
	scanner *scanner.Scanner
	seq     *acquire.Sequencer
}

func buildStages(c config.Config) ([]stage, error) {
	var out []stage
	seen := map[string]bool{}
	for _, s := range c.Stages {
		var ctrl motion.Controller
		typ := strings.ToLower(s.Type)
		if c.Mock {
			typ = "mock"
		}
		switch typ {
		case "mock", "":
			ctrl = motion.NewMockController(s.Axes...)
		case "remote":
			if s.Addr == "" {
				return nil, fmt.Errorf("stage %s: remote stages need an addr", s.Name)
			}
			ctrl = motion.NewRemote(s.Addr)
		default:
			return nil, fmt.Errorf("stage %s: type %q not understood", s.Name, s.Type)
		}
		st := stage{cfg: s, ctrl: ctrl}
		lim := motion.NewLimited(ctrl, s.Limits)
		for _, ax := range s.Axes {
			if seen[ax] {
				return nil, fmt.Errorf("stage %s: axis %s is already provided by another stage", s.Name, ax)
			}
			seen[ax] = true
			st.actuators = append(st.actuators, acquire.Actuator{Name: ax, Axis: ax, Mover: lim})
		}
		out = append(out, st)
	}
	return out, nil
}

func acquireConfig(a config.Acquisition) acquire.Config {
	return acquire.Config{
		SettleTime:        util.SecsToDuration(a.SettleSeconds),
		MaxRate:           a.MaxRate,
		MoveTimeout:       util.SecsToDuration(a.MoveRetrySeconds),
		AdaptiveMaxPoints: a.AdaptiveMaxPoints,
		AdaptiveLossGoal:  a.AdaptiveLossGoal,
	}
}

// buildRig constructs the stages, the scanner bound to their axes, and a
// sequencer reading the configured simulated detectors
func buildRig(c config.Config) (*rig, error) {
	stages, err := buildStages(c)
	if err != nil {
		return nil, err
	}
	var acts []acquire.Actuator
	for _, s := range stages {
		acts = append(acts, s.actuators...)
	}
	sc, err := scanner.New(c.Scan, c.Actuators())
	if err != nil {
		return nil, err
	}
	dets := make([]detector.Detector, 0, len(c.Detectors))
	for i, d := range c.Detectors {
		g := detector.NewGaussian(d.Name, d.Center, d.Sigma, d.Amplitude, acquire.PositionOf(acts), int64(i+1))
		g.Noise = d.Noise
		dets = append(dets, g)
	}
	seq, err := acquire.New(acquireConfig(c.Acquisition), acts, dets, log.Default())
	if err != nil {
		return nil, err
	}
	return &rig{stages: stages, scanner: sc, seq: seq}, nil
}

// writeResult writes an acquisition to a FITS file at path
func writeResult(path string, sc *scanner.Scanner, res *acquire.Result) error {
	typ, sub := sc.ScanType()
	cards := []fitsio.Card{
		{Name: "SCANTYPE", Value: string(typ)},
		{Name: "SUBTYPE", Value: string(sub)},
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return storage.WriteFITS(f, cards, res.Cube, res.Actuators)
}

// BuildMux takes the rig and builds a chi router serving the scanner, the
// acquisition runner and one submux per stage
func BuildMux(c config.Config, rg *rig) (chi.Router, *acquire.Runner) {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	supergraph := map[string][]string{}
	for _, s := range rg.stages {
		httper := httpmotion.NewHTTPMotionController(s.ctrl)
		lim := httpmotion.LimitMiddleware{Limits: s.cfg.Limits, Mov: s.ctrl}
		lim.Inject(httper)

		lock := locker.New()
		locker.Inject(httper, lock)

		hndlS := generichttp.SubMuxSanitize(s.cfg.Endpoint)
		supergraph[hndlS] = httper.RT().Endpoints()

		r := chi.NewRouter()
		r.Use(lock.Check)
		r.Use(lim.Check)
		httper.RT().Bind(r)
		root.Mount(hndlS, r)
	}

	// the scan is read-only while an acquisition runs
	scanLock := locker.New()
	scanLock.AllowReads = true
	scanLock.DoNotProtect = append(scanLock.DoNotProtect, "acquire/stop")
	runner := acquire.NewRunner(rg.seq, scanLock)
	m := newMetrics(rg.scanner, runner)
	runner.OnDone = func(res *acquire.Result, err error) {
		m.done(err)
		if res == nil || res.Cube.Filled() == 0 || c.Acquisition.Output == "" {
			return
		}
		if err := writeResult(c.Acquisition.Output, rg.scanner, res); err != nil {
			log.Println("error writing acquisition:", err)
			return
		}
		log.Printf("wrote %d steps to %s", res.Cube.Filled(), c.Acquisition.Output)
	}

	httper := httpscan.NewHTTPScanner(rg.scanner, runner)
	locker.Inject(httper, scanLock)
	supergraph["/"] = httper.RT().Endpoints()
	root.Group(func(r chi.Router) {
		r.Use(scanLock.Check)
		for mp, h := range httper.RT() {
			r.MethodFunc(mp.Method, mp.Path, h)
		}
	})
	root.Handle("/metrics", m.handler())
	root.Get("/acquire/result", server.FileHandler(func() string { return c.Acquisition.Output }))
	root.Get("/endpoints", func(w http.ResponseWriter, r *http.Request) {
		generichttp.WriteJSON(w, supergraph)
	})
	return root, runner
}
