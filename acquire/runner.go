package acquire

import (
	"context"
	"sync"
	"time"

	"github.com/nasa-jpl/golascan/scan"
)

// Lock is held for the duration of an acquisition, so the scan can not be
// reconfigured under the sequencer
type Lock interface {
	Lock()
	Unlock()
}

// Status describes the state of a Runner
type Status struct {
	Running  bool      `json:"running"`
	Step     int       `json:"step"`
	Total    int       `json:"total"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Err      string    `json:"error,omitempty"`
}

// Runner runs one acquisition at a time in the background
type Runner struct {
	seq  *Sequencer
	lock Lock

	// OnDone, if not nil, is called with the result of every acquisition
	// after the lock is released
	OnDone func(*Result, error)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	status Status
	result *Result
}

// NewRunner returns a Runner.  lock may be nil.
func NewRunner(seq *Sequencer, lock Lock) *Runner {
	return &Runner{seq: seq, lock: lock}
}

// Start begins acquiring the scan in the background, axis i of the scan
// moved by the actuator named names[i]
func (r *Runner) Start(names []string, params *scan.Parameters, info scan.Info) error {
	if _, err := r.seq.bind(names, params.Naxes()); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status.Running {
		return ErrBusy
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	r.status = Status{Running: true, Total: info.NSteps, Started: time.Now()}
	r.result = nil
	if r.lock != nil {
		r.lock.Lock()
	}
	go r.run(ctx, names, params, info, r.done)
	return nil
}

func (r *Runner) run(ctx context.Context, names []string, params *scan.Parameters, info scan.Info, done chan struct{}) {
	defer close(done)
	res, err := r.seq.Run(ctx, names, params, info, func(p Progress) {
		r.mu.Lock()
		r.status.Step = p.Step + 1
		r.mu.Unlock()
	})
	if r.lock != nil {
		r.lock.Unlock()
	}
	r.mu.Lock()
	r.cancel()
	r.status.Running = false
	r.status.Finished = time.Now()
	if err != nil {
		r.status.Err = err.Error()
		r.seq.log.Printf("acquisition stopped: %v", err)
	}
	r.result = res
	onDone := r.OnDone
	r.mu.Unlock()
	if onDone != nil {
		onDone(res, err)
	}
}

// Stop cancels the running acquisition and waits for it to return.  It is
// a no-op when nothing runs.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Wait blocks until the current acquisition, if any, returns
func (r *Runner) Wait() {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Status returns a snapshot of the runner state
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Result returns the result of the last finished acquisition, nil while one runs
func (r *Runner) Result() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}
