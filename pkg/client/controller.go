package client

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Status is the controller-side generation phase. It tracks the server
// job lifecycle plus the two purely local phases, idle and error.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusAnalyzing  Status = "analyzing"
	StatusGenerating Status = "generating"
	StatusRendering  Status = "rendering"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// inFlight reports whether a generation is currently running.
func (s Status) inFlight() bool {
	return s == StatusAnalyzing || s == StatusGenerating || s == StatusRendering
}

// State is an immutable snapshot of the controller. Callers receive
// copies; mutating one has no effect on the controller.
type State struct {
	Prompt      string
	Status      Status
	JobID       string
	Progress    int
	CurrentStep string
	Result      *Result
	Err         string
	StartedAt   time.Time
	CompletedAt time.Time
}

// ===== reducer =====

type action interface{ isAction() }

type startAction struct {
	prompt string
	at     time.Time
}
type acceptedAction struct {
	jobID    string
	status   string
	progress int
	step     string
}
type progressAction struct {
	status   string
	progress int
	step     string
}
type completedAction struct {
	result *Result
	at     time.Time
}
type failedAction struct{ msg string }
type resetAction struct{}
type clearErrorAction struct{}

func (startAction) isAction()      {}
func (acceptedAction) isAction()   {}
func (progressAction) isAction()   {}
func (completedAction) isAction()  {}
func (failedAction) isAction()     {}
func (resetAction) isAction()      {}
func (clearErrorAction) isAction() {}

// statusFromServer maps a server-reported job status to a controller
// phase. Unknown in-progress statuses degrade to generating so a newer
// server cannot wedge an older client.
func statusFromServer(s string) Status {
	switch Status(s) {
	case StatusAnalyzing, StatusGenerating, StatusRendering, StatusCompleted:
		return Status(s)
	case Status("failed"), StatusError:
		return StatusError
	default:
		return StatusGenerating
	}
}

// apply is the pure transition function. All state changes flow through
// it so the lifecycle can be tested without any HTTP.
func apply(s State, a action) State {
	switch a := a.(type) {
	case startAction:
		return State{
			Prompt:      a.prompt,
			Status:      StatusAnalyzing,
			Progress:    10,
			CurrentStep: "Analyzing prompt",
			StartedAt:   a.at,
		}
	case acceptedAction:
		s.JobID = a.jobID
		if a.status != "" {
			s.Status = statusFromServer(a.status)
		}
		if a.progress > s.Progress {
			s.Progress = a.progress
		}
		if a.step != "" {
			s.CurrentStep = a.step
		}
		return s
	case progressAction:
		s.Status = statusFromServer(a.status)
		s.Progress = a.progress
		s.CurrentStep = a.step
		return s
	case completedAction:
		s.Status = StatusCompleted
		s.Progress = 100
		s.CurrentStep = "Done"
		s.Result = a.result
		s.Err = ""
		s.CompletedAt = a.at
		return s
	case failedAction:
		s.Status = StatusError
		s.Err = a.msg
		return s
	case resetAction:
		return State{Status: StatusIdle}
	case clearErrorAction:
		if s.Status != StatusError {
			return s
		}
		s.Err = ""
		// a surviving result means the error came after a success
		// (e.g. a failed retry); show the result again
		if s.Result != nil {
			s.Status = StatusCompleted
			return s
		}
		return State{Status: StatusIdle, Prompt: s.Prompt}
	}
	return s
}

// ===== controller =====

const defaultPollInterval = 2 * time.Second

// pollFailureBudget is how many consecutive status-poll failures the
// controller tolerates before declaring the generation failed.
const pollFailureBudget = 3

// Controller drives a generation from prompt to video on behalf of a UI.
// It owns one state machine, polls the job status endpoint while a job
// is in flight, and survives transient poll failures.
type Controller struct {
	api      *Client
	interval time.Duration
	onChange func(State)

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

type ControllerOption func(*Controller)

// WithPollInterval overrides how often the controller polls job status.
func WithPollInterval(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithOnChange registers a callback invoked after every state change,
// outside the controller lock.
func WithOnChange(fn func(State)) ControllerOption {
	return func(c *Controller) { c.onChange = fn }
}

func NewController(api *Client, opts ...ControllerOption) *Controller {
	c := &Controller{
		api:      api,
		interval: defaultPollInterval,
		state:    State{Status: StatusIdle},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// dispatch applies an action under the lock and notifies the observer.
func (c *Controller) dispatch(a action) State {
	c.mu.Lock()
	c.state = apply(c.state, a)
	next := c.state
	c.mu.Unlock()
	if c.onChange != nil {
		c.onChange(next)
	}
	return next
}

// Generate starts a generation for the prompt. Calling it while a
// generation is already in flight is a no-op. An empty prompt moves the
// controller to the error state without touching the network.
func (c *Controller) Generate(ctx context.Context, prompt, quality string) {
	c.mu.Lock()
	if c.state.Status.inFlight() {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if strings.TrimSpace(prompt) == "" {
		c.dispatch(startAction{prompt: prompt, at: time.Now()})
		c.dispatch(failedAction{msg: "prompt must not be empty"})
		return
	}

	c.dispatch(startAction{prompt: prompt, at: time.Now()})

	resp, err := c.api.Generate(ctx, prompt, quality)
	if err != nil {
		c.dispatch(failedAction{msg: err.Error()})
		return
	}

	// Inline answer: nothing to poll.
	if resp.JobID == "" {
		c.dispatch(completedAction{
			result: &Result{
				VideoURL:   resp.VideoURL,
				Code:       resp.Code,
				SceneName:  resp.SceneName,
				Method:     resp.Method,
				Model:      resp.Model,
				SampleUsed: resp.SampleUsed,
			},
			at: time.Now(),
		})
		return
	}

	c.dispatch(acceptedAction{
		jobID:    resp.JobID,
		status:   resp.Status,
		progress: resp.Progress,
		step:     resp.CurrentStep,
	})

	pollCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
	go c.poll(pollCtx, resp.JobID)
}

// poll watches the job until it reaches a terminal state, the failure
// budget is exhausted, or the context is cancelled.
func (c *Controller) poll(ctx context.Context, jobID string) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		info, err := c.api.JobStatus(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			if failures >= pollFailureBudget {
				c.dispatch(failedAction{msg: "lost contact with the server: " + err.Error()})
				return
			}
			continue
		}
		failures = 0
		if ctx.Err() != nil {
			// cancelled while the request was in flight
			return
		}

		switch statusFromServer(info.Status) {
		case StatusCompleted:
			c.dispatch(completedAction{result: info.result(), at: time.Now()})
			c.cleanupJob(jobID)
			return
		case StatusError:
			msg := info.Error
			if msg == "" {
				msg = "generation failed"
			}
			c.dispatch(failedAction{msg: msg})
			c.cleanupJob(jobID)
			return
		default:
			c.dispatch(progressAction{
				status:   info.Status,
				progress: info.Progress,
				step:     info.CurrentStep,
			})
		}
	}
}

// cleanupJob deletes the finished job server-side, best effort.
func (c *Controller) cleanupJob(jobID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = c.api.DeleteJob(ctx, jobID)
}

// Reset cancels any in-flight polling and returns to the idle state.
func (c *Controller) Reset() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	jobID := c.state.JobID
	inFlight := c.state.Status.inFlight()
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if inFlight && jobID != "" {
		c.cleanupJob(jobID)
	}
	c.dispatch(resetAction{})
}

// ClearError acknowledges an error and returns to idle, keeping the
// prompt so the user can edit and retry. No-op in any other state.
func (c *Controller) ClearError() {
	c.dispatch(clearErrorAction{})
}
