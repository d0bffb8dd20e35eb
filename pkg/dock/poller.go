package dock

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
)

// Shell is the window side of the docking loop.
type Shell interface {
	// Geometry samples the window. An error turns the tick into a no-op.
	Geometry() (Input, error)
	// Apply runs the decision: animate, repaint the indicator, raise.
	Apply(Result)
}

// Poller drives a Controller from a Shell at the configured poll interval.
type Poller struct {
	*worker.BaseWorker
	ctrl   *Controller
	shell  Shell
	cancel context.CancelFunc
}

// NewPoller creates the polling worker. It does nothing until started.
func NewPoller(ctrl *Controller, shell Shell) *Poller {
	return &Poller{
		BaseWorker: worker.NewBaseWorker("dock-poller"),
		ctrl:       ctrl,
		shell:      shell,
	}
}

func (p *Poller) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := p.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("poller already started (status: %s)", status)
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.SetStatus(worker.StatusRunning)
	return p.StartFunc(runCtx, p.run)
}

func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.StopRequested = true
		p.cancel()
	}

	return p.BaseWorker.Stop(ctx)
}

func (p *Poller) State() worker.State {
	return p.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

// Step runs a single poll: sample, decide, apply.
func (p *Poller) Step() Result {
	in, err := p.shell.Geometry()
	if err != nil {
		p.ctrl.logger.Debug("dock geometry unavailable", "error", err)
		state, hidden := p.ctrl.Snapshot()
		return Result{State: state, Hidden: hidden, Skipped: true, Intent: Intent{Kind: IntentNone}}
	}
	res := p.ctrl.Tick(in)
	if !res.Skipped {
		p.shell.Apply(res)
	}
	return res
}

func (p *Poller) run(ctx context.Context) error {
	ticker := time.NewTicker(p.ctrl.Config().PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Step()
		}
	}
}
