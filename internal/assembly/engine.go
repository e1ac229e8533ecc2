package assembly

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/pdfbinder/internal/config"
	"git.home.luguber.info/inful/pdfbinder/internal/logfields"
)

// Engine sequences the bind run: scan, render, two-pass contents resolution,
// merge, annotation, recording and cleanup. One Engine performs one run.
type Engine struct {
	cfg    *config.Config
	runID  string
	collab Collaborators
}

// NewEngine builds an engine for a single run.
func NewEngine(cfg *config.Config, runID string, collab Collaborators) *Engine {
	return &Engine{cfg: cfg, runID: runID, collab: collab}
}

// Run executes the pipeline. It returns the first fatal error; warning-level
// stage errors are logged and do not stop the run. On a fatal error no final
// output is left behind from this run's commit phase and the workspace is
// kept for inspection.
func (e *Engine) Run(ctx context.Context) (*BindState, error) {
	bs := newBindState(e.cfg, e.runID)
	slog.Info("Bind run starting", logfields.RunID(e.runID), logfields.Path(e.cfg.Root))

	if err := runStages(ctx, bs, e.stages()); err != nil {
		return bs, err
	}

	slog.Info("Bind run complete",
		logfields.RunID(e.runID),
		logfields.Path(e.cfg.FinalPDF),
		slog.Int("files", len(bs.Files)),
		logfields.DurationMS(float64(time.Since(bs.start).Milliseconds())))
	return bs, nil
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal error. Warning stage errors are logged and execution continues.
func runStages(ctx context.Context, bs *BindState, stages []StageDef) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			return newCanceledStageError(st.Name, ctx.Err())
		default:
		}

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)
		bs.Timings[st.Name] = dur

		if err == nil {
			slog.Debug("Stage complete", logfields.Stage(st.Name), logfields.DurationMS(float64(dur.Milliseconds())))
			continue
		}

		var se *StageError
		if !errors.As(err, &se) {
			se = newFatalStageError(st.Name, err)
		}
		switch se.Kind {
		case StageErrorWarning:
			slog.Warn("Stage completed with warnings", logfields.Stage(st.Name), logfields.Error(se.Err))
		default:
			slog.Error("Stage failed", logfields.Stage(st.Name), logfields.Error(se.Err))
			return se
		}
	}
	return nil
}
