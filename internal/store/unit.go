package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/charlesng35/teamforge/pkg/errors"
	"github.com/charlesng35/teamforge/pkg/logger"
	"github.com/charlesng35/teamforge/pkg/metrics"
)

// Mode identifies how a plan was applied.
type Mode string

const (
	ModeAtomic     Mode = "atomic"
	ModeSequential Mode = "sequential"
)

// Step is one unit of a write plan. Steps that only read (precondition checks)
// leave Write unset so sequential failures before any write are reported cleanly.
type Step struct {
	Name  string
	Write bool
	Apply func(ctx context.Context, rs RelationshipStore) error
}

// Plan is an ordered list of steps applied as one logical operation.
type Plan struct {
	Name  string
	Steps []Step
}

// Outcome describes how a plan ran.
type Outcome struct {
	Mode    Mode
	Applied int
	// Partial is set when the sequential path stopped after applying some writes.
	Partial bool
}

// Executor applies plans against a RelationshipStore, preferring an atomic group
// and falling back to sequential application when the store has none.
type Executor struct {
	store RelationshipStore
	log   *zap.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutorLogger overrides the logger used for partial write reports.
func WithExecutorLogger(log *zap.Logger) ExecutorOption {
	return func(e *Executor) {
		if log != nil {
			e.log = log
		}
	}
}

// NewExecutor constructs an Executor over rs.
func NewExecutor(rs RelationshipStore, opts ...ExecutorOption) (*Executor, error) {
	if rs == nil {
		return nil, errors.New("store: relationship store is required")
	}
	e := &Executor{store: rs, log: logger.WithModule("store")}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// Store exposes the underlying store for read-only callers.
func (e *Executor) Store() RelationshipStore {
	return e.store
}

// Run applies plan. Domain errors raised before any write are returned unchanged
// in both modes. Infrastructure failures inside an atomic group roll back and
// surface as a consistency failure. In sequential mode a failure after the first
// write is logged and reported as a partial success.
func (e *Executor) Run(ctx context.Context, plan Plan) (Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var applied int
	err := e.store.Atomic(ctx, func(tx RelationshipStore) error {
		applied = 0
		for _, step := range plan.Steps {
			if err := step.Apply(ctx, tx); err != nil {
				return fmt.Errorf("step %s: %w", step.Name, err)
			}
			if step.Write {
				applied++
			}
		}
		return nil
	})

	switch {
	case err == nil:
		metrics.UnitOfWork.WithLabelValues(plan.Name, string(ModeAtomic), "committed").Inc()
		return Outcome{Mode: ModeAtomic, Applied: applied}, nil
	case errors.Is(err, ErrAtomicUnsupported):
		return e.runSequential(ctx, plan)
	}

	metrics.UnitOfWork.WithLabelValues(plan.Name, string(ModeAtomic), "rolled_back").Inc()
	if domainErr := asDomain(err); domainErr != nil {
		return Outcome{Mode: ModeAtomic}, domainErr
	}
	e.log.Error("atomic plan failed",
		zap.String("plan", plan.Name),
		zap.Error(err),
	)
	return Outcome{Mode: ModeAtomic}, apperrors.ErrConsistencyFailure.WithInternal(err)
}

func (e *Executor) runSequential(ctx context.Context, plan Plan) (Outcome, error) {
	outcome := Outcome{Mode: ModeSequential}
	for _, step := range plan.Steps {
		err := step.Apply(ctx, e.store)
		if err == nil {
			if step.Write {
				outcome.Applied++
			}
			continue
		}

		domainErr := asDomain(err)
		if outcome.Applied == 0 {
			metrics.UnitOfWork.WithLabelValues(plan.Name, string(ModeSequential), "aborted").Inc()
			if domainErr != nil {
				return outcome, domainErr
			}
			return outcome, apperrors.ErrConsistencyFailure.WithInternal(fmt.Errorf("step %s: %w", step.Name, err))
		}

		// Writes already applied stay valid on their own, so the run is reported
		// as a partial success whatever stopped it.
		outcome.Partial = true
		metrics.UnitOfWork.WithLabelValues(plan.Name, string(ModeSequential), "partial").Inc()
		fields := []zap.Field{
			zap.String("plan", plan.Name),
			zap.String("failed_step", step.Name),
			zap.Int("applied_writes", outcome.Applied),
			zap.Error(err),
		}
		if domainErr != nil {
			fields = append(fields, zap.String("code", domainErr.Code))
		}
		e.log.Warn("plan partially applied without atomic group", fields...)
		return outcome, nil
	}

	metrics.UnitOfWork.WithLabelValues(plan.Name, string(ModeSequential), "applied").Inc()
	return outcome, nil
}

func asDomain(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
