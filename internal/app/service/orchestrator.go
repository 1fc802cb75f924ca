package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// State is a step of the redirect flow.
type State int

const (
	StateLoading State = iota
	StateRedirecting
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateRedirecting:
		return "redirecting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the terminal state of one redirect. TargetURL is set when
// State is StateRedirecting, Err when State is StateFailed.
type Outcome struct {
	State     State
	TargetURL string
	Err       *ResolveError
}

// Reason reports why the redirect failed. It is zero for a successful outcome.
func (o Outcome) Reason() ErrorKind {
	if o.Err == nil {
		return 0
	}
	return o.Err.Kind
}

type codeResolver interface {
	Resolve(ctx context.Context, code string) (string, error)
}

// Orchestrator drives Loading -> Redirecting | Failed. Both terminal states
// are final: there is no retry and no backoff.
type Orchestrator struct {
	resolver codeResolver
	logger   *zap.Logger
}

func NewOrchestrator(resolver codeResolver, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		resolver: resolver,
		logger:   logger,
	}
}

func (o *Orchestrator) Run(ctx context.Context, code string) Outcome {
	o.logger.Debug("redirect", zap.String("code", code), zap.Stringer("state", StateLoading))

	target, err := o.resolver.Resolve(ctx, code)
	if err != nil {
		var re *ResolveError
		if !errors.As(err, &re) {
			re = &ResolveError{Kind: KindInfrastructure, Code: code, Err: err}
		}
		o.logger.Debug("redirect",
			zap.String("code", code),
			zap.Stringer("state", StateFailed),
			zap.Stringer("reason", re.Kind),
		)
		return Outcome{State: StateFailed, Err: re}
	}

	o.logger.Debug("redirect", zap.String("code", code), zap.Stringer("state", StateRedirecting))
	return Outcome{State: StateRedirecting, TargetURL: target}
}
