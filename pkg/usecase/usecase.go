package usecase

import (
	"time"

	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

type UseCases struct {
	repo         interfaces.Repository
	clock        func() time.Time
	hooks        []PostCommitHook
	displayLimit int
	noAuditLog   bool

	Threat     *ThreatUseCase
	Evaluation *EvaluationUseCase
	Task       *TaskUseCase
	Suggestion *SuggestionUseCase
}

type Option func(*UseCases)

// WithClock replaces time.Now, used for defaults and suggestion evaluation time
func WithClock(clock func() time.Time) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

// WithPostCommitHook adds a hook run after every committed change
func WithPostCommitHook(hook PostCommitHook) Option {
	return func(uc *UseCases) {
		uc.hooks = append(uc.hooks, hook)
	}
}

// WithDisplayLimit sets how many suggestions of each list are displayed
func WithDisplayLimit(limit int) Option {
	return func(uc *UseCases) {
		uc.displayLimit = limit
	}
}

// WithoutAuditLog disables the built-in audit log hook
func WithoutAuditLog() Option {
	return func(uc *UseCases) {
		uc.noAuditLog = true
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:         repo,
		clock:        time.Now,
		displayLimit: model.DefaultSuggestionDisplayLimit,
	}

	for _, opt := range opts {
		opt(uc)
	}

	hooks := uc.hooks
	if !uc.noAuditLog {
		hooks = append([]PostCommitHook{NewAuditLogHook(repo, uc.clock)}, hooks...)
	}
	committer := &committer{hooks: hooks}

	uc.Threat = NewThreatUseCase(repo, committer)
	uc.Evaluation = NewEvaluationUseCase(repo, committer)
	uc.Task = NewTaskUseCase(repo, committer, uc.clock)
	uc.Suggestion = NewSuggestionUseCase(repo, committer, uc.clock, uc.displayLimit)

	return uc
}
