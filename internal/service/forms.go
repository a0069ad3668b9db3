package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/mmynk/tipsplit/internal/calculator"
	"github.com/mmynk/tipsplit/internal/form"
	"github.com/mmynk/tipsplit/internal/metrics"
	"github.com/mmynk/tipsplit/internal/models"
	"github.com/mmynk/tipsplit/internal/session"
)

const lockStripes = 64

// FormManager loads, mutates and stores form sessions. Events for the same
// session are applied one at a time; a form itself is never shared between
// goroutines.
type FormManager struct {
	sessions session.Store
	rules    calculator.Rules
	metrics  *metrics.Metrics
	locks    [lockStripes]sync.Mutex
}

// NewFormManager creates a FormManager. defaultRules is used when a new
// session does not name a rule set.
func NewFormManager(sessions session.Store, defaultRules calculator.Rules, m *metrics.Metrics) *FormManager {
	return &FormManager{
		sessions: sessions,
		rules:    defaultRules,
		metrics:  m,
	}
}

func (f *FormManager) lock(id string) func() {
	mu := &f.locks[xxhash.Sum64String(id)%lockStripes]
	mu.Lock()
	return mu.Unlock
}

// Start creates a session holding a fresh form. An empty rulesName selects
// the manager's default rules.
func (f *FormManager) Start(ctx context.Context, rulesName string) (*models.Session, *form.Calculator, error) {
	rules := f.rules
	if rulesName != "" {
		r, err := calculator.RulesByName(rulesName)
		if err != nil {
			return nil, nil, err
		}
		rules = r
	}

	c := form.New(rules)
	rec := &session.Record{
		Session: models.Session{
			ID:        uuid.New().String(),
			CreatedAt: time.Now().Unix(),
		},
		State: c.State(),
	}
	if err := f.sessions.Put(ctx, rec); err != nil {
		return nil, nil, fmt.Errorf("failed to store session: %w", err)
	}
	f.metrics.SessionsStarted.Inc()

	slog.Debug("Form session started", "session_id", rec.ID, "rules", rules.Name)
	return &rec.Session, c, nil
}

// Load returns the form of a live session.
func (f *FormManager) Load(ctx context.Context, id string) (*form.Calculator, error) {
	rec, err := f.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := form.Restore(rec.State)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Apply runs one event against the session's form and stores the result.
// A malformed event leaves the stored form untouched.
func (f *FormManager) Apply(ctx context.Context, id string, e form.Event) (*form.Calculator, error) {
	unlock := f.lock(id)
	defer unlock()

	rec, err := f.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := form.Restore(rec.State)
	if err != nil {
		return nil, err
	}

	if err := c.Apply(e); err != nil {
		return nil, err
	}

	rec.State = c.State()
	if err := f.sessions.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	f.metrics.FormEvents.WithLabelValues(string(e.Kind)).Inc()
	f.metrics.Calculations.WithLabelValues("session").Inc()
	f.metrics.ObserveErrors(c.Errors())

	slog.Debug("Form event applied",
		"session_id", id,
		"kind", e.Kind,
		"tip_per_person", c.Result().TipPerPerson,
		"total_per_person", c.Result().TotalPerPerson,
	)
	return c, nil
}

// End discards a session.
func (f *FormManager) End(ctx context.Context, id string) error {
	unlock := f.lock(id)
	defer unlock()
	return f.sessions.Delete(ctx, id)
}
