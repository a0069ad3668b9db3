package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/tipsplit/internal/auth"
	"github.com/mmynk/tipsplit/internal/calculator"
	"github.com/mmynk/tipsplit/internal/form"
	"github.com/mmynk/tipsplit/internal/metrics"
	"github.com/mmynk/tipsplit/internal/middleware"
	"github.com/mmynk/tipsplit/internal/models"
	"github.com/mmynk/tipsplit/internal/session"
	"github.com/mmynk/tipsplit/internal/storage"
	"github.com/mmynk/tipsplit/pkg/api"
	"github.com/mmynk/tipsplit/pkg/api/apiconnect"
)

var _ apiconnect.TipServiceHandler = (*TipService)(nil)

// ErrInvalidSplit is returned when saving a form that fails validation.
var ErrInvalidSplit = errors.New("cannot save a split with invalid fields")

// TipService implements the Connect TipService
type TipService struct {
	store   storage.Store
	forms   *FormManager
	tokens  *auth.TokenManager
	metrics *metrics.Metrics
}

// NewTipService creates a new TipService over the given split history,
// form sessions and token manager.
func NewTipService(store storage.Store, forms *FormManager, tokens *auth.TokenManager, m *metrics.Metrics) *TipService {
	return &TipService{
		store:   store,
		forms:   forms,
		tokens:  tokens,
		metrics: m,
	}
}

// connectError maps package errors onto Connect codes.
func connectError(err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, calculator.ErrUnknownRules),
		errors.Is(err, form.ErrUnknownPreset),
		errors.Is(err, form.ErrUnknownEvent):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, ErrInvalidSplit):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func errorMap(errs calculator.FieldErrors) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string]string, len(errs))
	for f, msg := range errs {
		out[string(f)] = msg
	}
	return out
}

// toView converts a form view to its wire form.
func toView(v form.View) api.View {
	return api.View{
		Bill:                  v.Bill,
		Tip:                   v.Tip,
		People:                v.People,
		TipPerPerson:          v.TipPerPerson,
		TotalPerPerson:        v.TotalPerPerson,
		TipPerPersonDisplay:   v.TipPerPersonDisplay,
		TotalPerPersonDisplay: v.TotalPerPersonDisplay,
		Errors:                v.Errors,
		ActivePreset:          v.ActivePreset,
		Presets:               v.Presets,
		CanReset:              v.CanReset,
		Rules:                 v.Rules,
	}
}

func toSplit(s *models.SavedSplit) api.Split {
	return api.Split{
		ID:                    s.ID,
		Label:                 s.Label,
		Bill:                  s.Bill,
		TipPercent:            s.TipPercent,
		People:                s.People,
		TipPerPerson:          s.TipPerPerson,
		TotalPerPerson:        s.TotalPerPerson,
		TipPerPersonDisplay:   calculator.FormatCurrency(s.TipPerPerson),
		TotalPerPersonDisplay: calculator.FormatCurrency(s.TotalPerPerson),
		Rules:                 s.Rules,
		CreatedAt:             s.CreatedAt,
	}
}

// Calculate handles a one-off split calculation. Field validation failures
// are reported in the response, never as an RPC error.
func (s *TipService) Calculate(ctx context.Context, req *connect.Request[api.CalculateRequest]) (*connect.Response[api.CalculateResponse], error) {
	rules, err := calculator.RulesByName(req.Msg.Rules)
	if err != nil {
		return nil, connectError(err)
	}

	in := calculator.Input{
		Bill:       req.Msg.Bill,
		TipPercent: req.Msg.TipPercent,
		People:     req.Msg.People,
	}
	result := calculator.Compute(in)
	errs := rules.Validate(in)

	s.metrics.Calculations.WithLabelValues("rpc").Inc()
	s.metrics.ObserveErrors(errs)

	slog.Debug("Calculated split",
		"bill", in.Bill,
		"tip_percent", in.TipPercent,
		"people", in.People,
		"tip_per_person", result.TipPerPerson,
		"total_per_person", result.TotalPerPerson,
		"errors", len(errs),
	)

	return connect.NewResponse(&api.CalculateResponse{
		TipPerPerson:          result.TipPerPerson,
		TotalPerPerson:        result.TotalPerPerson,
		TipPerPersonDisplay:   calculator.FormatCurrency(result.TipPerPerson),
		TotalPerPersonDisplay: calculator.FormatCurrency(result.TotalPerPerson),
		EffectivePeople:       calculator.EffectivePeople(in.People),
		Errors:                errorMap(errs),
	}), nil
}

// ListPresets returns the preset tip percentages.
func (s *TipService) ListPresets(ctx context.Context, req *connect.Request[api.ListPresetsRequest]) (*connect.Response[api.ListPresetsResponse], error) {
	return connect.NewResponse(&api.ListPresetsResponse{Presets: calculator.Presets()}), nil
}

// StartSession opens a form session and returns its bearer token.
func (s *TipService) StartSession(ctx context.Context, req *connect.Request[api.StartSessionRequest]) (*connect.Response[api.StartSessionResponse], error) {
	sess, c, err := s.forms.Start(ctx, req.Msg.Rules)
	if err != nil {
		slog.Error("StartSession failed", "error", err)
		return nil, connectError(err)
	}

	token, err := s.tokens.Generate(sess.ID)
	if err != nil {
		slog.Error("Failed to generate token", "session_id", sess.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	resp := connect.NewResponse(&api.StartSessionResponse{
		SessionID: sess.ID,
		Token:     token,
		CreatedAt: sess.CreatedAt,
		View:      toView(c.View()),
	})
	resp.Header().Set(middleware.SessionHeader, sess.ID)
	return resp, nil
}

// NewSavedSplit snapshots a form for the split history. Only a form whose
// fields all pass validation can be saved.
func NewSavedSplit(c *form.Calculator, label string) (*models.SavedSplit, error) {
	if errs := c.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSplit, errs.Err())
	}
	in, result := c.Input(), c.Result()
	return &models.SavedSplit{
		Label:          label,
		Bill:           in.Bill,
		TipPercent:     in.TipPercent,
		People:         in.People,
		TipPerPerson:   result.TipPerPerson,
		TotalPerPerson: result.TotalPerPerson,
		Rules:          c.Rules().Name,
	}, nil
}

// sessionID returns the authenticated session of the call.
func sessionID(ctx context.Context) (string, error) {
	id := middleware.GetSessionID(ctx)
	if id == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return id, nil
}

// EndSession discards the caller's form.
func (s *TipService) EndSession(ctx context.Context, req *connect.Request[api.EndSessionRequest]) (*connect.Response[api.EndSessionResponse], error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.forms.End(ctx, id); err != nil {
		slog.Error("EndSession failed", "session_id", id, "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.EndSessionResponse{}), nil
}

// ApplyEvent applies one input event to the caller's form.
func (s *TipService) ApplyEvent(ctx context.Context, req *connect.Request[api.ApplyEventRequest]) (*connect.Response[api.ApplyEventResponse], error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.forms.Apply(ctx, id, form.Event{Kind: form.EventKind(req.Msg.Kind), Value: req.Msg.Value})
	if err != nil {
		return nil, connectError(err)
	}

	resp := connect.NewResponse(&api.ApplyEventResponse{View: toView(c.View())})
	resp.Header().Set(middleware.SessionHeader, id)
	return resp, nil
}

// GetView returns the caller's form without changing it.
func (s *TipService) GetView(ctx context.Context, req *connect.Request[api.GetViewRequest]) (*connect.Response[api.GetViewResponse], error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.forms.Load(ctx, id)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.GetViewResponse{View: toView(c.View())}), nil
}

// SaveSplit writes the caller's current split to history.
func (s *TipService) SaveSplit(ctx context.Context, req *connect.Request[api.SaveSplitRequest]) (*connect.Response[api.SaveSplitResponse], error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.forms.Load(ctx, id)
	if err != nil {
		return nil, connectError(err)
	}
	split, err := NewSavedSplit(c, req.Msg.Label)
	if err != nil {
		return nil, connectError(err)
	}

	// Save to storage (generates ID, Label and CreatedAt)
	if err := s.store.CreateSplit(ctx, split); err != nil {
		slog.Error("SaveSplit failed", "session_id", id, "error", err)
		return nil, connectError(err)
	}
	s.metrics.SplitsSaved.Inc()

	slog.Info("Split saved", "split_id", split.ID, "session_id", id)
	return connect.NewResponse(&api.SaveSplitResponse{Split: toSplit(split)}), nil
}

// ListSplits returns saved splits, newest first.
func (s *TipService) ListSplits(ctx context.Context, req *connect.Request[api.ListSplitsRequest]) (*connect.Response[api.ListSplitsResponse], error) {
	splits, err := s.store.ListSplits(ctx, req.Msg.Limit)
	if err != nil {
		slog.Error("ListSplits failed", "error", err)
		return nil, connectError(err)
	}

	out := make([]api.Split, len(splits))
	for i, split := range splits {
		out[i] = toSplit(split)
	}
	return connect.NewResponse(&api.ListSplitsResponse{Splits: out}), nil
}

// GetSplit retrieves a saved split by ID.
func (s *TipService) GetSplit(ctx context.Context, req *connect.Request[api.GetSplitRequest]) (*connect.Response[api.GetSplitResponse], error) {
	split, err := s.store.GetSplit(ctx, req.Msg.ID)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.GetSplitResponse{Split: toSplit(split)}), nil
}

// DeleteSplit removes a saved split.
func (s *TipService) DeleteSplit(ctx context.Context, req *connect.Request[api.DeleteSplitRequest]) (*connect.Response[api.DeleteSplitResponse], error) {
	if err := s.store.DeleteSplit(ctx, req.Msg.ID); err != nil {
		return nil, connectError(err)
	}
	slog.Info("Split deleted", "split_id", req.Msg.ID)
	return connect.NewResponse(&api.DeleteSplitResponse{}), nil
}
