package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/tipsplit/internal/auth"
	"github.com/mmynk/tipsplit/internal/calculator"
	"github.com/mmynk/tipsplit/internal/metrics"
	"github.com/mmynk/tipsplit/internal/middleware"
	"github.com/mmynk/tipsplit/internal/session"
	"github.com/mmynk/tipsplit/internal/storage/sqlite"
	"github.com/mmynk/tipsplit/pkg/api"
	"github.com/mmynk/tipsplit/pkg/api/apiconnect"
)

type testEnv struct {
	client  apiconnect.TipServiceClient
	metrics *metrics.Metrics
}

// setupTestServer creates a test server with a temporary SQLite database and
// an in-memory session store.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "tipsplit-service-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	m := metrics.New(prometheus.NewRegistry())
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	forms := NewFormManager(session.NewMemoryStore(time.Hour), calculator.LenientRules, m)
	svc := NewTipService(store, forms, tokens, m)

	interceptors := connect.WithInterceptors(
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(m),
		middleware.RequireSession(tokens, apiconnect.SessionProcedures),
	)
	path, handler := apiconnect.NewTipServiceHandler(svc, interceptors)

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		client:  apiconnect.NewTipServiceClient(http.DefaultClient, server.URL),
		metrics: m,
	}
}

func withToken[T any](msg *T, token string) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func startSession(t *testing.T, env *testEnv, rules string) string {
	t.Helper()
	resp, err := env.client.StartSession(context.Background(), connect.NewRequest(&api.StartSessionRequest{Rules: rules}))
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	return resp.Msg.Token
}

func apply(t *testing.T, env *testEnv, token, kind, value string) api.View {
	t.Helper()
	resp, err := env.client.ApplyEvent(context.Background(), withToken(&api.ApplyEventRequest{Kind: kind, Value: value}, token))
	if err != nil {
		t.Fatalf("ApplyEvent(%s, %q) failed: %v", kind, value, err)
	}
	return resp.Msg.View
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("error code = %v, want %v (%v)", got, want, err)
	}
}

func TestCalculate(t *testing.T) {
	env := setupTestServer(t)

	tests := []struct {
		name       string
		req        *api.CalculateRequest
		wantTip    string
		wantTotal  string
		wantPeople int
		wantErrors []string
	}{
		{
			name:       "four way split",
			req:        &api.CalculateRequest{Bill: 100, TipPercent: 20, People: 4},
			wantTip:    "$5.00",
			wantTotal:  "$30.00",
			wantPeople: 4,
		},
		{
			name:       "zero bill reports bill error",
			req:        &api.CalculateRequest{Bill: 0, TipPercent: 10, People: 1},
			wantTip:    "$0.00",
			wantTotal:  "$0.00",
			wantPeople: 1,
			wantErrors: []string{"bill"},
		},
		{
			name:       "no tip",
			req:        &api.CalculateRequest{Bill: 50, TipPercent: 0, People: 2},
			wantTip:    "$0.00",
			wantTotal:  "$25.00",
			wantPeople: 2,
		},
		{
			name:       "zero people uses one",
			req:        &api.CalculateRequest{Bill: 30, TipPercent: 10, People: 0},
			wantTip:    "$3.00",
			wantTotal:  "$33.00",
			wantPeople: 1,
			wantErrors: []string{"people"},
		},
		{
			name:       "strict rules",
			req:        &api.CalculateRequest{Bill: 0.25, TipPercent: 0, People: 1, Rules: "strict"},
			wantTip:    "$0.00",
			wantTotal:  "$0.25",
			wantPeople: 1,
			wantErrors: []string{"bill", "tip"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := env.client.Calculate(context.Background(), connect.NewRequest(tt.req))
			if err != nil {
				t.Fatalf("Calculate failed: %v", err)
			}
			if resp.Msg.TipPerPersonDisplay != tt.wantTip {
				t.Errorf("tip = %s, want %s", resp.Msg.TipPerPersonDisplay, tt.wantTip)
			}
			if resp.Msg.TotalPerPersonDisplay != tt.wantTotal {
				t.Errorf("total = %s, want %s", resp.Msg.TotalPerPersonDisplay, tt.wantTotal)
			}
			if resp.Msg.EffectivePeople != tt.wantPeople {
				t.Errorf("effective people = %d, want %d", resp.Msg.EffectivePeople, tt.wantPeople)
			}
			if len(resp.Msg.Errors) != len(tt.wantErrors) {
				t.Fatalf("errors = %v, want fields %v", resp.Msg.Errors, tt.wantErrors)
			}
			for _, f := range tt.wantErrors {
				if resp.Msg.Errors[f] == "" {
					t.Errorf("missing error for %s in %v", f, resp.Msg.Errors)
				}
			}
		})
	}

	if got := testutil.ToFloat64(env.metrics.Calculations.WithLabelValues("rpc")); got != float64(len(tests)) {
		t.Errorf("rpc calculations metric = %v, want %d", got, len(tests))
	}
}

func TestCalculate_UnknownRules(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.client.Calculate(context.Background(), connect.NewRequest(&api.CalculateRequest{Bill: 1, People: 1, Rules: "generous"}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestListPresets(t *testing.T) {
	env := setupTestServer(t)

	resp, err := env.client.ListPresets(context.Background(), connect.NewRequest(&api.ListPresetsRequest{}))
	if err != nil {
		t.Fatalf("ListPresets failed: %v", err)
	}
	want := []float64{5, 10, 15, 25, 50}
	if len(resp.Msg.Presets) != len(want) {
		t.Fatalf("presets = %v, want %v", resp.Msg.Presets, want)
	}
	for i := range want {
		if resp.Msg.Presets[i] != want[i] {
			t.Errorf("presets[%d] = %v, want %v", i, resp.Msg.Presets[i], want[i])
		}
	}
}

func TestSessionFlow(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	start, err := env.client.StartSession(ctx, connect.NewRequest(&api.StartSessionRequest{}))
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if start.Msg.SessionID == "" || start.Msg.Token == "" {
		t.Fatalf("StartSession returned empty id or token: %+v", start.Msg)
	}
	if start.Msg.View.CanReset {
		t.Error("fresh session should not allow reset")
	}
	if start.Msg.View.Rules != "lenient" {
		t.Errorf("rules = %s, want lenient", start.Msg.View.Rules)
	}
	token := start.Msg.Token

	apply(t, env, token, "set_bill", "100")
	v := apply(t, env, token, "select_preset", "15")
	if v.ActivePreset == nil || *v.ActivePreset != 15 {
		t.Errorf("active preset = %v, want 15", v.ActivePreset)
	}

	v = apply(t, env, token, "set_custom_tip", "20")
	if v.ActivePreset != nil {
		t.Errorf("custom tip should clear the preset, got %v", *v.ActivePreset)
	}
	v = apply(t, env, token, "set_people", "4")
	if v.TipPerPersonDisplay != "$5.00" || v.TotalPerPersonDisplay != "$30.00" {
		t.Errorf("result = %s / %s, want $5.00 / $30.00", v.TipPerPersonDisplay, v.TotalPerPersonDisplay)
	}
	if !v.CanReset {
		t.Error("reset should be enabled for a non-zero result")
	}
	if len(v.Errors) != 0 {
		t.Errorf("unexpected errors: %v", v.Errors)
	}

	got, err := env.client.GetView(ctx, withToken(&api.GetViewRequest{}, token))
	if err != nil {
		t.Fatalf("GetView failed: %v", err)
	}
	if got.Msg.View.Bill != "100" || got.Msg.View.Tip != "20" || got.Msg.View.People != "4" {
		t.Errorf("GetView = %+v, want persisted inputs", got.Msg.View)
	}

	v = apply(t, env, token, "reset", "")
	if v.Bill != "0" || v.Tip != "0" || v.People != "1" {
		t.Errorf("after reset fields = %s/%s/%s", v.Bill, v.Tip, v.People)
	}
	if v.TipPerPerson != 0 || v.TotalPerPerson != 0 || v.CanReset {
		t.Errorf("after reset view = %+v", v)
	}

	if got := testutil.ToFloat64(env.metrics.FormEvents.WithLabelValues("reset")); got != 1 {
		t.Errorf("reset events metric = %v, want 1", got)
	}

	if _, err := env.client.EndSession(ctx, withToken(&api.EndSessionRequest{}, token)); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}
	_, err = env.client.GetView(ctx, withToken(&api.GetViewRequest{}, token))
	assertCode(t, err, connect.CodeNotFound)
}

func TestApplyEvent_FieldErrorsAreNotRPCErrors(t *testing.T) {
	env := setupTestServer(t)
	token := startSession(t, env, "")

	apply(t, env, token, "set_bill", "80")
	v := apply(t, env, token, "set_people", "0")
	if v.Errors["people"] != "Must be > 0" {
		t.Errorf("people error = %q", v.Errors["people"])
	}
	if v.TotalPerPersonDisplay != "$80.00" {
		t.Errorf("total = %s, want $80.00 with one effective person", v.TotalPerPersonDisplay)
	}

	v = apply(t, env, token, "set_bill", "eighty")
	if v.Errors["bill"] != calculator.InvalidBillMessage {
		t.Errorf("bill error = %q", v.Errors["bill"])
	}
	if v.TotalPerPersonDisplay != "$80.00" {
		t.Errorf("stale total = %s, want $80.00", v.TotalPerPersonDisplay)
	}
}

func TestApplyEvent_StaleResultPersists(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	token := startSession(t, env, "")

	apply(t, env, token, "set_bill", "100")
	apply(t, env, token, "set_custom_tip", "20")
	applied := apply(t, env, token, "set_bill", "abc")
	if applied.TotalPerPersonDisplay != "$120.00" || !applied.CanReset {
		t.Fatalf("ApplyEvent view = %+v", applied)
	}

	resp, err := env.client.GetView(ctx, withToken(&api.GetViewRequest{}, token))
	if err != nil {
		t.Fatalf("GetView failed: %v", err)
	}
	got := resp.Msg.View
	if got.TotalPerPersonDisplay != applied.TotalPerPersonDisplay || got.CanReset != applied.CanReset {
		t.Errorf("GetView total=%s can_reset=%v, want total=%s can_reset=%v",
			got.TotalPerPersonDisplay, got.CanReset, applied.TotalPerPersonDisplay, applied.CanReset)
	}

	v := apply(t, env, token, "set_people", "2")
	if v.TotalPerPersonDisplay != "$60.00" {
		t.Errorf("total after people=2 = %s, want $60.00 from the last valid bill", v.TotalPerPersonDisplay)
	}

	v = apply(t, env, token, "reset", "")
	if v.Bill != "0" || v.TotalPerPerson != 0 || v.CanReset {
		t.Errorf("after reset view = %+v", v)
	}
}

func TestApplyEvent_Rejected(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	token := startSession(t, env, "")

	_, err := env.client.ApplyEvent(ctx, withToken(&api.ApplyEventRequest{Kind: "select_preset", Value: "20"}, token))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = env.client.ApplyEvent(ctx, withToken(&api.ApplyEventRequest{Kind: "shake"}, token))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = env.client.ApplyEvent(ctx, connect.NewRequest(&api.ApplyEventRequest{Kind: "set_bill", Value: "10"}))
	assertCode(t, err, connect.CodeUnauthenticated)

	_, err = env.client.ApplyEvent(ctx, withToken(&api.ApplyEventRequest{Kind: "set_bill", Value: "10"}, "forged"))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestStartSession_StrictRules(t *testing.T) {
	env := setupTestServer(t)
	token := startSession(t, env, "strict")

	v := apply(t, env, token, "set_bill", "0.40")
	if v.Rules != "strict" {
		t.Errorf("rules = %s, want strict", v.Rules)
	}
	if v.Errors["bill"] != "Bill must be at least $0.50" {
		t.Errorf("bill error = %q", v.Errors["bill"])
	}

	_, err := env.client.StartSession(context.Background(), connect.NewRequest(&api.StartSessionRequest{Rules: "nope"}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestSavedSplits(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	token := startSession(t, env, "")

	_, err := env.client.SaveSplit(ctx, withToken(&api.SaveSplitRequest{}, token))
	assertCode(t, err, connect.CodeFailedPrecondition)

	apply(t, env, token, "set_bill", "100")
	apply(t, env, token, "select_preset", "25")
	apply(t, env, token, "set_people", "5")

	saved, err := env.client.SaveSplit(ctx, withToken(&api.SaveSplitRequest{Label: "Team lunch"}, token))
	if err != nil {
		t.Fatalf("SaveSplit failed: %v", err)
	}
	split := saved.Msg.Split
	if split.ID == "" || split.Label != "Team lunch" {
		t.Errorf("saved split = %+v", split)
	}
	if split.TipPerPersonDisplay != "$5.00" || split.TotalPerPersonDisplay != "$25.00" {
		t.Errorf("saved amounts = %s / %s", split.TipPerPersonDisplay, split.TotalPerPersonDisplay)
	}

	got, err := env.client.GetSplit(ctx, connect.NewRequest(&api.GetSplitRequest{ID: split.ID}))
	if err != nil {
		t.Fatalf("GetSplit failed: %v", err)
	}
	if got.Msg.Split != split {
		t.Errorf("GetSplit = %+v, want %+v", got.Msg.Split, split)
	}

	list, err := env.client.ListSplits(ctx, connect.NewRequest(&api.ListSplitsRequest{}))
	if err != nil {
		t.Fatalf("ListSplits failed: %v", err)
	}
	if len(list.Msg.Splits) != 1 {
		t.Fatalf("ListSplits returned %d splits, want 1", len(list.Msg.Splits))
	}

	if _, err := env.client.DeleteSplit(ctx, connect.NewRequest(&api.DeleteSplitRequest{ID: split.ID})); err != nil {
		t.Fatalf("DeleteSplit failed: %v", err)
	}
	_, err = env.client.GetSplit(ctx, connect.NewRequest(&api.GetSplitRequest{ID: split.ID}))
	assertCode(t, err, connect.CodeNotFound)

	if got := testutil.ToFloat64(env.metrics.SplitsSaved); got != 1 {
		t.Errorf("splits saved metric = %v, want 1", got)
	}
}

func TestConnectErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want connect.Code
	}{
		{session.ErrNotFound, connect.CodeNotFound},
		{calculator.ErrUnknownRules, connect.CodeInvalidArgument},
		{ErrInvalidSplit, connect.CodeFailedPrecondition},
		{errors.New("disk on fire"), connect.CodeInternal},
	}
	for _, tt := range tests {
		if got := connect.CodeOf(connectError(tt.err)); got != tt.want {
			t.Errorf("connectError(%v) code = %v, want %v", tt.err, got, tt.want)
		}
	}
}
