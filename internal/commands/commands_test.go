package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/tipsplit/internal/calculator"
	"github.com/mmynk/tipsplit/internal/config"
	"github.com/mmynk/tipsplit/internal/form"
	"github.com/mmynk/tipsplit/pkg/api"
	"github.com/mmynk/tipsplit/pkg/api/apiconnect"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer
	cmd := New()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCalc(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantOut    []string
		wantErr    error
		wantStderr string
	}{
		{
			name:    "preset",
			args:    []string{"calc", "--bill", "142.55", "--preset", "15", "--people", "5"},
			wantOut: []string{"$4.28", "$32.79", "15% (preset)"},
		},
		{
			name:    "custom tip",
			args:    []string{"calc", "--bill", "100", "--tip", "20", "--people", "4"},
			wantOut: []string{"$5.00", "$30.00"},
		},
		{
			name:       "unparsable bill",
			args:       []string{"calc", "--bill", "abc"},
			wantErr:    ErrInvalidInput,
			wantStderr: calculator.InvalidBillMessage,
		},
		{
			name:       "strict rules",
			args:       []string{"calc", "--bill", "0.25", "--tip", "0", "--rules", "strict"},
			wantErr:    ErrInvalidInput,
			wantStderr: "Tip must be at least 1%",
		},
		{
			name:    "unknown preset",
			args:    []string{"calc", "--bill", "10", "--preset", "7"},
			wantErr: form.ErrUnknownPreset,
		},
		{
			name:    "unknown rules",
			args:    []string{"calc", "--bill", "10", "--rules", "loose"},
			wantErr: calculator.ErrUnknownRules,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, stderr, err := run(t, tt.args...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			for _, w := range tt.wantOut {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			if tt.wantStderr != "" && !strings.Contains(stderr, tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, stderr)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version", "-s")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if strings.TrimSpace(out) == "" {
		t.Error("version -s printed nothing")
	}

	out, _, err = run(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "{") {
		t.Errorf("version output is not json:\n%s", out)
	}
}

func TestLogLevelFromConfigFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".tipsplit.yaml"), []byte("log_level: debug\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Chdir(dir)

	cmd := New()
	cmd.SetArgs([]string{"presets"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("presets failed: %v", err)
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("log_level from .tipsplit.yaml was not applied")
	}
}

func TestPresets(t *testing.T) {
	out, _, err := run(t, "presets")
	if err != nil {
		t.Fatalf("presets failed: %v", err)
	}
	for _, p := range calculator.Presets() {
		if want := calculator.FormatPercent(p); !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestServeRequiresSecret(t *testing.T) {
	t.Setenv("TIPSPLIT_TOKEN_SECRET", "")
	_, _, err := run(t, "serve", "--db-path", filepath.Join(t.TempDir(), "splits.db"))
	if !errors.Is(err, config.ErrMissingSecret) {
		t.Errorf("error = %v, want ErrMissingSecret", err)
	}
}

func TestApp(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := &config.Config{
		DBPath:      filepath.Join(t.TempDir(), "splits.db"),
		SessionTTL:  time.Hour,
		TokenSecret: "test-secret",
		Rules:       calculator.LenientRules,
	}
	reg := prometheus.NewRegistry()
	a, err := newApp(ctx, cfg, reg, reg)
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	t.Cleanup(a.close)

	server := httptest.NewServer(a.handler)
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET / status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS header = %q", got)
	}

	client := apiconnect.NewTipServiceClient(http.DefaultClient, server.URL)
	calc, err := client.Calculate(ctx, connect.NewRequest(&api.CalculateRequest{Bill: 100, TipPercent: 20, People: 4}))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if calc.Msg.TotalPerPersonDisplay != "$30.00" {
		t.Errorf("TotalPerPersonDisplay = %q", calc.Msg.TotalPerPersonDisplay)
	}

	resp, err = http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"tipsplit_sessions_started_total 1", `tipsplit_calculations_total{source="rpc"} 1`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics missing %q", want)
		}
	}

	req, _ := http.NewRequest(http.MethodOptions, server.URL+apiconnect.TipServiceCalculateProcedure, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("OPTIONS status = %d", resp.StatusCode)
	}
}
