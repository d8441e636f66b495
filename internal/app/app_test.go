package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"air_bot/internal/config"
	"air_bot/internal/model"
)

const bulletinJSON = `{
  "jour": {
    "date": "2026-10-16",
    "disponible": true,
    "bulletin": {"fr": "Qualité de l'air moyenne."},
    "concentrations": [["NO2", 12.3, 45.6], ["O3", 50, 70]]
  },
  "demain": {"disponible": false}
}`

// upstream plays both the AirParif API and the Mastodon instance.
type upstream struct {
	mu           sync.Mutex
	bulletinCode int
	paths        []string
	statuses     []string
	mediaDir     string
	mediaSeen    []string
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.paths = append(u.paths, r.URL.Path)

	switch {
	case r.URL.Path == "/indices/prevision/bulletin":
		if u.bulletinCode != 0 {
			http.Error(w, "boom", u.bulletinCode)
			return
		}
		fmt.Fprint(w, bulletinJSON)
	case r.URL.Path == "/wms":
		w.Header().Set("Content-Type", "image/png")
		fmt.Fprint(w, "\x89PNG")
	case r.URL.Path == "/api/v1/accounts/verify_credentials":
		fmt.Fprint(w, `{"id":"1","acct":"airbot"}`)
	case strings.HasSuffix(r.URL.Path, "/media"):
		entries, _ := os.ReadDir(u.mediaDir)
		for _, e := range entries {
			u.mediaSeen = append(u.mediaSeen, e.Name())
		}
		fmt.Fprint(w, `{"id":"42","type":"image"}`)
	case r.URL.Path == "/api/v1/statuses":
		_ = r.ParseForm()
		u.statuses = append(u.statuses, r.PostForm.Get("status"))
		fmt.Fprint(w, `{"id":"7"}`)
	default:
		http.NotFound(w, r)
	}
}

func (u *upstream) requests() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.paths...)
}

func setupEnv(t *testing.T, srvURL, mediaDir string) {
	t.Helper()
	for _, key := range []string{
		config.EnvInstance, config.EnvAccessToken, config.EnvAirParifAPIKey, config.EnvLogLevel,
		config.EnvMediaDir, config.EnvMediaDelay, config.EnvTelegramToken, config.EnvTelegramChatID,
		config.EnvConfigFile,
	} {
		t.Setenv(key, "")
	}

	cfgPath := filepath.Join(t.TempDir(), "airbot.yaml")
	data := fmt.Sprintf("airparif:\n  apiBaseUrl: %s\n  wmsBaseUrl: %s/wms\n", srvURL, srvURL)
	if err := os.WriteFile(cfgPath, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(config.EnvInstance, srvURL)
	t.Setenv(config.EnvAccessToken, "tok")
	t.Setenv(config.EnvAirParifAPIKey, "key")
	t.Setenv(config.EnvMediaDir, mediaDir)
	t.Setenv(config.EnvMediaDelay, "0s")
	t.Setenv(config.EnvConfigFile, cfgPath)
	t.Setenv(config.EnvLogLevel, "error")
}

func newUpstream(t *testing.T) (*upstream, *httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	u := &upstream{mediaDir: dir}
	srv := httptest.NewServer(u)
	t.Cleanup(srv.Close)
	setupEnv(t, srv.URL, dir)
	return u, srv, dir
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("media files left behind: %d", len(entries))
	}
}

func TestMainPublishesTodayBulletin(t *testing.T) {
	u, _, dir := newUpstream(t)

	if code := Main(context.Background(), config.ProviderAirParif, []string{"today"}); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	if len(u.statuses) != 1 {
		t.Fatalf("expected 1 status, got %d", len(u.statuses))
	}
	if !strings.Contains(u.statuses[0], "👉 NO2: de 12 à 46 µg/m³\n👉 O3: de 50 à 70 µg/m³") {
		t.Errorf("unexpected status text:\n%s", u.statuses[0])
	}
	if diff := cmp.Diff([]string{"airparif_map_"}, trimStamps(u.mediaSeen)); diff != "" {
		t.Errorf("media on disk during upload mismatch (-want +got):\n%s", diff)
	}
	assertEmptyDir(t, dir)
}

func trimStamps(names []string) []string {
	var out []string
	for _, n := range names {
		if i := strings.LastIndex(n, "_"); i >= 0 {
			n = n[:i+1]
		}
		out = append(out, n)
	}
	return out
}

func TestMainDryRunDoesNotPublish(t *testing.T) {
	u, _, dir := newUpstream(t)

	if code := Main(context.Background(), config.ProviderAirParif, []string{"today", "--dryrun"}); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	for _, p := range u.requests() {
		if strings.HasSuffix(p, "/media") || p == "/api/v1/statuses" {
			t.Errorf("dry run called %s", p)
		}
	}
	assertEmptyDir(t, dir)
}

func TestMainBulletinServerError(t *testing.T) {
	u, _, dir := newUpstream(t)
	u.bulletinCode = http.StatusInternalServerError

	if code := Main(context.Background(), config.ProviderAirParif, []string{"today"}); code != ExitFailure {
		t.Fatalf("exit code = %d, want %d", code, ExitFailure)
	}
	for _, p := range u.requests() {
		if p == "/wms" || p == "/api/v1/statuses" {
			t.Errorf("pipeline went on after server error: %s", p)
		}
	}
	assertEmptyDir(t, dir)
}

func TestMainMissingAccessToken(t *testing.T) {
	u, _, _ := newUpstream(t)
	t.Setenv(config.EnvAccessToken, "")

	if code := Main(context.Background(), config.ProviderAirParif, []string{"today"}); code != ExitFailure {
		t.Fatalf("exit code = %d, want %d", code, ExitFailure)
	}
	if got := u.requests(); len(got) != 0 {
		t.Errorf("http calls issued without configuration: %v", got)
	}
}

func TestMainUnknownAction(t *testing.T) {
	u, _, _ := newUpstream(t)

	if code := Main(context.Background(), config.ProviderAtmoSud, []string{"today"}); code != ExitFailure {
		t.Fatalf("exit code = %d, want %d", code, ExitFailure)
	}
	if got := u.requests(); len(got) != 0 {
		t.Errorf("http calls issued for unknown action: %v", got)
	}
}

func TestMainHelp(t *testing.T) {
	if code := Main(context.Background(), config.ProviderAtmoSud, []string{"-h"}); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
}

func TestReportDisabled(t *testing.T) {
	// No Telegram settings: nothing to send, nothing to fail.
	Report(&config.Config{Provider: config.ProviderAirParif}, model.ActionToday, fmt.Errorf("boom"),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level     string
		verbose   bool
		wantDebug bool
		wantInfo  bool
	}{
		{level: "info", wantInfo: true},
		{level: "debug", wantDebug: true, wantInfo: true},
		{level: "error"},
		{level: "error", verbose: true, wantDebug: true, wantInfo: true},
		{level: "", wantInfo: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v", tt.level, tt.verbose), func(t *testing.T) {
			log := NewLogger(tt.level, tt.verbose)
			ctx := context.Background()
			got := []bool{log.Enabled(ctx, slog.LevelDebug), log.Enabled(ctx, slog.LevelInfo)}
			if diff := cmp.Diff([]bool{tt.wantDebug, tt.wantInfo}, got); diff != "" {
				t.Errorf("enabled levels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
