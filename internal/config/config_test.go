package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		"TASKCONSOLE_CONFIG_PATH", "TASKCONSOLE_BASE_URL", "TASKCONSOLE_POLL_MS",
		"TASKCONSOLE_TIMEOUT_MS", "TASKCONSOLE_HOME", "TASKCONSOLE_LOG_LEVEL", "TASKCONSOLE_LANG",
	} {
		t.Setenv(key, "")
	}
	work := t.TempDir()
	oldwd, _ := os.Getwd()
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend.BaseURL != DefaultBaseURL {
		t.Fatalf("base_url=%q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.PollInterval() != time.Second {
		t.Fatalf("poll interval=%v", cfg.Backend.PollInterval())
	}
	if !cfg.Storage.History {
		t.Fatalf("history expected on by default")
	}
	wantBase := filepath.Join(home, ".taskconsole")
	if cfg.Storage.BaseDir != wantBase {
		t.Fatalf("base_dir=%q want %q", cfg.Storage.BaseDir, wantBase)
	}
	if cfg.UI.ScreenshotDir != filepath.Join(wantBase, "screenshots") {
		t.Fatalf("screenshot_dir=%q", cfg.UI.ScreenshotDir)
	}
	if cfg.Log.File != filepath.Join(wantBase, "taskconsole.log") {
		t.Fatalf("log file=%q", cfg.Log.File)
	}
}

func TestLoadJSONCAndPrecedence(t *testing.T) {
	home := isolate(t)

	globalDir := filepath.Join(home, ".taskconsole")
	if err := os.MkdirAll(globalDir, 0o755); err != nil {
		t.Fatal(err)
	}
	globalCfg := `{
  // global
  "backend": {"base_url": "http://global:1", "poll_interval_ms": 250},
  "storage": {"history": false}
}`
	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(globalCfg), 0o644); err != nil {
		t.Fatal(err)
	}
	projectCfg := `{
  /* project overrides */
  "backend": {"base_url": "http://project:2/"},
  "log": {"level": "DEBUG"}
}`
	if err := os.WriteFile("taskconsole.config.json", []byte(projectCfg), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend.BaseURL != "http://project:2" {
		t.Fatalf("base_url=%q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.PollIntervalMS != 250 {
		t.Fatalf("poll_interval_ms=%d", cfg.Backend.PollIntervalMS)
	}
	if cfg.Storage.History {
		t.Fatalf("storage.history expected false from global config")
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level=%q", cfg.Log.Level)
	}
}

func TestEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("TASKCONSOLE_BASE_URL", "https://env.example")
	t.Setenv("TASKCONSOLE_POLL_MS", "500")
	t.Setenv("TASKCONSOLE_LANG", "zh_CN.UTF-8")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend.BaseURL != "https://env.example" {
		t.Fatalf("base_url=%q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.PollIntervalMS != 500 {
		t.Fatalf("poll_interval_ms=%d", cfg.Backend.PollIntervalMS)
	}
	if cfg.UI.Locale != "zh_CN.UTF-8" {
		t.Fatalf("locale=%q", cfg.UI.Locale)
	}
}

func TestEnvHomeMovesDerivedPaths(t *testing.T) {
	isolate(t)
	base := filepath.Join(t.TempDir(), "tc-home")
	t.Setenv("TASKCONSOLE_HOME", base)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.BaseDir != base {
		t.Fatalf("base_dir=%q want %q", cfg.Storage.BaseDir, base)
	}
	if cfg.Log.File != filepath.Join(base, "taskconsole.log") {
		t.Fatalf("log file=%q", cfg.Log.File)
	}
	if cfg.UI.ScreenshotDir != filepath.Join(base, "screenshots") {
		t.Fatalf("screenshot_dir=%q", cfg.UI.ScreenshotDir)
	}
	if cfg.HistoryPath() != filepath.Join(base, "history.db") {
		t.Fatalf("history path=%q", cfg.HistoryPath())
	}
}

func TestEnvHomeKeepsExplicitPaths(t *testing.T) {
	isolate(t)
	shots := filepath.Join(t.TempDir(), "shots")
	path := filepath.Join(t.TempDir(), "cfg.json")
	if err := os.WriteFile(path, []byte(`{"ui": {"screenshot_dir": "`+shots+`"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	base := filepath.Join(t.TempDir(), "tc-home")
	t.Setenv("TASKCONSOLE_HOME", base)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.ScreenshotDir != shots {
		t.Fatalf("screenshot_dir=%q want %q", cfg.UI.ScreenshotDir, shots)
	}
	if cfg.Log.File != filepath.Join(base, "taskconsole.log") {
		t.Fatalf("log file=%q", cfg.Log.File)
	}
}

func TestEnvOverrideRejectsInvalidInterval(t *testing.T) {
	isolate(t)
	t.Setenv("TASKCONSOLE_POLL_MS", "soon")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for invalid TASKCONSOLE_POLL_MS")
	}
}

func TestLoadRejectsNonHTTPBaseURL(t *testing.T) {
	isolate(t)
	if err := os.WriteFile("taskconsole.config.json", []byte(`{"backend":{"base_url":"ftp://x"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for ftp base_url")
	}
}

func TestExplicitPathAndBadJSON(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.json")
	if err := os.WriteFile(path, []byte(`{"backend": {`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestStripJSONCommentsKeepsStrings(t *testing.T) {
	in := []byte(`{"url": "http://a//b", /* c */ "x": 1 // tail
}`)
	got := string(stripJSONComments(in))
	want := "{\"url\": \"http://a//b\",  \"x\": 1 \n}"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestInitProjectConfigScaffold(t *testing.T) {
	dir := t.TempDir()
	path, err := InitProjectConfigScaffold(dir)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, ".taskconsole", "config.json") {
		t.Fatalf("path=%q", path)
	}
	if err := os.WriteFile(path, []byte(`{"backend":{"base_url":"http://keep"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := InitProjectConfigScaffold(dir); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != `{"backend":{"base_url":"http://keep"}}` {
		t.Fatalf("existing config was overwritten: %s", data)
	}
}
