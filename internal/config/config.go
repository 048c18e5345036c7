package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type BackendConfig struct {
	BaseURL        string `json:"base_url"`
	TimeoutMS      int    `json:"timeout_ms"`
	PollIntervalMS int    `json:"poll_interval_ms"`
	MaxResponseMB  int    `json:"max_response_mb"`
}

type UIConfig struct {
	Locale        string `json:"locale"`
	ScreenshotDir string `json:"screenshot_dir"`
	PreviewWidth  int    `json:"preview_width"`
}

type StorageConfig struct {
	BaseDir string `json:"base_dir"`
	// History 控制是否把任务与提示应答写入本地 SQLite 日志。
	// History controls whether tasks and prompt answers are journaled to local SQLite.
	History bool `json:"history"`
}

type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Config struct {
	Backend BackendConfig `json:"backend"`
	UI      UIConfig      `json:"ui"`
	Storage StorageConfig `json:"storage"`
	Log     LogConfig     `json:"log"`
}

type fileStorageConfig struct {
	BaseDir *string `json:"base_dir"`
	History *bool   `json:"history"`
}

type fileConfig struct {
	Backend *BackendConfig     `json:"backend"`
	UI      *UIConfig          `json:"ui"`
	Storage *fileStorageConfig `json:"storage"`
	Log     *LogConfig         `json:"log"`
}

const (
	DefaultBaseURL        = "http://127.0.0.1:5001"
	DefaultTimeoutMS      = 30000
	DefaultPollIntervalMS = 1000
	DefaultMaxResponseMB  = 32
	DefaultPreviewWidth   = 48
	DefaultBaseDir        = "~/.taskconsole"
	DefaultLogLevel       = "info"
)

func Default() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL:        DefaultBaseURL,
			TimeoutMS:      DefaultTimeoutMS,
			PollIntervalMS: DefaultPollIntervalMS,
			MaxResponseMB:  DefaultMaxResponseMB,
		},
		UI: UIConfig{
			PreviewWidth: DefaultPreviewWidth,
		},
		Storage: StorageConfig{
			BaseDir: DefaultBaseDir,
			History: true,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// PollInterval 返回轮询间隔
// PollInterval returns the status poll cadence
func (c BackendConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// Timeout 返回单次请求超时
// Timeout returns the per-request timeout
func (c BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// HistoryPath 返回任务日志数据库路径
// HistoryPath returns the task journal database path
func (c Config) HistoryPath() string {
	return filepath.Join(c.Storage.BaseDir, "history.db")
}

// LineHistoryPath 返回行模式输入历史文件路径
// LineHistoryPath returns the line-mode input history file
func (c Config) LineHistoryPath() string {
	return filepath.Join(c.Storage.BaseDir, "line.history")
}

func Load(path string) (Config, error) {
	cfg := Default()

	for _, globalPath := range globalConfigPaths() {
		if err := mergeFromFile(&cfg, globalPath); err != nil {
			return Config{}, err
		}
	}

	resolvedPath := strings.TrimSpace(path)
	if envPath := strings.TrimSpace(os.Getenv("TASKCONSOLE_CONFIG_PATH")); envPath != "" {
		resolvedPath = envPath
	}
	if resolvedPath == "" {
		resolvedPath = findProjectConfigPath()
	}
	if err := mergeFromFile(&cfg, resolvedPath); err != nil {
		return Config{}, err
	}

	// 环境变量先于派生路径生效 / Env overrides apply before derived paths are filled in
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := normalize(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func globalConfigPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(home, ".taskconsole", "config.json")}
}

func findProjectConfigPath() string {
	candidates := []string{
		"taskconsole.config.json",
		".taskconsole/config.json",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func mergeFromFile(cfg *Config, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %q: %w", resolved, err)
	}

	cleaned := stripJSONComments(data)
	var fileCfg fileConfig
	if err := json.Unmarshal(cleaned, &fileCfg); err != nil {
		return fmt.Errorf("parse config %q: %w", resolved, err)
	}
	applyFileConfig(cfg, fileCfg)
	return nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Backend != nil {
		cfg.Backend = mergeBackend(cfg.Backend, *fc.Backend)
	}
	if fc.UI != nil {
		cfg.UI = mergeUI(cfg.UI, *fc.UI)
	}
	if fc.Storage != nil {
		if fc.Storage.BaseDir != nil && strings.TrimSpace(*fc.Storage.BaseDir) != "" {
			cfg.Storage.BaseDir = *fc.Storage.BaseDir
		}
		if fc.Storage.History != nil {
			cfg.Storage.History = *fc.Storage.History
		}
	}
	if fc.Log != nil {
		if strings.TrimSpace(fc.Log.Level) != "" {
			cfg.Log.Level = fc.Log.Level
		}
		if strings.TrimSpace(fc.Log.File) != "" {
			cfg.Log.File = fc.Log.File
		}
	}
}

func mergeBackend(base BackendConfig, override BackendConfig) BackendConfig {
	if strings.TrimSpace(override.BaseURL) != "" {
		base.BaseURL = override.BaseURL
	}
	if override.TimeoutMS > 0 {
		base.TimeoutMS = override.TimeoutMS
	}
	if override.PollIntervalMS > 0 {
		base.PollIntervalMS = override.PollIntervalMS
	}
	if override.MaxResponseMB > 0 {
		base.MaxResponseMB = override.MaxResponseMB
	}
	return base
}

func mergeUI(base UIConfig, override UIConfig) UIConfig {
	if strings.TrimSpace(override.Locale) != "" {
		base.Locale = override.Locale
	}
	if strings.TrimSpace(override.ScreenshotDir) != "" {
		base.ScreenshotDir = override.ScreenshotDir
	}
	if override.PreviewWidth > 0 {
		base.PreviewWidth = override.PreviewWidth
	}
	return base
}

func normalize(cfg *Config) error {
	cfg.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Backend.BaseURL), "/")
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(cfg.Backend.BaseURL, "http://") && !strings.HasPrefix(cfg.Backend.BaseURL, "https://") {
		return fmt.Errorf("backend.base_url must be http(s): %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.TimeoutMS <= 0 {
		cfg.Backend.TimeoutMS = DefaultTimeoutMS
	}
	if cfg.Backend.PollIntervalMS <= 0 {
		cfg.Backend.PollIntervalMS = DefaultPollIntervalMS
	}
	if cfg.Backend.MaxResponseMB <= 0 {
		cfg.Backend.MaxResponseMB = DefaultMaxResponseMB
	}
	if cfg.UI.PreviewWidth <= 0 {
		cfg.UI.PreviewWidth = DefaultPreviewWidth
	}

	if strings.TrimSpace(cfg.Storage.BaseDir) == "" {
		cfg.Storage.BaseDir = DefaultBaseDir
	}
	baseDir, err := expandPath(cfg.Storage.BaseDir)
	if err != nil {
		return err
	}
	cfg.Storage.BaseDir = baseDir

	if strings.TrimSpace(cfg.UI.ScreenshotDir) == "" {
		cfg.UI.ScreenshotDir = filepath.Join(baseDir, "screenshots")
	}
	shotDir, err := expandPath(cfg.UI.ScreenshotDir)
	if err != nil {
		return err
	}
	cfg.UI.ScreenshotDir = shotDir

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		cfg.Log.Level = DefaultLogLevel
	}
	if strings.TrimSpace(cfg.Log.File) == "" {
		cfg.Log.File = filepath.Join(baseDir, "taskconsole.log")
	}
	logFile, err := expandPath(cfg.Log.File)
	if err != nil {
		return err
	}
	cfg.Log.File = logFile
	cfg.UI.Locale = strings.TrimSpace(cfg.UI.Locale)
	return nil
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("TASKCONSOLE_BASE_URL")); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKCONSOLE_POLL_MS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid TASKCONSOLE_POLL_MS: %q", v)
		}
		cfg.Backend.PollIntervalMS = n
	}
	if v := strings.TrimSpace(os.Getenv("TASKCONSOLE_TIMEOUT_MS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid TASKCONSOLE_TIMEOUT_MS: %q", v)
		}
		cfg.Backend.TimeoutMS = n
	}
	if v := strings.TrimSpace(os.Getenv("TASKCONSOLE_HOME")); v != "" {
		cfg.Storage.BaseDir = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKCONSOLE_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKCONSOLE_LANG")); v != "" {
		cfg.UI.Locale = v
	}

	return nil
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return filepath.Abs(path)
}

func stripJSONComments(data []byte) []byte {
	const (
		stateNormal = iota
		stateString
		stateLineComment
		stateBlockComment
	)

	state := stateNormal
	escaped := false
	out := bytes.Buffer{}

	for i := 0; i < len(data); i++ {
		c := data[i]
		next := byte(0)
		if i+1 < len(data) {
			next = data[i+1]
		}

		switch state {
		case stateNormal:
			if c == '"' {
				state = stateString
				out.WriteByte(c)
				continue
			}
			if c == '/' && next == '/' {
				state = stateLineComment
				i++
				continue
			}
			if c == '/' && next == '*' {
				state = stateBlockComment
				i++
				continue
			}
			out.WriteByte(c)
		case stateString:
			out.WriteByte(c)
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				continue
			}
			if c == '"' {
				state = stateNormal
			}
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				out.WriteByte(c)
			}
		case stateBlockComment:
			if c == '*' && next == '/' {
				state = stateNormal
				i++
			}
		}
	}

	return out.Bytes()
}
