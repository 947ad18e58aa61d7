// Package config loads pipeline settings from defaults, an optional TOML
// file, a .env file and the process environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigFile is read from the working directory when present.
const DefaultConfigFile = "staffquoter.toml"

// Settings holds everything the CLI and server need.
type Settings struct {
	WorkspaceRoot   string       `toml:"workspace_root"`
	DefaultWorkbook string       `toml:"default_workbook"`
	Google          GoogleConfig `toml:"google"`
	Recalc          RecalcConfig `toml:"recalc"`
	Output          OutputConfig `toml:"output"`
	Server          ServerConfig `toml:"server"`
	Log             LogConfig    `toml:"log"`
}

// GoogleConfig configures the spreadsheet sync.
type GoogleConfig struct {
	CredentialsFile string `toml:"credentials_file"`
	SheetsID        string `toml:"sheets_id"`
}

// RecalcConfig configures the external recalculation script.
type RecalcConfig struct {
	Script         string `toml:"script"`
	Interpreter    string `toml:"interpreter"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// OutputConfig sets where pipeline artifacts are written.
type OutputConfig struct {
	JSONDir string `toml:"json_dir"`
	PDFDir  string `toml:"pdf_dir"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultSettings returns settings for a project rooted at repoRoot whose
// shared artifacts live in its parent directory.
func DefaultSettings(repoRoot, home string) *Settings {
	workspace := filepath.Dir(repoRoot)
	return &Settings{
		WorkspaceRoot:   workspace,
		DefaultWorkbook: filepath.Join(workspace, "artifacts", "workbooks", "Staff_Quoter_Rebuild_Foundation_v1.xlsx"),
		Recalc: RecalcConfig{
			Script:         filepath.Join(home, ".codex", "skills", "xlsx", "scripts", "recalc.py"),
			Interpreter:    "python3",
			TimeoutSeconds: 60,
		},
		Output: OutputConfig{
			JSONDir: filepath.Join(repoRoot, "output", "json"),
			PDFDir:  filepath.Join(repoRoot, "output", "pdf"),
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load resolves settings relative to the working directory. configPath may
// be empty, in which case STAFF_QUOTER_CONFIG or ./staffquoter.toml is used
// when present.
func Load(configPath string) (*Settings, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return LoadFrom(cwd, configPath)
}

// LoadFrom resolves settings for a project rooted at dir.
func LoadFrom(dir, configPath string) (*Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = dir
	}
	cfg := DefaultSettings(dir, home)

	dotenv, err := readDotenv(filepath.Join(dir, ".env"))
	if err != nil {
		return nil, err
	}
	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}

	explicit := configPath != ""
	if !explicit {
		configPath = lookup("STAFF_QUOTER_CONFIG")
		explicit = configPath != ""
	}
	if !explicit {
		configPath = filepath.Join(dir, DefaultConfigFile)
	}
	if err := mergeTOML(cfg, configPath, explicit); err != nil {
		return nil, err
	}

	applyEnv(cfg, lookup)
	cfg.expandPaths(home)
	return cfg, nil
}

func readDotenv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return values, nil
}

func mergeTOML(cfg *Settings, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Settings, lookup func(string) string) {
	set := func(dst *string, key string) {
		if v := lookup(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.Google.CredentialsFile, "GOOGLE_CREDENTIALS_FILE")
	set(&cfg.Google.SheetsID, "GOOGLE_SHEETS_ID")
	set(&cfg.Recalc.Script, "XLSX_RECALC_SCRIPT")
	set(&cfg.Recalc.Interpreter, "XLSX_RECALC_PYTHON")
	set(&cfg.DefaultWorkbook, "DEFAULT_WORKBOOK_PATH")
	set(&cfg.Output.JSONDir, "OUTPUT_JSON_DIR")
	set(&cfg.Output.PDFDir, "OUTPUT_PDF_DIR")
	set(&cfg.Server.Addr, "STAFF_QUOTER_ADDR")
	set(&cfg.Log.Level, "LOG_LEVEL")
}

func (s *Settings) expandPaths(home string) {
	for _, p := range []*string{
		&s.WorkspaceRoot,
		&s.DefaultWorkbook,
		&s.Google.CredentialsFile,
		&s.Recalc.Script,
		&s.Output.JSONDir,
		&s.Output.PDFDir,
	} {
		*p = ExpandHome(*p, home)
	}
}

// ExpandHome replaces a leading ~ with home.
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
