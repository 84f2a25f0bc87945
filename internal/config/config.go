package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"gitpanel.dev/gitpanel/internal/git"
)

const (
	// FileName is the user configuration file name.
	FileName = "config.yaml"
	// RepoFileName is the per-repository override file inside .git.
	RepoFileName = "gitpanel.yaml"
	// EnvPrefix prefixes environment overrides, e.g. GITPANEL_AUTHOR_NAME.
	EnvPrefix = "GITPANEL"
)

// Keys understood by Get and Set.
const (
	KeyAuthorName        = "author.name"
	KeyAuthorEmail       = "author.email"
	KeyTrunk             = "trunk"
	KeyLogLimit          = "log.limit"
	KeyJournalEnabled    = "journal.enabled"
	KeyJournalPath       = "journal.path"
	KeyAllowEmptyCommits = "git.allow_empty_commits"
	KeyEditorStyle       = "editor.style"
)

// Defaults used when nothing else sets a key.
const (
	DefaultAuthorName  = "User"
	DefaultAuthorEmail = "user@localhost.com"
	DefaultLogLimit    = 50
	DefaultEditorStyle = "monokai"
)

type kind int

const (
	kindString kind = iota
	kindInt
	kindBool
)

var keyKinds = map[string]kind{
	KeyAuthorName:        kindString,
	KeyAuthorEmail:       kindString,
	KeyTrunk:             kindString,
	KeyLogLimit:          kindInt,
	KeyJournalEnabled:    kindBool,
	KeyJournalPath:       kindString,
	KeyAllowEmptyCommits: kindBool,
	KeyEditorStyle:       kindString,
}

// KeyNotFoundError reports an unknown configuration key.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("unknown config key %q (known keys: %s)", e.Key, strings.Join(Keys(), ", "))
}

// Keys lists every configuration key in lexical order.
func Keys() []string {
	keys := make([]string, 0, len(keyKinds))
	for k := range keyKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AuthorConfig is the identity recorded on commits.
type AuthorConfig struct {
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
}

// LogConfig controls the rendered commit log.
type LogConfig struct {
	Limit int `mapstructure:"limit"`
}

// JournalConfig controls the operation journal.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// GitConfig holds engine options.
type GitConfig struct {
	AllowEmptyCommits bool `mapstructure:"allow_empty_commits"`
}

// EditorConfig controls file rendering.
type EditorConfig struct {
	Style string `mapstructure:"style"`
}

// Config is the merged configuration.
type Config struct {
	Author  AuthorConfig  `mapstructure:"author"`
	Trunk   string        `mapstructure:"trunk"`
	Log     LogConfig     `mapstructure:"log"`
	Journal JournalConfig `mapstructure:"journal"`
	Git     GitConfig     `mapstructure:"git"`
	Editor  EditorConfig  `mapstructure:"editor"`

	v    *viper.Viper
	path string
}

// LoadOptions selects the files Load reads.
type LoadOptions struct {
	// Path of the user file. DefaultPath() when empty.
	Path string
	// RepoRoot, when set, adds RepoRoot/.git/gitpanel.yaml on top of the user file.
	RepoRoot string
}

// DefaultPath returns $XDG_CONFIG_HOME/gitpanel/config.yaml, falling back to
// the OS user config directory.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if d, err := os.UserConfigDir(); err == nil {
			dir = d
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "gitpanel", FileName)
}

// DefaultJournalPath returns $XDG_STATE_HOME/gitpanel/journal.db, falling
// back to ~/.local/state.
func DefaultJournalPath() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "gitpanel", "journal.db")
}

// RepoPath returns the repository override file for repoRoot.
func RepoPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".git", RepoFileName)
}

// Load reads the configuration. Missing files are not an error.
func Load(opts LoadOptions) (*Config, error) {
	path := opts.Path
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyAuthorName, DefaultAuthorName)
	v.SetDefault(KeyAuthorEmail, DefaultAuthorEmail)
	v.SetDefault(KeyTrunk, git.DefaultTrunk)
	v.SetDefault(KeyLogLimit, DefaultLogLimit)
	v.SetDefault(KeyJournalEnabled, true)
	v.SetDefault(KeyJournalPath, DefaultJournalPath())
	v.SetDefault(KeyAllowEmptyCommits, true)
	v.SetDefault(KeyEditorStyle, DefaultEditorStyle)

	if err := mergeFile(v, path); err != nil {
		return nil, err
	}
	if opts.RepoRoot != "" {
		if err := mergeFile(v, RepoPath(opts.RepoRoot)); err != nil {
			return nil, err
		}
	}

	cfg := &Config{v: v, path: path}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeFile(v *viper.Viper, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open config %s: %w", path, err)
	}
	defer f.Close()

	if err := v.MergeConfig(f); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// Validate checks values that would break a session.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Author.Name) == "" {
		return fmt.Errorf("%s must not be empty", KeyAuthorName)
	}
	if strings.TrimSpace(c.Author.Email) == "" {
		return fmt.Errorf("%s must not be empty", KeyAuthorEmail)
	}
	if err := git.ValidateBranchName(c.Trunk); err != nil {
		return fmt.Errorf("%s: %w", KeyTrunk, err)
	}
	if c.Log.Limit < 0 {
		return fmt.Errorf("%s must not be negative", KeyLogLimit)
	}
	return nil
}

// Path returns the user file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Get returns the effective value of key.
func (c *Config) Get(key string) (any, error) {
	if _, ok := keyKinds[key]; !ok {
		return nil, &KeyNotFoundError{Key: key}
	}
	return c.v.Get(key), nil
}

// AuthorIdentity returns the configured author.
func (c *Config) AuthorIdentity() git.Author {
	return git.Author{Name: c.Author.Name, Email: c.Author.Email}
}

// EngineOptions returns the git engine options implied by the configuration.
func (c *Config) EngineOptions() git.Options {
	return git.Options{
		Trunk:             c.Trunk,
		LogLimit:          c.Log.Limit,
		AllowEmptyCommits: c.Git.AllowEmptyCommits,
	}
}
