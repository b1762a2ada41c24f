// FILE: lixenwraith/envchain/loader.go
package envchain

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// DefaultDotenvFile is the dotenv file read when LoadOptions.IncludeDefaultDotenv is set.
const DefaultDotenvFile = ".env"

// LoadOptions configures how a chain is assembled from the process environment
// and configuration files.
//
// Precedence (highest to lowest):
//  1. Process environment (IncludeEnv)
//  2. Dotenvs, the last one winning a conflict
//  3. The default dotenv file (IncludeDefaultDotenv)
//  4. Configs (TOML, YAML or JSON), the last one winning a conflict
//  5. Defaults supplied at lookup time
type LoadOptions struct {
	// IncludeEnv adds the process environment as the highest precedence layer
	IncludeEnv bool

	// EnvPrefix restricts the environment layer to variables starting with the
	// prefix, which is stripped: with "MYAPP_", MYAPP_SERVER__PORT serves "server.port"
	EnvPrefix string

	// IncludeDefaultDotenv adds DefaultDotenv below the explicit dotenv files
	IncludeDefaultDotenv bool

	// DefaultDotenv is the path of the default dotenv file; empty means ".env"
	DefaultDotenv string

	// Dotenvs are additional dotenv files in ascending precedence
	Dotenvs []string

	// Configs are structured configuration files in ascending precedence.
	// The format follows the extension (.yaml/.yml, .json), TOML otherwise.
	Configs []string

	// RequiredFiles lists paths from Configs or Dotenvs that must exist.
	// Every other missing file is skipped.
	RequiredFiles []string

	// Environ returns the process environment as "KEY=value" pairs; nil means os.Environ
	Environ func() []string

	// Fs is the filesystem files are read from; nil means the OS filesystem
	Fs afero.Fs

	// Logger receives load diagnostics and is handed to the resulting Env; nil means slog.Default()
	Logger *slog.Logger
}

// DefaultLoadOptions returns the standard load options: the process environment only.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		IncludeEnv:    true,
		DefaultDotenv: DefaultDotenvFile,
	}
}

// Load assembles a chain according to opts. Layers are stacked bottom-up,
// each wrapping the previous one as its parent.
// A malformed file fails the load; a missing file is skipped unless listed in
// RequiredFiles, in which case the error wraps ErrConfigNotFound.
func Load(opts LoadOptions) (*Env, error) {
	l := newLoader(opts)

	var src Source = Empty()
	var err error

	for _, path := range opts.Configs {
		if src, err = l.loadConfig(path, src); err != nil {
			return nil, err
		}
	}

	if opts.IncludeDefaultDotenv {
		path := opts.DefaultDotenv
		if path == "" {
			path = DefaultDotenvFile
		}
		if src, err = l.loadDotenv(path, src); err != nil {
			return nil, err
		}
	}

	for _, path := range opts.Dotenvs {
		if src, err = l.loadDotenv(path, src); err != nil {
			return nil, err
		}
	}

	if opts.IncludeEnv {
		values := environMap(l.environ(), opts.EnvPrefix)
		src = NewFlat("env", values, src)
		l.logger.Debug("loaded config layer", "source", "env", "keys", len(values))
	}

	l.logger.Debug("config chain assembled", "layers", chainString(src))
	return New(src, WithLogger(l.logger)), nil
}

// MustLoad is like Load but panics on error.
func MustLoad(opts LoadOptions) *Env {
	env, err := Load(opts)
	if err != nil {
		panic(fmt.Sprintf("config load failed: %v", err))
	}
	return env
}

// loader carries the resolved collaborators of a single Load call.
type loader struct {
	fs       afero.Fs
	environ  func() []string
	logger   *slog.Logger
	required map[string]bool
}

func newLoader(opts LoadOptions) *loader {
	l := &loader{
		fs:       opts.Fs,
		environ:  opts.Environ,
		logger:   opts.Logger,
		required: make(map[string]bool, len(opts.RequiredFiles)),
	}
	if l.fs == nil {
		l.fs = afero.NewOsFs()
	}
	if l.environ == nil {
		l.environ = os.Environ
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	for _, path := range opts.RequiredFiles {
		l.required[path] = true
	}
	return l
}

// loadConfig layers a structured document over parent.
func (l *loader) loadConfig(path string, parent Source) (Source, error) {
	data, found, err := l.readFile(path)
	if err != nil || !found {
		return parent, err
	}

	format := detectFileFormat(path)
	doc, err := Decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s config file '%s': %w", strings.ToUpper(string(format)), path, err)
	}

	src, err := NewNested("file:"+path, doc, parent)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", path, err)
	}

	l.logger.Debug("loaded config layer", "source", string(format), "path", path, "keys", len(doc))
	return src, nil
}

// loadDotenv layers a dotenv file over parent.
func (l *loader) loadDotenv(path string, parent Source) (Source, error) {
	data, found, err := l.readFile(path)
	if err != nil || !found {
		return parent, err
	}

	values, err := DecodeDotenv(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dotenv file '%s': %w", path, err)
	}

	l.logger.Debug("loaded config layer", "source", "dotenv", "path", path, "keys", len(values))
	return NewFlat("file:"+path, values, parent), nil
}

// readFile returns the file content, or found=false for a missing optional file.
func (l *loader) readFile(path string) ([]byte, bool, error) {
	info, err := l.fs.Stat(path)
	switch {
	case err == nil && !info.IsDir():
	case err == nil || errors.Is(err, fs.ErrNotExist):
		if l.required[path] {
			return nil, false, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		l.logger.Debug("skipping missing config file", "path", path)
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("failed to stat config file '%s': %w", path, err)
	}

	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	return data, true, nil
}

// environMap converts "KEY=value" pairs into a map, keeping only names with
// prefix and stripping it.
func environMap(environ []string, prefix string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, pair := range environ {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		if prefix != "" {
			if name, ok = strings.CutPrefix(name, prefix); !ok || name == "" {
				continue
			}
		}
		values[name] = value
	}
	return values
}
