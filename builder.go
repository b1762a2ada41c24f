// File: lixenwraith/envchain/builder.go
package envchain

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/afero"
)

// ValidatorFunc defines the signature for a function that can validate a loaded Env.
// It receives the fully assembled chain and should return an error if validation fails.
type ValidatorFunc func(env *Env) error

// Builder provides a fluent interface for assembling a chain
type Builder struct {
	opts        LoadOptions
	discoveries []pendingDiscovery
	validators  []ValidatorFunc
}

// NewBuilder creates a new chain builder starting from DefaultLoadOptions
func NewBuilder() *Builder {
	return &Builder{
		opts:       DefaultLoadOptions(),
		validators: make([]ValidatorFunc, 0),
	}
}

// WithEnv toggles the process environment layer
func (b *Builder) WithEnv(include bool) *Builder {
	b.opts.IncludeEnv = include
	return b
}

// WithEnvPrefix restricts the environment layer to variables with the prefix
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.opts.EnvPrefix = prefix
	return b
}

// WithEnviron replaces the process environment source
func (b *Builder) WithEnviron(environ func() []string) *Builder {
	b.opts.Environ = environ
	return b
}

// WithDefaultDotenv includes the default dotenv file; an empty path keeps the current one
func (b *Builder) WithDefaultDotenv(path string) *Builder {
	b.opts.IncludeDefaultDotenv = true
	if path != "" {
		b.opts.DefaultDotenv = path
	}
	return b
}

// WithDotenv appends dotenv files; later files take precedence
func (b *Builder) WithDotenv(paths ...string) *Builder {
	b.opts.Dotenvs = append(b.opts.Dotenvs, paths...)
	return b
}

// WithConfigFiles appends structured config files; later files take precedence
func (b *Builder) WithConfigFiles(paths ...string) *Builder {
	b.opts.Configs = append(b.opts.Configs, paths...)
	return b
}

// RequireFiles marks files that must exist; a missing one fails Build with ErrConfigNotFound
func (b *Builder) RequireFiles(paths ...string) *Builder {
	b.opts.RequiredFiles = append(b.opts.RequiredFiles, paths...)
	return b
}

// WithFs sets the filesystem files are read from
func (b *Builder) WithFs(fs afero.Fs) *Builder {
	b.opts.Fs = fs
	return b
}

// WithLogger sets the logger for load diagnostics and key warnings
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.opts.Logger = logger
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added and are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Options returns a copy of the load options accumulated so far, with file
// discovery applied. If discovery fails the options are returned without it;
// Build reports the error.
func (b *Builder) Options() LoadOptions {
	opts, err := b.loadOptions()
	if err != nil {
		return b.opts
	}
	return opts
}

// loadOptions copies the accumulated options and resolves pending discoveries.
func (b *Builder) loadOptions() (LoadOptions, error) {
	opts := b.opts
	opts.Configs = slices.Clone(b.opts.Configs)
	opts.RequiredFiles = slices.Clone(b.opts.RequiredFiles)
	opts.Dotenvs = slices.Clone(b.opts.Dotenvs)

	// Last request first, so that insertions keep the earlier indices valid
	for i := len(b.discoveries) - 1; i >= 0; i-- {
		if err := b.discoveries[i].resolve(&opts); err != nil {
			return LoadOptions{}, err
		}
	}
	return opts, nil
}

// Build assembles the chain with all specified options
func (b *Builder) Build() (*Env, error) {
	opts, err := b.loadOptions()
	if err != nil {
		return nil, err
	}

	env, err := Load(opts)
	if err != nil {
		return nil, err
	}

	for _, validator := range b.validators {
		if err := validator(env); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return env, nil
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Env {
	env, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("config build failed: %v", err))
	}
	return env
}

// BuildAndScan builds the chain and populates target from it, see Env.Scan
func (b *Builder) BuildAndScan(target any) (*Env, error) {
	env, err := b.Build()
	if err != nil {
		return nil, err
	}

	if err := env.Scan(target); err != nil {
		return nil, fmt.Errorf("failed to scan config into target: %w", err)
	}

	return env, nil
}
