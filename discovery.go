// FILE: lixenwraith/envchain/discovery.go
package envchain

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
)

// FileDiscoveryOptions configures automatic config file discovery
type FileDiscoveryOptions struct {
	// Base name of config file (without extension)
	Name string

	// Extensions to try (in order)
	Extensions []string

	// Custom search paths (in addition to defaults)
	Paths []string

	// Environment variable to check for explicit path
	EnvVar string

	// Whether to search in XDG config directories
	UseXDG bool

	// Whether to search in current directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns sensible defaults
func DefaultDiscoveryOptions(appName string) FileDiscoveryOptions {
	return FileDiscoveryOptions{
		Name:          appName,
		Extensions:    []string{".toml", ".yaml", ".yml", ".json"},
		EnvVar:        EnvKey(appName) + "_CONFIG",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// WithFileDiscovery adds the first config file found by opts to the config
// layers, at the position it holds among the WithConfigFiles paths.
// The search runs in Build against the filesystem and environment the builder
// holds at that point, so WithFs and WithEnviron may come before or after it.
// An explicit path from opts.EnvVar wins and is required to exist.
// Finding nothing is not an error: the chain runs on env and defaults.
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	b.discoveries = append(b.discoveries, pendingDiscovery{opts: opts, at: len(b.opts.Configs)})
	return b
}

// pendingDiscovery is a discovery request resolved when the chain is built.
type pendingDiscovery struct {
	opts FileDiscoveryOptions
	at   int // index into LoadOptions.Configs at request time
}

// resolve inserts the discovered file, if any, into opts.
func (d pendingDiscovery) resolve(opts *LoadOptions) error {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	environ := opts.Environ
	if environ == nil {
		environ = os.Environ
	}
	vars := environMap(environ(), "")

	var path string
	required := false

	// Check environment variable
	if d.opts.EnvVar != "" {
		if path = strings.TrimSpace(vars[d.opts.EnvVar]); path != "" {
			required = true
		}
	}

	if path == "" {
		found, err := discoverFile(fs, d.opts, vars)
		if err != nil {
			return fmt.Errorf("config file discovery failed: %w", err)
		}
		path = found
	}
	if path == "" {
		return nil
	}

	opts.Configs = slices.Insert(opts.Configs, min(d.at, len(opts.Configs)), path)
	if required {
		opts.RequiredFiles = append(opts.RequiredFiles, path)
	}
	return nil
}

// discoverFile searches the configured directories and returns the first match.
func discoverFile(fs afero.Fs, opts FileDiscoveryOptions, vars map[string]string) (string, error) {
	var searchPaths []string

	// Custom paths first
	searchPaths = append(searchPaths, opts.Paths...)

	// Current directory
	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			searchPaths = append(searchPaths, cwd)
		}
	}

	// XDG paths
	if opts.UseXDG {
		searchPaths = append(searchPaths, getXDGConfigPaths(opts.Name, vars)...)
	}

	for _, dir := range searchPaths {
		for _, ext := range opts.Extensions {
			path := filepath.Join(dir, opts.Name+ext)
			exists, err := afero.Exists(fs, path)
			if err != nil {
				return "", err
			}
			if exists {
				return path, nil
			}
		}
	}

	return "", nil
}

// getXDGConfigPaths returns XDG-compliant config search paths
func getXDGConfigPaths(appName string, vars map[string]string) []string {
	var paths []string

	// XDG_CONFIG_HOME
	if xdgHome := vars["XDG_CONFIG_HOME"]; xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, appName))
	} else if home := vars["HOME"]; home != "" {
		paths = append(paths, filepath.Join(home, ".config", appName))
	}

	// XDG_CONFIG_DIRS
	if xdgDirs := vars["XDG_CONFIG_DIRS"]; xdgDirs != "" {
		for _, dir := range filepath.SplitList(xdgDirs) {
			paths = append(paths, filepath.Join(dir, appName))
		}
	} else {
		// Default system paths
		paths = append(paths,
			filepath.Join("/etc/xdg", appName),
			filepath.Join("/etc", appName),
		)
	}

	return paths
}
