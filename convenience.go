// File: lixenwraith/envchain/convenience.go
package envchain

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
)

// Quick assembles the standard chain (process environment over configFile)
// and scans it into target in a single call.
// This is the recommended way to initialize configuration for most applications
func Quick(target any, envPrefix, configFile string) (*Env, error) {
	b := NewBuilder().WithEnvPrefix(envPrefix)
	if configFile != "" {
		b.WithConfigFiles(configFile)
	}
	return b.BuildAndScan(target)
}

// MustQuick is like Quick but panics on error
func MustQuick(target any, envPrefix, configFile string) *Env {
	env, err := Quick(target, envPrefix, configFile)
	if err != nil {
		panic(fmt.Sprintf("config initialization failed: %v", err))
	}
	return env
}

// Has reports whether any layer holds a non-blank value for key.
func (e *Env) Has(key string) (bool, error) {
	_, ok, err := e.Raw(key)
	return ok, err
}

// Raw returns the first non-blank value for key without coercion: a stripped
// string from any layer, or the native value of a structured layer.
func (e *Env) Raw(key string) (any, bool, error) {
	return resolve[any](e, key, func(_ string, raw any) (any, error) { return raw, nil }, nil)
}

// Validate checks that every key is held by some layer.
// All missing keys are reported, joined into one error.
func (e *Env) Validate(keys ...string) error {
	var errs []error
	for _, key := range keys {
		ok, err := e.Has(key)
		switch {
		case err != nil:
			errs = append(errs, err)
		case !ok:
			errs = append(errs, newError(ErrMissing, qualifiedKey(e.src, key), ""))
		}
	}
	return errors.Join(errs...)
}

// Debug returns a formatted string showing the chain and the raw value of
// each key together with the layer holding it.
func (e *Env) Debug(keys ...string) string {
	var b strings.Builder
	b.WriteString("Configuration Debug Info:\n")
	b.WriteString(fmt.Sprintf("Layers: %s\n", chainString(e.src)))

	for _, key := range keys {
		b.WriteString(fmt.Sprintf("  %s:\n", qualifiedKey(e.src, key)))
		for src := e.src; src != nil; src = src.Parent() {
			raw, ok, err := src.Lookup(key)
			switch {
			case err != nil:
				b.WriteString(fmt.Sprintf("    %s: error: %v\n", sourceName(src), err))
			case ok:
				b.WriteString(fmt.Sprintf("    %s: %v\n", sourceName(src), raw))
			}
		}
	}

	return b.String()
}

// Dump writes the resolved raw values of keys to w as a TOML document.
// Keys held by no layer are left out.
func (e *Env) Dump(w io.Writer, keys ...string) error {
	nestedData := make(map[string]any)
	for _, key := range keys {
		raw, ok, err := e.Raw(key)
		if err != nil {
			return err
		}
		if ok {
			setNestedValue(nestedData, qualifiedKey(e.src, key), raw)
		}
	}

	encoder := toml.NewEncoder(w)
	return encoder.Encode(nestedData)
}
