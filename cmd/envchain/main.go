// FILE: lixenwraith/envchain/cmd/envchain/main.go
// Command envchain resolves configuration keys through a layered chain.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/envchain"
)

func main() {
	if err := newRootCmd(os.Environ).Execute(); err != nil {
		os.Exit(1)
	}
}

// chainFlags are the persistent flags describing the chain to assemble.
type chainFlags struct {
	configs       []string
	dotenvs       []string
	required      []string
	defaultDotenv bool
	noEnv         bool
	envPrefix     string
	discover      string
	logLevel      string
	logFormat     string
}

func newRootCmd(environ func() []string) *cobra.Command {
	var flags chainFlags

	root := &cobra.Command{
		Use:          "envchain",
		Short:        "Resolve typed configuration values from env, dotenv and config files",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringSliceVarP(&flags.configs, "config", "c", nil, "config file (TOML, YAML or JSON), later files win")
	pf.StringSliceVar(&flags.dotenvs, "dotenv", nil, "dotenv file, later files win")
	pf.StringSliceVar(&flags.required, "require", nil, "file that must exist")
	pf.BoolVar(&flags.defaultDotenv, "default-dotenv", false, "include "+envchain.DefaultDotenvFile+" below the explicit dotenv files")
	pf.BoolVar(&flags.noEnv, "no-env", false, "exclude the process environment")
	pf.StringVar(&flags.envPrefix, "env-prefix", "", "only read environment variables with this prefix")
	pf.StringVar(&flags.discover, "discover", "", "discover <name>.{toml,yaml,yml,json} in the working and XDG directories")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(newGetCmd(&flags, environ), newLayersCmd(&flags, environ), newDumpCmd(&flags, environ))
	return root
}

func newGetCmd(flags *chainFlags, environ func() []string) *cobra.Command {
	var (
		typ      string
		naive    bool
		scopes   []string
		def      string
		required bool
	)

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := buildEnv(flags, environ, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			for _, segment := range scopes {
				if env, err = env.Scope(segment); err != nil {
					return err
				}
			}

			key := args[0]
			value, ok, err := lookup(env, key, typ, naive)
			if err != nil {
				return err
			}
			if !ok && cmd.Flags().Changed("default") {
				if value, ok, err = parseDefault(key, def, typ, naive); err != nil {
					return fmt.Errorf("invalid default: %w", err)
				}
			}
			if !ok {
				if required {
					return fmt.Errorf("%w: %s", envchain.ErrMissing, key)
				}
				return nil
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&typ, "type", "t", "string", "value type: string, bool, int, string-list, int-list, date, time, datetime, duration")
	f.BoolVar(&naive, "naive", false, "datetime values must not carry a UTC offset")
	f.StringSliceVarP(&scopes, "scope", "s", nil, "scope segments applied before the lookup")
	f.StringVar(&def, "default", "", "value used when no layer holds the key")
	f.BoolVar(&required, "required", false, "fail when no layer holds the key")
	return cmd
}

func newLayersCmd(flags *chainFlags, environ func() []string) *cobra.Command {
	return &cobra.Command{
		Use:   "layers",
		Short: "List the layers of the chain, highest precedence first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := buildEnv(flags, environ, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			for _, layer := range env.Layers() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), layer); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newDumpCmd(flags *chainFlags, environ func() []string) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "dump <key>...",
		Short: "Print the resolved values of keys as TOML",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := buildEnv(flags, environ, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if check {
				if err := env.Validate(args...); err != nil {
					return err
				}
			}
			return env.Dump(cmd.OutOrStdout(), args...)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "fail unless every key is set")
	return cmd
}

func buildEnv(flags *chainFlags, environ func() []string, logOut io.Writer) (*envchain.Env, error) {
	b := envchain.NewBuilder().
		WithEnviron(environ).
		WithLogger(newLogger(flags.logLevel, flags.logFormat, logOut)).
		WithEnv(!flags.noEnv).
		WithEnvPrefix(flags.envPrefix)

	if flags.discover != "" {
		b.WithFileDiscovery(envchain.DefaultDiscoveryOptions(flags.discover))
	}
	b.WithConfigFiles(flags.configs...).
		WithDotenv(flags.dotenvs...).
		RequireFiles(flags.required...)
	if flags.defaultDotenv {
		b.WithDefaultDotenv("")
	}

	return b.Build()
}

func lookup(env *envchain.Env, key, typ string, naive bool) (string, bool, error) {
	switch typ {
	case "string":
		return render(env.String(key))
	case "bool":
		return render(env.Bool(key))
	case "int":
		return render(env.Int(key))
	case "string-list":
		return render(env.StringList(key))
	case "int-list":
		return render(env.IntList(key))
	case "date":
		return render(env.Date(key))
	case "time":
		return render(env.Time(key))
	case "datetime":
		return render(env.DateTime(key, naive))
	case "duration":
		return render(env.Duration(key))
	default:
		return "", false, fmt.Errorf("unknown type %q", typ)
	}
}

// parseDefault reads a command-line default for key. Durations use Go duration
// syntax ("1m30s"); other types get the same coercion as layer values.
func parseDefault(key, def, typ string, naive bool) (string, bool, error) {
	if typ == "duration" {
		d, err := time.ParseDuration(strings.TrimSpace(def))
		if err != nil {
			return "", false, fmt.Errorf("%w: %w", envchain.ErrMalformed, err)
		}
		return formatValue(d), true, nil
	}
	return lookup(envchain.FromMap(map[string]string{envchain.EnvKey(key): def}), key, typ, naive)
}

func render[T any](v T, ok bool, err error) (string, bool, error) {
	if err != nil || !ok {
		return "", ok, err
	}
	return formatValue(v), true, nil
}

func formatValue(v any) string {
	switch v := v.(type) {
	case []string:
		return strings.Join(v, ",")
	case []int:
		parts := make([]string, len(v))
		for i, n := range v {
			parts[i] = fmt.Sprint(n)
		}
		return strings.Join(parts, ",")
	case time.Time:
		if envchain.IsNaive(v) {
			return v.Format("2006-01-02T15:04:05.999999999")
		}
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

// newLogger builds the diagnostics logger; output goes to w so values on stdout stay clean.
func newLogger(level, format string, w io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
