// File: lixenwraith/envchain/doc.go

// Package envchain provides typed, layered configuration lookup for Go
// applications. Values come from a chain of sources, each source either
// answering a key or deferring to its parent: the process environment,
// dotenv files, structured documents (TOML, YAML, JSON) and finally the
// defaults supplied at lookup time.
//
// Features:
//   - Flat sources (environment, dotenv) addressed as SCREAMING__SNAKE names
//   - Nested sources (TOML, YAML, JSON) addressed by dotted kebab-case keys
//   - Typed getters for strings, bools, integers, lists, dates, times,
//     datetimes and composed durations
//   - Uniform Default / Required contract on every getter
//   - Scoped views that prefix every key with a segment
//   - Struct population with `env` tags
//   - Pluggable filesystem (afero) and environment for tests
//
// Quick Start:
//
//	env, err := envchain.NewBuilder().
//	    WithConfigFiles("config.toml").
//	    WithDotenv(".env.local").
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	host, _, err := env.String("server.host", envchain.Default("localhost"))
//	port, _, err := env.Int("server.port", envchain.Required[int]())
//	timeout, _, err := env.Duration("server.timeout") // timeout.seconds, timeout.minutes, ...
//
// Keys:
// A logical key is a dot-separated path of kebab-case segments, such as
// "database.pool-size". Nested sources navigate the path directly; flat
// sources look up EnvKey(key), here DATABASE__POOL_SIZE. Keys outside
// kebab-case still resolve but are reported through the logger.
//
// Default Precedence (highest to lowest):
//  1. Process environment (DATABASE__POOL_SIZE=20)
//  2. Dotenv files, the last one given winning
//  3. The default dotenv file (.env), when enabled
//  4. Configuration files, the last one given winning
//  5. Defaults supplied at lookup time
//
// A blank string in any layer counts as absent, so an empty environment
// variable never masks a value configured further down the chain.
//
// Thread Safety:
// Sources and Env values are immutable once built and safe for concurrent use.
package envchain
