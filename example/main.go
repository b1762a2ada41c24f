// FILE: lixenwraith/envchain/example/main.go
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/civil"

	"github.com/lixenwraith/envchain"
)

// AppConfig shows struct population from a layered chain.
type AppConfig struct {
	Server struct {
		Host     string        `env:"host,required"`
		Port     int           `env:"port"`
		LogLevel string        // "server.log-level"
		Timeout  time.Duration // "server.timeout.seconds", "server.timeout.minutes", ...
	} `env:"server"`
	Release  civil.Date `env:"release"`
	Features []string   `env:"features"`
}

const configTOML = `
release = 2024-05-01

[server]
host = "localhost"
port = 8080
log-level = "info"

[server.timeout]
minutes = 1
`

const dotenvContent = `
SERVER__LOG_LEVEL=debug
FEATURES=metrics, tracing
`

func main() {
	// =========================================================================
	// PART 1: INITIAL SETUP
	// Write a config.toml and a .env.local into a scratch directory.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 1: Creating configuration files...")

	dir, err := os.MkdirTemp("", "envchain-example")
	if err != nil {
		log.Fatalf("❌ Failed to create scratch directory: %v", err)
	}
	defer func() {
		log.Println("---")
		log.Println("🧹 Cleaning up...")
		os.RemoveAll(dir)
	}()

	configPath := filepath.Join(dir, "config.toml")
	dotenvPath := filepath.Join(dir, ".env.local")
	if err := os.WriteFile(configPath, []byte(configTOML), 0o644); err != nil {
		log.Fatalf("❌ Failed to write %s: %v", configPath, err)
	}
	if err := os.WriteFile(dotenvPath, []byte(dotenvContent), 0o644); err != nil {
		log.Fatalf("❌ Failed to write %s: %v", dotenvPath, err)
	}
	log.Printf("✅ Wrote %s and %s.", configPath, dotenvPath)

	// =========================================================================
	// PART 2: BUILDING THE CHAIN
	// The environment (simulated here) overrides the dotenv file, which
	// overrides the TOML file.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 2: Building the chain...")

	environ := func() []string {
		return []string{"SERVER__PORT=8888", "SERVER__TIMEOUT__SECONDS=30"}
	}

	validator := func(env *envchain.Env) error {
		port, _, err := env.Int("server.port", envchain.Default(8080))
		if err != nil {
			return err
		}
		if port < 1024 || port > 65535 {
			return fmt.Errorf("port %d is outside the recommended range (1024-65535)", port)
		}
		return nil
	}

	env, err := envchain.NewBuilder().
		WithEnviron(environ).
		WithConfigFiles(configPath).
		WithDotenv(dotenvPath).
		WithValidator(validator).
		Build()
	if err != nil {
		log.Fatalf("❌ Builder failed: %v", err)
	}
	log.Printf("✅ Chain assembled: %v", env.Layers())

	// =========================================================================
	// PART 3: TYPED LOOKUPS
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 3: Typed lookups...")

	server := env.MustScope("server")
	port, _, _ := server.Int("port")
	level, _, _ := server.String("log-level")
	timeout, _, _ := server.Duration("timeout")
	workers, _, _ := server.Int("workers", envchain.Default(4))
	log.Printf("   server.port=%d server.log-level=%s server.timeout=%s server.workers=%d", port, level, timeout, workers)

	if _, _, err := env.String("database.url", envchain.Required[string]()); errors.Is(err, envchain.ErrMissing) {
		log.Printf("✅ Missing required key reported: %v", err)
	}

	// =========================================================================
	// PART 4: STRUCT POPULATION
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 4: Scanning into a struct...")

	var cfg AppConfig
	cfg.Server.Port = 80 // pre-set values act as defaults
	if err := env.Scan(&cfg); err != nil {
		log.Fatalf("❌ Scan failed: %v", err)
	}
	printCurrentState(&cfg)
}

// printCurrentState is a helper to display the typed config state.
func printCurrentState(cfg *AppConfig) {
	fmt.Println("   --------------------------------------------------")
	fmt.Printf("     Server Host:      %s\n", cfg.Server.Host)
	fmt.Printf("     Server Port:      %d\n", cfg.Server.Port)
	fmt.Printf("     Server Log Level: %s\n", cfg.Server.LogLevel)
	fmt.Printf("     Server Timeout:   %s\n", cfg.Server.Timeout)
	fmt.Printf("     Release:          %s\n", cfg.Release)
	fmt.Printf("     Features:         %v\n", cfg.Features)
	fmt.Println("   --------------------------------------------------")
}
