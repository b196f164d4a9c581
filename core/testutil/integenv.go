// Package testutil provides shared helpers for integration tests.
package testutil

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// IntegEnvFile is the dotenv file consulted when a variable is not exported.
const IntegEnvFile = ".env.integ-test"

var (
	integEnvOnce sync.Once
	integEnvVars map[string]string
)

func loadIntegEnvFile() map[string]string {
	integEnvOnce.Do(func() {
		integEnvVars = map[string]string{}
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		f, err := os.Open(filepath.Join(home, ".config", "relnotes", IntegEnvFile))
		if err != nil {
			return
		}
		defer func() { _ = f.Close() }()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			line = strings.TrimPrefix(line, "export ")
			if k, v, ok := strings.Cut(line, "="); ok {
				integEnvVars[strings.TrimSpace(k)] = unquote(strings.TrimSpace(v))
			}
		}
	})
	return integEnvVars
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// IntegEnv returns the value of key from the environment, falling back to
// ~/.config/relnotes/.env.integ-test if the env var is not set.
func IntegEnv(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return loadIntegEnvFile()[key]
}

// RequireIntegEnv skips the test in -short mode or when any key is unset and
// returns the resolved values otherwise.
func RequireIntegEnv(t *testing.T, keys ...string) map[string]string {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	vals := make(map[string]string, len(keys))
	for _, k := range keys {
		v := IntegEnv(k)
		if v == "" {
			t.Skipf("%s required (env var or ~/.config/relnotes/%s)", k, IntegEnvFile)
		}
		vals[k] = v
	}
	return vals
}
