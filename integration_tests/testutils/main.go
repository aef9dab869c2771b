package testutils

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"
)

// RunPackage starts a TestEnvironment for a test package and runs its tests. With
// -short the container is not started and env stays nil, so Require skips.
func RunPackage(m *testing.M, env **TestEnvironment) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	e, err := NewTestEnvironment(context.Background())
	if err != nil {
		log.Printf("integration environment unavailable: %v", err)
		os.Exit(m.Run())
	}
	*env = e

	code := m.Run()
	e.Cleanup()
	os.Exit(code)
}

// Require skips t when no environment is running and resets the tables otherwise.
func Require(t *testing.T, env *TestEnvironment) *TestEnvironment {
	t.Helper()
	if env == nil {
		t.Skip("integration environment not running")
	}
	if err := env.Reset(); err != nil {
		t.Fatalf("failed to reset database: %v", err)
	}
	return env
}
