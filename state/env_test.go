package state

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextWithEnv(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	env := EnvFromContext(ctx)
	if env == nil {
		t.Fatal("EnvFromContext() returned nil")
	}
	if env.Log == nil {
		t.Error("a fresh env should carry a no-op logger")
	}
	if env != EnvFromContext(ctx) {
		t.Error("EnvFromContext() should return the same env every time")
	}
}

func TestEnvFromContextPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("EnvFromContext() without env should panic")
		}
	}()
	EnvFromContext(context.Background())
}

func TestLocalEnv_Uptime(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))
	time.Sleep(5 * time.Millisecond)
	if env.Uptime() < 5*time.Millisecond {
		t.Errorf("Uptime() = %v, want at least 5ms", env.Uptime())
	}
}

func TestLocalEnv_RedirectAndRestore(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	env := EnvFromContext(ContextWithEnv(context.Background()))
	env.Log = zap.New(core)

	env.RedirectStdLog()
	log.Print("through zap")
	env.RestoreStdLog()
	log.SetOutput(io.Discard)
	defer log.SetOutput(os.Stderr)
	log.Print("not through zap")

	if logs.Len() != 1 || logs.All()[0].Message != "through zap" {
		t.Errorf("captured %v", logs.All())
	}

	env.RestoreStdLog()
}
