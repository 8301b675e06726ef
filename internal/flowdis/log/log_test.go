package log

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupAndRecoverPanic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowdis.log")
	if err := Setup(path, true); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if !Initialized() {
		t.Fatal("logger not initialized")
	}

	cleaned := false
	func() {
		defer RecoverPanic("test", func() { cleaned = true })
		panic("boom")
	}()
	if !cleaned {
		t.Error("cleanup was not called")
	}

	slog.Info("after panic")
	if err := Shutdown(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Panic in test") {
		t.Errorf("panic not logged: %q", data)
	}
}
