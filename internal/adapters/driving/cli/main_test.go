package cli

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/custodia-labs/persona-digest/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/persona-digest/internal/core/services"
	"github.com/custodia-labs/persona-digest/internal/logger"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	settingsService = services.NewSettingsService(memory.NewConfigStore())
	os.Exit(m.Run())
}

// useMemorySettings installs a fresh in-memory settings service for one test.
func useMemorySettings(t *testing.T) *services.SettingsService {
	t.Helper()
	old := settingsService
	svc := services.NewSettingsService(memory.NewConfigStore())
	settingsService = svc
	t.Cleanup(func() { settingsService = old })
	return svc
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		printJSON = false
		segmentJSON = false
		segmentMaxLength = 0
		segmentMaxCount = 0
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
