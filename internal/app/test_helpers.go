package app

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/assetforge/internal/registry"
	"github.com/vk/assetforge/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing. Logs are kept
// in the returned buffer and echoed to the test log when
// ASSETFORGE_TEST_LOGS=true.
func SetupAppTest(t *testing.T, cfg Config, modules ...registry.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	validated, err := NewConfig(cfg)
	require.NoError(t, err)
	testApp, err := NewApp(logBuffer, validated, modules...)
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("ASSETFORGE_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
