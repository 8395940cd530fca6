package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupServicesReturnsTracingOnStoreFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loan-service.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  service_name: loan-service
  port: 3000
store:
  driver: firestore
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("FIRESTORE_PROJECT_ID", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("OTEL_URL", "")
	t.Setenv("STORE_DRIVER", "firestore")

	cfg, service, resources, err := setupServices(context.Background())
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Nil(t, service)

	require.Len(t, resources, 1)
	assert.Equal(t, "otel", resources[0].Name)
	assert.NoError(t, resources[0].Close(context.Background()))
}
