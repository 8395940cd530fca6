package firestore

import (
	"context"
	"testing"

	"github.com/Heethjain14/loan-management-system/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestConnectToFirestoreRequiresProject(t *testing.T) {
	_, err := ConnectToFirestore(context.Background(), config.FirestoreConfig{})
	assert.ErrorContains(t, err, "project id is required")
}

func TestConnectToFirestoreWithoutAuth(t *testing.T) {
	client, err := ConnectToFirestore(context.Background(),
		config.FirestoreConfig{ProjectID: "loans-test"},
		option.WithoutAuthentication(),
		option.WithEndpoint("localhost:8681"),
	)
	require.NoError(t, err)
	require.NotNil(t, client.Client)
	assert.NoError(t, client.Close(context.Background()))
}

func TestCloseNil(t *testing.T) {
	var client *FirestoreClient
	assert.NoError(t, client.Close(context.Background()))
}
