package gcs

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

const testBucketName = "loan-receipts"

func newFakeGCS(t *testing.T, handler http.Handler) *storage.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := storage.NewClient(
		context.Background(),
		option.WithoutAuthentication(),
		option.WithEndpoint(server.URL),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	return client
}

func TestNewGCSClient(t *testing.T) {
	client, err := NewGCSClient(context.Background(), testBucketName, "receipts", option.WithoutAuthentication())
	require.NoError(t, err)
	assert.Equal(t, testBucketName, client.BucketName)
	assert.Equal(t, "receipts", client.FolderName)
	assert.NoError(t, client.Close(context.Background()))
}

func TestCloseNilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.NoError(t, (&GCSClient{}).Close(context.Background()))
	})
}

func TestUploadJSON(t *testing.T) {
	var body string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		assert.Equal(t, "0", r.URL.Query().Get("ifGenerationMatch"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"name":"receipts/pi_1.json","bucket":"loan-receipts"}`))
	})

	g := &GCSClient{Client: newFakeGCS(t, handler), BucketName: testBucketName, FolderName: "receipts"}
	name, err := g.UploadJSON(context.Background(), "pi_1", map[string]any{"paymentId": "pi_1", "amount": 50})
	require.NoError(t, err)
	assert.Equal(t, "receipts/pi_1.json", name)
	assert.True(t, strings.Contains(body, `"paymentId":"pi_1"`))
}

func TestUploadJSONExisting(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPreconditionFailed)
		_, _ = w.Write([]byte(`{"error":{"code":412,"message":"conditionNotMet"}}`))
	})

	g := &GCSClient{Client: newFakeGCS(t, handler), BucketName: testBucketName, FolderName: "receipts"}
	_, err := g.UploadJSON(context.Background(), "pi_1", map[string]string{})
	assert.ErrorIs(t, err, ErrObjectExists)
}

func TestUploadJSONServerError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"denied"}}`))
	})

	g := &GCSClient{Client: newFakeGCS(t, handler), BucketName: testBucketName}
	_, err := g.UploadJSON(context.Background(), "pi_2", map[string]string{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrObjectExists)
}

func TestUploadJSONMarshalError(t *testing.T) {
	g := &GCSClient{BucketName: testBucketName}
	_, err := g.UploadJSON(context.Background(), "x", make(chan int))
	assert.Error(t, err)
}
