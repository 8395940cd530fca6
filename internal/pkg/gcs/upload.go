package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path"

	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrObjectExists is returned when the object was already written; uploads never overwrite.
var ErrObjectExists = errors.New("object already exists")

type GCSClient struct {
	Client     *storage.Client
	BucketName string
	FolderName string
}

func NewGCSClient(ctx context.Context, bucketName, folderName string, opts ...option.ClientOption) (*GCSClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSClient{
		Client:     client,
		BucketName: bucketName,
		FolderName: folderName,
	}, nil
}

func (g *GCSClient) Close(ctx context.Context) error {
	if g == nil || g.Client == nil {
		return nil
	}
	if err := g.Client.Close(); err != nil {
		logger.CtxError(ctx, log_messages.ErrorClosingGCSClient, err)
		return err
	}
	return nil
}

// UploadJSON writes v as <folder>/<name>.json and returns the object name.
func (g *GCSClient) UploadJSON(ctx context.Context, name string, v any) (string, error) {
	objectName := path.Join(g.FolderName, name+".json")
	jsonData, err := json.Marshal(v)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorMarshallingJSON, err)
		return "", err
	}

	object := g.Client.Bucket(g.BucketName).Object(objectName)
	writer := object.If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = "application/json"
	if _, err := writer.Write(jsonData); err != nil {
		_ = writer.Close()
		logger.CtxError(ctx, log_messages.ErrorUploadingToGCSBucket, err, zap.String("objectName", objectName))
		return "", err
	}
	if err := writer.Close(); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
			return objectName, ErrObjectExists
		}
		logger.CtxError(ctx, log_messages.ErrorClosingGCSWriter, err, zap.String("objectName", objectName))
		return "", err
	}
	logger.CtxInfo(ctx, log_messages.UploadedToGCSBucket, zap.String("objectName", objectName))
	return objectName, nil
}
