package firebase

import (
	"context"
	"io"
	"log/slog"

	firebase "firebase.google.com/go"
)

// StorageClient abstracts Firebase Storage operations for dependency injection and testing.
type StorageClient interface {
	UploadTherapistDocument(ctx context.Context, therapistID, kind string, file io.Reader, filename, contentType string) (string, error)
	DeleteFile(ctx context.Context, objectPath string) error
	Bucket() string
}

// FirebaseStorageClient stores objects in the app's configured bucket.
type FirebaseStorageClient struct {
	app        *firebase.App
	bucketName string
	log        *slog.Logger
}

func NewStorageClient(app *firebase.App, bucketName string, log *slog.Logger) StorageClient {
	return &FirebaseStorageClient{app: app, bucketName: bucketName, log: log}
}

func (c *FirebaseStorageClient) Bucket() string {
	return c.bucketName
}
