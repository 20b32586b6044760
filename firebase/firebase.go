package firebase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"wellness-ops-backend/config"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go"
	"google.golang.org/api/option"
)

const publicURLPrefix = "https://storage.googleapis.com/"

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeFilename removes special characters from filenames and limits length.
func sanitizeFilename(filename string) string {
	sanitized := unsafeFilenameChars.ReplaceAllString(filename, "_")

	if len(sanitized) > 100 {
		sanitized = sanitized[:100]
	}

	if sanitized == "" || sanitized == "." || sanitized == ".." {
		sanitized = "file"
	}

	return sanitized
}

// credentialOptions accepts either inline service-account JSON or a file path.
func credentialOptions(creds string, log *slog.Logger) []option.ClientOption {
	if creds == "" {
		log.Warn("GOOGLE_APPLICATION_CREDENTIALS not set, using default credentials")
		return nil
	}
	if strings.HasPrefix(strings.TrimSpace(creds), "{") {
		log.Info("using firebase credentials from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	log.Info("using firebase credentials from file", "path", creds)
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

// Init creates the Firebase app used for document storage.
func Init(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (*firebase.App, error) {
	var fbCfg *firebase.Config
	if cfg.Bucket != "" {
		fbCfg = &firebase.Config{StorageBucket: cfg.Bucket}
	}
	app, err := firebase.NewApp(ctx, fbCfg, credentialOptions(cfg.Credentials, log)...)
	if err != nil {
		return nil, fmt.Errorf("firebase init failed: %w", err)
	}
	log.Info("firebase initialized", "bucket", cfg.Bucket)
	return app, nil
}

// ObjectPath returns the bucket-relative path of a public URL produced by
// UploadTherapistDocument, or "" when url points elsewhere.
func ObjectPath(bucket, url string) string {
	prefix := publicURLPrefix + bucket + "/"
	if bucket == "" || !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}

func documentPath(therapistID, kind, filename string, now time.Time) string {
	return fmt.Sprintf("therapists/%s/%s/%d_%s",
		sanitizeFilename(therapistID), sanitizeFilename(kind), now.Unix(), sanitizeFilename(filename))
}

func (c *FirebaseStorageClient) bucket(ctx context.Context) (*storage.BucketHandle, error) {
	if c.app == nil {
		return nil, fmt.Errorf("firebase app not initialized")
	}
	if c.bucketName == "" {
		return nil, fmt.Errorf("FIREBASE_STORAGE_BUCKET not set")
	}
	client, err := c.app.Storage(ctx)
	if err != nil {
		return nil, err
	}
	return client.Bucket(c.bucketName)
}

func (c *FirebaseStorageClient) UploadTherapistDocument(ctx context.Context, therapistID, kind string, file io.Reader, filename, contentType string) (string, error) {
	bucket, err := c.bucket(ctx)
	if err != nil {
		return "", err
	}

	objectPath := documentPath(therapistID, kind, filename, time.Now())
	obj := bucket.Object(objectPath)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := io.Copy(wc, file); err != nil {
		wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload: %w", err)
	}

	// Make object publicly readable so the URL works without authentication
	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		c.log.Warn("failed to set public ACL", "object", objectPath, "error", err)
	}

	return publicURLPrefix + c.bucketName + "/" + objectPath, nil
}

func (c *FirebaseStorageClient) DeleteFile(ctx context.Context, objectPath string) error {
	bucket, err := c.bucket(ctx)
	if err != nil {
		return err
	}
	if err := bucket.Object(objectPath).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", objectPath, err)
	}
	c.log.Info("deleted file", "object", objectPath, "bucket", c.bucketName)
	return nil
}
