package firebase

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestSanitizeFilenameNormal(t *testing.T) {
	result := sanitizeFilename("id_proof-front.pdf")
	if result != "id_proof-front.pdf" {
		t.Errorf("expected 'id_proof-front.pdf', got '%s'", result)
	}
}

func TestSanitizeFilenameSpecialChars(t *testing.T) {
	result := sanitizeFilename("my file (1)@#$.jpg")
	if strings.ContainsAny(result, " ()@#$") {
		t.Errorf("special chars not replaced: '%s'", result)
	}
}

func TestSanitizeFilenamePathTraversal(t *testing.T) {
	result := sanitizeFilename("../../etc/passwd")
	if strings.Contains(result, "/") {
		t.Errorf("path separators not replaced: '%s'", result)
	}
}

func TestSanitizeFilenameTooLong(t *testing.T) {
	long := strings.Repeat("a", 200)
	result := sanitizeFilename(long)
	if len(result) != 100 {
		t.Errorf("expected length 100, got %d", len(result))
	}
}

func TestSanitizeFilenameEmpty(t *testing.T) {
	if sanitizeFilename("") != "file" {
		t.Error("empty name should become 'file'")
	}
	if sanitizeFilename(".") != "file" {
		t.Error("single dot should become 'file'")
	}
	if sanitizeFilename("..") != "file" {
		t.Error("double dots should become 'file'")
	}
}

func TestDocumentPath(t *testing.T) {
	now := time.Unix(1700000000, 0)
	got := documentPath("abc-123", "id_proof", "scan 1.pdf", now)
	want := "therapists/abc-123/id_proof/1700000000_scan_1.pdf"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestObjectPath(t *testing.T) {
	url := "https://storage.googleapis.com/my-bucket/therapists/a/id_proof/1_x.pdf"
	if got := ObjectPath("my-bucket", url); got != "therapists/a/id_proof/1_x.pdf" {
		t.Errorf("unexpected object path %q", got)
	}
	if got := ObjectPath("other-bucket", url); got != "" {
		t.Errorf("expected empty path for foreign bucket, got %q", got)
	}
	if got := ObjectPath("", url); got != "" {
		t.Errorf("expected empty path without bucket, got %q", got)
	}
}

func TestUploadWithoutApp(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewStorageClient(nil, "my-bucket", log)

	_, err := client.UploadTherapistDocument(context.Background(), "t1", "id_proof", strings.NewReader("x"), "a.pdf", "application/pdf")
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("expected not initialized error, got %v", err)
	}
	if err := client.DeleteFile(context.Background(), "x"); err == nil {
		t.Fatal("expected error deleting without app")
	}
	if client.Bucket() != "my-bucket" {
		t.Errorf("unexpected bucket %q", client.Bucket())
	}
}
