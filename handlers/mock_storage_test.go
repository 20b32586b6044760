package handlers

import (
	"context"
	"io"

	"wellness-ops-backend/notifications"
)

type mockStorage struct {
	UploadFn        func(therapistID, kind, filename string) (string, error)
	DeleteFileCalls []string
	UploadCallCount int
}

func newMockStorage() *mockStorage {
	return &mockStorage{DeleteFileCalls: []string{}}
}

func (m *mockStorage) UploadTherapistDocument(ctx context.Context, therapistID, kind string, file io.Reader, filename, contentType string) (string, error) {
	m.UploadCallCount++
	if m.UploadFn != nil {
		return m.UploadFn(therapistID, kind, filename)
	}
	return "https://storage.googleapis.com/test-bucket/therapists/" + therapistID + "/" + kind + "/" + filename, nil
}

func (m *mockStorage) DeleteFile(ctx context.Context, objectPath string) error {
	m.DeleteFileCalls = append(m.DeleteFileCalls, objectPath)
	return nil
}

func (m *mockStorage) Bucket() string { return "test-bucket" }

// fakeMailer records every email the handlers ask for.
type fakeMailer struct {
	result      notifications.Result
	credentials []string
	otps        []string
	feedback    []string
}

func (f *fakeMailer) SendTherapistCredentials(ctx context.Context, to, name, username, password string) notifications.Result {
	f.credentials = append(f.credentials, to+":"+username+":"+password)
	return f.result
}

func (f *fakeMailer) SendOTP(ctx context.Context, to, name, code string) notifications.Result {
	f.otps = append(f.otps, code)
	return f.result
}

func (f *fakeMailer) SendFeedbackRequest(ctx context.Context, to, customerName, therapyType, feedbackURL string) notifications.Result {
	f.feedback = append(f.feedback, to)
	return f.result
}

type fakeFeedback struct {
	result   notifications.Result
	phones   []string
	sessions []notifications.Feedback
}

func (f *fakeFeedback) SendFeedback(ctx context.Context, phone string, session notifications.Feedback) notifications.Result {
	f.phones = append(f.phones, phone)
	f.sessions = append(f.sessions, session)
	return f.result
}

func sentResult(id string) notifications.Result {
	return notifications.Result{Status: notifications.StatusSent, MessageID: id}
}
