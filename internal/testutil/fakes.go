// internal/testutil/fakes.go
package testutil

import (
	"context"
	"sync"

	"github.com/averymorin/tenantkit/internal/app/system/emailcheck"
	"github.com/averymorin/tenantkit/internal/app/system/mailer"
)

// RecordingMailer implements mailer.Sender and captures what was sent.
type RecordingMailer struct {
	mu   sync.Mutex
	Sent []mailer.Email
	Err  error // returned from Send when non-nil
}

func (m *RecordingMailer) Send(ctx context.Context, msg mailer.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

// SentCount returns how many emails were delivered.
func (m *RecordingMailer) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// ScriptedVerifier implements emailcheck.Verifier with per-address verdicts.
// Addresses not in the script are deliverable.
type ScriptedVerifier struct {
	Undeliverable map[string]string // email -> reason
	Err           error             // returned from Verify when non-nil
}

func (v *ScriptedVerifier) Verify(ctx context.Context, email string) (emailcheck.Result, error) {
	if v.Err != nil {
		return emailcheck.Result{}, v.Err
	}
	if reason, ok := v.Undeliverable[email]; ok {
		return emailcheck.Result{Deliverable: false, Reason: reason}, nil
	}
	return emailcheck.Result{Deliverable: true}, nil
}

// FakeBlobStore records blob deletions. Satisfies orgdirectory.BlobStore.
type FakeBlobStore struct {
	mu      sync.Mutex
	Deleted []string
	Err     error
}

func (s *FakeBlobStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Deleted = append(s.Deleted, path)
	return nil
}
