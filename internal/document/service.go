package document

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/auth"
	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/employee"
	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/obs"
	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/stream"
)

// Service gates document operations behind the access policy and runs the
// encrypt/checksum pipeline. Coarse role gates (upload, delete, employee
// listing) are checked before the per-document policy is consulted at all.
type Service struct {
	store     Store
	directory employee.Directory
	cipher    *Cipher
	now       func() time.Time
	events    *stream.Stream
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithEvents attaches the security event feed.
func WithEvents(st *stream.Stream) ServiceOption {
	return func(s *Service) { s.events = st }
}

// NewService constructs the document service.
func NewService(store Store, directory employee.Directory, cipher *Cipher, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		directory: directory,
		cipher:    cipher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadRequest is the upload contract from the HTTP layer.
type UploadRequest struct {
	Name        string
	Content     []byte
	ContentType string
	Level       AccessLevel
	EmployeeID  string
	Tags        []string
}

// Upload encrypts and stores a document. Restricted to HR_MANAGER and ADMIN.
// Ciphertext and checksum are computed once here and never recomputed.
func (s *Service) Upload(ctx context.Context, actor auth.Principal, req UploadRequest) (*Document, error) {
	if !actor.HasAnyRole(auth.RoleHRManager, auth.RoleAdmin) {
		return nil, ErrForbidden
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Content == nil {
		return nil, ErrBadRequest
	}
	if _, err := ParseAccessLevel(string(req.Level)); err != nil {
		return nil, err
	}
	if _, err := s.directory.Find(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ciphertext, err := s.cipher.Encrypt(req.Content)
	if err != nil {
		return nil, err
	}
	doc := &Document{
		Name:          req.Name,
		Ciphertext:    ciphertext,
		PlaintextSize: len(req.Content),
		ContentType:   req.ContentType,
		Checksum:      Checksum(req.Content),
		Level:         req.Level,
		EmployeeID:    req.EmployeeID,
		Tags:          req.Tags,
		UploadedAt:    s.now().UTC(),
	}
	return s.store.Create(ctx, doc)
}

// Get returns document metadata after the access policy allows it.
func (s *Service) Get(ctx context.Context, actor auth.Principal, id string) (*Document, error) {
	doc, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccess(actor, s.ownerAccountID(ctx, doc), doc.Level) {
		return nil, ErrForbidden
	}
	return doc, nil
}

// Download decrypts a document and re-verifies its checksum. An integrity
// fault is surfaced, never swallowed: the caller gets ErrCorruptData or
// ErrChecksumMismatch and the event is published on the security feed.
func (s *Service) Download(ctx context.Context, actor auth.Principal, id string) (*Document, []byte, error) {
	doc, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !CanAccess(actor, s.ownerAccountID(ctx, doc), doc.Level) {
		return nil, nil, ErrForbidden
	}

	plaintext, err := s.cipher.Decrypt(doc.Ciphertext)
	if err != nil {
		s.integrityFault(doc, "decrypt failed")
		return nil, nil, err
	}
	if Checksum(plaintext) != doc.Checksum {
		s.integrityFault(doc, "checksum mismatch")
		return nil, nil, ErrChecksumMismatch
	}
	return doc, plaintext, nil
}

// List returns every document the actor may read. ADMIN and HR_MANAGER see
// everything; other roles get the policy-filtered view.
func (s *Service) List(ctx context.Context, actor auth.Principal) ([]*Document, error) {
	docs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if actor.HasAnyRole(auth.RoleAdmin, auth.RoleHRManager) {
		return docs, nil
	}
	filtered := docs[:0]
	for _, doc := range docs {
		if CanAccess(actor, s.ownerAccountID(ctx, doc), doc.Level) {
			filtered = append(filtered, doc)
		}
	}
	return filtered, nil
}

// ListByEmployee returns all documents owned by one employee. Restricted to
// MANAGER and above.
func (s *Service) ListByEmployee(ctx context.Context, actor auth.Principal, employeeID string) ([]*Document, error) {
	if !actor.HasAnyRole(auth.RoleManager, auth.RoleHRManager, auth.RoleAdmin) {
		return nil, ErrForbidden
	}
	if _, err := s.directory.Find(ctx, employeeID); err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.store.ListByEmployee(ctx, employeeID)
}

// Delete removes a document. Restricted to ADMIN.
func (s *Service) Delete(ctx context.Context, actor auth.Principal, id string) error {
	if actor.Role != auth.RoleAdmin {
		return ErrForbidden
	}
	return s.store.Delete(ctx, id)
}

// ownerAccountID resolves the owning employee's linked account. A missing
// employee or link yields an empty id, which never matches an actor.
func (s *Service) ownerAccountID(ctx context.Context, doc *Document) string {
	if doc.EmployeeID == "" {
		return ""
	}
	accountID, err := s.directory.LinkedAccountID(ctx, doc.EmployeeID)
	if err != nil {
		return ""
	}
	return accountID
}

func (s *Service) integrityFault(doc *Document, detail string) {
	obs.IntegrityFailures.Inc()
	if s.events != nil {
		s.events.Publish(stream.Event{
			Type:    stream.EventIntegrityFailure,
			Subject: doc.ID,
			Detail:  detail,
		})
	}
}
