package document

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("document: not found")
	ErrForbidden  = errors.New("document: access denied")
	ErrConflict   = errors.New("document: name already in use")
	ErrBadRequest = errors.New("document: invalid input")

	// ErrCorruptData is returned when stored ciphertext can no longer be
	// decrypted (truncated, padded wrong, tampered with).
	ErrCorruptData = errors.New("document: corrupt data")
	// ErrChecksumMismatch is returned when decryption succeeds but the
	// plaintext no longer matches the checksum recorded at upload time.
	ErrChecksumMismatch = errors.New("document: checksum mismatch")
)

// AccessLevel classifies a document. The set is closed and ordered:
// PUBLIC < INTERNAL < CONFIDENTIAL.
type AccessLevel string

const (
	LevelPublic       AccessLevel = "PUBLIC"
	LevelInternal     AccessLevel = "INTERNAL"
	LevelConfidential AccessLevel = "CONFIDENTIAL"
)

var levelRank = map[AccessLevel]int{
	LevelPublic:       0,
	LevelInternal:     1,
	LevelConfidential: 2,
}

// ParseAccessLevel normalizes and validates an access level label.
func ParseAccessLevel(s string) (AccessLevel, error) {
	l := AccessLevel(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := levelRank[l]; !ok {
		return "", fmt.Errorf("%w: unknown access level %q", ErrBadRequest, s)
	}
	return l, nil
}

// Below reports whether l is strictly less sensitive than other.
func (l AccessLevel) Below(other AccessLevel) bool {
	return levelRank[l] < levelRank[other]
}

// Document is an encrypted stored record. Ciphertext is written once at
// upload and never mutated; Checksum is the digest of the plaintext, not the
// ciphertext.
type Document struct {
	ID            string
	Name          string
	Ciphertext    []byte
	PlaintextSize int
	ContentType   string
	Checksum      string
	Level         AccessLevel
	EmployeeID    string
	Tags          []string
	UploadedAt    time.Time
}

// Clone returns a copy with its own slices.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	cp := *d
	cp.Ciphertext = append([]byte(nil), d.Ciphertext...)
	cp.Tags = append([]string(nil), d.Tags...)
	return &cp
}
