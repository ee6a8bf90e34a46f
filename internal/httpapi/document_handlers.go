package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/audit"
	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/auth"
	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/document"
)

// uploadDocumentRequest carries content as base64 (encoding/json []byte).
type uploadDocumentRequest struct {
	DocumentName string   `json:"document_name"`
	Content      []byte   `json:"content"`
	ContentType  string   `json:"content_type"`
	AccessLevel  string   `json:"access_level"`
	EmployeeID   string   `json:"employee_id"`
	Tags         []string `json:"tags"`
}

// documentResponse is metadata only; ciphertext never leaves the service and
// plaintext only through the download endpoint.
type documentResponse struct {
	ID           string    `json:"id"`
	DocumentName string    `json:"document_name"`
	ContentType  string    `json:"content_type"`
	FileSize     int       `json:"file_size"`
	AccessLevel  string    `json:"access_level"`
	EmployeeID   string    `json:"employee_id"`
	Tags         []string  `json:"tags"`
	Checksum     string    `json:"checksum"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

func toDocumentResponse(doc *document.Document) documentResponse {
	return documentResponse{
		ID:           doc.ID,
		DocumentName: doc.Name,
		ContentType:  doc.ContentType,
		FileSize:     doc.PlaintextSize,
		AccessLevel:  string(doc.Level),
		EmployeeID:   doc.EmployeeID,
		Tags:         doc.Tags,
		Checksum:     doc.Checksum,
		UploadedAt:   doc.UploadedAt,
	}
}

func (a *API) handleDocumentsCollection(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	switch r.Method {
	case http.MethodPost:
		a.uploadDocument(w, r, principal)
	case http.MethodGet:
		a.listDocuments(w, r, principal)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleDocumentResource(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if id, found := strings.CutSuffix(path, "/download"); found {
		id = strings.TrimSuffix(id, "/")
		if id == "" || strings.Contains(id, "/") {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.downloadDocument(w, r, principal, id)
		return
	}

	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getDocument(w, r, principal, path)
	case http.MethodDelete:
		a.deleteDocument(w, r, principal, path)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
	}
}

func (a *API) handleEmployeeResource(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1/employees/")
	id, found := strings.CutSuffix(path, "/documents")
	id = strings.TrimSuffix(id, "/")
	if !found || id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	docs, err := a.cfg.Documents.ListByEmployee(r.Context(), principal, id)
	if err != nil {
		handleDocumentError(w, r, err)
		return
	}
	a.writeDocumentList(w, docs)
}

func (a *API) uploadDocument(w http.ResponseWriter, r *http.Request, principal auth.Principal) {
	var req uploadDocumentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	doc, err := a.cfg.Documents.Upload(r.Context(), principal, document.UploadRequest{
		Name:        req.DocumentName,
		Content:     req.Content,
		ContentType: req.ContentType,
		Level:       document.AccessLevel(strings.ToUpper(strings.TrimSpace(req.AccessLevel))),
		EmployeeID:  req.EmployeeID,
		Tags:        req.Tags,
	})
	if err != nil {
		handleDocumentError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "document.uploaded", map[string]any{
		"document_id": doc.ID,
		"name":        doc.Name,
		"level":       string(doc.Level),
		"employee_id": doc.EmployeeID,
	})
	writeJSON(w, http.StatusCreated, toDocumentResponse(doc))
}

func (a *API) listDocuments(w http.ResponseWriter, r *http.Request, principal auth.Principal) {
	docs, err := a.cfg.Documents.List(r.Context(), principal)
	if err != nil {
		handleDocumentError(w, r, err)
		return
	}
	a.writeDocumentList(w, docs)
}

func (a *API) getDocument(w http.ResponseWriter, r *http.Request, principal auth.Principal, id string) {
	doc, err := a.cfg.Documents.Get(r.Context(), principal, id)
	if err != nil {
		handleDocumentError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentResponse(doc))
}

func (a *API) downloadDocument(w http.ResponseWriter, r *http.Request, principal auth.Principal, id string) {
	doc, plaintext, err := a.cfg.Documents.Download(r.Context(), principal, id)
	if err != nil {
		handleDocumentError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "document.downloaded", map[string]any{
		"document_id": doc.ID,
		"name":        doc.Name,
	})
	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(plaintext)
}

func (a *API) deleteDocument(w http.ResponseWriter, r *http.Request, principal auth.Principal, id string) {
	if err := a.cfg.Documents.Delete(r.Context(), principal, id); err != nil {
		handleDocumentError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "document.deleted", map[string]any{
		"document_id": id,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) writeDocumentList(w http.ResponseWriter, docs []*document.Document) {
	items := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		items = append(items, toDocumentResponse(doc))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
