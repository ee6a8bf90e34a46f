package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/audit"
	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/auth"
	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/employee"
)

type createEmployeeRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	AccountID string `json:"account_id"`
	ManagerID string `json:"manager_id"`
}

type employeeResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	AccountID string    `json:"account_id,omitempty"`
	ManagerID string    `json:"manager_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toEmployeeResponse(e *employee.Employee) employeeResponse {
	return employeeResponse{
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Email:     e.Email,
		AccountID: e.AccountID,
		ManagerID: e.ManagerID,
		CreatedAt: e.CreatedAt,
	}
}

func (a *API) handleEmployeesCollection(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if principal.Role != auth.RoleAdmin && principal.Role != auth.RoleHRManager {
		writeError(w, r, http.StatusForbidden, "hr manager or admin role required")
		return
	}
	var req createEmployeeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	created, err := a.cfg.Employees.Create(r.Context(), &employee.Employee{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		AccountID: req.AccountID,
		ManagerID: req.ManagerID,
	})
	if err != nil {
		handleEmployeeError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "employee.created", map[string]any{
		"employee_id": created.ID,
		"email":       created.Email,
	})
	writeJSON(w, http.StatusCreated, toEmployeeResponse(created))
}

func handleEmployeeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, employee.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, employee.ErrBadRequest):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, employee.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "resource not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
