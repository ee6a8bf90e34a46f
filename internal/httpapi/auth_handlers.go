package httpapi

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/audit"
	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/auth"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfa_code"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type externalLoginRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Provider    string `json:"provider"`
}

type unlockRequest struct {
	Email string `json:"email"`
}

type lockRequest struct {
	Email string `json:"email"`
}

// gatewaySecretHeader carries the shared secret of the external identity
// gateway on /v1/auth/external calls.
const gatewaySecretHeader = "X-Gateway-Secret"

// authResponse mirrors the token pair contract. When MFARequired is set the
// token fields are empty and the caller must retry login with a code.
type authResponse struct {
	Token            string     `json:"token,omitempty"`
	RefreshToken     string     `json:"refresh_token,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	RefreshExpiresAt *time.Time `json:"refresh_expires_at,omitempty"`
	Email            string     `json:"email"`
	Role             string     `json:"role"`
	MFARequired      bool       `json:"mfa_required"`
}

func toAuthResponse(res *auth.AuthResult) authResponse {
	out := authResponse{
		Email:       res.Account.Email,
		Role:        string(res.Account.Role),
		MFARequired: res.MFARequired,
	}
	if !res.MFARequired {
		out.Token = res.Pair.AccessToken
		out.RefreshToken = res.Pair.RefreshToken
		accessExp := res.Pair.AccessExpiresAt
		refreshExp := res.Pair.RefreshExpiresAt
		out.ExpiresAt = &accessExp
		out.RefreshExpiresAt = &refreshExp
	}
	return out
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	res, err := a.cfg.Auth.Register(r.Context(), req.Email, req.Password, role)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.register", map[string]any{
		"email": res.Account.Email,
		"role":  string(res.Account.Role),
	})
	writeJSON(w, http.StatusCreated, toAuthResponse(res))
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	res, err := a.cfg.Auth.Login(r.Context(), req.Email, req.Password, req.MFACode)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if res.MFARequired {
		writeJSON(w, http.StatusOK, toAuthResponse(res))
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"email": res.Account.Email,
	})
	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	res, err := a.cfg.Auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

func (a *API) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.cfg.Auth.ChangePassword(r.Context(), principal.AccountID, req.CurrentPassword, req.NewPassword); err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.password_changed", nil)
	w.WriteHeader(http.StatusNoContent)
}

// handleExternalLogin is the entry point for identities already verified by
// an external OAuth2 provider. Only the identity gateway may call it: the
// caller must present the shared gateway secret, otherwise anyone could mint
// tokens for an arbitrary email and sidestep passwords, lockout and MFA. We
// never forward provider tokens; the response always carries our own pair.
func (a *API) handleExternalLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if a.cfg.ExternalGatewaySecret == "" {
		writeError(w, r, http.StatusServiceUnavailable, "external login disabled")
		return
	}
	presented := r.Header.Get(gatewaySecretHeader)
	if subtle.ConstantTimeCompare([]byte(presented), []byte(a.cfg.ExternalGatewaySecret)) != 1 {
		writeError(w, r, http.StatusUnauthorized, "invalid gateway credential")
		return
	}
	var req externalLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	res, err := a.cfg.Auth.ExternalLogin(r.Context(), req.Email, req.DisplayName, req.Provider)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.external_login", map[string]any{
		"email":    res.Account.Email,
		"provider": req.Provider,
	})
	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

func (a *API) handleLock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	if principal.Role != auth.RoleAdmin {
		writeError(w, r, http.StatusForbidden, "admin role required")
		return
	}
	var req lockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.cfg.Auth.Lock(r.Context(), req.Email); err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.locked", map[string]any{
		"email": auth.NormalizeEmail(req.Email),
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleUnlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	if principal.Role != auth.RoleAdmin {
		writeError(w, r, http.StatusForbidden, "admin role required")
		return
	}
	var req unlockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.cfg.Auth.Unlock(r.Context(), req.Email); err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.unlocked", map[string]any{
		"email": auth.NormalizeEmail(req.Email),
	})
	w.WriteHeader(http.StatusNoContent)
}
