package document

import (
	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/auth"
)

// CanAccess decides read access to a document. The actor is passed in
// explicitly; there is no ambient security context. Decision order:
//
//  1. ADMIN and HR_MANAGER are always permitted.
//  2. The employee the document belongs to may read it (self-access via the
//     linked account).
//  3. A MANAGER may read anything strictly below CONFIDENTIAL.
//  4. Everything else is denied.
func CanAccess(actor auth.Principal, ownerAccountID string, level AccessLevel) bool {
	if actor.HasAnyRole(auth.RoleAdmin, auth.RoleHRManager) {
		return true
	}
	if ownerAccountID != "" && ownerAccountID == actor.AccountID {
		return true
	}
	if actor.Role == auth.RoleManager && level.Below(LevelConfidential) {
		return true
	}
	return false
}
