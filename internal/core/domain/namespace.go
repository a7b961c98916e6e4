package domain

import (
	"fmt"
	"strings"
)

// Namespace is the opaque partition key scoping every vector write and
// read to one tenant and repository. Format: "{tenantId}:{repoSlug}".
//
// A namespace is derived fresh per request and never persisted as a
// first-class record; it only appears embedded in vector IDs and
// interaction log rows.
type Namespace string

// DeriveNamespace builds the partition key for a tenant and repository.
// Both inputs are trimmed; an empty result for either is ErrInvalidInput.
func DeriveNamespace(tenantID, repoSlug string) (Namespace, error) {
	tenantID = strings.TrimSpace(tenantID)
	repoSlug = strings.TrimSpace(repoSlug)

	if tenantID == "" {
		return "", fmt.Errorf("%w: tenant id is required", ErrInvalidInput)
	}
	if repoSlug == "" {
		return "", fmt.Errorf("%w: repo slug is required", ErrInvalidInput)
	}

	return Namespace(tenantID + ":" + repoSlug), nil
}

// AuthorizedFor reports whether the namespace belongs to the given tenant.
// True iff the namespace is "{tenantId}:" followed by a non-empty
// remainder. A tenant "ab" is not authorized for "abc:repo".
//
// Every read and log-access path must pass this check before touching
// the vector store or interaction log.
func (n Namespace) AuthorizedFor(tenantID string) bool {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return false
	}

	rest, ok := strings.CutPrefix(string(n), tenantID+":")
	return ok && rest != ""
}

// TenantID returns the tenant portion of the namespace, or "" if the
// namespace is malformed.
func (n Namespace) TenantID() string {
	tenant, _, ok := strings.Cut(string(n), ":")
	if !ok {
		return ""
	}
	return tenant
}

// String returns the namespace as a plain string.
func (n Namespace) String() string {
	return string(n)
}
