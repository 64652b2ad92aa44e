package rbac

import (
	"errors"
	"slices"
)

var ErrForbidden = errors.New("rbac: insufficient permissions")

// PermissionSet is an immutable, sorted, de-duplicated set of permission
// strings. The zero value is the empty set.
type PermissionSet struct {
	perms []string
}

// NewPermissionSet builds a set from perms, dropping empties and
// duplicates.
func NewPermissionSet(perms ...string) PermissionSet {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		if p != "" {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return PermissionSet{perms: slices.Compact(out)}
}

// Has reports whether p is in the set.
func (s PermissionSet) Has(p string) bool {
	_, ok := slices.BinarySearch(s.perms, p)
	return ok
}

// HasAny reports whether at least one of required is in the set.
func (s PermissionSet) HasAny(required ...string) bool {
	return slices.ContainsFunc(required, s.Has)
}

func (s PermissionSet) Len() int { return len(s.perms) }

// Slice returns a sorted copy of the set's members.
func (s PermissionSet) Slice() []string {
	return append([]string{}, s.perms...)
}

// Allow is the route gate. An empty required list only demands an
// authenticated caller; otherwise the caller needs any one of required.
func Allow(have PermissionSet, required []string) error {
	if len(required) == 0 || have.HasAny(required...) {
		return nil
	}
	return ErrForbidden
}
