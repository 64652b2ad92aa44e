package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/rbac"
)

func TestParseRoleTag(t *testing.T) {
	tests := []struct {
		in   string
		want rbac.RoleTag
		ok   bool
	}{
		{in: "MEDICO", want: rbac.RoleMedico, ok: true},
		{in: " farmaceutico ", want: rbac.RoleFarmaceutico, ok: true},
		{in: "Super_Admin", want: rbac.RoleSuperAdmin, ok: true},
		{in: "JANITOR"},
		{in: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := rbac.ParseRoleTag(tt.in)
			if !tt.ok {
				require.ErrorIs(t, err, rbac.ErrUnknownRole)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRolesAreAllCatalogued(t *testing.T) {
	roles := rbac.Roles()
	require.Len(t, roles, 9)
	for _, r := range roles {
		require.True(t, r.Valid(), r)
		require.Positive(t, rbac.PermissionsFor(r).Len(), r)
	}

	// Mutating the returned slice does not affect the catalog order.
	roles[0] = "X"
	require.Equal(t, rbac.RoleSuperAdmin, rbac.Roles()[0])
}

func TestPermissionsFor(t *testing.T) {
	super := rbac.PermissionsFor(rbac.RoleSuperAdmin)
	require.True(t, super.Has(rbac.PermAdminFullAccess))
	for _, r := range rbac.Roles() {
		for _, p := range rbac.PermissionsFor(r).Slice() {
			require.True(t, super.Has(p), "SUPER_ADMIN missing %s from %s", p, r)
		}
	}

	medico := rbac.PermissionsFor(rbac.RoleMedico)
	require.True(t, medico.Has(rbac.PermPatientRead))
	require.True(t, medico.Has(rbac.PermPatientWrite))
	require.True(t, medico.Has(rbac.PermMedicoWrite))
	require.False(t, medico.Has(rbac.PermAdminFullAccess))

	farm := rbac.PermissionsFor(rbac.RoleFarmaceutico)
	require.False(t, farm.Has(rbac.PermPatientRead))
	require.False(t, farm.Has(rbac.PermPatientWrite))
	require.True(t, farm.Has(rbac.PermMedicationDispense))

	require.Zero(t, rbac.PermissionsFor("JANITOR").Len())
	require.Empty(t, rbac.PermissionsFor("").Slice())
}

func TestPermissionSetIsImmutable(t *testing.T) {
	s := rbac.PermissionsFor(rbac.RoleMedico)
	got := s.Slice()
	got[0] = "admin:full_access"

	require.False(t, rbac.PermissionsFor(rbac.RoleMedico).Has("admin:full_access"))
}

func TestNewPermissionSetDedups(t *testing.T) {
	s := rbac.NewPermissionSet("b:x", "a:x", "b:x", "", "a:x")
	require.Equal(t, []string{"a:x", "b:x"}, s.Slice())
	require.True(t, s.HasAny("z:z", "a:x"))
	require.False(t, s.HasAny())
}

func TestAllow(t *testing.T) {
	route := []string{rbac.PermPatientWrite, rbac.PermPatientRead}

	tests := []struct {
		name     string
		role     rbac.RoleTag
		required []string
		allowed  bool
	}{
		{name: "medico on patient route", role: rbac.RoleMedico, required: route, allowed: true},
		{name: "farmaceutico on patient route", role: rbac.RoleFarmaceutico, required: route},
		{name: "receptionist on patient route", role: rbac.RoleRecepcionista, required: route, allowed: true},
		{name: "super admin on admin route", role: rbac.RoleSuperAdmin, required: []string{rbac.PermAdminFullAccess}, allowed: true},
		{name: "admin lacks full access", role: rbac.RoleAdmin, required: []string{rbac.PermAdminFullAccess}},
		{name: "unknown role denied", role: "JANITOR", required: route},
		{name: "no requirement", role: "JANITOR", allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rbac.Allow(rbac.PermissionsFor(tt.role), tt.required)
			if tt.allowed {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, rbac.ErrForbidden)
			}
		})
	}
}
