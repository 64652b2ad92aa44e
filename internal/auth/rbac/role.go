// Package rbac holds the closed role catalog and the ANY-of-set permission
// decision used to gate routes.
package rbac

import (
	"errors"
	"fmt"
	"strings"
)

// RoleTag names a hospital role. The set is closed: only the constants
// below are valid.
type RoleTag string

const (
	RoleSuperAdmin         RoleTag = "SUPER_ADMIN"
	RoleAdmin              RoleTag = "ADMIN"
	RoleCoordenador        RoleTag = "COORDENADOR"
	RoleMedico             RoleTag = "MEDICO"
	RoleEnfermeiro         RoleTag = "ENFERMEIRO"
	RoleEnfermeiroTriagem  RoleTag = "ENFERMEIRO_TRIAGEM"
	RoleRecepcionista      RoleTag = "RECEPCIONISTA"
	RoleTecnicoLaboratorio RoleTag = "TECNICO_LABORATORIO"
	RoleFarmaceutico       RoleTag = "FARMACEUTICO"
)

var roleOrder = [...]RoleTag{
	RoleSuperAdmin,
	RoleAdmin,
	RoleCoordenador,
	RoleMedico,
	RoleEnfermeiro,
	RoleEnfermeiroTriagem,
	RoleRecepcionista,
	RoleTecnicoLaboratorio,
	RoleFarmaceutico,
}

var ErrUnknownRole = errors.New("rbac: unknown role")

// ParseRoleTag accepts any casing and surrounding whitespace.
func ParseRoleTag(s string) (RoleTag, error) {
	r := RoleTag(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w %q", ErrUnknownRole, s)
	}
	return r, nil
}

// Valid reports whether r is in the catalog.
func (r RoleTag) Valid() bool {
	_, ok := catalog[r]
	return ok
}

func (r RoleTag) String() string { return string(r) }

// Roles returns every role tag in catalog order.
func Roles() []RoleTag {
	out := make([]RoleTag, len(roleOrder))
	copy(out, roleOrder[:])
	return out
}
