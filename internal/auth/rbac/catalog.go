package rbac

// Permission strings, "domain:action".
const (
	PermAdminFullAccess      = "admin:full_access"
	PermUserRead             = "user:read"
	PermUserWrite            = "user:write"
	PermOrgRead              = "org:read"
	PermOrgWrite             = "org:write"
	PermPatientRead          = "patient:read"
	PermPatientWrite         = "patient:write"
	PermMedicoWrite          = "medico:write"
	PermPrescriptionRead     = "prescription:read"
	PermPrescriptionWrite    = "prescription:write"
	PermExamRead             = "exam:read"
	PermExamRequest          = "exam:request"
	PermExamWrite            = "exam:write"
	PermTriageRead           = "triage:read"
	PermTriageWrite          = "triage:write"
	PermAppointmentRead      = "appointment:read"
	PermAppointmentWrite     = "appointment:write"
	PermNursingWrite         = "nursing:write"
	PermMedicationAdminister = "medication:administer"
	PermMedicationDispense   = "medication:dispense"
	PermInventoryRead        = "inventory:read"
	PermInventoryWrite       = "inventory:write"
	PermReportRead           = "report:read"
	PermDashboardRead        = "dashboard:read"
)

// catalog is never handed out; PermissionsFor copies from it.
var catalog = func() map[RoleTag]PermissionSet {
	m := map[RoleTag]PermissionSet{
		RoleAdmin: NewPermissionSet(
			PermUserRead, PermUserWrite,
			PermOrgRead, PermOrgWrite,
			PermAppointmentRead,
			PermReportRead, PermDashboardRead,
		),
		RoleCoordenador: NewPermissionSet(
			PermUserRead,
			PermPatientRead,
			PermAppointmentRead, PermAppointmentWrite,
			PermTriageRead, PermExamRead,
			PermReportRead, PermDashboardRead,
		),
		RoleMedico: NewPermissionSet(
			PermPatientRead, PermPatientWrite,
			PermMedicoWrite,
			PermPrescriptionRead, PermPrescriptionWrite,
			PermExamRead, PermExamRequest,
			PermTriageRead,
			PermAppointmentRead,
			PermDashboardRead,
		),
		RoleEnfermeiro: NewPermissionSet(
			PermPatientRead,
			PermNursingWrite,
			PermMedicationAdminister,
			PermPrescriptionRead,
			PermTriageRead, PermExamRead,
			PermDashboardRead,
		),
		RoleEnfermeiroTriagem: NewPermissionSet(
			PermPatientRead,
			PermTriageRead, PermTriageWrite,
			PermDashboardRead,
		),
		RoleRecepcionista: NewPermissionSet(
			PermPatientRead, PermPatientWrite,
			PermAppointmentRead, PermAppointmentWrite,
			PermDashboardRead,
		),
		RoleTecnicoLaboratorio: NewPermissionSet(
			PermExamRead, PermExamWrite,
			PermDashboardRead,
		),
		// Pharmacy works from prescriptions; no direct patient record access.
		RoleFarmaceutico: NewPermissionSet(
			PermPrescriptionRead,
			PermMedicationDispense,
			PermInventoryRead, PermInventoryWrite,
			PermDashboardRead,
		),
	}

	all := []string{PermAdminFullAccess}
	for _, set := range m {
		all = append(all, set.perms...)
	}
	m[RoleSuperAdmin] = NewPermissionSet(all...)
	return m
}()

// PermissionsFor returns the permission set of role. Unknown roles get an
// empty set.
func PermissionsFor(role RoleTag) PermissionSet {
	return catalog[role]
}
