package dto

// DashboardResponse contadores del panel de administración.
type DashboardResponse struct {
	PendingRegistrations  int `json:"pending_registrations"`
	ApprovedRegistrations int `json:"approved_registrations"`
	RejectedRegistrations int `json:"rejected_registrations"`
	ApprovedAccounts      int `json:"approved_accounts"`
}
