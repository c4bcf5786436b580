package approval

// UpdateStatusDTO is the adjudication request body. Status is matched
// case-insensitively against APPROVED/REJECTED; remarks overwrite the
// approval comments when present.
type UpdateStatusDTO struct {
	Status  string  `json:"status"`
	Remarks *string `json:"remarks,omitempty"`
}
