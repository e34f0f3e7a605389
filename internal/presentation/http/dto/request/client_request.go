package request

// CreateClientRequest represents a client creation request
type CreateClientRequest struct {
	Name    string  `json:"name" binding:"required,max=255"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
	TaxID   *string `json:"tax_id"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

// UpdateClientRequest represents a client update request
type UpdateClientRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=255"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
	TaxID   *string `json:"tax_id"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}
