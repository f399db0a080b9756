package request

// CreateCustomerRequest represents a customer creation request
type CreateCustomerRequest struct {
	Name     string  `json:"name" binding:"required,max=255"`
	Phone    *string `json:"phone" binding:"omitempty,max=50"`
	Address  string  `json:"address"`
	GSTIN    *string `json:"gstin"`
	Email    *string `json:"email" binding:"omitempty,email"`
	TaxState string  `json:"taxState"`
}
