package dto

import (
	"context"

	"github.com/paper-indonesia/circe-credits/internal/domain/customer"
	"github.com/paper-indonesia/circe-credits/internal/types"
)

// CreateCustomerRequest represents the request to create a new customer
type CreateCustomerRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// Validate validates the create customer request
func (r *CreateCustomerRequest) Validate() error {
	return validateStruct(r)
}

// ToCustomer converts the request to a customer domain model
func (r *CreateCustomerRequest) ToCustomer(ctx context.Context) *customer.Customer {
	return &customer.Customer{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER),
		Name:        r.Name,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
}

// CustomerResponse represents the response for customer operations
type CustomerResponse struct {
	*customer.Customer
}

// ListCustomersResponse lists customers with pagination
type ListCustomersResponse struct {
	Items []*CustomerResponse `json:"items"`
	Total int                 `json:"total"`
}
