package customer

import (
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/types"
)

// Customer owns purchases and credit grants. Kept minimal: the wider
// admin platform manages the full profile.
type Customer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	types.BaseModel
}

// Validate validates the customer
func (c *Customer) Validate() error {
	if c.Name == "" {
		return ierr.NewError("name is required").
			WithHint("Customer name is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}
