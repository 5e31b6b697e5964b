package storefront

import "time"

// Customer is the customer payload carried by customer create/update events
// and embedded in order payloads. BirthDate is an optional `YYYY-MM-DD`
// string surfaced from the platform's profile metafields; it is passed
// through untouched and validated only at transformation time.
type Customer struct {
	ID             int64      `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	BirthDate      string     `json:"birth_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
	DefaultAddress *Address   `json:"default_address"`
	Tags           string     `json:"tags"`
	Note           string     `json:"note"`
}

// DisplayName joins the customer's first and last names for logging and for
// ERP records that carry a single name field.
func (c *Customer) DisplayName() string {
	switch {
	case c.FirstName != "" && c.LastName != "":
		return c.FirstName + " " + c.LastName
	case c.FirstName != "":
		return c.FirstName
	default:
		return c.LastName
	}
}
