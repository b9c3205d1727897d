package provider

import "time"

// Provider is an entry in the maintenance-provider directory.
type Provider struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id,omitempty"`
	BusinessName string    `json:"business_name"`
	Specialty    string    `json:"specialty,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
