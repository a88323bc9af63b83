package types

import "time"

// Lead represents the durable identity of a business contact. The email
// address is the external key; LeadID is the stable internal identifier
// everything else hangs off.
type Lead struct {
	LeadID    string    `json:"lead_id"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Email     string    `json:"email" validate:"required,email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SeedAttributes carries the intake data known about a contact before any
// qualification has run: typically a contact form submission or the headers
// of a first email.
type SeedAttributes struct {
	Name     string `json:"name"`
	Company  string `json:"company"`
	Role     string `json:"role,omitempty"`
	Source   string `json:"source,omitempty"`
	Interest string `json:"interest,omitempty"`
}

// LeadInput bundles everything the qualifier agent needs about an inbound
// contact: identity seed plus the message content to analyze.
type LeadInput struct {
	Email        string `json:"email" validate:"required,email"`
	Name         string `json:"name"`
	Company      string `json:"company"`
	Role         string `json:"role,omitempty"`
	Source       string `json:"source,omitempty"`
	EmailSubject string `json:"email_subject,omitempty"`
	EmailBody    string `json:"email_body,omitempty"`
	Interest     string `json:"interest,omitempty"`
}

// Seed extracts the identity seed from a lead input.
func (in *LeadInput) Seed() SeedAttributes {
	return SeedAttributes{
		Name:     in.Name,
		Company:  in.Company,
		Role:     in.Role,
		Source:   in.Source,
		Interest: in.Interest,
	}
}

// ReplyInput bundles an inbound reply for analysis against an existing lead.
type ReplyInput struct {
	SenderEmail  string `json:"sender_email" validate:"required,email"`
	ReplySubject string `json:"reply_subject,omitempty"`
	ReplyText    string `json:"reply_text" validate:"required"`
}
