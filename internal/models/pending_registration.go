package models

import "time"

// PendingRegistration tracks an in-progress registration. All candidate fields
// are NULL until the user sends valid data.
type PendingRegistration struct {
	LineUserID  string    `db:"line_user_id"`
	Grade       *int      `db:"grade"`
	ClassNumber *int      `db:"class_number"`
	LastName    *string   `db:"last_name"`
	FirstName   *string   `db:"first_name"`
	DisplayName *string   `db:"display_name"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Filled reports whether candidate data has been stored and awaits confirmation.
func (p *PendingRegistration) Filled() bool {
	return p != nil && p.Grade != nil && p.ClassNumber != nil && p.LastName != nil && p.FirstName != nil
}

// ToUser builds the record committed on confirmation.
func (p *PendingRegistration) ToUser() *User {
	u := &User{LineUserID: p.LineUserID}
	if p.Grade != nil {
		u.Grade = *p.Grade
	}
	if p.ClassNumber != nil {
		u.ClassNumber = *p.ClassNumber
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	return u
}
