package dto

import "time"

// HolidayFormQuery captures the token on the form link.
type HolidayFormQuery struct {
	Token string `form:"token" json:"token"`
}

// HolidayForm pre-populates the holiday form.
type HolidayForm struct {
	Token     string    `json:"token"`
	Dates     []string  `json:"dates"`
	Today     string    `json:"today"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HolidaySubmitRequest is the holiday form submission. Dates use YYYY-MM-DD.
type HolidaySubmitRequest struct {
	Token string   `form:"token" json:"token"`
	Dates []string `form:"dates" json:"dates" validate:"max=366,dive,required,datetime=2006-01-02"`
}

// HolidaySubmitResult reports what replaced the forward-looking holiday set.
type HolidaySubmitResult struct {
	Inserted int      `json:"inserted"`
	Dates    []string `json:"dates"`
}
