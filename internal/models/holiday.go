package models

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Holiday marks a calendar date as closed.
type Holiday struct {
	Date time.Time `db:"holiday_date" json:"date"`
	Note string    `db:"note" json:"note"`
}
