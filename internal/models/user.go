package models

import (
	"fmt"
	"time"
)

// User is a committed registration. One row per LINE user.
type User struct {
	ID          int64     `db:"id" json:"id"`
	LineUserID  string    `db:"line_user_id" json:"line_user_id"`
	Grade       int       `db:"grade" json:"grade"`
	ClassNumber int       `db:"class_number" json:"class_number"`
	LastName    string    `db:"last_name" json:"last_name"`
	FirstName   string    `db:"first_name" json:"first_name"`
	DisplayName string    `db:"display_name" json:"display_name"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// FullName returns the family and given name separated by a space.
func (u User) FullName() string {
	return fmt.Sprintf("%s %s", u.LastName, u.FirstName)
}

// Admin maps a LINE user to an administrator. Rows are provisioned outside the bot.
type Admin struct {
	ID         int64  `db:"admin_id" json:"admin_id"`
	LineUserID string `db:"admin_line_id" json:"admin_line_id"`
	Name       string `db:"name" json:"name"`
}
