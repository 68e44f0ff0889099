package domain

import "time"

// User is a cashier/operator account. IsLoggedIn mirrors, best effort, whether
// a live token was issued for the user; the token itself is authoritative.
type User struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"size:200;index" json:"name"`
	Email      string    `gorm:"size:200;index" json:"email"`
	Password   string    `gorm:"size:200" json:"-"`
	IsLoggedIn bool      `gorm:"column:is_logged_in;default:false" json:"isLoggedIn"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName Specify table name
func (User) TableName() string {
	return "users"
}
