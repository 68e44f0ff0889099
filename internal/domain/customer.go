package domain

import "time"

type Customer struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:200;index" json:"name"`
	NoTelp    string    `gorm:"size:32" json:"no_telp"`
	Address   string    `gorm:"type:text" json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Customer) TableName() string {
	return "customers"
}
