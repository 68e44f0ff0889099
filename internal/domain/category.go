package domain

import "time"

// Category groups products. Image holds the blob path of its picture.
type Category struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:200;index" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `gorm:"size:1024" json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Category) TableName() string {
	return "categories"
}
