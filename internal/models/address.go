package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Address struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string    `json:"user_id" gorm:"type:varchar(36);index;not null"`
	FullName   string    `json:"full_name" gorm:"type:varchar(150)"`
	Line1      string    `json:"line1" gorm:"type:varchar(255)"`
	Line2      string    `json:"line2,omitempty" gorm:"type:varchar(255)"`
	City       string    `json:"city" gorm:"type:varchar(100)"`
	State      string    `json:"state,omitempty" gorm:"type:varchar(100)"`
	PostalCode string    `json:"postal_code" gorm:"type:varchar(20)"`
	Country    string    `json:"country" gorm:"type:varchar(2)"`
	Phone      string    `json:"phone,omitempty" gorm:"type:varchar(30)"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
