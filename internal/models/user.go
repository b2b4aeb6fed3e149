// internal/models/user.go
package models

import (
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Name         string `json:"name" gorm:"size:150;not null"`
	Email        string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `json:"-" gorm:"size:255;not null"`
	Role         Role   `json:"role" gorm:"type:varchar(20);not null;index"`
	Phone        string `json:"phone,omitempty" gorm:"size:20"`

	// Relationships
	ClientRequests  []ValuationRequest `json:"client_requests,omitempty" gorm:"foreignKey:ClientID"`
	CompanyRequests []ValuationRequest `json:"company_requests,omitempty" gorm:"foreignKey:CompanyID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
