// internal/models/agent.go
package models

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Agent struct {
	BaseModel
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	FullName     string     `json:"full_name" gorm:"size:255"`
	StoreID      *uuid.UUID `json:"store_id" gorm:"type:uuid"`
	Role         AgentRole  `json:"role" gorm:"type:varchar(20);default:'agent';not null"`
	IsActive     bool       `json:"is_active" gorm:"default:true;not null"`

	Store *Store `json:"store,omitempty" gorm:"foreignKey:StoreID"`
}

func (a *Agent) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hashedPassword)
	return nil
}

func (a *Agent) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
}

type Store struct {
	BaseModel
	Name     string `json:"name" gorm:"size:255;not null"`
	CityID   *int   `json:"city_id"`
	Address  string `json:"address" gorm:"type:text"`
	IsActive bool   `json:"is_active" gorm:"default:true;not null"`

	City *City `json:"city,omitempty" gorm:"foreignKey:CityID"`
}
