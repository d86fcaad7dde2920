package models

import "time"

const (
	RoleTester = "tester"
	RoleAdmin  = "admin"
)

type User struct {
	ID           uint   `gorm:"primarykey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:tester"`
	CreatedAt    time.Time
}
