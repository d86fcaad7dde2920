package models

import "time"

type Project struct {
	ID          uint   `gorm:"primarykey"`
	Name        string `gorm:"not null"`
	Description string
	CreatedBy   uint `gorm:"not null;index"`
	CreatedAt   time.Time
}
