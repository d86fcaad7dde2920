package models

import "time"

const (
	DefectStatusOpen   = "open"
	DefectStatusFixed  = "fixed"
	DefectStatusClosed = "closed"

	SeverityMajor = "major"
)

type Defect struct {
	ID          uint   `gorm:"primarykey"`
	Title       string `gorm:"not null"`
	Description string
	Severity    string `gorm:"not null;default:major"`
	Status      string `gorm:"not null;default:open"`

	ProjectID  uint `gorm:"not null;index"`
	TestCaseID *uint
	CreatedBy  uint `gorm:"not null;index"`
	AssignedTo *uint

	CreatedAt time.Time
	UpdatedAt time.Time
}
