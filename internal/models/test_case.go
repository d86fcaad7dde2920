package models

import "time"

const (
	TestCaseStatusNotRun = "not_run"
	TestCaseStatusPassed = "passed"
	TestCaseStatusFailed = "failed"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type TestCase struct {
	ID          uint   `gorm:"primarykey"`
	Title       string `gorm:"not null"`
	Description string
	Status      string `gorm:"not null;default:not_run"`
	Priority    string `gorm:"not null;default:medium"`

	ProjectID uint `gorm:"not null;index"`
	CreatedBy uint `gorm:"not null;index"`
	LastRunBy *uint
	LastRunAt *time.Time
}
