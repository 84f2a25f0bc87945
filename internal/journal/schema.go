package journal

import (
	"time"
)

// Record is one persisted controller operation.
type Record struct {
	ID         string    `gorm:"primaryKey"`
	RepoPath   string    `gorm:"not null;default:'';index:idx_repo_path"`
	Op         string    `gorm:"not null"`
	Arg        string    `gorm:"not null;default:''"`
	Outcome    string    `gorm:"not null;check:outcome IN ('none','validation','engine','programming')"`
	Error      string    `gorm:"not null;default:''"`
	StartedAt  time.Time `gorm:"not null;index:idx_started_at"`
	DurationMs int64     `gorm:"not null;default:0"`
	CreatedAt  time.Time
}

// TableName keeps the table name stable if the type is renamed.
func (Record) TableName() string {
	return "operations"
}

// Succeeded reports whether the operation completed without error.
func (r Record) Succeeded() bool {
	return r.Outcome == "none"
}

// Duration returns the recorded run time.
func (r Record) Duration() time.Duration {
	return time.Duration(r.DurationMs) * time.Millisecond
}
