package entity

import "time"

// SeedingHistory records a seed file that has already been applied.
type SeedingHistory struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	FileName  string    `gorm:"column:file_name;size:255;not null;uniqueIndex" json:"fileName"`
	CreatedAt time.Time `gorm:"column:created_at;index" json:"createdAt"`
}

func (SeedingHistory) TableName() string {
	return "seeding_histories"
}
