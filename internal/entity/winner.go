package entity

import "time"

type Winner struct {
	ID        string `gorm:"primarykey"`
	Name      string
	Prize     string
	Timestamp int64 `gorm:"index"`
	CreatedAt time.Time
}
