// Package model defines database models
package model

import "time"

type File struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename    string    `gorm:"not null" json:"filename"` // Also the blob key in storage
	UploadedBy  string    `gorm:"not null;index" json:"-"`
	ContentType string    `json:"-"`
	Size        int64     `json:"-"`
	CreatedAt   time.Time `json:"-"`
}
