package model

import "time"

type User struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	IsOps        bool   `gorm:"not null;default:false"`
	IsVerified   bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time

	Files []File `gorm:"foreignKey:UploadedBy"`
}
