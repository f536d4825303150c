package model

import "time"

// DefaultImageFile is the sentinel profile picture assigned to new accounts.
// It is never removed from disk.
const DefaultImageFile = "default.jpg"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	ImageFile    string    `gorm:"size:64;not null;default:'default.jpg'" json:"image_file"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Posts []Post `gorm:"foreignKey:UserID" json:"-"`
}
