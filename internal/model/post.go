package model

import "time"

type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:100;not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	DatePosted time.Time `gorm:"not null;index" json:"date_posted"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`

	Author User `gorm:"foreignKey:UserID" json:"-"`
}
