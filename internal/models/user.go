package models

import "time"

// User represents a storefront customer or administrator.
type User struct {
	ID        string    `json:"_id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" bson:"name" gorm:"type:varchar(100)"`
	Email     string    `json:"email" bson:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Password  string    `json:"-" bson:"password" gorm:"type:varchar(255)"` // bcrypt hash, never serialized
	IsAdmin   bool      `json:"isAdmin" bson:"isAdmin"`
	Address   string    `json:"address,omitempty" bson:"address,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
