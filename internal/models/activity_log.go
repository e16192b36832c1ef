package models

import "time"

// LogType enumerates the events recorded in the activity log.
type LogType string

const (
	LogProductAdded   LogType = "PRODUCT_ADDED"
	LogOrderPlaced    LogType = "ORDER_PLACED"
	LogUserRegistered LogType = "USER_REGISTERED"
)

// Valid reports whether t is one of the known log types.
func (t LogType) Valid() bool {
	switch t {
	case LogProductAdded, LogOrderPlaced, LogUserRegistered:
		return true
	}
	return false
}

// ActivityLog is an append-only record of something that happened in the
// store. UserID is empty when no user is associated with the event.
type ActivityLog struct {
	ID          string    `json:"_id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Type        LogType   `json:"type" bson:"type" gorm:"type:varchar(32);not null"`
	Description string    `json:"description" bson:"description" gorm:"type:text;not null"`
	UserID      string    `json:"user,omitempty" bson:"user,omitempty" gorm:"type:varchar(36)"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt" gorm:"index"`
}
