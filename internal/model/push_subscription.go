package model

import "time"

// PushSubscription holds the information for a browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	RedOnly   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
}

// Wants reports whether a notification with the given status should reach this subscriber.
func (p PushSubscription) Wants(status Status) bool {
	return !p.RedOnly || status == StatusRed
}
