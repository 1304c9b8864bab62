package domain

import (
	"errors"
	"time"
)

// CustomerStatus is the moderation state of a customer account.
type CustomerStatus string

const (
	CustomerStatusActive    CustomerStatus = "active"
	CustomerStatusBanned    CustomerStatus = "banned"
	CustomerStatusSuspended CustomerStatus = "suspended"
)

// ErrInvalidTransition is returned when a moderation action is not allowed
// from the customer's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

// SuspensionDurations lists the allowed suspension lengths in days.
var SuspensionDurations = []int{1, 3, 7, 14, 30}

// IsValidSuspensionDuration reports whether days is one of SuspensionDurations.
func IsValidSuspensionDuration(days int) bool {
	for _, d := range SuspensionDurations {
		if d == days {
			return true
		}
	}
	return false
}

// Customer is an end user signed in through Google.
type Customer struct {
	ID             int64          `json:"id" db:"id"`
	GoogleID       string         `json:"-" db:"google_id"`
	Name           string         `json:"name" db:"name"`
	Email          string         `json:"email" db:"email"`
	Avatar         string         `json:"avatar" db:"avatar"`
	Status         CustomerStatus `json:"status" db:"status"`
	StatusReason   *string        `json:"statusReason,omitempty" db:"status_reason"`
	SuspendedUntil *time.Time     `json:"suspendedUntil,omitempty" db:"suspended_until"`
	MemberSince    time.Time      `json:"memberSince" db:"created_at"`
	UpdatedAt      time.Time      `json:"updatedAt" db:"updated_at"`
}

// CustomerSummary is the public author shape embedded in reviews.
type CustomerSummary struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// ManagedCustomer is the admin view of a customer.
type ManagedCustomer struct {
	Customer
	ReviewCount int `json:"reviewCount"`
}

// Summary returns the public author form of the customer.
func (c *Customer) Summary() CustomerSummary {
	return CustomerSummary{ID: c.ID, Name: c.Name, Avatar: c.Avatar}
}

// EffectiveStatus treats a suspension that has run out as active.
func (c *Customer) EffectiveStatus(now time.Time) CustomerStatus {
	if c.Status == CustomerStatusSuspended && c.SuspendedUntil != nil && !now.Before(*c.SuspendedUntil) {
		return CustomerStatusActive
	}
	return c.Status
}

// CanContribute reports whether the customer may write reviews.
func (c *Customer) CanContribute(now time.Time) bool {
	return c.EffectiveStatus(now) == CustomerStatusActive
}

// Ban moves an active customer to banned.
func (c *Customer) Ban(reason string, now time.Time) error {
	if c.EffectiveStatus(now) != CustomerStatusActive {
		return ErrInvalidTransition
	}
	c.Status = CustomerStatusBanned
	c.StatusReason = &reason
	c.SuspendedUntil = nil
	return nil
}

// Suspend moves an active customer to suspended for the given number of days.
func (c *Customer) Suspend(days int, reason string, now time.Time) error {
	if c.EffectiveStatus(now) != CustomerStatusActive {
		return ErrInvalidTransition
	}
	until := now.Add(time.Duration(days) * 24 * time.Hour)
	c.Status = CustomerStatusSuspended
	c.StatusReason = &reason
	c.SuspendedUntil = &until
	return nil
}

// Unban restores the customer to active from any state.
func (c *Customer) Unban() {
	c.Status = CustomerStatusActive
	c.StatusReason = nil
	c.SuspendedUntil = nil
}
