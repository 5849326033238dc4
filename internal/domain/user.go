// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"strings"
)

// Unit is a measurement system.
type Unit string

const (
	UnitMetric   Unit = "metric"
	UnitImperial Unit = "imperial"
)

// ParseUnit accepts "metric" or "imperial" in any case. An empty string
// means metric.
func ParseUnit(s string) (Unit, error) {
	switch Unit(strings.ToLower(strings.TrimSpace(s))) {
	case "", UnitMetric:
		return UnitMetric, nil
	case UnitImperial:
		return UnitImperial, nil
	}
	return "", ErrInvalidUnit
}

// User is a registered person. Weight, Height and GoalWeight are stored in
// the user's own unit (kg/cm or lb/in) and may be absent.
type User struct {
	ID             int64
	Email          string
	HashedPassword string
	Weight         *float64
	Height         *float64
	GoalWeight     *float64
	Unit           Unit
	IsActive       bool
}

// UserRepository defines the port for user persistence operations.
// Lookups return (nil, nil) when nothing matches.
type UserRepository interface {
	// CreateUser returns ErrEmailRegistered when the email is taken.
	CreateUser(ctx context.Context, u User) (*User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]User, error)
}
