package models

import "time"

// Service is a bookable offering of the tenant.
type Service struct {
	ID          string    `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Category    string    `bson:"category,omitempty" json:"category,omitempty"`
	Duration    int       `bson:"duration" json:"duration"` // minutes
	Price       float64   `bson:"price" json:"price"`
	BufferTime  int       `bson:"bufferTime,omitempty" json:"bufferTime,omitempty"` // minutes
	Color       string    `bson:"color,omitempty" json:"color,omitempty"`
	IsActive    bool      `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// ProfessionalService links a professional to a service with optional overrides.
type ProfessionalService struct {
	ID             string   `bson:"id" json:"id"`
	ProfessionalID string   `bson:"professionalId" json:"professionalId"`
	ServiceID      string   `bson:"serviceId" json:"serviceId"`
	CustomDuration *int     `bson:"customDuration,omitempty" json:"customDuration,omitempty"`
	CustomPrice    *float64 `bson:"customPrice,omitempty" json:"customPrice,omitempty"`
	IsActive       bool     `bson:"isActive" json:"isActive"`
}
