package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueType enum
type IssueType string

const (
	Drainage IssueType = "drainage"
	Water    IssueType = "water"
	Potholes IssueType = "potholes"
	Waste    IssueType = "waste"
)

// IssueStatus enum
type IssueStatus string

const (
	Pending   IssueStatus = "pending"
	Accepted  IssueStatus = "accepted"
	Resolved  IssueStatus = "resolved"
	Escalated IssueStatus = "escalated"
)

// GeoPoint is a latitude/longitude pair captured from the device.
type GeoPoint struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Issue represents a civic problem reported by a citizen and its full
// resolution record. Reporter identity fields are snapshotted at creation
// and never re-synced against the live user document.
type Issue struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type        IssueType          `bson:"type" json:"type"`
	Description string             `bson:"description" json:"description"`
	Photo       string             `bson:"photo" json:"photo"` // base64 data URI
	Location    GeoPoint           `bson:"location" json:"location"`
	Address     string             `bson:"address,omitempty" json:"address,omitempty"`
	WardNumber  string             `bson:"wardNumber" json:"wardNumber"`

	UserID      string `bson:"userId" json:"userId"`
	UserName    string `bson:"userName" json:"userName"`
	UserContact string `bson:"userContact" json:"userContact"`

	Status             IssueStatus `bson:"status" json:"status"`
	AssignedCorporator string      `bson:"assignedCorporator,omitempty" json:"assignedCorporator,omitempty"`

	CreatedAt  time.Time  `bson:"createdAt" json:"createdAt"`
	AcceptedAt *time.Time `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	ResolvedAt *time.Time `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`

	WorkReport       string    `bson:"workReport,omitempty" json:"workReport,omitempty"`
	ResolvedPhoto    string    `bson:"resolvedPhoto,omitempty" json:"resolvedPhoto,omitempty"`
	ResolvedLocation *GeoPoint `bson:"resolvedLocation,omitempty" json:"resolvedLocation,omitempty"`
}

// ValidIssueType reports whether t is one of the closed set of categories.
func ValidIssueType(t IssueType) bool {
	switch t {
	case Drainage, Water, Potholes, Waste:
		return true
	}
	return false
}

// ValidIssueStatus reports whether s is a known lifecycle status.
func ValidIssueStatus(s IssueStatus) bool {
	switch s {
	case Pending, Accepted, Resolved, Escalated:
		return true
	}
	return false
}
