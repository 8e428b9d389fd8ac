// models/listing.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Listing model
type Listing struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	HostID        primitive.ObjectID `json:"hostId" bson:"hostId"`
	Title         string             `json:"title" bson:"title"`
	Description   string             `json:"description,omitempty" bson:"description,omitempty"`
	Type          string             `json:"type" bson:"type"` // "stay", "experience", "service"
	PricePerNight float64            `json:"pricePerNight" bson:"pricePerNight"`
	MaxGuests     int                `json:"maxGuests,omitempty" bson:"maxGuests,omitempty"`
	Location      *Location          `json:"location,omitempty" bson:"location,omitempty"`
	PhotoURLs     []string           `json:"photoUrls,omitempty" bson:"photoUrls,omitempty"`
	VideoURL      string             `json:"videoUrl,omitempty" bson:"videoUrl,omitempty"`
	ThumbnailURL  string             `json:"thumbnailUrl,omitempty" bson:"thumbnailUrl,omitempty"`
	Rating        float64            `json:"rating" bson:"rating"`
	IsActive      bool               `json:"isActive" bson:"isActive"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ListingRequest model
type ListingRequest struct {
	Title         string    `json:"title" validate:"required"`
	Description   string    `json:"description,omitempty"`
	Type          string    `json:"type" validate:"required,oneof=stay experience service"`
	PricePerNight float64   `json:"pricePerNight" validate:"required,gt=0"`
	MaxGuests     int       `json:"maxGuests,omitempty"`
	Location      *Location `json:"location,omitempty"`
	Photos        []string  `json:"photos,omitempty"`     // base64 encoded
	PhotoNames    []string  `json:"photoNames,omitempty"` // original filenames
	Video         string    `json:"video,omitempty"`      // base64 encoded
}
