// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User model
type User struct {
	ID                  primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email               string             `json:"email" bson:"email"`
	Password            string             `json:"password,omitempty" bson:"password"`
	FullName            string             `json:"fullName,omitempty" bson:"fullName,omitempty"`
	FirstName           string             `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName            string             `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Username            string             `json:"username,omitempty" bson:"username,omitempty"`
	UserType            string             `json:"userType" bson:"userType"` // "host", "guest", "admin"
	IsActive            bool               `json:"isActive" bson:"isActive"`
	Phone               string             `json:"phone,omitempty" bson:"phone,omitempty"`
	PayoutEmail         string             `json:"payoutEmail,omitempty" bson:"payoutEmail,omitempty"`
	ProfilePic          string             `json:"profilePic,omitempty" bson:"profilePic,omitempty"`
	Location            *Location          `json:"location,omitempty" bson:"location,omitempty"`
	FCMToken            string             `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	LastActivityAt      time.Time          `json:"lastActivityAt" bson:"lastActivityAt"`
	ResetPasswordToken  string             `json:"resetPasswordToken,omitempty" bson:"resetPasswordToken,omitempty"`
	ResetTokenExpiresAt time.Time          `json:"resetTokenExpiresAt,omitempty" bson:"resetTokenExpiresAt,omitempty"`
	CreatedAt           time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Location model
type Location struct {
	Country string  `json:"country" bson:"country"`
	City    string  `json:"city" bson:"city"`
	Address string  `json:"address,omitempty" bson:"address,omitempty"`
	Lat     float64 `json:"lat" bson:"lat"`
	Lng     float64 `json:"lng" bson:"lng"`
}

// Response is the standard API response envelope
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SignupRequest model
type SignupRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FullName  string `json:"fullName,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Username  string `json:"username,omitempty"`
	UserType  string `json:"userType" validate:"required,oneof=host guest"`
	Phone     string `json:"phone,omitempty"`
}

// LoginRequest model
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse model
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// UpdateProfileRequest model
type UpdateProfileRequest struct {
	FullName    string    `json:"fullName,omitempty"`
	FirstName   string    `json:"firstName,omitempty"`
	LastName    string    `json:"lastName,omitempty"`
	Username    string    `json:"username,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	PayoutEmail string    `json:"payoutEmail,omitempty"`
	Location    *Location `json:"location,omitempty"`
}
