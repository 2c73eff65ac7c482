package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Admin struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email        string             `bson:"email" json:"email"`
	Name         string             `bson:"name" json:"name"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	LastLoginAt  *time.Time         `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
}

// AdminSession is the value cached in Redis for a logged-in admin.
type AdminSession struct {
	AdminID   string    `json:"adminId"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
