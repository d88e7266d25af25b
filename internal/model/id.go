package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a new object id in its 24 character hex form.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ValidID reports whether id is a well formed object id.
func ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}
