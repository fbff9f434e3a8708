package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Email        string               `bson:"email" json:"email"`
	FullName     string               `bson:"fullName,omitempty" json:"fullName,omitempty"`
	PasswordHash string               `bson:"password" json:"-"`
	Image        string               `bson:"image,omitempty" json:"image,omitempty"`
	Providers    []Provider           `bson:"providers" json:"providers"`
	Following    []primitive.ObjectID `bson:"following" json:"following"`

	CreatedAt int64 `bson:"createdAt" json:"createdAt"`
	UpdatedAt int64 `bson:"updatedAt" json:"updatedAt"`
}

// Provider links a federated identity to the local account.
type Provider struct {
	Provider   string `bson:"provider" json:"provider"`
	ProviderID string `bson:"providerId" json:"providerId"`
}

// Snapshot is the denormalized copy of the author embedded in posts and
// comments. It is captured at creation time and intentionally never
// re-synchronized with later profile changes.
func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Image:    u.Image,
	}
}

type UserSnapshot struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Email    string             `bson:"email" json:"email"`
	FullName string             `bson:"fullName,omitempty" json:"fullName,omitempty"`
	Image    string             `bson:"image,omitempty" json:"image,omitempty"`
}
