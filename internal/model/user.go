package model

import "time"

// VerifiedUser is the gateway's record of an identity-provider subject.
// It is keyed by ClerkID and fully replaced on every sync.
type VerifiedUser struct {
	// ClerkID is the verified subject identifier issued by the identity provider.
	ClerkID string `json:"clerkId" db:"clerk_id" bson:"clerkId"`

	// Email is the primary address, or "" when the provider has none.
	Email string `json:"email" db:"email" bson:"email"`

	// Name is the display name. Required on sync.
	Name string `json:"name" db:"name" bson:"name"`

	// Avatar is an optional image URL.
	Avatar string `json:"avatar,omitempty" db:"avatar" bson:"avatar,omitempty"`

	CreatedAt time.Time `json:"-" db:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"-" db:"updated_at" bson:"updatedAt"`
}
