package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	User      UserSnapshot         `bson:"user" json:"user"`
	Caption   string               `bson:"caption" json:"caption"`
	MediaURL  string               `bson:"mediaUrl" json:"mediaUrl"`
	MediaType string               `bson:"mediaType" json:"mediaType"` // image or video
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments  []Comment            `bson:"comments" json:"comments"`
	CreatedAt int64                `bson:"createdAt" json:"createdAt"`
}

// Comment lives only inside its parent post. Append-only, insertion order is
// display order.
type Comment struct {
	User      UserSnapshot `bson:"user" json:"user"`
	Text      string       `bson:"text" json:"text"`
	CreatedAt int64        `bson:"createdAt" json:"createdAt"`
}
