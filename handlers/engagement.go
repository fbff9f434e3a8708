package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"gramly/models"
)

type LikeRequest struct {
	PostID string `json:"postId" binding:"required"`
}

type FollowRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type CommentRequest struct {
	PostID string `json:"postId" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

// toggleMembership flips the acting user's presence in an ObjectID array
// field of a single document and reports the resulting state. Each attempt is
// a pair of conditional single-document updates, so the membership test and
// the mutation are one atomic server-side operation: $addToSet fires only
// when the id is absent, $pull only when it is present. Concurrent toggles
// from the same identity can race each other between the two updates, in
// which case the attempt matched nothing and is retried against the current
// state.
func toggleMembership(ctx context.Context, coll *mongo.Collection, docID, memberID primitive.ObjectID, field string) (present bool, err error) {
	for attempt := 0; attempt < 3; attempt++ {
		res, err := coll.UpdateOne(ctx,
			bson.M{"_id": docID, field: bson.M{"$ne": memberID}},
			bson.M{"$addToSet": bson.M{field: memberID}},
		)
		if err != nil {
			return false, err
		}
		if res.MatchedCount == 1 {
			return true, nil
		}

		res, err = coll.UpdateOne(ctx,
			bson.M{"_id": docID, field: memberID},
			bson.M{"$pull": bson.M{field: memberID}},
		)
		if err != nil {
			return false, err
		}
		if res.MatchedCount == 1 {
			return false, nil
		}

		// Neither filter matched: the document is gone, or another toggle
		// for the same identity slipped in between the two updates.
		count, err := coll.CountDocuments(ctx, bson.M{"_id": docID})
		if err != nil {
			return false, err
		}
		if count == 0 {
			return false, mongo.ErrNoDocuments
		}
	}
	return false, errToggleContention
}

var errToggleContention = errors.New("membership toggle did not converge")

// LikePost toggles the session user's like on a post.
func (h *Handler) LikePost(c *gin.Context) {
	var req LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "postId is required"})
		return
	}

	postID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.PostID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid post ID"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	liked, err := toggleMembership(ctx, h.DB.Posts, postID, userID, "likes")
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}
	if err != nil {
		log.Printf("LikePost toggle error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error liking/unliking post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// FollowUser toggles the session user's follow of another user. The
// relationship is stored only on the follower side as a one-directional
// following list.
func (h *Handler) FollowUser(c *gin.Context) {
	var req FollowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "userId is required"})
		return
	}

	targetID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.UserID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	if userID == targetID {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cannot follow yourself"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := h.DB.Users.CountDocuments(ctx, bson.M{"_id": targetID})
	if err != nil {
		log.Printf("FollowUser target lookup error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error following/unfollowing user"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	following, err := toggleMembership(ctx, h.DB.Users, userID, targetID, "following")
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		log.Printf("FollowUser toggle error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error following/unfollowing user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": following})
}

// CommentPost appends a comment to a post. The comment embeds a snapshot of
// the commenting user and a server-assigned timestamp; the sequence is
// append-only and insertion order is display order.
func (h *Handler) CommentPost(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "postId and text are required"})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Comment text must not be empty"})
		return
	}

	postID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.PostID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid post ID"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = h.DB.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User was not found"})
		return
	}
	if err != nil {
		log.Printf("CommentPost user lookup error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error adding comment"})
		return
	}

	comment := models.Comment{
		User:      user.Snapshot(),
		Text:      text,
		CreatedAt: time.Now().Unix(),
	}

	res, err := h.DB.Posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$push": bson.M{"comments": comment}},
	)
	if err != nil {
		log.Printf("CommentPost push error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error adding comment"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}

	c.JSON(http.StatusOK, comment)
}
