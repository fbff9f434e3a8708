package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gramly/models"
)

type CreatePostRequest struct {
	Caption     string `json:"caption" binding:"required"`
	MediaBase64 string `json:"mediaBase64" binding:"required"`
}

type UserPostsRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h *Handler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Caption and media are required"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var user models.User
	err := h.DB.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User was not found"})
		return
	}
	if err != nil {
		log.Printf("CreatePost user lookup error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error creating post"})
		return
	}

	upload, err := h.Media.Upload(ctx, req.MediaBase64)
	if err != nil {
		log.Printf("CreatePost upload error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error creating post"})
		return
	}

	post := models.Post{
		ID:        primitive.NewObjectID(),
		User:      user.Snapshot(),
		Caption:   req.Caption,
		MediaURL:  upload.URL,
		MediaType: upload.MediaType,
		Likes:     []primitive.ObjectID{},
		Comments:  []models.Comment{},
		CreatedAt: time.Now().Unix(),
	}

	if _, err := h.DB.Posts.InsertOne(ctx, post); err != nil {
		log.Printf("CreatePost insert error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error creating post"})
		return
	}

	c.JSON(http.StatusOK, post)
}

// GetPosts returns every post newest-first, with likes expanded to the
// likers' name and image.
func (h *Handler) GetPosts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	posts, err := h.findPosts(ctx, bson.M{})
	if err != nil {
		log.Printf("GetPosts error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching posts"})
		return
	}

	expanded, err := h.expandLikes(ctx, posts)
	if err != nil {
		log.Printf("GetPosts likes expansion error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": expanded})
}

// GetUserPosts returns posts authored by the named user or by anyone that
// user follows, newest-first.
func (h *Handler) GetUserPosts(c *gin.Context) {
	var req UserPostsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "userId is required"})
		return
	}

	userID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.UserID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = h.DB.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		log.Printf("GetUserPosts user lookup error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching posts"})
		return
	}

	following := user.Following
	if following == nil {
		following = []primitive.ObjectID{}
	}
	filter := bson.M{"$or": []bson.M{
		{"user._id": bson.M{"$in": following}},
		{"user._id": userID},
	}}

	posts, err := h.findPosts(ctx, filter)
	if err != nil {
		log.Printf("GetUserPosts error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching posts"})
		return
	}

	expanded, err := h.expandLikes(ctx, posts)
	if err != nil {
		log.Printf("GetUserPosts likes expansion error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": expanded})
}

func (h *Handler) findPosts(ctx context.Context, filter bson.M) ([]models.Post, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.DB.Posts.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// expandLikes replaces raw liker ids with {id, fullName, image} records,
// resolved in one $in batch across all posts. Consumers derive like counts
// from the array length; no counter is denormalized anywhere.
func (h *Handler) expandLikes(ctx context.Context, posts []models.Post) ([]gin.H, error) {
	seen := make(map[primitive.ObjectID]bool)
	var likerIDs []primitive.ObjectID
	for _, p := range posts {
		for _, id := range p.Likes {
			if !seen[id] {
				seen[id] = true
				likerIDs = append(likerIDs, id)
			}
		}
	}

	likers := make(map[primitive.ObjectID]gin.H)
	if len(likerIDs) > 0 {
		cursor, err := h.DB.Users.Find(ctx, bson.M{"_id": bson.M{"$in": likerIDs}})
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var users []models.User
		if err := cursor.All(ctx, &users); err != nil {
			return nil, err
		}
		for _, u := range users {
			likers[u.ID] = gin.H{
				"id":       u.ID.Hex(),
				"fullName": u.FullName,
				"image":    u.Image,
			}
		}
	}

	result := make([]gin.H, len(posts))
	for i, p := range posts {
		likes := make([]gin.H, 0, len(p.Likes))
		for _, id := range p.Likes {
			if liker, ok := likers[id]; ok {
				likes = append(likes, liker)
			}
			// Dangling liker references (removed accounts) are dropped,
			// tolerated as best-effort consistency.
		}
		result[i] = gin.H{
			"id":        p.ID.Hex(),
			"user":      p.User,
			"caption":   p.Caption,
			"mediaUrl":  p.MediaURL,
			"mediaType": p.MediaType,
			"likes":     likes,
			"comments":  p.Comments,
			"createdAt": p.CreatedAt,
		}
	}
	return result, nil
}
