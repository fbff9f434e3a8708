package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/oauth2"

	"gramly/config"
	"gramly/database"
	"gramly/media"
)

// MediaUploader is the external media collaborator. Satisfied by
// *media.Uploader in production.
type MediaUploader interface {
	Upload(ctx context.Context, mediaBase64 string) (*media.UploadResult, error)
}

// Handler carries every shared dependency. Built once in main and passed to
// the router; nothing here reads the environment or package globals.
type Handler struct {
	DB    *database.Mongo
	Media MediaUploader
	Cfg   *config.Config

	google       *oauth2.Config // nil when Google OAuth is not configured
	tokenInfoURL string
}

func New(db *database.Mongo, uploader MediaUploader, cfg *config.Config) *Handler {
	return &Handler{
		DB:           db,
		Media:        uploader,
		Cfg:          cfg,
		google:       newGoogleOAuth(cfg),
		tokenInfoURL: googleTokenInfoURL,
	}
}

// currentUserID resolves the acting identity set by the JWT middleware.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return userID, true
}
