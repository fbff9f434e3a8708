package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"gramly/config"
	"gramly/middleware"
	"gramly/models"
)

const (
	googleProvider     = "google"
	googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
)

func newGoogleOAuth(cfg *config.Config) *oauth2.Config {
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type GoogleAuthRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// GoogleAuthURL returns the consent-screen URL for the redirect flow.
func (h *Handler) GoogleAuthURL(c *gin.Context) {
	if h.google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google OAuth not configured"})
		return
	}
	state := uuid.NewString()
	c.JSON(http.StatusOK, gin.H{"url": h.google.AuthCodeURL(state, oauth2.AccessTypeOffline)})
}

// GoogleCallback exchanges the authorization code and signs the user in.
func (h *Handler) GoogleCallback(c *gin.Context) {
	if h.google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google OAuth not configured"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization code missing"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	token, err := h.google.Exchange(ctx, code)
	if err != nil {
		log.Printf("Google token exchange failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exchange authorization code"})
		return
	}

	resp, err := h.google.Client(ctx, token).Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		log.Printf("Google userinfo fetch failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user information"})
		return
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read user information"})
		return
	}

	var info googleUserInfo
	if err := json.Unmarshal(data, &info); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse user information"})
		return
	}

	h.signInGoogleUser(c, info)
}

// GoogleAuth signs in with a Google Identity Services credential (ID token).
// The credential is verified against Google's tokeninfo endpoint before any
// account is resolved; a forged token never reaches the database.
func (h *Handler) GoogleAuth(c *gin.Context) {
	var req GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	info, err := h.verifyGoogleCredential(ctx, req.Credential)
	if err != nil {
		log.Printf("Google credential verification failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Google credential"})
		return
	}
	if info.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email not provided by Google"})
		return
	}

	h.signInGoogleUser(c, info)
}

type googleTokenClaims struct {
	Aud     string `json:"aud"`
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// verifyGoogleCredential asks Google's tokeninfo endpoint to validate the ID
// token signature and expiry, then checks the audience against our client id.
func (h *Handler) verifyGoogleCredential(ctx context.Context, credential string) (googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		h.tokenInfoURL+"?id_token="+url.QueryEscape(credential), nil)
	if err != nil {
		return googleUserInfo{}, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("tokeninfo rejected credential: %s", resp.Status)
	}

	var claims googleTokenClaims
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return googleUserInfo{}, err
	}

	if h.Cfg.GoogleClientID != "" && claims.Aud != h.Cfg.GoogleClientID {
		return googleUserInfo{}, fmt.Errorf("credential audience %q does not match client id", claims.Aud)
	}

	return googleUserInfo{
		ID:      claims.Sub,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

// signInGoogleUser resolves or provisions the local account and mints the
// session token. First sign-in creates the user with a random, never-usable
// password placeholder so the password-presence convention holds.
func (h *Handler) signInGoogleUser(c *gin.Context, info googleUserInfo) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(info.Email))

	var user models.User
	err := h.DB.Users.FindOne(ctx, bson.M{"email": email}).Decode(&user)

	switch {
	case err == mongo.ErrNoDocuments:
		placeholder, hashErr := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
		if hashErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user account"})
			return
		}

		now := time.Now().Unix()
		user = models.User{
			ID:           primitive.NewObjectID(),
			Email:        email,
			FullName:     info.Name,
			PasswordHash: string(placeholder),
			Image:        info.Picture,
			Providers: []models.Provider{
				{Provider: googleProvider, ProviderID: info.ID},
			},
			Following: []primitive.ObjectID{},
			CreatedAt: now,
			UpdatedAt: now,
		}

		if _, err := h.DB.Users.InsertOne(ctx, user); err != nil {
			log.Printf("Google user insert error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user account"})
			return
		}

	case err != nil:
		log.Printf("Google user lookup error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return

	default:
		// Existing account, link the provider if it isn't recorded yet.
		update := bson.M{
			"$set": bson.M{"updatedAt": time.Now().Unix()},
			"$addToSet": bson.M{
				"providers": models.Provider{Provider: googleProvider, ProviderID: info.ID},
			},
		}
		if user.Image == "" && info.Picture != "" {
			update["$set"].(bson.M)["image"] = info.Picture
		}
		if _, err := h.DB.Users.UpdateOne(ctx, bson.M{"_id": user.ID}, update); err != nil {
			log.Printf("Google provider link error: %v", err)
		}
	}

	token, err := middleware.NewToken(user.ID.Hex(), h.Cfg.JWTSecret, h.Cfg.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": user.ID.Hex(),
		"email":  user.Email,
	})
}
