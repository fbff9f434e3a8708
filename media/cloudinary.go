package media

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"gramly/models"
)

// Uploader forwards inline base64 media payloads to Cloudinary. Bytes are
// never stored locally; Cloudinary returns the permanent URL and classifies
// the resource as image or video.
type Uploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

type UploadResult struct {
	URL       string
	MediaType string // models.MediaTypeImage or models.MediaTypeVideo
}

func NewUploader(cloudinaryURL, folder string) (*Uploader, error) {
	if cloudinaryURL == "" {
		return nil, errors.New("CLOUDINARY_URL must be set")
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, err
	}
	return &Uploader{cld: cld, folder: folder}, nil
}

// Upload accepts a data-URI or raw base64 payload and returns the hosted URL
// plus the image/video tag.
func (u *Uploader) Upload(ctx context.Context, mediaBase64 string) (*UploadResult, error) {
	if strings.TrimSpace(mediaBase64) == "" {
		return nil, errors.New("empty media payload")
	}

	result, err := u.cld.Upload.Upload(ctx, mediaBase64, uploader.UploadParams{
		Folder:       u.folder,
		PublicID:     uuid.NewString(),
		ResourceType: "auto",
	})
	if err != nil {
		return nil, err
	}

	mediaType := models.MediaTypeImage
	if result.ResourceType == "video" {
		mediaType = models.MediaTypeVideo
	}

	return &UploadResult{URL: result.SecureURL, MediaType: mediaType}, nil
}
