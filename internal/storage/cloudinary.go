package storage

import (
	"context"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Cloudinary stores images in a Cloudinary account. Keys are public IDs.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary configures the client from a cloudinary:// URL.
func NewCloudinary(cloudinaryURL string) (*Cloudinary, error) {
	if cloudinaryURL == "" {
		return nil, errors.New("CLOUDINARY_URL is required for the cloudinary storage driver")
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, errors.Wrap(err, "initialize cloudinary")
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Save(ctx context.Context, dir, _ string, r io.Reader) (string, error) {
	result, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:     uuid.NewString(),
		Folder:       dir,
		ResourceType: "image",
		Overwrite:    api.Bool(false),
	})
	if err != nil {
		return "", errors.Wrap(err, "cloudinary upload")
	}
	if result.Error.Message != "" {
		return "", errors.Errorf("cloudinary upload: %s", result.Error.Message)
	}
	return result.PublicID, nil
}

func (c *Cloudinary) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	result, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     key,
		ResourceType: "image",
	})
	if err != nil {
		return errors.Wrap(err, "cloudinary destroy")
	}
	if result.Error.Message != "" {
		return errors.Errorf("cloudinary destroy: %s", result.Error.Message)
	}
	return nil
}

func (c *Cloudinary) URL(key string) string {
	if key == "" {
		return ""
	}
	image, err := c.cld.Image(key)
	if err != nil {
		return ""
	}
	url, err := image.String()
	if err != nil {
		return ""
	}
	return url
}
