// internal/upload/cloudinary.go
package upload

import (
	"context"
	"fmt"
	"io"

	"gator-gram/internal/config"
	"gator-gram/internal/utils"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryUploader stores images on Cloudinary.
type CloudinaryUploader struct {
	client *cloudinary.Cloudinary
	folder string
}

var _ Uploader = (*CloudinaryUploader)(nil)

func NewCloudinaryUploader(cfg *config.CloudinaryConfig) (*CloudinaryUploader, error) {
	var (
		client *cloudinary.Cloudinary
		err    error
	)

	if cfg.URL != "" {
		client, err = cloudinary.NewFromURL(cfg.URL)
	} else {
		client, err = cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to configure Cloudinary: %v", err)
	}

	return &CloudinaryUploader{
		client: client,
		folder: cfg.Folder,
	}, nil
}

func (u *CloudinaryUploader) UploadFile(ctx context.Context, file io.Reader) (*Result, error) {
	return u.upload(ctx, file)
}

func (u *CloudinaryUploader) UploadURL(ctx context.Context, imageURL string) (*Result, error) {
	return u.upload(ctx, imageURL)
}

// upload accepts whatever the Cloudinary SDK accepts as a source: an
// io.Reader for binary payloads or a string for remote URLs.
func (u *CloudinaryUploader) upload(ctx context.Context, source interface{}) (*Result, error) {
	resp, err := u.client.Upload.Upload(ctx, source, uploader.UploadParams{
		Folder: u.folder,
	})
	if err != nil {
		return nil, utils.NewAppError(utils.ErrUploadFailed, "Image upload failed", err)
	}
	if resp.Error.Message != "" {
		return nil, utils.NewAppError(utils.ErrUploadFailed, "Image upload rejected: "+resp.Error.Message, nil)
	}

	return &Result{
		URL:     resp.SecureURL,
		AssetID: resp.PublicID,
	}, nil
}

func (u *CloudinaryUploader) Delete(ctx context.Context, assetID string) error {
	_, err := u.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: assetID})
	if err != nil {
		return utils.NewAppError(utils.ErrUploadFailed, "Image deletion failed", err)
	}
	return nil
}
