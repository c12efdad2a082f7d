package libs

import (
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

const imageTransformation = "q_auto,f_auto"

// CloudinaryImages turns stored image references into delivery URLs. Full
// URLs are passed through untouched.
type CloudinaryImages struct {
	cld *cloudinary.Cloudinary
	log *zap.Logger
}

func NewCloudinaryImages(cloudName, apiKey, apiSecret string, log *zap.Logger) (*CloudinaryImages, error) {
	if cloudName == "" {
		log.Warn("cloudinary not configured, image references returned as stored")
		return &CloudinaryImages{log: log}, nil
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, errors.Wrap(err, "cloudinary init")
	}
	cld.Config.URL.Secure = true
	return &CloudinaryImages{cld: cld, log: log}, nil
}

func (c *CloudinaryImages) ResolveImage(ref string) string {
	if c.cld == nil || ref == "" || isAbsoluteURL(ref) {
		return ref
	}
	img, err := c.cld.Image(ref)
	if err != nil {
		c.log.Warn("cloudinary asset", zap.String("ref", ref), zap.Error(err))
		return ref
	}
	img.Transformation = imageTransformation
	url, err := img.String()
	if err != nil {
		c.log.Warn("cloudinary url", zap.String("ref", ref), zap.Error(err))
		return ref
	}
	return url
}

func isAbsoluteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
