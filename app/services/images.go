package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/storage"
)

const imagePrefix = "products/"

// ImageOffloader moves inline data-URL images to a storage disk and replaces
// them with the stored object's URL.
type ImageOffloader struct {
	disk storage.Disk
}

func NewImageOffloader(disk storage.Disk) *ImageOffloader {
	return &ImageOffloader{disk: disk}
}

// Offload stores every image that still carries a data URL. Images that
// already have a URL are kept as-is. The content type is sniffed from the
// bytes, not taken from the data URL header.
func (o *ImageOffloader) Offload(ctx context.Context, images []models.Image) ([]models.Image, error) {
	out := make([]models.Image, len(images))
	for i, img := range images {
		out[i] = img
		if img.DataURL == "" {
			continue
		}

		data, err := decodeDataURL(img.DataURL)
		if err != nil {
			return nil, apperr.BadRequest(fmt.Sprintf("images[%d] has an invalid data URL", i))
		}
		mt := mimetype.Detect(data)
		if !strings.HasPrefix(mt.String(), "image/") {
			return nil, apperr.BadRequest(fmt.Sprintf("images[%d] is not an image", i))
		}

		key := imagePrefix + uuid.NewString() + mt.Extension()
		location, err := o.disk.Put(ctx, key, data, mt.String())
		if err != nil {
			return nil, apperr.Internal("Internal Server Error", err)
		}

		out[i].URL = location
		out[i].DataURL = ""
		if out[i].File.Type == "" {
			out[i].File.Type = mt.String()
		}
		if out[i].File.Size == 0 {
			out[i].File.Size = int64(len(data))
		}
	}
	return out, nil
}

// decodeDataURL handles "data:[<mediatype>][;base64],<data>".
func decodeDataURL(raw string) ([]byte, error) {
	rest, ok := strings.CutPrefix(raw, "data:")
	if !ok {
		return nil, fmt.Errorf("missing data: scheme")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("missing payload separator")
	}
	if strings.HasSuffix(meta, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}
