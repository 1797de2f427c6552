package domain

import (
	"context"
	"mime/multipart"
	"time"
)

const (
	// MediaTypeImage is the only media type accepted for upload as of now.
	MediaTypeImage = "image"
	// MaxUploadSize determines the maximum filesize of a media object to be uploaded.
	MaxUploadSize int64 = 5 << 20 // 5 Megabyte
)

// Media represents an uploaded media object. The blob lives in the configured
// storage backend under the CDN key; the database record holds the serving
// path and metadata. Tweets and replies reference Media records by ID.
// File, Filename and Extension only carry the upload in flight and are
// neither stored nor serialized.
type Media struct {
	ID       int    `json:"id"`
	UserID   int    `json:"-"`
	Path     string `json:"path,omitempty"`
	URL      string `json:"url,omitempty"`
	Mimetype string `json:"mimetype,omitempty"`
	Type     string `json:"type,omitempty"`
	Size     int64  `json:"size,omitempty"`
	CDN      string `json:"cdn,omitempty"`

	File      multipart.File `json:"-" gorm:"-"`
	Filename  string         `json:"-" gorm:"-"`
	Extension string         `json:"-" gorm:"-"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}

// MediaService is a set of methods to manipulate and work with the Media model
// and the stored blobs behind it. DeletePermanently removes both the blob and
// the database record, bypassing soft deletion. There is no reference
// counting; a media object referenced by several tweets is gone for all of
// them once one owner cascades.
type MediaService interface {
	ByID(id int) (*Media, error)
	ByIDs(ids []int, fields ...string) ([]Media, error)
	Create(ctx context.Context, media *Media) error
	DeletePermanently(ctx context.Context, media *Media) error
}
