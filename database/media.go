package database

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"chirper/domain"
	"chirper/errs"
	"chirper/storage"
)

// Ensure the MediaService struct properly implements the domain.MediaService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.MediaService = &MediaService{}

// NewMediaService returns an instance of MediaService writing blobs to the
// given storage backend.
func NewMediaService(db *gorm.DB, store storage.Client) *MediaService {
	return &MediaService{
		mediaValidator{
			mediaGorm{
				db:    db,
				store: store,
			},
		},
	}
}

// MediaService manages Media records and the blobs behind them.
// It implements the domain.MediaService interface.
type MediaService struct {
	mediaValidator
}

// mediaValidator runs validations on uploaded media files.
// On success, it passes the data on to mediaGorm.
// Otherwise, it returns the error of the validation that has failed.
type mediaValidator struct {
	mediaGorm
}

// mediaGorm stores the blob and runs CRUD operations on the database.
// It assumes that data has been validated.
type mediaGorm struct {
	db    *gorm.DB
	store storage.Client
}

// Create runs validations needed for storing an uploaded media object.
func (mv *mediaValidator) Create(ctx context.Context, media *domain.Media) error {
	err := runMediaValFns(media,
		mv.extensionValid,
		mv.contentTypeValid,
		mv.contentTypeExtensionMatch,
		mv.belowMaxSize,
		mv.storageKeyUnique,
	)
	if err != nil {
		return err
	}
	return mv.mediaGorm.Create(ctx, media)
}

// runMediaValFns runs any number of functions of type mediaValFn on the passed in Media object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runMediaValFns(media *domain.Media, fns ...mediaValFn) error {
	for _, fn := range fns {
		if err := fn(media); err != nil {
			return err
		}
	}
	return nil
}

// A mediaValFn is any function that takes in a pointer to a domain.Media object and returns an error.
type mediaValFn func(media *domain.Media) error

// belowMaxSize makes sure that the file to be uploaded does not exceed MaxUploadSize.
func (mv *mediaValidator) belowMaxSize(media *domain.Media) error {
	size, err := media.File.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if err = resetReaderPosition(media); err != nil {
		return err
	}
	if size > domain.MaxUploadSize {
		return errs.Errorf(
			errs.EINVALID,
			"Media %s exceeds upload size limit of %sMB.",
			media.Filename,
			strconv.FormatInt(domain.MaxUploadSize/1000000, 10),
		)
	}
	media.Size = size
	return nil
}

// contentTypeValid makes sure that the file to be uploaded is a valid jpeg or png file.
// The content type is sniffed from the file itself, not taken from the request.
func (mv *mediaValidator) contentTypeValid(media *domain.Media) error {
	buffer := make([]byte, 512)
	if _, err := media.File.Read(buffer); err != nil {
		return err
	}
	if err := resetReaderPosition(media); err != nil {
		return err
	}
	contentType := http.DetectContentType(buffer)
	if contentType != "image/jpeg" && contentType != "image/png" {
		return errs.Errorf(
			errs.EINVALID,
			"Media %s invalid content-type, must be image/jpeg or image/png.",
			media.Filename,
		)
	}
	media.Mimetype = contentType
	media.Type = domain.MediaTypeImage
	return nil
}

// contentTypeExtensionMatch makes sure that the filename extension and the sniffed content type match.
func (mv *mediaValidator) contentTypeExtensionMatch(media *domain.Media) error {
	contentType := strings.TrimPrefix(media.Mimetype, "image/")
	ext := strings.TrimPrefix(media.Extension, ".")
	if contentType != ext {
		return errs.Errorf(
			errs.EINVALID,
			"Media %s content-type %s does not match extension %s.",
			media.Filename,
			media.Mimetype,
			media.Extension,
		)
	}
	return nil
}

// extensionValid makes sure that the file has the extension .jpeg, .jpg or
// .png. A .jpg extension is renamed to .jpeg for consistency.
func (mv *mediaValidator) extensionValid(media *domain.Media) error {
	ext := strings.ToLower(filepath.Ext(media.Filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return errs.Errorf(
			errs.EINVALID,
			"Media %s invalid extension, must be .jpeg or .png",
			media.Filename,
		)
	}
	if ext == ".jpg" {
		ext = ".jpeg"
	}
	media.Extension = ext
	return nil
}

// storageKeyUnique assigns the storage key the blob will live under.
// Timestamps collide under concurrent uploads, so the key is a uuid.
func (mv *mediaValidator) storageKeyUnique(media *domain.Media) error {
	media.CDN = "tweet/" + uuid.NewString() + media.Extension
	return nil
}

// resetReaderPosition seeks back to the beginning of the file,
// so that subsequent reads can properly read from the beginning again.
func resetReaderPosition(media *domain.Media) error {
	_, err := media.File.Seek(0, io.SeekStart)
	return err
}

// ByID retrieves a single Media record by ID.
// If the record doesn't exist, it returns ENOTFOUND.
func (mg *mediaGorm) ByID(id int) (*domain.Media, error) {
	var media domain.Media
	err := mg.db.First(&media, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "Media doesn't exist!")
		}
		return nil, err
	}
	return &media, nil
}

// ByIDs retrieves the Media records matching the given IDs, restricted to the
// given column subset. IDs that don't resolve are simply absent from the result.
func (mg *mediaGorm) ByIDs(ids []int, fields ...string) ([]domain.Media, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var media []domain.Media
	db := mg.db
	if len(fields) > 0 {
		db = db.Select(fields)
	}
	if err := db.Where("id IN ?", ids).Find(&media).Error; err != nil {
		return nil, err
	}
	return media, nil
}

// Create writes the blob to the storage backend, then stores the Media record.
func (mg *mediaGorm) Create(ctx context.Context, media *domain.Media) error {
	err := mg.store.Put(ctx, media.CDN, media.Mimetype, media.File, media.Size)
	if err != nil {
		return err
	}
	media.Path = mg.store.Path(media.CDN)
	media.URL = mg.store.URL(media.CDN)
	return mg.db.Create(media).Error
}

// DeletePermanently removes the blob from the storage backend and erases the
// Media record, bypassing soft deletion. Both removals are irreversible.
func (mg *mediaGorm) DeletePermanently(ctx context.Context, media *domain.Media) error {
	if err := mg.store.Remove(ctx, media.CDN); err != nil {
		return err
	}
	return mg.db.Unscoped().Delete(media).Error
}
