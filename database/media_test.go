package database

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chirper/domain"
	"chirper/errs"
	"chirper/storage"
)

// memoryFile lets a byte slice stand in for an uploaded multipart file.
type memoryFile struct {
	*bytes.Reader
}

func (memoryFile) Close() error { return nil }

var _ multipart.File = memoryFile{}

// pngFile builds an upload that sniffs as image/png.
func pngFile(extra int) multipart.File {
	content := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, extra)...)
	return memoryFile{bytes.NewReader(content)}
}

func TestMediaCreate(t *testing.T) {
	db := testDB(t)
	store := storage.NewDisk(filepath.Join(t.TempDir(), "media"))
	ms := NewMediaService(db, store)
	user := createTestUser(t, db, "alice")

	media := &domain.Media{
		UserID:   user.ID,
		File:     pngFile(100),
		Filename: "cat.png",
	}
	if err := ms.Create(context.Background(), media); err != nil {
		t.Fatalf("create: %v", err)
	}
	if media.ID == 0 {
		t.Fatal("media got no id")
	}
	if media.Mimetype != "image/png" || media.Type != domain.MediaTypeImage {
		t.Fatalf("sniffed %q/%q, want image/png image", media.Mimetype, media.Type)
	}
	if media.Size != 108 {
		t.Fatalf("size = %d, want 108", media.Size)
	}
	if !strings.HasPrefix(media.CDN, "tweet/") || !strings.HasSuffix(media.CDN, ".png") {
		t.Fatalf("unexpected storage key %q", media.CDN)
	}
	if media.Path == "" || media.URL == "" {
		t.Fatal("path or url not set")
	}

	// The blob must actually be on disk.
	if _, err := os.Stat(media.Path); err != nil {
		t.Fatalf("blob not stored: %v", err)
	}

	got, err := ms.ByID(media.ID)
	if err != nil {
		t.Fatalf("byID: %v", err)
	}
	if got.CDN != media.CDN {
		t.Fatalf("stored key %q, want %q", got.CDN, media.CDN)
	}
}

func TestMediaCreateValidations(t *testing.T) {
	db := testDB(t)
	store := storage.NewDisk(filepath.Join(t.TempDir(), "media"))
	ms := NewMediaService(db, store)

	cases := []struct {
		name  string
		media domain.Media
	}{
		{"bad extension", domain.Media{File: pngFile(10), Filename: "cat.gif"}},
		{"not an image", domain.Media{File: memoryFile{bytes.NewReader([]byte("just some text, no image signature"))}, Filename: "cat.png"}},
		{"extension mismatch", domain.Media{File: pngFile(10), Filename: "cat.jpg"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ms.Create(context.Background(), &tc.media)
			if errs.ErrorCode(err) != errs.EINVALID {
				t.Fatalf("code = %v, want EINVALID", errs.ErrorCode(err))
			}
		})
	}
}

func TestMediaCreateRejectsOversized(t *testing.T) {
	db := testDB(t)
	store := storage.NewDisk(filepath.Join(t.TempDir(), "media"))
	ms := NewMediaService(db, store)

	media := &domain.Media{
		File:     pngFile(int(domain.MaxUploadSize)),
		Filename: "huge.png",
	}
	err := ms.Create(context.Background(), media)
	if errs.ErrorCode(err) != errs.EINVALID {
		t.Fatalf("code = %v, want EINVALID", errs.ErrorCode(err))
	}
}

func TestMediaByIDs(t *testing.T) {
	db := testDB(t)
	store := storage.NewDisk(filepath.Join(t.TempDir(), "media"))
	ms := NewMediaService(db, store)
	user := createTestUser(t, db, "alice")
	first := createTestMedia(t, db, user.ID, "tweet/a.png")
	createTestMedia(t, db, user.ID, "tweet/b.png")
	third := createTestMedia(t, db, user.ID, "tweet/c.png")

	got, err := ms.ByIDs([]int{first.ID, 98765, third.ID}, "id", "url")
	if err != nil {
		t.Fatalf("byIDs: %v", err)
	}
	// The dangling id is simply absent from the result.
	if len(got) != 2 {
		t.Fatalf("length = %d, want 2", len(got))
	}
	for _, m := range got {
		if m.URL == "" {
			t.Fatal("selected column not loaded")
		}
		if m.CDN != "" || m.Mimetype != "" {
			t.Fatalf("unselected columns loaded: %+v", m)
		}
	}

	got, err = ms.ByIDs(nil)
	if err != nil {
		t.Fatalf("byIDs with no ids: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("length = %d, want 0", len(got))
	}
}

func TestMediaDeletePermanently(t *testing.T) {
	db := testDB(t)
	store := storage.NewDisk(filepath.Join(t.TempDir(), "media"))
	ms := NewMediaService(db, store)
	user := createTestUser(t, db, "alice")

	media := &domain.Media{
		UserID:   user.ID,
		File:     pngFile(50),
		Filename: "cat.png",
	}
	if err := ms.Create(context.Background(), media); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := ms.DeletePermanently(context.Background(), media); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := os.Stat(media.Path); !os.IsNotExist(err) {
		t.Fatal("blob still on disk after permanent delete")
	}
	if _, err := ms.ByID(media.ID); errs.ErrorCode(err) != errs.ENOTFOUND {
		t.Fatalf("record still found after permanent delete, code = %v", errs.ErrorCode(err))
	}
	var count int64
	if err := db.Unscoped().Model(&domain.Media{}).Where("id = ?", media.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("record survived unscoped, rows = %d", count)
	}
}
