package database

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"chirper/domain"
)

// testDB opens a throwaway sqlite database and runs the migrations on it.
// TranslateError is on, same as in production, so unique constraint
// violations surface as gorm.ErrDuplicatedKey.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:         "Test " + username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "irrelevant",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %q: %v", username, err)
	}
	return user
}

func createTestTweet(t *testing.T, ts *TweetService, userID int, content string) *domain.Tweet {
	t.Helper()
	tweet := &domain.Tweet{UserID: userID, Content: content}
	if err := ts.Create(tweet); err != nil {
		t.Fatalf("create tweet %q: %v", content, err)
	}
	return tweet
}

func createTestMedia(t *testing.T, db *gorm.DB, userID int, key string) *domain.Media {
	t.Helper()
	media := &domain.Media{
		UserID:   userID,
		Path:     "media/" + key,
		URL:      "/media/" + key,
		Mimetype: "image/png",
		Type:     domain.MediaTypeImage,
		Size:     1024,
		CDN:      key,
	}
	if err := db.Create(media).Error; err != nil {
		t.Fatalf("create media %q: %v", key, err)
	}
	return media
}
