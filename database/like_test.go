package database

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"chirper/domain"
	"chirper/errs"
)

func TestLikeToggle(t *testing.T) {
	db := testDB(t)
	ts := NewTweetService(db)
	ls := NewLikeService(db)
	user := createTestUser(t, db, "alice")
	tweet := createTestTweet(t, ts, user.ID, "hello world")

	count, err := ls.Toggle(tweet.ID, user.ID)
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if count != 1 {
		t.Fatalf("count after like = %d, want 1", count)
	}
	liked, err := ls.LikedBy(tweet.ID, user.ID)
	if err != nil {
		t.Fatalf("likedBy: %v", err)
	}
	if !liked {
		t.Fatal("likedBy = false after like, want true")
	}

	got, err := ts.ByID(tweet.ID)
	if err != nil {
		t.Fatalf("byID: %v", err)
	}
	if got.LikeCount != 1 {
		t.Fatalf("stored like count = %d, want 1", got.LikeCount)
	}

	count, err = ls.Toggle(tweet.ID, user.ID)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if count != 0 {
		t.Fatalf("count after unlike = %d, want 0", count)
	}
	liked, err = ls.LikedBy(tweet.ID, user.ID)
	if err != nil {
		t.Fatalf("likedBy: %v", err)
	}
	if liked {
		t.Fatal("likedBy = true after unlike, want false")
	}

	var ledger int64
	if err := db.Model(&domain.Like{}).Where("tweet_id = ?", tweet.ID).Count(&ledger).Error; err != nil {
		t.Fatalf("count ledger: %v", err)
	}
	if ledger != 0 {
		t.Fatalf("ledger rows after unlike = %d, want 0", ledger)
	}
}

// The stored counter must always equal the number of ledger rows, no matter
// how many users toggle in which order.
func TestLikeToggleCountMatchesLedger(t *testing.T) {
	db := testDB(t)
	ts := NewTweetService(db)
	ls := NewLikeService(db)
	owner := createTestUser(t, db, "owner")
	tweet := createTestTweet(t, ts, owner.ID, "count me")

	users := []*domain.User{
		createTestUser(t, db, "bob"),
		createTestUser(t, db, "carol"),
		createTestUser(t, db, "dave"),
	}
	for i, u := range users {
		count, err := ls.Toggle(tweet.ID, u.ID)
		if err != nil {
			t.Fatalf("toggle user %d: %v", u.ID, err)
		}
		if count != i+1 {
			t.Fatalf("count after %d likes = %d", i+1, count)
		}
	}

	count, err := ls.Toggle(tweet.ID, users[1].ID)
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if count != 2 {
		t.Fatalf("count after one unlike = %d, want 2", count)
	}

	var ledger int64
	if err := db.Model(&domain.Like{}).Where("tweet_id = ?", tweet.ID).Count(&ledger).Error; err != nil {
		t.Fatalf("count ledger: %v", err)
	}
	if int(ledger) != count {
		t.Fatalf("stored count %d != ledger rows %d", count, ledger)
	}

	got, err := ts.ByID(tweet.ID)
	if err != nil {
		t.Fatalf("byID: %v", err)
	}
	if got.LikeCount != count {
		t.Fatalf("tweet like count %d != toggle result %d", got.LikeCount, count)
	}
}

// The unique index keeps a (tweet, user) pair from ever holding two likes.
func TestLikeUniquePerUser(t *testing.T) {
	db := testDB(t)
	ts := NewTweetService(db)
	user := createTestUser(t, db, "alice")
	tweet := createTestTweet(t, ts, user.ID, "only once")

	if err := db.Create(&domain.Like{TweetID: tweet.ID, UserID: user.ID}).Error; err != nil {
		t.Fatalf("first like: %v", err)
	}
	if err := db.Create(&domain.Like{TweetID: tweet.ID, UserID: user.ID}).Error; err == nil {
		t.Fatal("duplicate like insert succeeded, want constraint violation")
	}
}

// Two toggles racing on the same pair: the loser's insert hits the unique
// index and must come out as an unlike, not as an error. The competing row is
// slipped in right before the toggle's own insert, the way a concurrent
// toggle committing first would.
func TestLikeToggleInsertConflict(t *testing.T) {
	db := testDB(t)
	ts := NewTweetService(db)
	ls := NewLikeService(db)
	user := createTestUser(t, db, "alice")
	tweet := createTestTweet(t, ts, user.ID, "contended")

	injected := false
	err := db.Callback().Create().Before("gorm:create").Register("competing_like", func(tx *gorm.DB) {
		if injected {
			return
		}
		if _, ok := tx.Statement.Dest.(*domain.Like); !ok {
			return
		}
		injected = true
		err := tx.Session(&gorm.Session{NewDB: true}).
			Exec("INSERT INTO likes (tweet_id, user_id, created_at) VALUES (?, ?, ?)",
				tweet.ID, user.ID, time.Now()).Error
		if err != nil {
			t.Errorf("inject competing like: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	count, err := ls.Toggle(tweet.ID, user.ID)
	if err != nil {
		t.Fatalf("toggle lost the race but errored: %v", err)
	}
	if !injected {
		t.Fatal("competing like never injected, conflict path not exercised")
	}
	if count != 0 {
		t.Fatalf("count after conflicting toggle = %d, want 0", count)
	}

	var ledger int64
	if err := db.Model(&domain.Like{}).Where("tweet_id = ?", tweet.ID).Count(&ledger).Error; err != nil {
		t.Fatalf("count ledger: %v", err)
	}
	if ledger != 0 {
		t.Fatalf("ledger rows after conflicting toggle = %d, want 0", ledger)
	}

	got, err := ts.ByID(tweet.ID)
	if err != nil {
		t.Fatalf("byID: %v", err)
	}
	if got.LikeCount != 0 {
		t.Fatalf("stored like count = %d, want 0", got.LikeCount)
	}
}

func TestLikeToggleMissingTweet(t *testing.T) {
	db := testDB(t)
	ls := NewLikeService(db)
	user := createTestUser(t, db, "alice")

	_, err := ls.Toggle(99999, user.ID)
	if errs.ErrorCode(err) != errs.ENOTFOUND {
		t.Fatalf("toggle on missing tweet: code = %v, want ENOTFOUND", errs.ErrorCode(err))
	}
}

func TestLikeToggleInvalidIDs(t *testing.T) {
	db := testDB(t)
	ls := NewLikeService(db)

	if _, err := ls.Toggle(0, 1); errs.ErrorCode(err) != errs.EINVALID {
		t.Fatalf("toggle with tweet id 0: code = %v, want EINVALID", errs.ErrorCode(err))
	}
	if _, err := ls.Toggle(1, 0); errs.ErrorCode(err) != errs.EINVALID {
		t.Fatalf("toggle with user id 0: code = %v, want EINVALID", errs.ErrorCode(err))
	}
	if _, err := ls.LikedBy(0, 1); errs.ErrorCode(err) != errs.EINVALID {
		t.Fatalf("likedBy with tweet id 0: code = %v, want EINVALID", errs.ErrorCode(err))
	}
}
