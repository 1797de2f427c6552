package domain

import (
	"time"

	"gorm.io/gorm"
)

const (
	// ContentMaxLength determines the maximum number of characters
	// a tweet or reply may contain.
	ContentMaxLength = 280
)

// Tweet is the root content unit. Attachments holds the ordered media
// references as stored; they only get resolved into Media objects when a
// response is being shaped. LikeCount is a denormalized cache of the like
// ledger, written exclusively by the like toggle.
type Tweet struct {
	ID          int    `json:"id"`
	UserID      int    `json:"user_id"`
	User        *User  `json:"owner,omitempty"`
	Content     string `json:"content"`
	Attachments []int  `json:"-" gorm:"serializer:json"`
	LikeCount   int    `json:"like_count"`

	// Media carries the hydrated attachments of a response. It shadows the
	// raw references in the json output, like a resolved populate would.
	Media []Media `json:"attachments" gorm:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"`
}

// TweetUpdate is the set of fields a caller may change on an existing tweet.
// Owner, timestamps and the like counter are deliberately not part of it.
type TweetUpdate struct {
	Content     *string `json:"content"`
	Attachments *[]int  `json:"attachments"`
}

// TweetService is a set of methods to manipulate and work with the Tweet model.
// The three feed methods return tweets hydrated with owner and attachments and
// sorted newest first. ByUserID returns bare records in storage order.
type TweetService interface {
	ByID(id int) (*Tweet, error)
	Feed() ([]Tweet, error)
	FeedByFollowed(followerID int) ([]Tweet, error)
	FeedByUserID(userID int) ([]Tweet, error)
	ByUserID(userID int) ([]Tweet, error)
	Create(tweet *Tweet) error
	Update(id int, upd *TweetUpdate) (*Tweet, error)
	Delete(id int) error
}
