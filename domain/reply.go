package domain

import (
	"time"

	"gorm.io/gorm"
)

// Reply is a tweet-shaped unit attached to a parent. TweetID references the
// top-level tweet the reply chain hangs off, ReplyToID the immediate parent,
// which may be the tweet itself or another reply. Keeping both makes
// "all replies under tweet X" a flat lookup instead of a tree walk.
type Reply struct {
	ID          int    `json:"id"`
	UserID      int    `json:"user_id"`
	User        *User  `json:"owner,omitempty"`
	TweetID     int    `json:"tweet_id"`
	ReplyToID   int    `json:"reply_to_id"`
	Content     string `json:"content"`
	Attachments []int  `json:"-" gorm:"serializer:json"`

	Media []Media `json:"attachments" gorm:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"`
}

// ReplyService is a set of methods to manipulate and work with the Reply model.
type ReplyService interface {
	Create(reply *Reply) error
	ByTweetID(tweetID int) ([]Reply, error)
}
