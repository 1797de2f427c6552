package domain

import (
	"time"
)

// Like represents a many-to-many relationship between a User and a Tweet.
// A Like is created when a user likes a tweet they have not already liked,
// and destroyed when that same user repeats the action. The composite unique
// index guarantees at most one Like per (tweet, user) pair even when two
// toggles race each other.
type Like struct {
	ID      int `json:"id"`
	TweetID int `json:"tweet_id" gorm:"notNull;uniqueIndex:idx_tweet_user"`
	UserID  int `json:"user_id" gorm:"notNull;uniqueIndex:idx_tweet_user"`

	CreatedAt time.Time `json:"created_at"`
}

// LikeService is a set of methods to manipulate and work with the Like model.
// Toggle flips the like state for a (tweet, user) pair and returns the
// tweet's new like count.
type LikeService interface {
	Toggle(tweetID, userID int) (int, error)
	LikedBy(tweetID, userID int) (bool, error)
}
