package domain

import "time"

// Follow represents a self-referential many-to-many relationship between two
// users. The FollowerID is the ID of the user that follows, the FollowedID
// the ID of the user being followed. The feed's "following" filter joins
// against this table.
type Follow struct {
	ID         int       `json:"id"`
	FollowerID int       `json:"-" gorm:"notNull;index"`
	Follower   *User     `json:"follower,omitempty"`
	FollowedID int       `json:"-" gorm:"notNull;index"`
	Followed   *User     `json:"followed,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FollowService is a set of methods to manipulate and work with the Follow model.
type FollowService interface {
	Create(follow *Follow) error
	Delete(follow *Follow) error
}
