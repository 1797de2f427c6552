package database

import (
	"errors"

	"gorm.io/gorm"

	"chirper/domain"
	"chirper/errs"
)

// Ensure the LikeService struct properly implements the domain.LikeService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.LikeService = &LikeService{}

// NewLikeService returns an instance of LikeService.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{
		likeValidator{
			likeGorm{
				db: db,
			},
		},
	}
}

// LikeService manages Likes.
// It implements the domain.LikeService interface.
type LikeService struct {
	likeValidator
}

// likeValidator runs validations on incoming Like data.
// On success, it passes the data on to likeGorm.
// Otherwise, it returns the error of the validation that has failed.
type likeValidator struct {
	likeGorm
}

// likeGorm runs CRUD operations on the database using incoming Like data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type likeGorm struct {
	db *gorm.DB
}

func (lv *likeValidator) Toggle(tweetID, userID int) (int, error) {
	if tweetID <= 0 {
		return 0, errs.Errorf(errs.EINVALID, "Tweet ID is invalid.")
	}
	if userID <= 0 {
		return 0, errs.Errorf(errs.EINVALID, "User ID is invalid.")
	}
	return lv.likeGorm.Toggle(tweetID, userID)
}

func (lv *likeValidator) LikedBy(tweetID, userID int) (bool, error) {
	if tweetID <= 0 || userID <= 0 {
		return false, errs.Errorf(errs.EINVALID, "Invalid Id format.")
	}
	return lv.likeGorm.LikedBy(tweetID, userID)
}

// Toggle flips the like state for a (tweet, user) pair and returns the
// tweet's new like count. The whole flip runs in one transaction: look up the
// existing like, delete it (unlike) or create one (like), recount the ledger
// and persist the count onto the tweet. Recounting instead of incrementing
// keeps the counter from drifting should it ever desynchronize.
//
// Two toggles racing on the same pair can both observe "no existing like".
// The unique index on (tweet_id, user_id) turns the second insert into a
// duplicate key conflict, which is handled as the unlike path, so the pair
// can never hold two likes and the count can never double.
func (lg *likeGorm) Toggle(tweetID, userID int) (int, error) {
	var count int64
	err := lg.db.Transaction(func(tx *gorm.DB) error {
		var tweet domain.Tweet
		if err := tx.First(&tweet, "id = ?", tweetID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errs.Errorf(errs.ENOTFOUND, "Tweet doesn't exist!")
			}
			return err
		}

		var like domain.Like
		err := tx.First(&like, "tweet_id = ? AND user_id = ?", tweetID, userID).Error
		switch {
		case err == nil:
			if err := tx.Delete(&like).Error; err != nil {
				return err
			}
		case err == gorm.ErrRecordNotFound:
			// The insert runs under a savepoint. A unique violation aborts
			// the surrounding transaction on postgres, so the conflict path
			// has to roll back to the savepoint before it can keep going.
			if err := tx.SavePoint("like_insert").Error; err != nil {
				return err
			}
			createErr := tx.Create(&domain.Like{TweetID: tweetID, UserID: userID}).Error
			if createErr != nil {
				if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
					return createErr
				}
				if err := tx.RollbackTo("like_insert").Error; err != nil {
					return err
				}
				// Lost the race against a concurrent like; treat as unlike.
				if err := tx.Where("tweet_id = ? AND user_id = ?", tweetID, userID).
					Delete(&domain.Like{}).Error; err != nil {
					return err
				}
			}
		default:
			return err
		}

		if err := tx.Model(&domain.Like{}).Where("tweet_id = ?", tweetID).Count(&count).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Tweet{}).Where("id = ?", tweetID).
			Update("like_count", count).Error
	})
	if err != nil {
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			return 0, err
		}
		return 0, errs.Errorf(errs.EINVALID, "Tweet couldn't like!")
	}
	return int(count), nil
}

// LikedBy reports whether the given user currently likes the given tweet.
func (lg *likeGorm) LikedBy(tweetID, userID int) (bool, error) {
	var count int64
	err := lg.db.Model(&domain.Like{}).
		Where("tweet_id = ? AND user_id = ?", tweetID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
