package database

import (
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"chirper/domain"
	"chirper/errs"
)

// Ensure the ReplyService struct properly implements the domain.ReplyService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.ReplyService = &ReplyService{}

// NewReplyService returns an instance of ReplyService.
func NewReplyService(db *gorm.DB) *ReplyService {
	return &ReplyService{
		replyValidator{
			replyGorm{
				db:    db,
				media: mediaGorm{db: db},
			},
		},
	}
}

// ReplyService manages Replies.
// It implements the domain.ReplyService interface.
type ReplyService struct {
	replyValidator
}

// replyValidator runs validations on incoming Reply data.
// On success, it passes the data on to replyGorm.
// Otherwise, it returns the error of the validation that has failed.
type replyValidator struct {
	replyGorm
}

// replyGorm runs CRUD operations on the database using incoming Reply data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type replyGorm struct {
	db *gorm.DB

	// media resolves attachment references, lookups only.
	media mediaGorm
}

// Create runs validations needed for creating new Reply database records.
// The parent references are taken as given; whether they resolve is not
// checked here.
func (rv *replyValidator) Create(reply *domain.Reply) error {
	err := runReplyValFns(reply,
		rv.userIDValid,
		rv.contentMinLength,
		rv.contentMaxLength)
	if err != nil {
		return err
	}
	return rv.replyGorm.Create(reply)
}

// runReplyValFns runs any number of functions of type replyValFn on the passed in Reply object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runReplyValFns(reply *domain.Reply, fns ...replyValFn) error {
	for _, fn := range fns {
		if err := fn(reply); err != nil {
			return err
		}
	}
	return nil
}

// A replyValFn is any function that takes in a pointer to a domain.Reply object and returns an error.
type replyValFn = func(reply *domain.Reply) error

// contentMinLength makes sure that the Reply's content is not empty.
func (rv *replyValidator) contentMinLength(reply *domain.Reply) error {
	if strings.ReplaceAll(reply.Content, " ", "") == "" {
		return errs.Errorf(errs.EINVALID, "Reply content must not be empty.")
	}
	return nil
}

// contentMaxLength makes sure that the Reply's content does not exceed the maximum content length.
func (rv *replyValidator) contentMaxLength(reply *domain.Reply) error {
	if utf8.RuneCountInString(reply.Content) > domain.ContentMaxLength {
		return errs.Errorf(errs.EINVALID, "Reply content max length is 280 characters.")
	}
	return nil
}

// userIDValid ensures that the owner reference is not empty.
func (rv *replyValidator) userIDValid(reply *domain.Reply) error {
	if reply.UserID <= 0 {
		return errs.Errorf(errs.EINVALID, "User ID is invalid.")
	}
	return nil
}

// Create stores the data from the Reply object in a new database record,
// then hydrates its attachments for the response. The owner is not hydrated
// on this path.
func (rg *replyGorm) Create(reply *domain.Reply) error {
	if err := rg.db.Create(reply).Error; err != nil {
		return err
	}
	return rg.hydrateMedia(reply)
}

// ByTweetID retrieves all replies under a top-level tweet as one flat list,
// hydrated with their attachments, in storage order.
func (rg *replyGorm) ByTweetID(tweetID int) ([]domain.Reply, error) {
	var replies []domain.Reply
	err := rg.db.Where("tweet_id = ?", tweetID).Find(&replies).Error
	if err != nil {
		return nil, err
	}
	ptrs := make([]*domain.Reply, len(replies))
	for i := range replies {
		ptrs[i] = &replies[i]
	}
	if err := rg.hydrateMedia(ptrs...); err != nil {
		return nil, err
	}
	return replies, nil
}

// hydrateMedia resolves attachment references into Media objects restricted
// to the feed field subset, preserving order and skipping dangling refs.
func (rg *replyGorm) hydrateMedia(replies ...*domain.Reply) error {
	var ids []int
	for _, reply := range replies {
		ids = append(ids, reply.Attachments...)
	}
	if len(ids) == 0 {
		return nil
	}
	media, err := rg.media.ByIDs(ids, feedMediaFields...)
	if err != nil {
		return err
	}
	byID := make(map[int]domain.Media, len(media))
	for _, m := range media {
		byID[m.ID] = m
	}
	for _, reply := range replies {
		reply.Media = make([]domain.Media, 0, len(reply.Attachments))
		for _, ref := range reply.Attachments {
			if m, ok := byID[ref]; ok {
				reply.Media = append(reply.Media, m)
			}
		}
	}
	return nil
}
