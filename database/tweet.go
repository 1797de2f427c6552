package database

import (
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"chirper/domain"
	"chirper/errs"
)

// Ensure the TweetService struct properly implements the domain.TweetService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.TweetService = &TweetService{}

// NewTweetService returns an instance of TweetService.
func NewTweetService(db *gorm.DB) *TweetService {
	return &TweetService{
		tweetValidator{
			tweetGorm{
				db:    db,
				media: mediaGorm{db: db},
			},
		},
	}
}

// TweetService manages Tweets.
// It implements the domain.TweetService interface.
type TweetService struct {
	tweetValidator
}

// tweetValidator runs validations on incoming Tweet data.
// On success, it passes the data on to tweetGorm.
// Otherwise, it returns the error of the validation that has failed.
type tweetValidator struct {
	tweetGorm
}

// tweetGorm runs CRUD operations on the database using incoming Tweet data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type tweetGorm struct {
	db *gorm.DB

	// media resolves attachment references. Only its lookups are used here;
	// it never touches blob storage.
	media mediaGorm
}

// ownerFields is the restricted subset of user columns hydrated into
// responses, mirroring what list views need.
var ownerFields = []string{"id", "name", "username", "profile", "bio"}

// feedMediaFields and detailMediaFields are the two per-endpoint attachment
// projections: feeds serve path/url/mimetype, the single tweet view serves
// type/size/cdn.
var (
	feedMediaFields   = []string{"id", "path", "url", "mimetype"}
	detailMediaFields = []string{"id", "type", "size", "cdn"}
)

// preloadOwner restricts an owner preload to the response field subset.
func preloadOwner(db *gorm.DB) *gorm.DB {
	return db.Select(ownerFields)
}

// Create runs validations needed for creating new Tweet database records.
func (tv *tweetValidator) Create(tweet *domain.Tweet) error {
	err := runTweetValFns(tweet,
		tv.userIDValid,
		tv.contentMinLength,
		tv.contentMaxLength)
	if err != nil {
		return err
	}
	return tv.tweetGorm.Create(tweet)
}

// Update runs validations on the updatable fields, then passes them on.
func (tv *tweetValidator) Update(id int, upd *domain.TweetUpdate) (*domain.Tweet, error) {
	if id <= 0 {
		return nil, errs.Errorf(errs.EINVALID, "Tweet ID is invalid.")
	}
	if upd.Content != nil {
		probe := domain.Tweet{Content: *upd.Content}
		if err := runTweetValFns(&probe, tv.contentMinLength, tv.contentMaxLength); err != nil {
			return nil, err
		}
	}
	return tv.tweetGorm.Update(id, upd)
}

// Delete runs validations needed for deleting existing Tweet database records.
func (tv *tweetValidator) Delete(id int) error {
	if id <= 0 {
		return errs.Errorf(errs.EINVALID, "Tweet ID is invalid.")
	}
	return tv.tweetGorm.Delete(id)
}

// runTweetValFns runs any number of functions of type tweetValFn on the passed in Tweet object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runTweetValFns(tweet *domain.Tweet, fns ...tweetValFn) error {
	for _, fn := range fns {
		if err := fn(tweet); err != nil {
			return err
		}
	}
	return nil
}

// A tweetValFn is any function that takes in a pointer to a domain.Tweet object and returns an error.
type tweetValFn = func(tweet *domain.Tweet) error

// contentMinLength makes sure that the Tweet's content is not empty.
func (tv *tweetValidator) contentMinLength(tweet *domain.Tweet) error {
	if strings.ReplaceAll(tweet.Content, " ", "") == "" {
		return errs.Errorf(errs.EINVALID, "Tweet content must not be empty.")
	}
	return nil
}

// contentMaxLength makes sure that the Tweet's content does not exceed the maximum content length.
func (tv *tweetValidator) contentMaxLength(tweet *domain.Tweet) error {
	if utf8.RuneCountInString(tweet.Content) > domain.ContentMaxLength {
		return errs.Errorf(errs.EINVALID, "Tweet content max length is 280 characters.")
	}
	return nil
}

// userIDValid ensures that the owner reference is not empty.
func (tv *tweetValidator) userIDValid(tweet *domain.Tweet) error {
	if tweet.UserID <= 0 {
		return errs.Errorf(errs.EINVALID, "User ID is invalid.")
	}
	return nil
}

// ByID retrieves a single Tweet by ID, with its attachments hydrated using
// the extended field subset of the detail view.
// If the record doesn't exist, it returns ENOTFOUND.
func (tg *tweetGorm) ByID(id int) (*domain.Tweet, error) {
	var tweet domain.Tweet
	err := tg.db.First(&tweet, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "Tweet doesn't exist!")
		}
		return nil, err
	}
	if err := tg.hydrateMedia(detailMediaFields, &tweet); err != nil {
		return nil, err
	}
	return &tweet, nil
}

// Feed retrieves all tweets hydrated with owner and attachments,
// newest first. Ties keep storage order.
func (tg *tweetGorm) Feed() ([]domain.Tweet, error) {
	return tg.feed(tg.db)
}

// FeedByFollowed retrieves the tweets of all users the given user follows,
// hydrated and sorted like Feed.
func (tg *tweetGorm) FeedByFollowed(followerID int) ([]domain.Tweet, error) {
	return tg.feed(tg.db.
		Joins("JOIN follows ON follows.followed_id = tweets.user_id").
		Where("follows.follower_id = ?", followerID))
}

// FeedByUserID retrieves the tweets of one user, hydrated and sorted like Feed.
func (tg *tweetGorm) FeedByUserID(userID int) ([]domain.Tweet, error) {
	return tg.feed(tg.db.Where("user_id = ?", userID))
}

func (tg *tweetGorm) feed(db *gorm.DB) ([]domain.Tweet, error) {
	var feed []domain.Tweet
	err := db.
		Preload("User", preloadOwner).
		Order("tweets.created_at desc, tweets.id asc").
		Find(&feed).Error
	if err != nil {
		return nil, err
	}
	if err := tg.hydrateMediaAll(feedMediaFields, feed); err != nil {
		return nil, err
	}
	return feed, nil
}

// ByUserID retrieves the tweets of one user as bare records, in storage
// order, with no hydration. This feeds the minimal "my tweets" listing.
func (tg *tweetGorm) ByUserID(userID int) ([]domain.Tweet, error) {
	var tweets []domain.Tweet
	err := tg.db.Where("user_id = ?", userID).Find(&tweets).Error
	if err != nil {
		return nil, err
	}
	return tweets, nil
}

// Create stores the data from the Tweet object in a new database record,
// then hydrates owner and attachments for the response.
func (tg *tweetGorm) Create(tweet *domain.Tweet) error {
	if err := tg.db.Create(tweet).Error; err != nil {
		return err
	}
	if err := tg.db.Preload("User", preloadOwner).First(tweet, "id = ?", tweet.ID).Error; err != nil {
		return err
	}
	return tg.hydrateMedia(feedMediaFields, tweet)
}

// Update verifies that the tweet exists, applies the updatable fields, and
// returns the record re-fetched with owner and attachments hydrated.
func (tg *tweetGorm) Update(id int, upd *domain.TweetUpdate) (*domain.Tweet, error) {
	var tweet domain.Tweet
	if err := tg.db.First(&tweet, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "Tweet doesn't exist!")
		}
		return nil, err
	}
	if upd.Content != nil {
		tweet.Content = *upd.Content
	}
	if upd.Attachments != nil {
		tweet.Attachments = *upd.Attachments
	}
	if err := tg.db.Save(&tweet).Error; err != nil {
		return nil, err
	}

	var updated domain.Tweet
	if err := tg.db.Preload("User", preloadOwner).First(&updated, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tg.hydrateMedia(feedMediaFields, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete soft-deletes a Tweet record, its replies and its like ledger rows.
// Likes are removed for real so the unique (tweet, user) index can never
// collide with a leftover row. Media cleanup is the caller's cascade; the
// tweet core has no handle on blob storage.
func (tg *tweetGorm) Delete(id int) error {
	if err := tg.db.Delete(&domain.Tweet{}, "id = ?", id).Error; err != nil {
		return err
	}
	if err := tg.db.Delete(&domain.Like{}, "tweet_id = ?", id).Error; err != nil {
		return err
	}
	return tg.db.Delete(&domain.Reply{}, "tweet_id = ?", id).Error
}

// hydrateMedia resolves the attachment references of the given tweets into
// Media objects restricted to the given column subset, preserving reference
// order. References that no longer resolve are skipped silently; attachment
// existence is only ever checked lazily.
func (tg *tweetGorm) hydrateMedia(fields []string, tweets ...*domain.Tweet) error {
	var ids []int
	for _, tweet := range tweets {
		ids = append(ids, tweet.Attachments...)
	}
	if len(ids) == 0 {
		return nil
	}
	media, err := tg.media.ByIDs(ids, fields...)
	if err != nil {
		return err
	}
	byID := make(map[int]domain.Media, len(media))
	for _, m := range media {
		byID[m.ID] = m
	}
	for _, tweet := range tweets {
		tweet.Media = make([]domain.Media, 0, len(tweet.Attachments))
		for _, ref := range tweet.Attachments {
			if m, ok := byID[ref]; ok {
				tweet.Media = append(tweet.Media, m)
			}
		}
	}
	return nil
}

func (tg *tweetGorm) hydrateMediaAll(fields []string, tweets []domain.Tweet) error {
	ptrs := make([]*domain.Tweet, len(tweets))
	for i := range tweets {
		ptrs[i] = &tweets[i]
	}
	return tg.hydrateMedia(fields, ptrs...)
}
