package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"chirper/cache"
	"chirper/database"
	"chirper/http"
	"chirper/storage"
)

// main is the app's entry point.
func main() {
	config := LoadConfig()

	// Open a database connection and execute migrations.
	db := database.NewDB(config.Database.ConnectionInfo())
	if err := db.Open(); err != nil {
		logrus.WithError(err).Fatal("could not open database")
	}
	defer db.Close()

	// Pick the media blob backend.
	store, err := newStorage(config.Storage)
	if err != nil {
		logrus.WithError(err).Fatal("could not set up media storage")
	}

	// Start the database services.
	us := database.NewUserService(db.Gorm, config.Auth.HMACKey, config.Auth.Pepper)
	ts := database.NewTweetService(db.Gorm)
	rs := database.NewReplyService(db.Gorm)
	ls := database.NewLikeService(db.Gorm)
	ms := database.NewMediaService(db.Gorm, store)
	fs := database.NewFollowService(db.Gorm)

	// The tweet cache is optional; it runs only when redis is configured.
	var tweets *cache.TweetCache
	if config.Redis.Addr != "" {
		tweets = cache.NewTweetCache(config.Redis.Addr, config.Redis.Password, time.Minute)
		defer tweets.Close()
		logrus.WithField("addr", config.Redis.Addr).Info("tweet cache enabled")
	}

	// Set up a webserver and serve the app.
	server := http.NewServer(us, ts, rs, ls, ms, fs, tweets)
	server.Run(config.Port)
}

// newStorage constructs the configured blob storage backend.
func newStorage(cfg StorageConfig) (storage.Client, error) {
	if cfg.Backend == "s3" {
		return storage.NewS3(context.Background(), storage.S3Config{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Bucket:    cfg.Bucket,
		})
	}
	return storage.NewDisk(cfg.Dir), nil
}
