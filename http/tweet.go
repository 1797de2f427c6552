package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"chirper/auth"
	"chirper/domain"
	"chirper/errs"
)

func (s *Server) registerTweetRoutes(r *mux.Router) {
	// The global feed, with the list/id projection flags and the
	// following filter.
	r.HandleFunc("/tweets", s.requireAuth(s.handleGetFeed)).Methods("GET")

	// The caller's own tweets.
	r.HandleFunc("/my-tweets", s.requireAuth(s.handleGetMyTweets)).Methods("GET")

	// The tweets of the user behind a handle.
	r.HandleFunc("/tweets/u/{username}", s.requireAuth(s.handleGetUserTweets)).Methods("GET")

	// Create a new tweet.
	r.HandleFunc("/tweet/new", s.requireAuth(s.handleCreateTweet)).Methods("POST")

	// Fetch, update, delete a single tweet.
	r.HandleFunc("/tweet/{id:[0-9]+}", s.requireAuth(s.handleGetTweet)).Methods("GET")
	r.HandleFunc("/tweet/{id:[0-9]+}", s.requireAuth(s.handleUpdateTweet)).Methods("PATCH")
	r.HandleFunc("/tweet/{id:[0-9]+}", s.requireAuth(s.handleDeleteTweet)).Methods("DELETE")

	// Toggle and inspect the caller's like on a tweet.
	r.HandleFunc("/tweet/{id:[0-9]+}/like", s.requireAuth(s.handleToggleLike)).Methods("PATCH")
	r.HandleFunc("/tweet/{id:[0-9]+}/likedByMe", s.requireAuth(s.handleLikedByMe)).Methods("GET")
}

// tweetBody is the accepted request body for creating a tweet. Everything
// else about a tweet is derived, not client-supplied.
type tweetBody struct {
	Content     string `json:"content"`
	Attachments []int  `json:"attachments"`
}

// listItem is the minimal list-mode projection: content always, the id only
// when the caller asks for it.
type listItem struct {
	ID      *int   `json:"id,omitempty"`
	Content string `json:"content"`
}

// projectList reduces tweets to the list-mode payload.
func projectList(tweets []domain.Tweet, includeID bool) []listItem {
	items := make([]listItem, len(tweets))
	for i := range tweets {
		items[i].Content = tweets[i].Content
		if includeID {
			id := tweets[i].ID
			items[i].ID = &id
		}
	}
	return items
}

// handleCreateTweet handles the route "POST /tweet/new".
// It creates a tweet owned by the caller and returns it hydrated.
func (s *Server) handleCreateTweet(w http.ResponseWriter, r *http.Request) {
	var body tweetBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	user := auth.GetUser(r.Context())
	tweet := domain.Tweet{
		UserID:      user.ID,
		Content:     body.Content,
		Attachments: body.Attachments,
	}
	if err := s.ts.Create(&tweet); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(&tweet); err != nil {
		errs.LogError(r, err)
	}
}

// handleGetFeed handles the route "GET /tweets".
// It returns all tweets hydrated and sorted newest first. With ?following
// set, only tweets of users the caller follows. The ?list and ?id flags
// switch to the minimal projection.
func (s *Server) handleGetFeed(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	listMode := query.Get("list") != ""
	includeID := query.Get("id") != ""
	following := query.Get("following") != ""

	user := auth.GetUser(r.Context())

	var tweets []domain.Tweet
	var err error
	if following {
		tweets, err = s.ts.FeedByFollowed(user.ID)
	} else {
		tweets, err = s.ts.Feed()
	}
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	s.encodeTweets(w, r, tweets, listMode, includeID)
}

// handleGetMyTweets handles the route "GET /my-tweets".
// It returns the caller's tweets as bare records, supporting the same
// projection flags as the feed.
func (s *Server) handleGetMyTweets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	listMode := query.Get("list") != ""
	includeID := query.Get("id") != ""

	user := auth.GetUser(r.Context())
	tweets, err := s.ts.ByUserID(user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	s.encodeTweets(w, r, tweets, listMode, includeID)
}

// handleGetUserTweets handles the route "GET /tweets/u/{username}".
// It resolves the handle to a user first, then returns that user's tweets
// hydrated and sorted like the feed.
func (s *Server) handleGetUserTweets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	listMode := query.Get("list") != ""
	includeID := query.Get("id") != ""

	tweetUser, err := s.us.ByUsername(mux.Vars(r)["username"])
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	tweets, err := s.ts.FeedByUserID(tweetUser.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	s.encodeTweets(w, r, tweets, listMode, includeID)
}

// encodeTweets writes a tweet list response, applying the list-mode
// projection when requested.
func (s *Server) encodeTweets(w http.ResponseWriter, r *http.Request, tweets []domain.Tweet, listMode, includeID bool) {
	var payload interface{} = tweets
	if listMode {
		payload = projectList(tweets, includeID)
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		errs.LogError(r, err)
	}
}

// handleGetTweet handles the route "GET /tweet/{id}".
// It returns a single tweet with its attachments hydrated using the extended
// field subset. Served from the cache when one is configured.
func (s *Server) handleGetTweet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	if s.tweets != nil {
		cached, err := s.tweets.Get(r.Context(), id)
		if err != nil {
			errs.LogError(r, err)
		} else if cached != nil {
			json.NewEncoder(w).Encode(cached)
			return
		}
	}

	tweet, err := s.ts.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if s.tweets != nil {
		if err := s.tweets.Set(r.Context(), tweet); err != nil {
			errs.LogError(r, err)
		}
	}

	if err := json.NewEncoder(w).Encode(tweet); err != nil {
		errs.LogError(r, err)
	}
}

// handleUpdateTweet handles the route "PATCH /tweet/{id}".
// Only content and attachments are updatable; everything else in the body
// is ignored.
func (s *Server) handleUpdateTweet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	var upd domain.TweetUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	tweet, err := s.ts.Update(id, &upd)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.invalidateTweet(r, id)

	if err := json.NewEncoder(w).Encode(tweet); err != nil {
		errs.LogError(r, err)
	}
}

// handleDeleteTweet handles the route "DELETE /tweet/{id}".
// It loads the tweet, permanently deletes every media object it references,
// then soft-deletes the tweet itself. A missing tweet stops the cascade
// before it touches anything.
func (s *Server) handleDeleteTweet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	tweet, err := s.ts.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	for _, mediaID := range tweet.Attachments {
		media, err := s.ms.ByID(mediaID)
		if err != nil {
			if errs.ErrorCode(err) == errs.ENOTFOUND {
				continue
			}
			errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Tweet couldn't delete!"))
			return
		}
		if err := s.ms.DeletePermanently(r.Context(), media); err != nil {
			errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Tweet couldn't delete!"))
			return
		}
	}

	if err := s.ts.Delete(id); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Tweet couldn't delete!"))
		return
	}
	s.invalidateTweet(r, id)

	w.WriteHeader(http.StatusOK)
}

// handleToggleLike handles the route "PATCH /tweet/{id}/like".
// It flips the caller's like on the tweet and returns the new like count.
func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	user := auth.GetUser(r.Context())
	likes, err := s.ls.Toggle(id, user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.invalidateTweet(r, id)

	json.NewEncoder(w).Encode(map[string]int{"likes": likes})
}

// handleLikedByMe handles the route "GET /tweet/{id}/likedByMe".
// It reports whether the caller currently likes the tweet.
func (s *Server) handleLikedByMe(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	if _, err := s.ts.ByID(id); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := auth.GetUser(r.Context())
	liked, err := s.ls.LikedBy(id, user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]bool{"liked": liked})
}

// invalidateTweet drops a tweet from the cache after a mutation.
func (s *Server) invalidateTweet(r *http.Request, id int) {
	if s.tweets == nil {
		return
	}
	if err := s.tweets.Invalidate(r.Context(), id); err != nil {
		errs.LogError(r, err)
	}
}
