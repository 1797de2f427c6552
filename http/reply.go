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

func (s *Server) registerReplyRoutes(r *mux.Router) {
	// Create a reply under a tweet. The first id is the top-level tweet the
	// reply chain belongs to, the second the tweet or reply being replied to.
	r.HandleFunc("/tweet/{tweet_id:[0-9]+}/reply/{reply_to_id:[0-9]+}",
		s.requireAuth(s.handleCreateReply)).Methods("POST")

	// List all replies under a tweet as one flat list.
	r.HandleFunc("/tweet/{id:[0-9]+}/replies",
		s.requireAuth(s.handleGetReplies)).Methods("GET")
}

// handleCreateReply handles the route "POST /tweet/{tweet_id}/reply/{reply_to_id}".
// It creates a reply owned by the caller and returns it with its attachments
// hydrated. Whether the parent references resolve is not checked.
func (s *Server) handleCreateReply(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tweetID, err := strconv.Atoi(vars["tweet_id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	replyToID, err := strconv.Atoi(vars["reply_to_id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	var body tweetBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	user := auth.GetUser(r.Context())
	reply := domain.Reply{
		UserID:      user.ID,
		TweetID:     tweetID,
		ReplyToID:   replyToID,
		Content:     body.Content,
		Attachments: body.Attachments,
	}
	if err := s.rs.Create(&reply); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(&reply); err != nil {
		errs.LogError(r, err)
	}
}

// handleGetReplies handles the route "GET /tweet/{id}/replies".
func (s *Server) handleGetReplies(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	replies, err := s.rs.ByTweetID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := json.NewEncoder(w).Encode(replies); err != nil {
		errs.LogError(r, err)
	}
}
