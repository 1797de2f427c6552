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

func (s *Server) registerFollowRoutes(r *mux.Router) {
	r.HandleFunc("/follow/{followed_id:[0-9]+}", s.requireAuth(s.handleCreateFollow)).Methods("POST")
	r.HandleFunc("/unfollow/{followed_id:[0-9]+}", s.requireAuth(s.handleDeleteFollow)).Methods("DELETE")
}

// handleCreateFollow handles the route "POST /follow/{followed_id}".
// It makes the caller a follower of the given user.
func (s *Server) handleCreateFollow(w http.ResponseWriter, r *http.Request) {
	followedID, err := strconv.Atoi(mux.Vars(r)["followed_id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	follower := auth.GetUser(r.Context())
	follow := domain.Follow{
		FollowerID: follower.ID,
		FollowedID: followedID,
	}
	if err := s.fs.Create(&follow); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(&follow); err != nil {
		errs.LogError(r, err)
	}
}

// handleDeleteFollow handles the route "DELETE /unfollow/{followed_id}".
// It removes the caller's follow of the given user.
func (s *Server) handleDeleteFollow(w http.ResponseWriter, r *http.Request) {
	followedID, err := strconv.Atoi(mux.Vars(r)["followed_id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	follower := auth.GetUser(r.Context())
	follow := domain.Follow{
		FollowerID: follower.ID,
		FollowedID: followedID,
	}
	if err := s.fs.Delete(&follow); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
