package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"chirper/auth"
	"chirper/domain"
	"chirper/errs"
)

func (s *Server) registerMediaRoutes(r *mux.Router) {
	// Upload a media object to be referenced in a tweet's attachments.
	r.HandleFunc("/tweet/media", s.requireAuth(s.handleUploadMedia)).Methods("PUT")
}

// handleUploadMedia handles the route "PUT /tweet/media".
// It validates and stores the uploaded file, creates a Media record for it
// and returns that record, so the client can attach its id to a tweet.
func (s *Server) handleUploadMedia(w http.ResponseWriter, r *http.Request) {
	// One extra megabyte so an oversized file reaches the validator and
	// produces the proper error message instead of a parse failure.
	if err := r.ParseMultipartForm(domain.MaxUploadSize + 1<<20); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid multipart form."))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "A file is required."))
		return
	}
	defer file.Close()

	user := auth.GetUser(r.Context())
	media := domain.Media{
		UserID:   user.ID,
		File:     file,
		Filename: header.Filename,
	}
	if err := s.ms.Create(r.Context(), &media); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(&media); err != nil {
		errs.LogError(r, err)
	}
}
