package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"chirper/auth"
	"chirper/cache"
	"chirper/domain"
	"chirper/errs"
)

// Server provides the http functionality of the app: routing, request
// handling and middleware. It identifies the caller before handing things
// over to one of the database services.
type Server struct {
	router *mux.Router
	us     domain.UserService
	ts     domain.TweetService
	rs     domain.ReplyService
	ls     domain.LikeService
	ms     domain.MediaService
	fs     domain.FollowService

	// tweets is an optional read-through cache for the single tweet
	// endpoint. nil means caching is disabled.
	tweets *cache.TweetCache
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the services passed in.
func NewServer(
	us domain.UserService,
	ts domain.TweetService,
	rs domain.ReplyService,
	ls domain.LikeService,
	ms domain.MediaService,
	fs domain.FollowService,
	tweets *cache.TweetCache,
) *Server {
	s := &Server{
		router: mux.NewRouter(),
		us:     us,
		ts:     ts,
		rs:     rs,
		ls:     ls,
		ms:     ms,
		fs:     fs,
		tweets: tweets,
	}

	s.registerAuthRoutes(s.router)
	s.registerTweetRoutes(s.router)
	s.registerReplyRoutes(s.router)
	s.registerMediaRoutes(s.router)
	s.registerFollowRoutes(s.router)

	s.router.Use(setContentTypeJSON, s.checkUser)
	return s
}

// ServeHTTP makes the Server a http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int) {
	addr := ":" + strconv.Itoa(port)
	logrus.WithField("addr", addr).Info("server listening")
	logrus.Fatal(http.ListenAndServe(addr, s.router))
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// The checkUser middleware resolves the remember token cookie into a user and
// attaches it to the request context. Requests without a valid cookie pass
// through anonymously; requireAuth decides what that means per route.
func (s *Server) checkUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("remember_token")
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.us.ByRemember(cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		r = r.WithContext(auth.SetUser(r.Context(), user))
		next.ServeHTTP(w, r)
	})
}

// requireAuth guards a handler against anonymous requests.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.GetUser(r.Context()) == nil {
			errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You must be logged in."))
			return
		}
		next.ServeHTTP(w, r)
	}
}
