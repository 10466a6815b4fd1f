// Package devserver is an in-memory implementation of the schedule backend's
// HTTP contract for local development and client tests.
//
// Passwords are stored in plain text and the NLP endpoint only recognises
// HH:MM clock times. Do not expose it beyond localhost.
package devserver

import (
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/model"
)

const DefaultTokenTTL = 60 * time.Minute

type account struct {
	user     model.User
	password string
	verified bool
}

// Server holds all state in memory. It is safe for concurrent use.
type Server struct {
	mu       sync.Mutex
	accounts map[int64]*account
	byName   map[string]int64
	codes    map[string]string
	events   map[int64]model.Event
	nextUser int64
	nextEvt  int64

	secret []byte
	ttl    time.Duration
	zone   datekey.Zone
	log    *zap.Logger
	now    func() time.Time
}

type Option func(*Server)

func WithSecret(secret []byte) Option { return func(s *Server) { s.secret = secret } }

func WithTokenTTL(d time.Duration) Option { return func(s *Server) { s.ttl = d } }

func WithZone(z datekey.Zone) Option { return func(s *Server) { s.zone = z } }

func WithLogger(l *zap.Logger) Option { return func(s *Server) { s.log = l } }

func WithClock(now func() time.Time) Option { return func(s *Server) { s.now = now } }

func New(opts ...Option) *Server {
	s := &Server{
		accounts: make(map[int64]*account),
		byName:   make(map[string]int64),
		codes:    make(map[string]string),
		events:   make(map[int64]model.Event),
		secret:   []byte(uuid.NewString()),
		ttl:      DefaultTokenTTL,
		log:      zap.NewNop(),
		now:      time.Now,
	}
	if z, err := datekey.NewZone(""); err == nil {
		s.zone = z
	} else {
		s.zone = datekey.FixedZone(time.UTC)
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler builds the chi router for every route of the contract.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(s.accessLog)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/login", s.login)
		r.Post("/register", s.register)
		r.Post("/verify-email", s.verifyEmail)
		r.With(s.requireAuth).Get("/me", s.profile)
	})

	r.Route("/events", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.listEvents)
		r.Post("/", s.createEvent)
		r.Get("/user/{userID}", s.listEventsByUser)
		r.Get("/{id}", s.getEvent)
		r.Put("/{id}", s.updateEvent)
		r.Delete("/{id}", s.deleteEvent)
	})

	r.With(s.requireAuth).Post("/nlp/parse", s.parse)
	return r
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if id := r.Header.Get("X-Request-ID"); id != "" {
			fields = append(fields, zap.String("client_request_id", id))
		}
		if id := chimiddleware.GetReqID(r.Context()); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		s.log.Info("http_request", fields...)
	})
}

// SeedUser creates a verified account and returns it.
func (s *Server) SeedUser(username, email, password string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUser(username, email, password, true)
}

func (s *Server) addUser(username, email, password string, verified bool) model.User {
	s.nextUser++
	u := model.User{ID: s.nextUser, Username: username, Email: email}
	s.accounts[u.ID] = &account{user: u, password: password, verified: verified}
	s.byName[username] = u.ID
	return u
}

// SeedEvent stores ev as given, assigning an id when it has none.
func (s *Server) SeedEvent(ev model.Event) model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.ID == 0 {
		s.nextEvt++
		ev.ID = s.nextEvt
	} else if ev.ID > s.nextEvt {
		s.nextEvt = ev.ID
	}
	s.events[ev.ID] = ev
	return ev
}

// VerificationCode returns the pending code for email.
func (s *Server) VerificationCode(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[email]
	return c, ok
}

// Verified reports whether the account for username confirmed its e-mail.
func (s *Server) Verified(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byName[username]
	return ok && s.accounts[id].verified
}

// IssueToken signs a token for u expiring at exp.
func (s *Server) IssueToken(u model.User, exp time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":     u.Username,
		"user_id": u.ID,
		"exp":     exp.Unix(),
		"jti":     uuid.NewString(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tok, nil
}

func (s *Server) eventsOf(userID int64) []model.Event {
	var out []model.Event
	for _, ev := range s.events {
		if userID == 0 || ev.UserID == userID {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
