package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sadopc/agenda/internal/model"
)

type ctxKey struct{}

// detail is the FastAPI-style error body the client expects.
type detail struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, detail{Detail: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(dst)
}

func callerID(r *http.Request) int64 {
	id, _ := r.Context().Value(ctxKey{}).(int64)
	return id
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		idf, _ := claims["user_id"].(float64)
		id := int64(idf)

		s.mu.Lock()
		_, known := s.accounts[id]
		s.mu.Unlock()
		if !known {
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// ─── Users ────────────────────────────────────────────────────────────────────

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	id, ok := s.byName[req.Username]
	var acc *account
	if ok {
		acc = s.accounts[id]
	}
	s.mu.Unlock()

	if acc == nil || acc.password != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	tok, err := s.IssueToken(acc.user, s.now().Add(s.ttl))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Login error: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, model.LoginResponse{User: acc.user, Token: tok})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusUnprocessableEntity, "username, email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byName[req.Username]; taken {
		writeError(w, http.StatusBadRequest, "Username already registered")
		return
	}
	for _, a := range s.accounts {
		if strings.EqualFold(a.user.Email, req.Email) {
			writeError(w, http.StatusBadRequest, "Email already registered")
			return
		}
	}
	u := s.addUser(req.Username, req.Email, req.Password, false)
	code := fmt.Sprintf("%06d", uuid.New().ID()%1_000_000)
	s.codes[req.Email] = code
	s.log.Info("verification code issued", zap.String("email", req.Email), zap.String("code", code))

	writeJSON(w, http.StatusOK, u)
}

func (s *Server) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req model.VerifyEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	want, ok := s.codes[req.Email]
	if !ok || want != strings.TrimSpace(req.Code) {
		writeError(w, http.StatusBadRequest, "Invalid or expired verification code")
		return
	}
	delete(s.codes, req.Email)
	for _, a := range s.accounts {
		if a.user.Email == req.Email {
			a.verified = true
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Email verified"})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	acc := s.accounts[callerID(r)]
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, acc.user)
}

// ─── Events ───────────────────────────────────────────────────────────────────

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	events := s.eventsOf(0)
	s.mu.Unlock()
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) listEventsByUser(w http.ResponseWriter, r *http.Request) {
	uid, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "user id must be an integer")
		return
	}
	if uid != callerID(r) {
		writeError(w, http.StatusForbidden, "Not allowed to read another user's events")
		return
	}

	s.mu.Lock()
	events := s.eventsOf(uid)
	s.mu.Unlock()
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

// lookup returns the event with the URL id owned by the caller, writing the
// error response itself when there is none.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (model.Event, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "event id must be an integer")
		return model.Event{}, false
	}
	s.mu.Lock()
	ev, ok := s.events[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Event not found")
		return model.Event{}, false
	}
	if ev.UserID != callerID(r) {
		writeError(w, http.StatusForbidden, "Not allowed to access this event")
		return model.Event{}, false
	}
	return ev, true
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	if ev, ok := s.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, ev)
	}
}

// normalize validates a payload and rewrites its timestamps in wire layout.
func (s *Server) normalize(p model.EventPayload) (model.Event, error) {
	if strings.TrimSpace(p.Name) == "" {
		return model.Event{}, errors.New("event_name is required")
	}
	start, err := s.zone.Parse(p.StartTime)
	if err != nil {
		return model.Event{}, errors.New("start_time is required and must be YYYY-MM-DD HH:MM:SS")
	}
	ev := model.Event{
		UserID:       p.UserID,
		Name:         strings.TrimSpace(p.Name),
		StartTime:    s.zone.Wire(start),
		Location:     p.Location,
		TimeReminder: p.TimeReminder,
	}
	if p.EndTime != nil && *p.EndTime != "" {
		end, err := s.zone.Parse(*p.EndTime)
		if err != nil {
			return model.Event{}, errors.New("end_time must be YYYY-MM-DD HH:MM:SS")
		}
		if end.Before(start) {
			return model.Event{}, errors.New("end_time must not be before start_time")
		}
		wire := s.zone.Wire(end)
		ev.EndTime = &wire
	}
	if p.TimeReminder != nil && *p.TimeReminder < 0 {
		return model.Event{}, errors.New("time_reminder must be a non-negative integer")
	}
	return ev, nil
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var p model.EventPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.UserID != callerID(r) {
		writeError(w, http.StatusForbidden, "Cannot create events for another user")
		return
	}
	ev, err := s.normalize(p)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	s.nextEvt++
	ev.ID = s.nextEvt
	s.events[ev.ID] = ev
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	existing, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var p model.EventPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.UserID != 0 && p.UserID != existing.UserID {
		writeError(w, http.StatusForbidden, "Cannot move an event to another user")
		return
	}
	p.UserID = existing.UserID
	ev, err := s.normalize(p)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	ev.ID = existing.ID

	s.mu.Lock()
	s.events[ev.ID] = ev
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	ev, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.events, ev.ID)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Event deleted"})
}

// ─── NLP ──────────────────────────────────────────────────────────────────────

var clockRe = regexp.MustCompile(`(\d{1,2}):(\d{2})`)

// parse recognises a single HH:MM and schedules it today. Anything else
// comes back without a start time.
func (s *Server) parse(w http.ResponseWriter, r *http.Request) {
	var req model.ParseRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Missing text")
		return
	}

	res := model.ParseResult{EventName: strings.TrimSpace(req.Text)}
	if m := clockRe.FindStringSubmatchIndex(req.Text); m != nil {
		h, _ := strconv.Atoi(req.Text[m[2]:m[3]])
		min, _ := strconv.Atoi(req.Text[m[4]:m[5]])
		if h < 24 && min < 60 {
			key := s.zone.Today(s.now())
			start := fmt.Sprintf("%s %02d:%02d:00", key, h, min)
			res.StartTime = &start
			res.EventName = strings.Join(strings.Fields(req.Text[:m[0]]+" "+req.Text[m[1]:]), " ")
		}
	}
	writeJSON(w, http.StatusOK, res)
}
