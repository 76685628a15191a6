package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/napolitain/tycoon/internal/clock"
	"github.com/napolitain/tycoon/internal/converter"
	"github.com/napolitain/tycoon/internal/engine"
	"github.com/napolitain/tycoon/internal/models"
	"github.com/napolitain/tycoon/internal/platform/logger"
	"github.com/napolitain/tycoon/internal/session"
	"github.com/napolitain/tycoon/internal/solver"
	"github.com/napolitain/tycoon/internal/store"
)

const (
	wsWriteTimeout = 5 * time.Second
	defaultHorizon = 600
	maxHorizon     = 100000
)

// server exposes save slots and running sessions over HTTP
type server struct {
	settings *models.Settings
	store    *store.Store
	sessions *session.Manager
	clk      clock.Clock
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func newServer(settings *models.Settings, st *store.Store, sessions *session.Manager, clk clock.Clock, log *logger.Logger) *server {
	return &server{
		settings: settings,
		store:    st,
		sessions: sessions,
		clk:      clk,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(api chi.Router) {
		api.Get("/settings", s.handleSettings)
		api.Get("/saves", s.handleListSaves)
		api.Post("/saves", s.handleCreateSave)
		api.Route("/saves/{id}", func(save chi.Router) {
			save.Get("/", s.handleGetSave)
			save.Delete("/", s.handleDeleteSave)
			save.Post("/advance", s.handleAdvance)
			save.Post("/acquire", s.handleAcquire)
			save.Post("/containers", s.handlePurchaseContainer)
			save.Get("/capacity", s.handleCapacity)
			save.Get("/plan", s.handlePlan)
		})
	})
	r.Get("/ws/saves/{id}", s.handleStream)

	return r
}

type saveResponse struct {
	ID        string                `json:"id"`
	CreatedAt string                `json:"created_at,omitempty"`
	UpdatedAt string                `json:"updated_at,omitempty"`
	Profile   converter.ProfileJSON `json:"profile"`
}

type advanceRequest struct {
	Ticks int `json:"ticks"`
}

type acquireRequest struct {
	Category string `json:"category"`
	AssetID  string `json:"asset_id"`
}

type containerRequest struct {
	ContainerTypeID string `json:"container_type_id"`
}

type updateMessage struct {
	Profile   converter.ProfileJSON `json:"profile"`
	Ticks     int                   `json:"ticks"`
	Completed []string              `json:"completed"`
}

type planStepJSON struct {
	Tick         int                     `json:"tick"`
	Kind         string                  `json:"kind"`
	Category     string                  `json:"category"`
	ID           string                  `json:"id"`
	Name         string                  `json:"name"`
	Cost         converter.ResourcesJSON `json:"cost"`
	PaybackTicks float64                 `json:"payback_ticks"`
}

type planResponse struct {
	Ticks     int                   `json:"ticks"`
	Completed int                   `json:"completed"`
	Steps     []planStepJSON        `json:"steps"`
	Final     converter.ProfileJSON `json:"final"`
}

func slotResponse(slot store.Slot) saveResponse {
	return saveResponse{
		ID:        slot.ID,
		CreatedAt: converter.FormatTime(slot.CreatedAt),
		UpdatedAt: converter.FormatTime(slot.UpdatedAt),
		Profile:   converter.ProfileToWire(slot.Profile),
	}
}

func (s *server) handleSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, converter.SettingsToCatalog(s.settings))
}

func (s *server) handleListSaves(w http.ResponseWriter, r *http.Request) {
	slots, err := s.store.List(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	out := make([]saveResponse, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slotResponse(slot))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleCreateSave(w http.ResponseWriter, r *http.Request) {
	profile := engine.CreateProfile(s.settings, s.clk.Now())
	slot, err := s.store.Create(r.Context(), profile)
	if errors.Is(err, store.ErrSlotsFull) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.log.Event("create", slot.ID, profile.Resources.Current.String())
	writeJSON(w, http.StatusCreated, slotResponse(slot))
}

// openSession returns the session for the id in the path, settled to now. It writes
// the error response itself and returns nil on failure.
func (s *server) openSession(w http.ResponseWriter, r *http.Request) *session.Session {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Open(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return nil
	}
	if err != nil {
		s.internalError(w, err)
		return nil
	}
	if _, err := sess.Settle(); err != nil {
		s.internalError(w, err)
		return nil
	}
	return sess
}

func (s *server) handleGetSave(w http.ResponseWriter, r *http.Request) {
	sess := s.openSession(w, r)
	if sess == nil {
		return
	}
	profile, err := sess.Snapshot()
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{ID: sess.ID(), Profile: converter.ProfileToWire(profile)})
}

func (s *server) handleDeleteSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.sessions.Evict(id)
	err := s.store.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.log.Event("delete", id, "")
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Ticks < 0 {
		writeError(w, http.StatusBadRequest, "ticks must be >= 0")
		return
	}
	sess := s.openSession(w, r)
	if sess == nil {
		return
	}
	profile, _, err := sess.Tick(req.Ticks)
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.persist(r.Context(), sess)
	writeJSON(w, http.StatusOK, saveResponse{ID: sess.ID(), Profile: converter.ProfileToWire(profile)})
}

func (s *server) handleAcquire(w http.ResponseWriter, r *http.Request) {
	var req acquireRequest
	if !readJSON(w, r, &req) {
		return
	}
	category, err := models.ParseAssetCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess := s.openSession(w, r)
	if sess == nil {
		return
	}
	profile, outcome, err := sess.Acquire(category, req.AssetID)
	s.respondOutcome(w, r, sess, profile, outcome, err)
}

func (s *server) handlePurchaseContainer(w http.ResponseWriter, r *http.Request) {
	var req containerRequest
	if !readJSON(w, r, &req) {
		return
	}
	sess := s.openSession(w, r)
	if sess == nil {
		return
	}
	profile, outcome, err := sess.PurchaseContainer(req.ContainerTypeID)
	s.respondOutcome(w, r, sess, profile, outcome, err)
}

func (s *server) respondOutcome(w http.ResponseWriter, r *http.Request, sess *session.Session, profile models.SaveProfile, outcome engine.Outcome, err error) {
	if err != nil {
		s.internalError(w, err)
		return
	}
	if outcome != engine.Applied {
		writeError(w, http.StatusConflict, outcome.String())
		return
	}
	s.persist(r.Context(), sess)
	writeJSON(w, http.StatusOK, saveResponse{ID: sess.ID(), Profile: converter.ProfileToWire(profile)})
}

func (s *server) handleCapacity(w http.ResponseWriter, r *http.Request) {
	sess := s.openSession(w, r)
	if sess == nil {
		return
	}
	profile, err := sess.Snapshot()
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, converter.CapacityToWire(profile, s.settings))
}

// handlePlan runs the greedy solver from the caught-up profile without changing it
func (s *server) handlePlan(w http.ResponseWriter, r *http.Request) {
	horizon := defaultHorizon
	if raw := r.URL.Query().Get("horizon"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxHorizon {
			writeError(w, http.StatusBadRequest, "horizon must be an integer between 0 and 100000")
			return
		}
		horizon = n
	}
	sess := s.openSession(w, r)
	if sess == nil {
		return
	}
	profile, err := sess.Snapshot()
	if err != nil {
		s.internalError(w, err)
		return
	}

	plan := solver.NewGreedySolver(s.settings, horizon).Solve(profile, s.clk.Now())
	out := planResponse{
		Ticks:     plan.Ticks,
		Completed: plan.Completed,
		Steps:     make([]planStepJSON, 0, len(plan.Steps)),
		Final:     converter.ProfileToWire(plan.Final),
	}
	for _, step := range plan.Steps {
		out.Steps = append(out.Steps, planStepJSON{
			Tick:         step.Tick,
			Kind:         string(step.Kind),
			Category:     string(step.Category),
			ID:           step.ID,
			Name:         step.Name,
			Cost:         converter.ResourcesToWire(step.Cost),
			PaybackTicks: step.Metric.PaybackTicks(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleStream starts the session's tick loop and pushes every update to the client
func (s *server) handleStream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Start(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade for %s: %v", id, err)
		return
	}
	defer conn.Close()

	updates, cancel := sess.Subscribe()
	defer cancel()

	// Reads only detect the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	profile, err := sess.Snapshot()
	if err != nil {
		return
	}
	if err := writeUpdate(conn, session.Update{Profile: profile}); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if err := writeUpdate(conn, u); err != nil {
				s.log.Warn("websocket write for %s: %v", id, err)
				return
			}
		}
	}
}

func writeUpdate(conn *websocket.Conn, u session.Update) error {
	msg := updateMessage{
		Profile:   converter.ProfileToWire(u.Profile),
		Ticks:     u.Report.Ticks,
		Completed: make([]string, 0, len(u.Report.Completed)),
	}
	for _, c := range u.Report.Completed {
		msg.Completed = append(msg.Completed, c.ID)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(msg)
}

// persist saves after a mutation; failures are logged and retried by autosave
func (s *server) persist(ctx context.Context, sess *session.Session) {
	if err := s.sessions.Save(ctx, sess.ID()); err != nil {
		s.log.Error("save %s: %v", sess.ID(), err)
	}
}

func (s *server) internalError(w http.ResponseWriter, err error) {
	s.log.Error("%v", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
