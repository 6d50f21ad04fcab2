package arena

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"clashlane/internal/audio"
	"clashlane/internal/battle"
	"clashlane/internal/config"
	"clashlane/internal/data"
	"clashlane/internal/flavor"

	"github.com/gorilla/mux"
)

// Store is the profile persistence the server needs. It is optional.
type Store interface {
	ResultRecorder
	EnsureProfile(ctx context.Context, id, nickname string) (data.Profile, error)
	Profile(ctx context.Context, id string) (data.Profile, error)
}

type Server struct {
	cfg       config.Config
	store     Store
	generator flavor.Generator
	synth     *audio.Synth
	hub       *Hub
	ctx       context.Context
}

// NewServer wires the HTTP surface. store and generator may be nil; sessions
// then skip persistence and serve fallback text. Sessions end when ctx does.
func NewServer(ctx context.Context, cfg config.Config, store Store, generator flavor.Generator) *Server {
	srv := &Server{
		cfg:       cfg,
		store:     store,
		generator: generator,
		hub:       NewHub(),
		ctx:       ctx,
	}
	if cfg.Audio.Enabled {
		srv.synth = audio.NewSynth(cfg.Audio.SampleRate, cfg.Audio.Volume)
	}
	return srv
}

func (srv *Server) Hub() *Hub { return srv.hub }

func (srv *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", srv.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/cards", srv.handleCards).Methods(http.MethodGet)
	r.HandleFunc("/api/cards/{card}", srv.handleCard).Methods(http.MethodGet)
	r.HandleFunc("/api/medals", srv.handleMedals).Methods(http.MethodGet)
	r.HandleFunc("/api/profiles", srv.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/profiles/{id}", srv.handleProfile).Methods(http.MethodGet)
	r.HandleFunc("/audio/{cue:[a-z]+}.wav", srv.handleCue).Methods(http.MethodGet)
	r.HandleFunc("/ws", srv.handleWS)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ARENA] write response: %v", err)
	}
}

func (srv *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": srv.hub.Count()})
}

// CardInfo is a card's stats joined with its tip and lore.
type CardInfo struct {
	battle.CardStats
	Tip  string `json:"tip"`
	Lore string `json:"lore"`
}

func cardInfo(c battle.Card) (CardInfo, bool) {
	st, ok := c.Stats()
	if !ok {
		return CardInfo{}, false
	}
	e, _ := flavor.Fallback(c)
	return CardInfo{CardStats: st, Tip: e.Tip, Lore: e.Lore}, true
}

func (srv *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	out := make([]CardInfo, 0, len(battle.FullDeck))
	for _, c := range battle.FullDeck {
		info, _ := cardInfo(c)
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

func (srv *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	info, ok := cardInfo(battle.Card(mux.Vars(r)["card"]))
	if !ok {
		http.Error(w, "unknown card", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (srv *Server) handleMedals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, data.Medals)
}

func (srv *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if srv.store == nil {
		http.Error(w, "profiles disabled", http.StatusServiceUnavailable)
		return
	}
	p, err := srv.store.Profile(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, data.ErrProfileNotFound) {
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("[ARENA] profile lookup: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type registerRequest struct {
	Nickname string `json:"nickname"`
}

// handleRegister creates a profile and remembers it in the user_id cookie.
func (srv *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if srv.store == nil {
		http.Error(w, "profiles disabled", http.StatusServiceUnavailable)
		return
	}
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	nick := strings.TrimSpace(req.Nickname)
	if nick == "" {
		http.Error(w, "empty nickname", http.StatusBadRequest)
		return
	}

	p, err := srv.store.EnsureProfile(r.Context(), "", nick)
	if err != nil {
		log.Println("register:", err)
		http.Error(w, "failed to create profile", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     userCookie,
		Value:    p.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusCreated, p)
}

const userCookie = "user_id"

// readUserID prefers the user_id cookie and falls back to the user query
// parameter. Empty means guest.
func readUserID(r *http.Request) string {
	if c, err := r.Cookie(userCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get("user")
}

func (srv *Server) handleCue(w http.ResponseWriter, r *http.Request) {
	if srv.synth == nil {
		http.Error(w, "audio disabled", http.StatusNotFound)
		return
	}
	cue, ok := audio.ParseCue(mux.Vars(r)["cue"])
	if !ok {
		http.Error(w, "unknown cue", http.StatusNotFound)
		return
	}
	b, err := srv.synth.WAV(cue)
	if err != nil {
		log.Printf("[ARENA] render cue %s: %v", cue, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(b)
}

// sessionOptions builds the options for a new session from the request query.
func (srv *Server) sessionOptions(r *http.Request) (SessionOptions, error) {
	q := r.URL.Query()
	tier := srv.cfg.Tier()
	if s := q.Get("tier"); s != "" {
		t, ok := battle.ParseTier(s)
		if !ok {
			return SessionOptions{}, errors.New("unknown tier " + s)
		}
		tier = t
	}
	opts := SessionOptions{
		UserID: readUserID(r),
		Rules:  srv.cfg.Rules(),
		Tier:   tier,
		Seed:   srv.cfg.Seed(),
		Codec:  ParseCodec(q.Get("codec")),
		Buffer: srv.cfg.Server.SendBuffer,
		Flavor: flavor.Options{
			Generator:     srv.generator,
			Timeout:       srv.cfg.Flavor.Timeout,
			TauntCooldown: srv.cfg.Flavor.TauntCooldown,
			Buffer:        srv.cfg.Flavor.OverlayBuffer,
		},
	}
	if srv.store != nil {
		opts.Recorder = srv.store
	}
	return opts, nil
}

func (srv *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	opts, err := srv.sessionOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if srv.store != nil && opts.UserID != "" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		p, err := srv.store.EnsureProfile(ctx, opts.UserID, opts.UserID)
		cancel()
		if err != nil {
			log.Printf("[ARENA] ensure profile %s: %v", opts.UserID, err)
		} else {
			opts.UserID = p.ID
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	sess := NewSession(opts)
	ctx, cancel := context.WithCancel(srv.ctx)
	client := &Client{Conn: conn, Session: sess, codec: opts.Codec}

	srv.hub.register(sess)
	go sess.Run(ctx, srv.cfg.FrameInterval())
	go client.writePump()
	go client.readPump(func() {
		cancel()
		srv.hub.unregister(sess)
	})
}
