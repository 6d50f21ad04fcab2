package arena

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clashlane/internal/battle"
	"clashlane/internal/config"

	"github.com/gorilla/websocket"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Match.Seed = 5
	cfg.Audio.SampleRate = 8000
	return cfg
}

func newTestServer(t *testing.T, store Store) (*Server, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	srv := NewServer(ctx, testConfig(), store, nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp := get(t, ts.URL+"/healthz")
	var body struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || body.Status != "ok" || body.Sessions != 0 {
		t.Fatalf("health = %d %+v", resp.StatusCode, body)
	}
}

func TestCards(t *testing.T) {
	_, ts := newTestServer(t, nil)

	var all []CardInfo
	if err := json.NewDecoder(get(t, ts.URL+"/api/cards").Body).Decode(&all); err != nil {
		t.Fatal(err)
	}
	if len(all) != len(battle.FullDeck) {
		t.Fatalf("got %d cards, want %d", len(all), len(battle.FullDeck))
	}
	for i, c := range all {
		if c.ID != battle.FullDeck[i] || c.Tip == "" || c.Cost == 0 {
			t.Errorf("card %d incomplete: %+v", i, c)
		}
	}

	var one CardInfo
	resp := get(t, ts.URL+"/api/cards/giant")
	if err := json.NewDecoder(resp.Body).Decode(&one); err != nil {
		t.Fatal(err)
	}
	if one.ID != battle.CardGiant || one.Cost != 5 {
		t.Fatalf("giant = %+v", one)
	}

	if resp := get(t, ts.URL+"/api/cards/pancake"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown card status = %d", resp.StatusCode)
	}
}

func TestCueAudio(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := get(t, ts.URL+"/audio/spawn.wav")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "audio/wav" {
		t.Fatalf("status %d, type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	b, _ := io.ReadAll(resp.Body)
	if len(b) < 44 || string(b[:4]) != "RIFF" {
		t.Fatal("body is not a wav file")
	}

	if resp := get(t, ts.URL+"/audio/kazoo.wav"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown cue status = %d", resp.StatusCode)
	}
}

func TestProfiles(t *testing.T) {
	_, ts := newTestServer(t, nil)
	if resp := get(t, ts.URL+"/api/profiles/u_1"); resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status without a store = %d", resp.StatusCode)
	}

	store := newFakeStore()
	store.EnsureProfile(context.Background(), "u_1", "dana")
	_, ts = newTestServer(t, store)
	resp := get(t, ts.URL+"/api/profiles/u_1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp := get(t, ts.URL+"/api/profiles/u_2"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing profile status = %d", resp.StatusCode)
	}
}

func TestRegisterSetsCookie(t *testing.T) {
	store := newFakeStore()
	_, ts := newTestServer(t, store)

	resp, err := http.Post(ts.URL+"/api/profiles", "application/json", strings.NewReader(`{"nickname":"  frank "}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == userCookie {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatal("no user_id cookie set")
	}
	p, err := store.Profile(context.Background(), cookie.Value)
	if err != nil || p.Nickname != "frank" {
		t.Fatalf("profile = %+v, %v", p, err)
	}

	bad, err := http.Post(ts.URL+"/api/profiles", "application/json", strings.NewReader(`{"nickname":"   "}`))
	if err != nil {
		t.Fatal(err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty nickname status = %d", bad.StatusCode)
	}
}

func TestReadUserIDPrefersCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws?user=query", nil)
	if got := readUserID(r); got != "query" {
		t.Fatalf("query user = %q", got)
	}
	r.AddCookie(&http.Cookie{Name: userCookie, Value: "u_cookie"})
	if got := readUserID(r); got != "u_cookie" {
		t.Fatalf("cookie user = %q", got)
	}
}

func TestBadTierRejectedBeforeUpgrade(t *testing.T) {
	_, ts := newTestServer(t, nil)
	if resp := get(t, ts.URL+"/ws?tier=impossible"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestWebsocketSession(t *testing.T) {
	store := newFakeStore()
	srv, ts := newTestServer(t, store)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?user=erin&tier=easy"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	mt, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if mt != websocket.TextMessage {
		t.Fatalf("message type = %d", mt)
	}
	var f Frame
	if err := json.Unmarshal(msg, &f); err != nil {
		t.Fatal(err)
	}
	if f.Type != "frame" || f.State.MatchID == "" {
		t.Fatalf("unexpected frame: %+v", f)
	}
	if srv.Hub().Count() != 1 {
		t.Fatalf("live sessions = %d", srv.Hub().Count())
	}
	if _, err := store.Profile(context.Background(), "erin"); err != nil {
		t.Fatalf("profile not ensured: %v", err)
	}

	if err := conn.WriteJSON(Command{Type: "tip", Card: battle.CardLog}); err != nil {
		t.Fatal(err)
	}
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("no tip overlay before: %v", err)
		}
		var f Frame
		if err := json.Unmarshal(msg, &f); err != nil {
			t.Fatal(err)
		}
		for _, ov := range f.Overlays {
			if ov.Card == battle.CardLog {
				conn.Close()
				waitForCount(t, srv, 0)
				return
			}
		}
	}
}

func TestWebsocketMsgpack(t *testing.T) {
	_, ts := newTestServer(t, nil)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?codec=msgpack"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	mt, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var f Frame
	if mt != websocket.BinaryMessage || CodecMsgpack.Unmarshal(msg, &f) != nil || f.State.MatchID == "" {
		t.Fatalf("bad msgpack frame (type %d)", mt)
	}
}

func waitForCount(t *testing.T, srv *Server, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if srv.Hub().Count() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("live sessions = %d, want %d", srv.Hub().Count(), want)
}
