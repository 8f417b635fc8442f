package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/xtding233/diamond-sim/internal/game"
	"github.com/xtding233/diamond-sim/internal/rules"
	"github.com/xtding233/diamond-sim/internal/service"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// watchMessage is one frame of the play-by-play stream.
type watchMessage struct {
	Type      string       `json:"type"` // play, final or error
	Line      string       `json:"line,omitempty"`
	Inning    int          `json:"inning,omitempty"`
	Half      string       `json:"half,omitempty"`
	Balls     int          `json:"balls"`
	Strikes   int          `json:"strikes"`
	Outs      int          `json:"outs"`
	HomeScore string       `json:"home_score,omitempty"`
	AwayScore string       `json:"away_score,omitempty"`
	Result    *game.Result `json:"result,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// watchRequest reads a single-trial game from query parameters.
func watchRequest(r *http.Request) (service.GameRequest, error) {
	q := r.URL.Query()
	req := service.GameRequest{
		ID:          q.Get("id"),
		Home:        q.Get("home"),
		Away:        q.Get("away"),
		HomePitcher: q.Get("home_pitcher"),
		AwayPitcher: q.Get("away_pitcher"),
		Trials:      1,
		KeepLog:     true,
	}
	for key, dst := range map[string]*int{"season": &req.Season, "day": &req.Day} {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return req, errors.New(key + " must be an integer")
			}
			*dst = n
		}
	}
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return req, errors.New("seed must be an unsigned integer")
		}
		req.Seed = n
	}
	if v := q.Get("weather"); v != "" {
		w, err := rules.ParseWeather(v)
		if err != nil {
			return req, err
		}
		req.Weather = w
	}
	return req, nil
}

// Watch plays one game and streams each log line as it happens. A snapshot
// is stored at every half inning when a store is configured.
func (h *Handler) Watch(w http.ResponseWriter, r *http.Request) {
	req, err := watchRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	st, _, err := h.svc.Prepare(&req)
	if err != nil {
		h.fail(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	clientID := uuid.New().String()
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go readPump(conn, cancel)

	h.logger.Info("watch started", "client", clientID, "game", st.ID())
	if err := h.stream(ctx, conn, st); err != nil {
		h.logger.Warn("watch ended", "client", clientID, "game", st.ID(), "err", err)
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Handler) stream(ctx context.Context, conn *websocket.Conn, st *game.State) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	sent := 0
	flush := func() error {
		lines := st.Log()
		for ; sent < len(lines); sent++ {
			if err := send(conn, playMessage(st, lines[sent])); err != nil {
				return err
			}
		}
		return nil
	}
	if err := flush(); err != nil {
		return err
	}

	inning, half := st.Inning(), st.Half()
	for !st.Over() {
		if err := st.Step(); err != nil {
			send(conn, watchMessage{Type: "error", Error: err.Error()})
			return err
		}
		if err := flush(); err != nil {
			return err
		}
		if st.Inning() != inning || st.Half() != half {
			inning, half = st.Inning(), st.Half()
			h.checkpoint(ctx, st)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		default:
		}
		if h.StepDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(h.StepDelay):
			}
		}
	}

	res, err := st.Simulate()
	if err != nil {
		return err
	}
	h.checkpoint(ctx, st)
	res.Log = nil
	return send(conn, watchMessage{
		Type:      "final",
		Inning:    res.Innings,
		HomeScore: res.HomeScore.String(),
		AwayScore: res.AwayScore.String(),
		Result:    &res,
	})
}

func (h *Handler) checkpoint(ctx context.Context, st *game.State) {
	err := h.svc.SaveSnapshot(ctx, "watch", st)
	if err != nil && !errors.Is(err, service.ErrNoStore) {
		h.logger.Warn("save snapshot", "game", st.ID(), "err", err)
	}
}

func playMessage(st *game.State, line string) watchMessage {
	balls, strikes, outs := st.Count()
	home, away := st.Score()
	return watchMessage{
		Type:      "play",
		Line:      line,
		Inning:    st.Inning(),
		Half:      st.Half().String(),
		Balls:     balls,
		Strikes:   strikes,
		Outs:      outs,
		HomeScore: home.String(),
		AwayScore: away.String(),
	}
}

func send(conn *websocket.Conn, msg watchMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// readPump drains the peer so pongs and close frames are processed, and
// cancels the stream once the peer goes away.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
