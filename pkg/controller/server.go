package controller

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Seann-Moser/cobot/pkg/logger"
	"github.com/Seann-Moser/cobot/pkg/servo"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
)

//go:embed index.html
var index []byte

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

var httpLog = logger.Get("http")

// requestLog sends chi's request lines to the http logger.
type requestLog struct{}

func (requestLog) Print(v ...interface{}) {
	httpLog.Info(fmt.Sprint(v...))
}

// ErrResponse is the JSON body of every failed request.
type ErrResponse struct {
	Err            error  `json:"-"`
	HTTPStatusCode int    `json:"-"`
	StatusText     string `json:"status"`
	ErrorText      string `json:"error,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func errInvalidRequest(err error) render.Renderer {
	return &ErrResponse{Err: err, HTTPStatusCode: http.StatusBadRequest, StatusText: "Invalid request.", ErrorText: err.Error()}
}

func errNotFound(err error) render.Renderer {
	return &ErrResponse{Err: err, HTTPStatusCode: http.StatusNotFound, StatusText: "Not found.", ErrorText: err.Error()}
}

func errConflict(err error) render.Renderer {
	return &ErrResponse{Err: err, HTTPStatusCode: http.StatusConflict, StatusText: "Busy.", ErrorText: err.Error()}
}

func errInternal(err error) render.Renderer {
	return &ErrResponse{Err: err, HTTPStatusCode: http.StatusInternalServerError, StatusText: "Error.", ErrorText: err.Error()}
}

// Conversion is the answer of /api/convert.
type Conversion struct {
	Angle     uint32 `json:"angle"`
	MaxDuty   uint32 `json:"maxDuty"`
	PulseUS   uint32 `json:"pulseUs"`
	Duty      uint32 `json:"duty"`
	RoundTrip uint32 `json:"roundTrip"`
}

// Router builds the HTTP API. Patterns started over HTTP keep running
// until ctx is done.
func (c *Controller) Router(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: requestLog{}, NoColor: true}))
	r.Use(middleware.Recoverer)

	r.Get("/", serveFrontend)
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", c.handleGetState)
		r.Post("/angles", c.handleSetAngles)
		r.Post("/all/{angle}", c.handleSetAll)
		r.Post("/duty/{channel}/{duty}", c.handleSetDuty)
		r.Post("/pattern/{name}", c.handlePattern(ctx))
		r.Get("/convert", handleConvert)
		r.Get("/ws", c.handleStream)
	})
	return r
}

// StartServer serves the API on the configured address until ctx is done.
func (c *Controller) StartServer(ctx context.Context) error {
	srv := &http.Server{
		Addr:    c.Configuration.Address,
		Handler: c.Router(ctx),
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	log.Infof("server running on http://%s", c.Configuration.Address)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func serveFrontend(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(index)
}

func (c *Controller) handleGetState(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, c.State())
}

func (c *Controller) handleSetAngles(w http.ResponseWriter, r *http.Request) {
	p := Pose{
		RightBack:  c.Servos.Angle(c.Configuration.Legs.RightBack),
		LeftBack:   c.Servos.Angle(c.Configuration.Legs.LeftBack),
		RightFront: c.Servos.Angle(c.Configuration.Legs.RightFront),
		LeftFront:  c.Servos.Angle(c.Configuration.Legs.LeftFront),
	}
	if err := render.DecodeJSON(r.Body, &p); err != nil {
		render.Render(w, r, errInvalidRequest(err))
		return
	}
	if err := c.SetPose(p); err != nil {
		render.Render(w, r, errInternal(err))
		return
	}
	render.JSON(w, r, c.State())
}

func (c *Controller) handleSetAll(w http.ResponseWriter, r *http.Request) {
	angle, err := strconv.ParseUint(chi.URLParam(r, "angle"), 10, 32)
	if err != nil {
		render.Render(w, r, errInvalidRequest(err))
		return
	}
	if err := c.SetAllServosAngle(uint32(angle)); err != nil {
		render.Render(w, r, errInternal(err))
		return
	}
	render.JSON(w, r, c.State())
}

func (c *Controller) handleSetDuty(w http.ResponseWriter, r *http.Request) {
	channel, err := strconv.ParseUint(chi.URLParam(r, "channel"), 10, 16)
	if err != nil {
		render.Render(w, r, errInvalidRequest(err))
		return
	}
	duty, err := strconv.ParseUint(chi.URLParam(r, "duty"), 10, 32)
	if err != nil {
		render.Render(w, r, errInvalidRequest(err))
		return
	}
	written, err := c.SetDuty(int(channel), uint32(duty))
	if err != nil {
		render.Render(w, r, errInternal(err))
		return
	}
	render.JSON(w, r, written)
}

func (c *Controller) handlePattern(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := PatternByName(chi.URLParam(r, "name"))
		if err != nil {
			render.Render(w, r, errNotFound(err))
			return
		}
		delay := c.Configuration.StepDelay
		if v := r.URL.Query().Get("delay"); v != "" {
			if delay, err = time.ParseDuration(v); err != nil {
				render.Render(w, r, errInvalidRequest(err))
				return
			}
		}
		if !c.playMu.TryLock() {
			render.Render(w, r, errConflict(ErrBusy))
			return
		}
		go func() {
			defer c.playMu.Unlock()
			if err := c.play(ctx, p, delay); err != nil && ctx.Err() == nil {
				log.Errorf("playing %s: %v", p.Name, err)
			}
		}()
		render.Status(r, http.StatusAccepted)
		render.JSON(w, r, map[string]string{"pattern": p.Name})
	}
}

func handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	angle, err := strconv.ParseUint(q.Get("angle"), 10, 32)
	if err != nil {
		render.Render(w, r, errInvalidRequest(err))
		return
	}
	maxDuty := uint64(1024)
	if v := q.Get("maxDuty"); v != "" {
		if maxDuty, err = strconv.ParseUint(v, 10, 32); err != nil {
			render.Render(w, r, errInvalidRequest(err))
			return
		}
	}
	render.JSON(w, r, Convert(uint32(angle), uint32(maxDuty)))
}

// Convert runs angle through the full conversion and back.
func Convert(angle, maxDuty uint32) Conversion {
	duty := servo.AngleToDuty(angle, maxDuty)
	return Conversion{
		Angle:     angle,
		MaxDuty:   maxDuty,
		PulseUS:   servo.AngleToPulse(angle),
		Duty:      duty,
		RoundTrip: servo.DutyToAngle(duty, maxDuty),
	}
}

// handleStream pushes the state to a websocket client after every move.
func (c *Controller) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warningf("upgrade: %v", err)
		return
	}
	defer conn.Close()

	updates, stop := c.Subscribe()
	defer stop()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(c.State()); err != nil {
		return
	}
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case st := <-updates:
			if err := conn.WriteJSON(st); err != nil {
				log.Debugf("websocket write: %v", err)
				return
			}
		}
	}
}
