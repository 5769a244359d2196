package conn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kvsql/kvsql/internal/auth"
	"github.com/kvsql/kvsql/internal/query"
	"github.com/kvsql/kvsql/pkg"
)

var upgrader = websocket.Upgrader{
	WriteBufferSize: 1024 * 10,
	ReadBufferSize:  1024 * 10,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Flusher snapshots the store to disk. The in-memory store flushes to
// nowhere and that is fine.
type Flusher interface{ WriteToFile() error }

// Server speaks JSON over websocket and serializes every statement
// through its lock: the engine itself is single-threaded, the transport
// provides the serialization.
type Server struct {
	Locker sync.RWMutex

	exec    *query.Executor
	users   []*auth.User
	flusher Flusher

	write_interval time.Duration
	last_change    time.Time
	last_write     time.Time
}

func NewServer(exec *query.Executor, flusher Flusher, write_interval time.Duration) *Server {
	now := time.Now()
	return &Server{exec: exec, flusher: flusher, write_interval: write_interval, last_change: now, last_write: now}
}

func (s *Server) GetLocker() *sync.RWMutex { return &s.Locker }

func (s *Server) AddUser(u *auth.User) {
	s.users = append(s.users, u)
	pkg.InfoLog("registered user", u.Name)
}

// authorize checks credentials from query params or an Authorization
// header of the form "user:pass". A server with no registered users is
// open.
func (s *Server) authorize(r *http.Request) bool {
	if len(s.users) == 0 {
		return true
	}

	url_query := r.URL.Query()
	username := url_query.Get("username")
	password := url_query.Get("password")
	if username == "" {
		username, password, _ = strings.Cut(r.Header.Get("Authorization"), ":")
	}

	matches := pkg.Filter(s.users, func(u *auth.User) bool { return u.Name == username })
	for _, u := range matches {
		if u.ValidatePassword(password) {
			return true
		}
	}
	return false
}

func HttpError(w http.ResponseWriter, status int, err string) {
	pkg.InfoLog("connection error:", err)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(NewErrorResponse(status, err))
}

func (s *Server) HandleConnection(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		HttpError(w, http.StatusUnauthorized, "connection unauthorized")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		pkg.ErrorLog(err)
		return
	}
	pkg.InfoLog("New connection established")
	defer conn.Close()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				pkg.ErrorLog("unexpected close", err)
			} else {
				pkg.DebugLog("connection closed", err)
			}
			return
		}

		var req WsRequest
		json.Unmarshal(message, &req)

		var res Response
		pkg.LockWrap(s, func() {
			res = QueryReqHandler(s.exec, message)
			if res.Status == http.StatusCreated {
				s.last_change = time.Now()
			}
		})
		res.ReqId = req.ReqId

		buf, err := json.Marshal(res)
		if err != nil {
			pkg.ErrorLog("marshaling response", err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, buf); err != nil {
			pkg.ErrorLog("writing response", err)
			return
		}
	}
}

func (s *Server) flush() {
	var err error
	pkg.RLockWrap(s, func() {
		err = s.flusher.WriteToFile()
		s.last_write = time.Now()
	})
	if err != nil {
		pkg.ErrorLog("failed to write snapshot", err)
	}
}

func (s *Server) Listen(port int) {
	exit := make(chan os.Signal, 2)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/", s.HandleConnection)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  0,
		WriteTimeout: 0,
	}

	go func() {
		err := srv.ListenAndServe()
		if err != http.ErrServerClosed {
			pkg.FatalLog(err)
		}
	}()

	go func() {
		if s.write_interval <= 0 {
			return
		}
		ticker := time.NewTicker(s.write_interval)
		defer ticker.Stop()
		for range ticker.C {
			if s.last_change.After(s.last_write) {
				s.flush()
			}
		}
	}()

	pkg.InfoLog("kvsql listening on port", port)
	<-exit
	pkg.DebugLog("Shutting down...")
	srv.Shutdown(context.Background())
	s.flush()
}
