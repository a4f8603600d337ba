package server

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/abennett/roll/pkg"
	"github.com/abennett/roll/pkg/messages"
)

var (
	ErrRoomExists    = errors.New("room exists")
	ErrRoomNotExists = errors.New("room does not exist")
)

type Server struct {
	rw       *sync.RWMutex
	upgrader websocket.Upgrader
	source   pkg.Source

	// DefaultNotation is rolled in rooms created without a ?roll= parameter.
	DefaultNotation string

	Rooms map[string]*Room
}

func NewServer() *Server {
	return &Server{
		rw:              &sync.RWMutex{},
		source:          pkg.DefaultSource,
		DefaultNotation: "1d20",
		Rooms:           map[string]*Room{},
	}
}

// WithSource swaps the randomness source. Tests use a seeded one.
func (s *Server) WithSource(src pkg.Source) *Server {
	s.source = src
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomName := chi.URLParam(r, "roomName")
	if roomName == "" {
		http.Error(w, "room name is required", http.StatusBadRequest)
		return
	}
	notation := r.URL.Query().Get("roll")
	if notation == "" {
		notation = s.DefaultNotation
	}
	slog.Info("serving request", "roomName", roomName, "roll", notation)
	var err error
	room, ok := s.Rooms[roomName]
	if !ok {
		room, err = s.NewRoom(roomName, notation)
		var syntaxErr *pkg.SyntaxError
		if errors.As(err, &syntaxErr) {
			http.Error(w, syntaxErr.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			slog.Error("unable to create new room", "room_name", roomName, "error", err)
			http.Error(w, "unable to create new room", http.StatusInternalServerError)
			return
		}
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error(err.Error())
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer conn.Close()

	// Keep connection alive
	room.RunSession(r.Context(), conn)

	s.rw.Lock()
	room.mu.Lock()
	if len(room.userSessions) == 0 {
		delete(s.Rooms, roomName)
		slog.Info("closed room", "room", roomName)
	}
	room.mu.Unlock()
	s.rw.Unlock()
}

func (s *Server) NewRoom(name, notation string) (*Room, error) {
	expr, err := pkg.Parse(notation)
	if err != nil {
		return nil, err
	}
	s.rw.Lock()
	defer s.rw.Unlock()
	_, ok := s.Rooms[name]
	if ok {
		return nil, ErrRoomExists
	}
	s.Rooms[name] = &Room{
		mu:           new(sync.Mutex),
		logger:       slog.With("room", name),
		source:       s.source,
		userSessions: make(map[string]userSession),
		Version:      0,
		Name:         name,
		Dice:         expr,
		Rolls:        map[string]messages.RollResult{},
	}
	return s.Rooms[name], nil
}

func (s *Server) GetRoom(roomName string) (*Room, error) {
	s.rw.RLock()
	defer s.rw.RUnlock()
	room, ok := s.Rooms[roomName]
	if !ok {
		return room, ErrRoomNotExists
	}
	return room, nil
}

// GetRooms snapshots every room's broadcastable state.
func (s *Server) GetRooms() map[string]messages.RoomState {
	s.rw.RLock()
	defer s.rw.RUnlock()
	states := make(map[string]messages.RoomState, len(s.Rooms))
	for name, room := range s.Rooms {
		room.mu.Lock()
		states[name] = room.ToState()
		room.mu.Unlock()
	}
	return states
}
