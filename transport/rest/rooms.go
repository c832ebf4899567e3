package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

type RoomsHandler interface {
	ListRooms(w http.ResponseWriter, r *http.Request)
	GetRoom(w http.ResponseWriter, r *http.Request)
}

type roomDirectory interface {
	GetByName(ctx context.Context, name string) (*entity.RoomSnapshot, error)
	List(ctx context.Context) ([]*entity.RoomSnapshot, error)
}

type roomsHandler struct {
	logger    *slog.Logger
	directory roomDirectory
}

func NewRoomsHandler(logger *slog.Logger, directory roomDirectory) RoomsHandler {
	return &roomsHandler{
		logger:    logger.With("component", "rooms_handler"),
		directory: directory,
	}
}

func (that *roomsHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ListRooms")

	rooms, err := that.directory.List(r.Context())
	if err != nil {
		log.Error("failed to list rooms", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if rooms == nil {
		rooms = []*entity.RoomSnapshot{}
	}

	that.writeJSON(w, http.StatusOK, rooms)
}

func (that *roomsHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetRoom")

	name := chi.URLParam(r, "name")

	room, err := that.directory.GetByName(r.Context(), name)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		http.Error(w, "Room Not Found", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get room", "room", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, http.StatusOK, room)
}

func (that *roomsHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
