package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const (
	roomKeyPrefix = "room:"
	roomIndexKey  = "rooms"
)

// RoomDirectory mirrors room snapshots for the lobby view.
type RoomDirectory interface {
	Save(ctx context.Context, snapshot *entity.RoomSnapshot) error
	GetByName(ctx context.Context, name string) (*entity.RoomSnapshot, error)
	List(ctx context.Context) ([]*entity.RoomSnapshot, error)
	DeleteByName(ctx context.Context, name string) error
	// Reset drops every snapshot, including ones left by an earlier process.
	Reset(ctx context.Context) error
}

type dbRoomDirectory struct {
	client *redis.Client
}

func NewRedisRoomDirectory(client *redis.Client) RoomDirectory {
	return &dbRoomDirectory{
		client: client,
	}
}

func (that *dbRoomDirectory) Save(ctx context.Context, snapshot *entity.RoomSnapshot) error {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, roomKeyPrefix+snapshot.Name, snapshotJSON, 0)
		pipe.SAdd(ctx, roomIndexKey, snapshot.Name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	return nil
}

func (that *dbRoomDirectory) GetByName(ctx context.Context, name string) (*entity.RoomSnapshot, error) {
	response, err := that.client.Get(ctx, roomKeyPrefix+name).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrRoomNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room by name: %w", err)
	}

	var snapshot entity.RoomSnapshot
	if err = json.Unmarshal([]byte(response), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &snapshot, nil
}

func (that *dbRoomDirectory) List(ctx context.Context) ([]*entity.RoomSnapshot, error) {
	names, err := that.client.SMembers(ctx, roomIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	sort.Strings(names)

	snapshots := make([]*entity.RoomSnapshot, 0, len(names))
	for _, name := range names {
		snapshot, err := that.GetByName(ctx, name)
		if errors.Is(err, apperror.ErrRoomNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

func (that *dbRoomDirectory) DeleteByName(ctx context.Context, name string) error {
	deleted, err := that.client.Del(ctx, roomKeyPrefix+name).Result()
	if err != nil {
		return fmt.Errorf("failed to delete room by name: %w", err)
	}

	if err = that.client.SRem(ctx, roomIndexKey, name).Err(); err != nil {
		return fmt.Errorf("failed to delete room from index: %w", err)
	}

	if deleted == 0 {
		return apperror.ErrRoomNotFound
	}

	return nil
}

func (that *dbRoomDirectory) Reset(ctx context.Context) error {
	keys := []string{roomIndexKey}

	iter := that.client.Scan(ctx, 0, roomKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan rooms: %w", err)
	}

	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to reset rooms: %w", err)
	}

	return nil
}

type memoryRoomDirectory struct {
	mu    sync.RWMutex
	rooms map[string]*entity.RoomSnapshot
}

func NewMemoryRoomDirectory() RoomDirectory {
	return &memoryRoomDirectory{
		rooms: make(map[string]*entity.RoomSnapshot),
	}
}

func (that *memoryRoomDirectory) Save(_ context.Context, snapshot *entity.RoomSnapshot) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.rooms[snapshot.Name] = snapshot

	return nil
}

func (that *memoryRoomDirectory) GetByName(_ context.Context, name string) (*entity.RoomSnapshot, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	snapshot, ok := that.rooms[name]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return snapshot, nil
}

func (that *memoryRoomDirectory) List(_ context.Context) ([]*entity.RoomSnapshot, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	snapshots := make([]*entity.RoomSnapshot, 0, len(that.rooms))
	for _, snapshot := range that.rooms {
		snapshots = append(snapshots, snapshot)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Name < snapshots[j].Name
	})

	return snapshots, nil
}

func (that *memoryRoomDirectory) DeleteByName(_ context.Context, name string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.rooms[name]; !ok {
		return apperror.ErrRoomNotFound
	}

	delete(that.rooms, name)

	return nil
}

func (that *memoryRoomDirectory) Reset(_ context.Context) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.rooms = make(map[string]*entity.RoomSnapshot)

	return nil
}
