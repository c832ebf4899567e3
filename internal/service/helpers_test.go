package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	Target  string
	Name    string
	Payload any
}

type recordingNotifier struct {
	mu         sync.Mutex
	broadcasts    []recordedEvent
	sends         []recordedEvent
	subscriptions []recordedEvent
}

func (that *recordingNotifier) Broadcast(room, event string, payload any) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.broadcasts = append(that.broadcasts, recordedEvent{Target: room, Name: event, Payload: payload})
}

func (that *recordingNotifier) Send(connectionID, event string, payload any) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sends = append(that.sends, recordedEvent{Target: connectionID, Name: event, Payload: payload})
}

func (that *recordingNotifier) Subscribe(room, connectionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.subscriptions = append(that.subscriptions, recordedEvent{Target: room, Name: connectionID})
}

func (that *recordingNotifier) named(event string) []recordedEvent {
	that.mu.Lock()
	defer that.mu.Unlock()

	var events []recordedEvent
	for _, recorded := range that.broadcasts {
		if recorded.Name == event {
			events = append(events, recorded)
		}
	}

	return events
}

func (that *recordingNotifier) lastState(t *testing.T) StatePayload {
	t.Helper()

	states := that.named(EventStateUpdated)
	require.NotEmpty(t, states)

	state, ok := states[len(states)-1].Payload.(StatePayload)
	require.True(t, ok)

	return state
}

// fixedDice replays queued values and returns zero once they run out.
type fixedDice struct {
	ints   []int
	floats []float64
}

func (that *fixedDice) IntN(int) int {
	if len(that.ints) == 0 {
		return 0
	}

	value := that.ints[0]
	that.ints = that.ints[1:]

	return value
}

func (that *fixedDice) Float64() float64 {
	if len(that.floats) == 0 {
		return 0
	}

	value := that.floats[0]
	that.floats = that.floats[1:]

	return value
}

// manualScheduler holds deferred work until the test runs it.
type manualScheduler struct {
	mu      sync.Mutex
	pending []func()
	delays  []time.Duration
}

func (that *manualScheduler) AfterFunc(delay time.Duration, fn func()) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.pending = append(that.pending, fn)
	that.delays = append(that.delays, delay)
}

func (that *manualScheduler) runAll() {
	that.mu.Lock()
	pending := that.pending
	that.pending = nil
	that.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

func (that *manualScheduler) count() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.pending)
}

type mockCompleter struct {
	mock.Mock
}

func (that *mockCompleter) Complete(ctx context.Context, messages []entity.AdvisoryMessage) (string, error) {
	args := that.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

type fixture struct {
	service   RoomService
	registry  *repository.RoomRegistry
	directory repository.RoomDirectory
	notifier  *recordingNotifier
	scheduler *manualScheduler
	completer *mockCompleter
	dice      *fixedDice
}

var testOptions = Options{
	LockTurns:    7,
	ClearDelay:   time.Second,
	WinningScore: 3,
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		registry:  repository.NewRoomRegistry(),
		directory: repository.NewMemoryRoomDirectory(),
		notifier:  &recordingNotifier{},
		scheduler: &manualScheduler{},
		completer: &mockCompleter{},
		dice:      &fixedDice{},
	}

	logger := discardLogger()
	mover := NewAdvisoryOrchestrator(logger, f.completer, time.Second)
	f.service = NewRoomService(logger, f.registry, f.directory, f.notifier, mover, f.dice, f.scheduler, testOptions)

	return f
}

// seatTwo creates the room and seats alice (X) and bob (O).
func (that *fixture) seatTwo(t *testing.T, roomName string, mode entity.Mode) {
	t.Helper()

	ctx := context.Background()

	require.NoError(t, that.service.Join(ctx, roomName, mode))
	require.NoError(t, that.service.AssignSeat(ctx, roomName, "a", "alice"))
	require.NoError(t, that.service.Join(ctx, roomName, mode))
	require.NoError(t, that.service.AssignSeat(ctx, roomName, "b", "bob"))
}

// room returns a shallow copy of the room state.
func (that *fixture) room(t *testing.T, roomName string) entity.Room {
	t.Helper()

	var copied entity.Room
	require.NoError(t, that.registry.Update(roomName, func(room *entity.Room) error {
		copied = *room
		return nil
	}))

	return copied
}

func (that *fixture) edit(t *testing.T, roomName string, fn func(room *entity.Room)) {
	t.Helper()

	require.NoError(t, that.registry.Update(roomName, func(room *entity.Room) error {
		fn(room)
		return nil
	}))
}

func (that *fixture) move(roomName, connectionID string, cell int, marker entity.Cell) error {
	return that.service.Move(context.Background(), MoveCommand{
		Room:         roomName,
		ConnectionID: connectionID,
		Cell:         cell,
		Marker:       marker,
	})
}
