package service

import (
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-labyrinth/encoder"
	"github.com/beka-birhanu/vinom-labyrinth/labyrinth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	sync.Mutex
	states map[uuid.UUID]int
	ends   map[uuid.UUID][]byte
	calls  [][]uuid.UUID
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{states: map[uuid.UUID]int{}, ends: map[uuid.UUID][]byte{}}
}

func (p *fakePublisher) PublishState(viewers []uuid.UUID, _ []byte) {
	p.Lock()
	defer p.Unlock()
	p.calls = append(p.calls, slices.Clone(viewers))
	for _, v := range viewers {
		p.states[v]++
	}
}

// callsSince returns the viewer lists of state records published after the
// first n.
func (p *fakePublisher) callsSince(n int) [][]uuid.UUID {
	p.Lock()
	defer p.Unlock()
	return slices.Clone(p.calls[n:])
}

func (p *fakePublisher) callCount() int {
	p.Lock()
	defer p.Unlock()
	return len(p.calls)
}

func (p *fakePublisher) PublishEnd(viewers []uuid.UUID, payload []byte) {
	p.Lock()
	defer p.Unlock()
	for _, v := range viewers {
		p.ends[v] = payload
	}
}

func (p *fakePublisher) stateCount(v uuid.UUID) int {
	p.Lock()
	defer p.Unlock()
	return p.states[v]
}

func (p *fakePublisher) end(v uuid.UUID) []byte {
	p.Lock()
	defer p.Unlock()
	return p.ends[v]
}

type fakeEndpoint struct{}

func (fakeEndpoint) GetPublicKey() []byte { return []byte("public-key") }
func (fakeEndpoint) GetAddr() string      { return "127.0.0.1:9000" }

type fakeLogger struct{}

func (fakeLogger) Info(string)    {}
func (fakeLogger) Warning(string) {}
func (fakeLogger) Error(string)   {}

func testConfig(p *fakePublisher) *Config {
	return &Config{
		Endpoint:         fakeEndpoint{},
		Publisher:        p,
		GeneratorFactory: labyrinth.New,
		Labyrinth:        labyrinth.Config{Size: 7},
		CubeEncoder:      &encoder.Protobuf{},
		Logger:           fakeLogger{},
		Tick:             time.Millisecond,
		Duration:         time.Hour,
	}
}

func TestNewCubeSessionManagerValidates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{name: "endpoint", mutate: func(c *Config) { c.Endpoint = nil }, want: ErrMissingDependency},
		{name: "publisher", mutate: func(c *Config) { c.Publisher = nil }, want: ErrMissingDependency},
		{name: "factory", mutate: func(c *Config) { c.GeneratorFactory = nil }, want: ErrMissingDependency},
		{name: "encoder", mutate: func(c *Config) { c.CubeEncoder = nil }, want: ErrMissingDependency},
		{name: "logger", mutate: func(c *Config) { c.Logger = nil }, want: ErrMissingDependency},
		{name: "negative tick", mutate: func(c *Config) { c.Tick = -1 }, want: ErrInvalidSchedule},
		{name: "negative duration", mutate: func(c *Config) { c.Duration = -1 }, want: ErrInvalidSchedule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(newFakePublisher())
			tt.mutate(cfg)
			_, err := NewCubeSessionManager(cfg)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	cfg := testConfig(newFakePublisher())
	cfg.Tick, cfg.Duration = 0, 0
	csm, err := NewCubeSessionManager(cfg)
	require.NoError(t, err)
	assert.Equal(t, defaultTick, csm.tick)
	assert.Equal(t, defaultSessionDuration, csm.duration)
}

func TestNewSessionRejectsViewerCounts(t *testing.T) {
	csm, err := NewCubeSessionManager(testConfig(newFakePublisher()))
	require.NoError(t, err)

	_, err = csm.NewSession(nil)
	assert.ErrorIs(t, err, ErrNoViewers)

	many := make([]uuid.UUID, maxViewers+1)
	for n := range many {
		many[n] = uuid.New()
	}
	_, err = csm.NewSession(many)
	assert.ErrorIs(t, err, ErrTooManyViewers)
}

func TestNewSessionFactoryError(t *testing.T) {
	boom := errors.New("boom")
	cfg := testConfig(newFakePublisher())
	cfg.GeneratorFactory = func(labyrinth.Config) (*labyrinth.Generator, error) { return nil, boom }
	csm, err := NewCubeSessionManager(cfg)
	require.NoError(t, err)

	_, err = csm.NewSession([]uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, boom)

	cfg = testConfig(newFakePublisher())
	cfg.Labyrinth.Size = 6
	csm, err = NewCubeSessionManager(cfg)
	require.NoError(t, err)
	_, err = csm.NewSession([]uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, labyrinth.ErrEvenSize)
}

func TestCubeSessionLifecycle(t *testing.T) {
	pub := newFakePublisher()
	cfg := testConfig(pub)
	cfg.Duration = 200 * time.Millisecond
	csm, err := NewCubeSessionManager(cfg)
	require.NoError(t, err)

	viewer, stranger := uuid.New(), uuid.New()
	sessionID, err := csm.NewSession([]uuid.UUID{viewer})
	require.NoError(t, err)

	key, addr, err := csm.SessionInfo(viewer)
	require.NoError(t, err)
	assert.Equal(t, []byte("public-key"), key)
	assert.Equal(t, "127.0.0.1:9000", addr)
	_, _, err = csm.SessionInfo(stranger)
	assert.ErrorIs(t, err, ErrNoSession)

	id, err := csm.Authenticate(viewer[:])
	require.NoError(t, err)
	assert.Equal(t, viewer, id)
	_, err = csm.Authenticate([]byte("short"))
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = csm.Authenticate(stranger[:])
	assert.ErrorIs(t, err, ErrNoSession)

	snap, err := csm.Snapshot(sessionID)
	require.NoError(t, err)
	u, err := (&encoder.Protobuf{}).UnmarshalUpdate(snap)
	require.NoError(t, err)
	assert.Len(t, u.Faces, 6)
	_, err = csm.Snapshot(uuid.New())
	assert.ErrorIs(t, err, ErrNoSession)

	require.Eventually(t, func() bool { return pub.end(viewer) != nil }, 2*time.Second, 5*time.Millisecond)
	assert.Positive(t, pub.stateCount(viewer))
	final, err := (&encoder.Protobuf{}).UnmarshalUpdate(pub.end(viewer))
	require.NoError(t, err)
	assert.True(t, final.Final)

	require.Eventually(t, func() bool {
		_, _, err := csm.SessionInfo(viewer)
		return errors.Is(err, ErrNoSession)
	}, 2*time.Second, 5*time.Millisecond)
	_, err = csm.Snapshot(sessionID)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCubeSessionViewerMovesToNewSession(t *testing.T) {
	pub := newFakePublisher()
	csm, err := NewCubeSessionManager(testConfig(pub))
	require.NoError(t, err)
	defer csm.StopAll()

	moved, stayer := uuid.New(), uuid.New()
	first, err := csm.NewSession([]uuid.UUID{moved, stayer})
	require.NoError(t, err)
	second, err := csm.NewSession([]uuid.UUID{moved})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	csm.RLock()
	assert.Equal(t, second, csm.viewerToSession[moved])
	assert.Equal(t, first, csm.viewerToSession[stayer])
	assert.Equal(t, []uuid.UUID{stayer}, csm.sessions[first].viewers)
	csm.RUnlock()

	// Let records read before the move drain.
	time.Sleep(20 * time.Millisecond)
	mark := pub.callCount()
	require.Eventually(t, func() bool {
		var toMoved, toStayer bool
		for _, viewers := range pub.callsSince(mark) {
			toMoved = toMoved || slices.Contains(viewers, moved)
			toStayer = toStayer || slices.Contains(viewers, stayer)
		}
		return toMoved && toStayer
	}, 2*time.Second, 5*time.Millisecond)

	for _, viewers := range pub.callsSince(mark) {
		assert.False(t, slices.Contains(viewers, moved) && slices.Contains(viewers, stayer),
			"one record went to both cubes' viewers: %v", viewers)
		assert.Len(t, viewers, 1)
	}
}

func TestCubeSessionStopsCubeLeftWithoutViewers(t *testing.T) {
	pub := newFakePublisher()
	csm, err := NewCubeSessionManager(testConfig(pub))
	require.NoError(t, err)
	defer csm.StopAll()

	viewer := uuid.New()
	first, err := csm.NewSession([]uuid.UUID{viewer})
	require.NoError(t, err)
	_, err = csm.NewSession([]uuid.UUID{viewer})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := csm.Snapshot(first)
		return errors.Is(err, ErrNoSession)
	}, 2*time.Second, 5*time.Millisecond)
	assert.Nil(t, pub.end(viewer), "the abandoned cube's final snapshot has no audience")

	_, _, err = csm.SessionInfo(viewer)
	assert.NoError(t, err)
}

func TestStopAllPublishesFinalSnapshots(t *testing.T) {
	pub := newFakePublisher()
	csm, err := NewCubeSessionManager(testConfig(pub))
	require.NoError(t, err)

	a, b := uuid.New(), uuid.New()
	_, err = csm.NewSession([]uuid.UUID{a})
	require.NoError(t, err)
	_, err = csm.NewSession([]uuid.UUID{b})
	require.NoError(t, err)

	csm.StopAll()

	assert.NotNil(t, pub.end(a))
	assert.NotNil(t, pub.end(b))
	csm.RLock()
	assert.Empty(t, csm.sessions)
	assert.Empty(t, csm.viewerToSession)
	csm.RUnlock()
}

func TestHandleViewerRequestRoutesToCube(t *testing.T) {
	pub := newFakePublisher()
	cfg := testConfig(pub)
	cfg.Tick = time.Hour
	csm, err := NewCubeSessionManager(cfg)
	require.NoError(t, err)
	defer csm.StopAll()

	viewer := uuid.New()
	_, err = csm.NewSession([]uuid.UUID{viewer})
	require.NoError(t, err)

	csm.HandleViewerRequest(viewer, snapshotActionType, nil)
	require.Eventually(t, func() bool { return pub.stateCount(viewer) == 1 }, 2*time.Second, 5*time.Millisecond)

	csm.HandleViewerRequest(uuid.New(), snapshotActionType, nil)
	csm.HandleViewerRequest(viewer, 0x7f, nil)
	assert.Equal(t, 1, pub.stateCount(viewer))
}
