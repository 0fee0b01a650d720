package service

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-labyrinth/labyrinth"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/google/uuid"
)

const (
	defaultSessionDuration = 30 * time.Minute
	defaultTick            = 70 * time.Millisecond

	maxViewers = 8
)

// Session-related errors.
var (
	ErrNoSession         = errors.New("no session")
	ErrNoViewers         = errors.New("session needs at least one viewer")
	ErrTooManyViewers    = errors.New("too many viewers")
	ErrInvalidToken      = errors.New("invalid token")
	ErrMissingDependency = errors.New("missing dependency")
)

type cubeSession struct {
	cube    i.CubeServer
	viewers []uuid.UUID
}

// CubeSessionManager starts cubes for groups of viewers and relays their
// updates to the transport.
type CubeSessionManager struct {
	endpoint         i.Endpoint
	publisher        i.Publisher
	generatorFactory func(labyrinth.Config) (*labyrinth.Generator, error)
	labyrinthConfig  labyrinth.Config
	cubeEncoder      i.CubeEncoder
	logger           i.Logger
	stepsPerTick     int
	tick             time.Duration
	duration         time.Duration

	sessions        map[uuid.UUID]*cubeSession
	viewerToSession map[uuid.UUID]uuid.UUID
	wg              sync.WaitGroup
	sync.RWMutex
}

// Config holds the dependencies of a CubeSessionManager.
type Config struct {
	Endpoint         i.Endpoint
	Publisher        i.Publisher
	GeneratorFactory func(labyrinth.Config) (*labyrinth.Generator, error)
	Labyrinth        labyrinth.Config // Template for every session's generator.
	CubeEncoder      i.CubeEncoder
	Logger           i.Logger
	StepsPerTick     int
	Tick             time.Duration // Zero means 70ms.
	Duration         time.Duration // Zero means 30 minutes.
}

// NewCubeSessionManager validates c and returns an idle manager.
func NewCubeSessionManager(c *Config) (*CubeSessionManager, error) {
	switch {
	case c.Endpoint == nil:
		return nil, fmt.Errorf("%w: endpoint", ErrMissingDependency)
	case c.Publisher == nil:
		return nil, fmt.Errorf("%w: publisher", ErrMissingDependency)
	case c.GeneratorFactory == nil:
		return nil, fmt.Errorf("%w: generator factory", ErrMissingDependency)
	case c.CubeEncoder == nil:
		return nil, fmt.Errorf("%w: encoder", ErrMissingDependency)
	case c.Logger == nil:
		return nil, fmt.Errorf("%w: logger", ErrMissingDependency)
	case c.Tick < 0 || c.Duration < 0:
		return nil, ErrInvalidSchedule
	}

	csm := &CubeSessionManager{
		endpoint:         c.Endpoint,
		publisher:        c.Publisher,
		generatorFactory: c.GeneratorFactory,
		labyrinthConfig:  c.Labyrinth,
		cubeEncoder:      c.CubeEncoder,
		logger:           c.Logger,
		stepsPerTick:     c.StepsPerTick,
		tick:             c.Tick,
		duration:         c.Duration,
		sessions:         make(map[uuid.UUID]*cubeSession),
		viewerToSession:  make(map[uuid.UUID]uuid.UUID),
	}
	if csm.tick == 0 {
		csm.tick = defaultTick
	}
	if csm.duration == 0 {
		csm.duration = defaultSessionDuration
	}
	return csm, nil
}

// NewSession starts a cube for viewerIDs. A viewer already watching another
// cube is moved to the new one, and a cube left without viewers is stopped.
func (c *CubeSessionManager) NewSession(viewerIDs []uuid.UUID) (uuid.UUID, error) {
	if len(viewerIDs) == 0 {
		return uuid.Nil, ErrNoViewers
	}
	if len(viewerIDs) > maxViewers {
		c.logger.Warning(fmt.Sprintf("Too many viewers in cube session: %d", len(viewerIDs)))
		return uuid.Nil, ErrTooManyViewers
	}

	gen, err := c.generatorFactory(c.labyrinthConfig)
	if err != nil {
		c.logger.Error(fmt.Sprintf("creating labyrinth for a new cube: %s", err))
		return uuid.Nil, fmt.Errorf("creating labyrinth: %w", err)
	}

	cube, err := NewCube(gen, c.cubeEncoder, c.stepsPerTick)
	if err != nil {
		c.logger.Error(fmt.Sprintf("creating new cube: %s", err))
		return uuid.Nil, err
	}

	viewers := append([]uuid.UUID(nil), viewerIDs...)
	sessionID, abandoned := c.saveSession(viewers, cube)
	for _, old := range abandoned {
		c.logger.Info("stopping cube left without viewers")
		old.Stop()
	}

	c.wg.Add(1)
	go cube.Start(c.duration, c.tick)
	go c.listenCubeChan(sessionID, cube)
	c.logger.Info(fmt.Sprintf("started new cube %s for viewers: %v", sessionID, viewers))
	return sessionID, nil
}

// SessionInfo returns the socket public key and address for a viewer with
// a session.
func (c *CubeSessionManager) SessionInfo(viewerID uuid.UUID) ([]byte, string, error) {
	c.RLock()
	defer c.RUnlock()
	if _, ok := c.viewerToSession[viewerID]; !ok {
		return nil, "", ErrNoSession
	}
	return c.endpoint.GetPublicKey(), c.endpoint.GetAddr(), nil
}

// Snapshot returns the encoded faces of a session.
func (c *CubeSessionManager) Snapshot(sessionID uuid.UUID) ([]byte, error) {
	c.RLock()
	s, ok := c.sessions[sessionID]
	c.RUnlock()
	if !ok {
		return nil, ErrNoSession
	}
	return s.cube.Snapshot()
}

// Authenticate accepts a raw viewer ID as token when the viewer has a session.
func (c *CubeSessionManager) Authenticate(token []byte) (uuid.UUID, error) {
	c.RLock()
	defer c.RUnlock()
	id, err := uuid.FromBytes(token)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	if _, ok := c.viewerToSession[id]; !ok {
		return uuid.Nil, fmt.Errorf("viewer does not have cube session: %w", ErrNoSession)
	}

	c.logger.Info(fmt.Sprintf("authenticated viewer: %s", id))
	return id, nil
}

// HandleViewerRequest forwards a viewer action to the viewer's cube.
func (c *CubeSessionManager) HandleViewerRequest(viewerID uuid.UUID, actionType byte, payload []byte) {
	c.RLock()
	sessionID, ok := c.viewerToSession[viewerID]
	var s *cubeSession
	if ok {
		s = c.sessions[sessionID]
	}
	c.RUnlock()
	if s == nil {
		c.logger.Warning("received request for viewer without session")
		return
	}

	if err := s.cube.Act(append([]byte{actionType}, payload...)); err != nil {
		c.logger.Warning(fmt.Sprintf("dropped request for viewer %s: %s", viewerID, err))
		return
	}
	c.logger.Info(fmt.Sprintf("processed request for viewer: %s", viewerID))
}

// StopAll stops every cube and waits for their final snapshots to go out.
func (c *CubeSessionManager) StopAll() {
	c.RLock()
	cubes := make([]i.CubeServer, 0, len(c.sessions))
	for _, s := range c.sessions {
		cubes = append(cubes, s.cube)
	}
	c.RUnlock()

	for _, cube := range cubes {
		cube.Stop()
	}
	c.wg.Wait()
}

// saveSession registers cube for viewers. Viewers watching another cube are
// taken out of it; cubes left with no viewers are returned for stopping.
func (c *CubeSessionManager) saveSession(viewers []uuid.UUID, cube i.CubeServer) (uuid.UUID, []i.CubeServer) {
	c.Lock()
	defer c.Unlock()

	sessionID := uuid.New()
	for {
		if _, ok := c.sessions[sessionID]; !ok {
			break
		}
		sessionID = uuid.New()
	}

	var abandoned []i.CubeServer
	for _, viewer := range viewers {
		oldID, ok := c.viewerToSession[viewer]
		if !ok {
			continue
		}
		old, ok := c.sessions[oldID]
		if !ok {
			continue
		}
		old.viewers = slices.DeleteFunc(old.viewers, func(v uuid.UUID) bool { return v == viewer })
		if len(old.viewers) == 0 {
			abandoned = append(abandoned, old.cube)
		}
	}

	c.sessions[sessionID] = &cubeSession{cube: cube, viewers: viewers}
	for _, viewer := range viewers {
		c.viewerToSession[viewer] = sessionID
	}
	return sessionID, abandoned
}

// viewersOf returns a copy of the current viewers of session id.
func (c *CubeSessionManager) viewersOf(id uuid.UUID) []uuid.UUID {
	c.RLock()
	defer c.RUnlock()
	if s, ok := c.sessions[id]; ok {
		return slices.Clone(s.viewers)
	}
	return nil
}

func (c *CubeSessionManager) listenCubeChan(id uuid.UUID, cube i.CubeServer) {
	defer c.wg.Done()
	for val := range cube.StateChan() {
		if viewers := c.viewersOf(id); len(viewers) > 0 {
			c.publisher.PublishState(viewers, val)
		}
	}
	for val := range cube.EndChan() {
		if viewers := c.viewersOf(id); len(viewers) > 0 {
			c.publisher.PublishEnd(viewers, val)
		}
	}
	c.clean(id)
	c.logger.Info(fmt.Sprintf("cube %s ended", id))
}

func (c *CubeSessionManager) clean(id uuid.UUID) {
	c.Lock()
	defer c.Unlock()
	s, ok := c.sessions[id]
	if !ok {
		return
	}
	for _, viewer := range s.viewers {
		if c.viewerToSession[viewer] == id {
			delete(c.viewerToSession, viewer)
		}
	}
	delete(c.sessions, id)
}
