// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package controller drives one player session through the playback lifecycle:
// it resolves the supplied reference, mounts the frame, fences frame signals by
// generation, bounds the load wait and exposes manual retry.
package controller

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/vidresolve/internal/domain/playback/lifecycle"
	"github.com/ManuGH/vidresolve/internal/domain/playback/model"
	videomodel "github.com/ManuGH/vidresolve/internal/domain/video/model"
	xglog "github.com/ManuGH/vidresolve/internal/log"
	"github.com/ManuGH/vidresolve/internal/metrics"
)

var (
	// ErrStaleGeneration is returned for frame signals tagged with a superseded generation.
	ErrStaleGeneration = errors.New("stale generation")
	// ErrSessionClosed is returned by every operation after Close.
	ErrSessionClosed = errors.New("session closed")
	// ErrSessionNotFound is returned by the registry for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidProgress is returned for non-finite or negative progress values.
	ErrInvalidProgress = errors.New("invalid progress")
)

const (
	DefaultLoadTimeout         = 8 * time.Second
	DefaultCompletionThreshold = 0.9
)

// Resolver turns a raw reference into a ResolvedVideo.
type Resolver interface {
	Resolve(raw string) videomodel.ResolvedVideo
}

// Frame is the port to the embedded playback frame.
type Frame interface {
	Mount(generation uint64, embedURL string)
	Unmount(generation uint64)
}

type noopFrame struct{}

func (noopFrame) Mount(uint64, string) {}
func (noopFrame) Unmount(uint64)       {}

// Options configures a Controller. Zero values select defaults.
type Options struct {
	LoadTimeout         time.Duration
	CompletionThreshold float64
	Clock               Clock
	Frame               Frame
	// OnChange is called with the new snapshot after every state change, outside the lock.
	OnChange func(Snapshot)
	Logger   *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.LoadTimeout <= 0 {
		o.LoadTimeout = DefaultLoadTimeout
	}
	if o.CompletionThreshold <= 0 || o.CompletionThreshold > 1 {
		o.CompletionThreshold = DefaultCompletionThreshold
	}
	if o.Clock == nil {
		o.Clock = RealClock{}
	}
	if o.Frame == nil {
		o.Frame = noopFrame{}
	}
	return o
}

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	ID                 string
	Generation         uint64
	State              model.PlaybackState
	Error              model.ErrorKind
	ErrorDetail        string
	Reference          string
	Resolved           videomodel.ResolvedVideo
	Surface            model.Surface
	Retries            int
	Position           float64
	Duration           float64
	Progress           float64
	CompletionEligible bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Closed             bool
}

// Controller owns exactly one player session.
type Controller struct {
	id       string
	resolver Resolver
	opts     Options
	logger   zerolog.Logger

	mu           sync.Mutex
	rec          *model.SessionRecord
	gen          uint64
	timer        Timer
	closed       bool
	lastActivity time.Time
}

// New creates an Idle controller. Call Load to supply a reference.
func New(id string, resolver Resolver, opts Options) *Controller {
	opts = opts.withDefaults()

	base := xglog.WithComponent("playback")
	if opts.Logger != nil {
		base = *opts.Logger
	}

	now := opts.Clock.Now()
	return &Controller{
		id:           id,
		resolver:     resolver,
		opts:         opts,
		logger:       base.With().Str(xglog.FieldSessionID, id).Logger(),
		rec:          lifecycle.NewRecord("", 0, now),
		lastActivity: now,
	}
}

// ID returns the session id.
func (c *Controller) ID() string { return c.id }

// Load supplies a reference. Any previous reference is torn down and the session is
// re-created from Idle under a new generation, so late signals for the old frame are stale.
func (c *Controller) Load(raw string) (Snapshot, error) {
	var fx effects

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Snapshot{}, ErrSessionClosed
	}
	c.touchLocked()
	c.teardownLocked(&fx)

	c.gen++
	c.rec = lifecycle.NewRecord(raw, c.gen, c.now())
	err := c.mountLocked(&fx, lifecycle.Event{Kind: lifecycle.EvReferenceSupplied})
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.finish(fx, snap)
	return snap, err
}

// Retry restarts a LoadFailed session from the pristine raw reference under a new generation.
// It never reuses the previously synthesized embed URL.
func (c *Controller) Retry() (Snapshot, error) {
	var fx effects

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Snapshot{}, ErrSessionClosed
	}
	c.touchLocked()

	if _, err := c.transitionLocked(&fx, lifecycle.Event{Kind: lifecycle.EvRetry}); err != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, err
	}
	c.gen++
	c.rec.Generation = c.gen
	err := c.resolveLocked(&fx)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.finish(fx, snap)
	return snap, err
}

// Signal applies a frame signal tagged with the generation it was mounted under.
func (c *Controller) Signal(generation uint64, ev lifecycle.Event) (Snapshot, error) {
	if !ev.Kind.IsFrameSignal() {
		return c.Snapshot(), fmt.Errorf("%w: %s is not a frame signal", lifecycle.ErrIllegalTransition, ev.Kind)
	}

	var fx effects

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Snapshot{}, ErrSessionClosed
	}
	c.touchLocked()
	if err := c.fenceLocked(generation, ev.Kind.String()); err != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, err
	}
	_, err := c.transitionLocked(&fx, ev)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if err == nil {
		c.finish(fx, snap)
	}
	return snap, err
}

// FrameLoaded reports a successful frame load.
func (c *Controller) FrameLoaded(generation uint64) (Snapshot, error) {
	return c.Signal(generation, lifecycle.Event{Kind: lifecycle.EvFrameLoaded})
}

// FrameFailed reports a frame load or mid-playback failure.
func (c *Controller) FrameFailed(generation uint64, detail string) (Snapshot, error) {
	return c.Signal(generation, lifecycle.Event{Kind: lifecycle.EvFrameFailed, Detail: detail})
}

// Play reports a native play event.
func (c *Controller) Play(generation uint64) (Snapshot, error) {
	return c.Signal(generation, lifecycle.Event{Kind: lifecycle.EvPlay})
}

// Pause reports a native pause event.
func (c *Controller) Pause(generation uint64) (Snapshot, error) {
	return c.Signal(generation, lifecycle.Event{Kind: lifecycle.EvPause})
}

// Ended reports natural completion.
func (c *Controller) Ended(generation uint64) (Snapshot, error) {
	return c.Signal(generation, lifecycle.Event{Kind: lifecycle.EvEnded})
}

// Progress records the playback position while Playing or Paused. The furthest watched
// fraction gates CompletionEligible.
func (c *Controller) Progress(generation uint64, position, duration float64) (Snapshot, error) {
	if !finite(position) || !finite(duration) || position < 0 || duration <= 0 {
		return c.Snapshot(), fmt.Errorf("%w: position=%v duration=%v", ErrInvalidProgress, position, duration)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Snapshot{}, ErrSessionClosed
	}
	c.touchLocked()
	if err := c.fenceLocked(generation, "progress"); err != nil {
		return c.snapshotLocked(), err
	}
	if !c.rec.State.Watching() {
		return c.snapshotLocked(), fmt.Errorf("%w: progress in %s (%s)",
			lifecycle.ErrIllegalTransition, c.rec.State, lifecycle.ForbiddenOutOfOrder)
	}

	position = math.Min(position, duration)
	c.rec.Position, c.rec.Duration = position, duration
	c.rec.MaxFraction = math.Max(c.rec.MaxFraction, position/duration)
	c.rec.UpdatedAt = c.now()
	return c.snapshotLocked(), nil
}

// Close tears the session down. Further calls return ErrSessionClosed.
func (c *Controller) Close() {
	var fx effects

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.teardownLocked(&fx)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Debug().Str(xglog.FieldEvent, "playback.closed").Msg("player session closed")
	c.finish(fx, snap)
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// LastActivity returns the time of the last caller interaction.
func (c *Controller) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivity
}

func (c *Controller) now() time.Time { return c.opts.Clock.Now() }

func (c *Controller) touchLocked() { c.lastActivity = c.now() }

// mountLocked runs Idle -> Resolving -> Loading|Error for the current record.
func (c *Controller) mountLocked(fx *effects, ev lifecycle.Event) error {
	if _, err := c.transitionLocked(fx, ev); err != nil {
		return err
	}
	return c.resolveLocked(fx)
}

// resolveLocked resolves the pristine reference and leaves Resolving.
func (c *Controller) resolveLocked(fx *effects) error {
	v := c.resolver.Resolve(c.rec.Reference)
	c.rec.Resolved = v

	c.logger.Debug().
		Str(xglog.FieldEvent, "playback.resolved").
		Str(xglog.FieldReference, xglog.Truncate(c.rec.Reference, xglog.MaxReferenceLogBytes)).
		Str(xglog.FieldProvider, v.Provider.String()).
		Str(xglog.FieldCanonicalID, v.CanonicalID).
		Str(xglog.FieldLibraryID, v.LibraryID).
		Uint64(xglog.FieldGeneration, c.rec.Generation).
		Msg("reference resolved")

	if !v.Playable() {
		_, err := c.transitionLocked(fx, lifecycle.Event{Kind: lifecycle.EvUnresolvable})
		return err
	}

	if _, err := c.transitionLocked(fx, lifecycle.Event{Kind: lifecycle.EvResolved}); err != nil {
		return err
	}

	gen, url := c.rec.Generation, v.EmbedURL
	fx.add(func() { c.opts.Frame.Mount(gen, url) })
	c.timer = c.opts.Clock.AfterFunc(c.opts.LoadTimeout, func() { c.loadTimeout(gen) })
	return nil
}

// transitionLocked dispatches ev and applies the side effects of the resulting edge.
func (c *Controller) transitionLocked(fx *effects, ev lifecycle.Event) (lifecycle.Transition, error) {
	now := c.now()
	tr, err := lifecycle.Dispatch(c.rec, ev, now)
	if err != nil {
		c.logger.Debug().Err(err).
			Str(xglog.FieldEvent, "playback.rejected").
			Str(xglog.FieldOldState, string(tr.From)).
			Str("trigger", ev.Kind.String()).
			Uint64(xglog.FieldGeneration, c.rec.Generation).
			Msg("playback event rejected")
		return tr, err
	}

	metrics.IncPlaybackTransition(string(tr.From), string(tr.To))

	if tr.From == model.StateLoading {
		c.stopTimerLocked()
		if tr.To == model.StatePlaying && !c.rec.LoadStartedAt.IsZero() {
			metrics.ObservePlaybackLoad(now.Sub(c.rec.LoadStartedAt))
		}
	}
	if tr.To == model.StateError {
		metrics.IncPlaybackError(string(tr.Error))
		if tr.From.FrameMounted() {
			gen := c.rec.Generation
			fx.add(func() { c.opts.Frame.Unmount(gen) })
		}
	}
	if ev.Kind == lifecycle.EvRetry {
		metrics.IncPlaybackRetry()
	}

	var evt *zerolog.Event
	if tr.To == model.StateError {
		evt = c.logger.Warn().
			Str(xglog.FieldErrorKind, string(tr.Error)).
			Str("detail", tr.Detail)
	} else {
		evt = c.logger.Info()
	}
	evt.Str(xglog.FieldEvent, "playback.transition").
		Str(xglog.FieldOldState, string(tr.From)).
		Str(xglog.FieldNewState, string(tr.To)).
		Str("trigger", ev.Kind.String()).
		Uint64(xglog.FieldGeneration, c.rec.Generation).
		Int(xglog.FieldRetries, c.rec.Retries).
		Msg("playback state changed")

	return tr, nil
}

// fenceLocked rejects signals addressed to a superseded frame mount.
func (c *Controller) fenceLocked(generation uint64, signal string) error {
	if generation == c.rec.Generation {
		return nil
	}
	metrics.IncStaleEvent(signal)
	c.logger.Debug().
		Str(xglog.FieldEvent, "playback.stale_signal").
		Str("signal", signal).
		Uint64("signal_generation", generation).
		Uint64(xglog.FieldGeneration, c.rec.Generation).
		Msg("ignoring signal from superseded frame")
	return fmt.Errorf("%w: got %d, current %d", ErrStaleGeneration, generation, c.rec.Generation)
}

func (c *Controller) loadTimeout(generation uint64) {
	var fx effects

	c.mu.Lock()
	if c.closed || c.rec.Generation != generation || c.rec.State != model.StateLoading {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	detail := fmt.Sprintf("no load signal within %s", c.opts.LoadTimeout)
	_, err := c.transitionLocked(&fx, lifecycle.Event{Kind: lifecycle.EvLoadTimeout, Detail: detail})
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if err == nil {
		c.finish(fx, snap)
	}
}

// teardownLocked cancels the load wait and unmounts the current frame.
func (c *Controller) teardownLocked(fx *effects) {
	c.stopTimerLocked()
	if c.rec != nil && c.rec.State.FrameMounted() {
		gen := c.rec.Generation
		fx.add(func() { c.opts.Frame.Unmount(gen) })
	}
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	r := c.rec
	progress := 0.0
	if r.Duration > 0 {
		progress = r.Position / r.Duration
	}
	return Snapshot{
		ID:                 c.id,
		Generation:         r.Generation,
		State:              r.State,
		Error:              r.Error,
		ErrorDetail:        r.ErrorDetail,
		Reference:          r.Reference,
		Resolved:           r.Resolved,
		Surface:            r.Surface(),
		Retries:            r.Retries,
		Position:           r.Position,
		Duration:           r.Duration,
		Progress:           progress,
		CompletionEligible: r.State == model.StateEnded || r.MaxFraction >= c.opts.CompletionThreshold,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		Closed:             c.closed,
	}
}

func (c *Controller) finish(fx effects, snap Snapshot) {
	fx.run()
	if c.opts.OnChange != nil {
		c.opts.OnChange(snap)
	}
}

// effects are frame calls collected under the lock and run after it is released,
// so a frame may call back into the controller.
type effects []func()

func (fx *effects) add(f func()) { *fx = append(*fx, f) }

func (fx effects) run() {
	for _, f := range fx {
		f()
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
