package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/helpcar/quotechat/internal/logging"
	"github.com/helpcar/quotechat/internal/runtime"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/helpcar/quotechat/pkg/locale"
	"github.com/helpcar/quotechat/pkg/ports"
)

var (
	// ErrBusy is returned for visitor actions while a prompt is still pending or a
	// position request is running.
	ErrBusy = errors.New("session is busy")
	// ErrClosed is returned for visitor actions on a closed session.
	ErrClosed = errors.New("session is closed")
)

// DefaultGeolocationTimeout bounds a single position request.
const DefaultGeolocationTimeout = 5 * time.Second

// Pacing holds the deliberate delays of the conversation.
type Pacing struct {
	// Initial delays the first prompt after Open.
	Initial time.Duration `mapstructure:"initial"`
	// Answer delays the next prompt after each accepted answer.
	Answer time.Duration `mapstructure:"answer"`
	// Summary delays the summary card once the final message is shown.
	Summary time.Duration `mapstructure:"summary"`
}

// DefaultPacing returns the delays used by the web widget.
func DefaultPacing() Pacing {
	return Pacing{
		Initial: 1500 * time.Millisecond,
		Answer:  1200 * time.Millisecond,
		Summary: 2000 * time.Millisecond,
	}
}

// Listener receives the view after every change, including timer-driven reveals.
type Listener func(domain.ConversationView)

// Session owns one wizard conversation: its answer store, its current step and the
// pacing timers. All methods are safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	rec     *domain.SessionRecord
	answers *domain.AnswerStore
	timer   ports.Timer
	// looking is set while an address lookup or route estimate runs unlocked.
	looking bool

	controller *runtime.Controller
	translator ports.Translator
	clock      ports.Clock
	pacing     Pacing
	link       runtime.Link
	locator    ports.Locator
	resolver   ports.AddressResolver
	router     ports.RouteEstimator
	geoTimeout time.Duration
	store      ports.SessionStore
	hooks      domain.LifecycleHooks
	logger     *slog.Logger

	listenersMu sync.Mutex
	listeners   map[uint64]Listener
	nextID      uint64
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the wall clock used for pacing.
func WithClock(c ports.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithPacing sets the conversation delays.
func WithPacing(p Pacing) Option {
	return func(s *Session) { s.pacing = p }
}

// WithLink sets the messaging deep-link target.
func WithLink(l runtime.Link) Option {
	return func(s *Session) { s.link = l }
}

// WithLocator enables the "use my current location" action.
func WithLocator(l ports.Locator) Option {
	return func(s *Session) { s.locator = l }
}

// WithAddressResolver formats typed addresses before they are recorded.
func WithAddressResolver(r ports.AddressResolver) Option {
	return func(s *Session) { s.resolver = r }
}

// WithRouteEstimator enables distance and duration for destinations.
func WithRouteEstimator(r ports.RouteEstimator) Option {
	return func(s *Session) { s.router = r }
}

// WithGeolocationTimeout bounds position requests.
func WithGeolocationTimeout(d time.Duration) Option {
	return func(s *Session) { s.geoTimeout = d }
}

// WithStore persists the session record after every change.
func WithStore(store ports.SessionStore) Option {
	return func(s *Session) { s.store = store }
}

// WithLifecycleHooks registers observability callbacks. Hooks run while the session
// is locked and must not call back into it.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(s *Session) { s.hooks = h }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// New creates a closed session. Call Open to start the conversation.
func New(id string, tr ports.Translator, opts ...Option) *Session {
	s := &Session{
		rec:        domain.NewSessionRecord(id, tr.Language()),
		answers:    domain.NewAnswerStore(),
		translator: tr,
		clock:      SystemClock(),
		pacing:     DefaultPacing(),
		link:       runtime.Link{Base: runtime.DefaultLinkBase, Phone: runtime.DefaultPhone},
		geoTimeout: DefaultGeolocationTimeout,
		logger:     logging.NewNop(),
		listeners:  make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.controller = runtime.NewController(runtime.WithLogger(s.logger))
	return s
}

// Restore rebuilds a session from a persisted record. A reveal that was pending when
// the record was saved is scheduled again; an interrupted position request is dropped.
func Restore(rec *domain.SessionRecord, tr ports.Translator, opts ...Option) *Session {
	s := New(rec.ID, tr, opts...)
	s.rec = rec.Clone()
	s.answers = domain.RestoreAnswerStore(rec.Answers)
	s.rec.Locating = false

	if s.active() {
		switch {
		case s.rec.Pending:
			s.schedule(s.rec.Step, s.pacing.Answer)
		case s.rec.Step == domain.StepFinal:
			s.schedule(domain.StepFinal, s.pacing.Summary)
		}
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.ID
}

// Record returns a copy of the current session record.
func (s *Session) Record() *domain.SessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.rec.Clone()
	rec.Answers = s.answers.Snapshot()
	return rec
}

// Answers returns a snapshot of the recorded answers.
func (s *Session) Answers() domain.Answers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.Snapshot()
}

// Open starts a fresh conversation: a new answer store, the problem step, and the
// initial pacing delay. Timers of any previous conversation are invalidated.
func (s *Session) Open(ctx context.Context) {
	s.mu.Lock()
	s.stopTimer()
	gen := s.rec.Generation + 1
	s.rec = domain.NewSessionRecord(s.rec.ID, s.rec.Language)
	s.rec.Generation = gen
	s.rec.Status = domain.StatusOpen
	s.rec.Pending = true
	s.looking = false
	s.answers = domain.NewAnswerStore()
	s.schedule(domain.StepProblem, s.pacing.Initial)

	if s.hooks.OnOpen != nil {
		s.hooks.OnOpen(ctx, s.sessionEvent(domain.EventSessionOpen))
	}
	s.logger.Debug("Session opened", "session_id", s.rec.ID, "generation", gen)
	view := s.commit(ctx)
	s.mu.Unlock()
	s.notify(view)
}

// Close hides the conversation and invalidates every pending timer. Answers are kept
// until the next Open.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	if s.rec.Status == domain.StatusClosed {
		s.mu.Unlock()
		return
	}
	s.stopTimer()
	s.rec.Generation++
	s.rec.Status = domain.StatusClosed
	s.rec.Pending = false
	s.rec.Locating = false
	s.looking = false

	if s.hooks.OnClose != nil {
		s.hooks.OnClose(ctx, s.sessionEvent(domain.EventSessionClose))
	}
	s.logger.Debug("Session closed", "session_id", s.rec.ID)
	view := s.commit(ctx)
	s.mu.Unlock()
	s.notify(view)
}

// Submit records an answer for the current step and schedules the next prompt.
// Typed addresses are resolved, and towing routes estimated, without holding the
// session lock; the session reports ErrBusy meanwhile.
func (s *Session) Submit(ctx context.Context, answer domain.Answer) error {
	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return err
	}
	step, gen := s.rec.Step, s.rec.Generation
	snapshot := s.answers.Snapshot()
	if err := s.controller.Validate(step, snapshot, answer); err != nil {
		s.mu.Unlock()
		return err
	}
	if !s.needsLookup(answer) {
		err := s.submit(ctx, answer)
		s.finish(ctx, err)
		return err
	}
	s.looking = true
	s.mu.Unlock()

	answer, resolveErr := s.resolveAddress(ctx, answer)
	var metrics domain.RouteMetrics
	var routeErr error
	if dest, ok := answer.(domain.DestinationAddressAnswer); ok && s.router != nil {
		metrics, routeErr = s.router.Estimate(ctx, snapshot.Location, dest.Address)
	}

	s.mu.Lock()
	if gen != s.rec.Generation || step != s.rec.Step {
		closed := s.rec.Status == domain.StatusClosed
		s.mu.Unlock()
		s.logger.Debug("Discarding answer of a previous conversation", "session_id", s.ID())
		if closed {
			return ErrClosed
		}
		return ErrBusy
	}
	s.looking = false
	if resolveErr != nil {
		s.fallback(ctx, step, "address_resolution", resolveErr)
	}
	err := s.submit(ctx, answer)
	if err == nil && step == domain.StepDestination && s.router != nil {
		if routeErr == nil {
			routeErr = s.answers.SetRouteMetrics(metrics.Distance, metrics.Duration)
		}
		if routeErr != nil {
			s.fallback(ctx, step, "route_metrics", routeErr)
		}
	}
	s.finish(ctx, err)
	return err
}

// finish commits and notifies after a successful change and releases s.mu.
func (s *Session) finish(ctx context.Context, err error) {
	if err != nil {
		s.mu.Unlock()
		return
	}
	view := s.commit(ctx)
	s.mu.Unlock()
	s.notify(view)
}

// Dispatch interprets a raw front-end input for the current step: an option value,
// free text, or one of the location controls.
func (s *Session) Dispatch(ctx context.Context, raw string) error {
	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return err
	}
	step := s.rec.Step
	s.mu.Unlock()

	if step == domain.StepLocation {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case runtime.InputUseGPS:
			return s.UseCurrentLocation(ctx)
		case runtime.InputEnterAddress:
			return s.EnterAddress(ctx)
		case runtime.InputBack:
			return s.Back(ctx)
		}
	}

	answer, err := runtime.ParseInput(step, raw)
	if err != nil {
		return err
	}
	return s.Submit(ctx, answer)
}

// UseCurrentLocation asks the configured locator for the visitor's position.
func (s *Session) UseCurrentLocation(ctx context.Context) error {
	return s.LocateWith(ctx, s.locator)
}

// LocateWith asks l for the visitor's position. It blocks until l answers or the
// geolocation timeout expires. Failures are absorbed: the location step switches to
// address entry with a notice. A nil locator counts as an unavailable position.
func (s *Session) LocateWith(ctx context.Context, l ports.Locator) error {
	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.rec.Step != domain.StepLocation {
		step := s.rec.Step
		s.mu.Unlock()
		return fmt.Errorf("%w: position requested on %s", domain.ErrInvalidTransition, step)
	}
	if l == nil {
		s.locationFallback(ctx, domain.NewLocationError(domain.LocationUnavailable, errors.New("no locator configured")))
		view := s.commit(ctx)
		s.mu.Unlock()
		s.notify(view)
		return nil
	}

	gen := s.rec.Generation
	s.rec.Locating = true
	s.rec.Notice = ""
	view := s.commit(ctx)
	s.mu.Unlock()
	s.notify(view)

	lctx, cancel := context.WithTimeout(ctx, s.geoTimeout)
	coords, err := l.CurrentPosition(lctx)
	if err != nil && errors.Is(lctx.Err(), context.DeadlineExceeded) {
		err = domain.NewLocationError(domain.LocationTimeout, err)
	}
	cancel()

	s.mu.Lock()
	if gen != s.rec.Generation || s.rec.Step != domain.StepLocation || !s.rec.Locating {
		s.mu.Unlock()
		s.logger.Debug("Discarding stale position", "session_id", s.ID())
		return nil
	}
	s.rec.Locating = false
	if err == nil {
		err = s.submit(ctx, domain.LocationGPSAnswer{Coordinates: coords})
	}
	if err != nil {
		s.locationFallback(ctx, err)
	}
	view = s.commit(ctx)
	s.mu.Unlock()
	s.notify(view)
	return nil
}

// EnterAddress switches the location step to manual address entry.
func (s *Session) EnterAddress(ctx context.Context) error {
	return s.setEntry(ctx, s.controller.EnterAddress)
}

// Back returns the location step to the method chooser. Nothing else changes.
func (s *Session) Back(ctx context.Context) error {
	return s.setEntry(ctx, s.controller.Back)
}

// View renders the conversation as it currently stands.
func (s *Session) View() domain.ConversationView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// Message composes the outgoing message from the answers recorded so far.
func (s *Session) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return runtime.Compose(s.answers.Snapshot(), s.translator)
}

// Link returns the messaging deep link for the current message.
func (s *Session) Link() string {
	return s.link.For(s.Message())
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Session) Subscribe(l Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Session) setEntry(ctx context.Context, transition func(domain.Step) (domain.LocationEntry, error)) error {
	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return err
	}
	entry, err := transition(s.rec.Step)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if entry == domain.EntryChoose {
		s.rec.Notice = ""
	}
	s.rec.LocationEntry = entry
	view := s.commit(ctx)
	s.mu.Unlock()
	s.notify(view)
	return nil
}

// ready must be called with s.mu held.
func (s *Session) ready() error {
	if s.rec.Status == domain.StatusClosed {
		return ErrClosed
	}
	if s.rec.Pending || s.rec.Locating || s.looking {
		return ErrBusy
	}
	return nil
}

func (s *Session) active() bool {
	return s.rec.Status == domain.StatusOpen || s.rec.Status == domain.StatusRunning
}

// submit must be called with s.mu held.
func (s *Session) submit(ctx context.Context, answer domain.Answer) error {
	step := s.rec.Step
	next, err := s.controller.Submit(step, s.answers, answer)
	if err != nil {
		return err
	}

	s.rec.Step = next
	s.rec.Status = domain.StatusRunning
	s.rec.Pending = true
	s.rec.Notice = ""
	s.rec.LocationEntry = domain.EntryChoose
	s.schedule(next, s.pacing.Answer)

	if s.hooks.OnAnswer != nil {
		ev := s.stepEvent(domain.EventAnswer, step)
		ev.Answer = answer.Kind()
		s.hooks.OnAnswer(ctx, ev)
	}
	return nil
}

// needsLookup must be called with s.mu held.
func (s *Session) needsLookup(answer domain.Answer) bool {
	switch answer.(type) {
	case domain.LocationAddressAnswer:
		return s.resolver != nil
	case domain.DestinationAddressAnswer:
		return s.resolver != nil || s.router != nil
	}
	return false
}

// resolveAddress formats a typed address. On failure or no match the answer is
// returned unchanged with the error, if any.
func (s *Session) resolveAddress(ctx context.Context, answer domain.Answer) (domain.Answer, error) {
	if s.resolver == nil {
		return answer, nil
	}
	var text string
	switch a := answer.(type) {
	case domain.LocationAddressAnswer:
		text = a.Address
	case domain.DestinationAddressAnswer:
		text = a.Address
	default:
		return answer, nil
	}

	formatted, ok, err := s.resolver.Resolve(ctx, text)
	if err != nil {
		return answer, err
	}
	if !ok || formatted == "" {
		return answer, nil
	}
	if _, dest := answer.(domain.DestinationAddressAnswer); dest {
		return domain.DestinationAddressAnswer{Address: formatted}, nil
	}
	return domain.LocationAddressAnswer{Address: formatted}, nil
}

func (s *Session) locationFallback(ctx context.Context, err error) {
	var le *domain.LocationError
	if !errors.As(err, &le) {
		kind := domain.LocationUnknown
		if errors.Is(err, context.DeadlineExceeded) {
			kind = domain.LocationTimeout
		}
		le = domain.NewLocationError(kind, err)
	}
	s.rec.LocationEntry = domain.EntryAddress
	s.rec.Notice = locale.LocationErrorKey(le.Kind)
	s.fallback(ctx, domain.StepLocation, "location_"+string(le.Kind), le)
}

func (s *Session) fallback(ctx context.Context, step domain.Step, reason string, err error) {
	s.logger.Info("Recovered from capability failure",
		"session_id", s.rec.ID,
		"step", step,
		"reason", reason,
		"err", err,
	)
	if s.hooks.OnFallback != nil {
		s.hooks.OnFallback(ctx, &domain.FallbackEvent{
			EventBase: s.base(domain.EventFallback),
			Step:      step,
			Reason:    reason,
			Err:       err,
		})
	}
}

// schedule must be called with s.mu held.
func (s *Session) schedule(step domain.Step, d time.Duration) {
	s.stopTimer()
	gen := s.rec.Generation
	s.timer = s.clock.AfterFunc(d, func() { s.fire(gen, step) })
}

func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// fire runs a pacing timer. A timer from an older generation, or scheduled for a step
// the session has since left, does nothing.
func (s *Session) fire(gen uint64, step domain.Step) {
	s.mu.Lock()
	if gen != s.rec.Generation || step != s.rec.Step || !s.active() {
		s.mu.Unlock()
		s.logger.Debug("Ignoring stale pacing timer", "generation", gen, "step", step)
		return
	}
	s.timer = nil
	ctx := context.Background()

	switch {
	case s.rec.Pending:
		s.rec.Pending = false
		if s.hooks.OnStep != nil {
			s.hooks.OnStep(ctx, s.stepEvent(domain.EventStepEnter, step))
		}
		if step == domain.StepFinal {
			s.schedule(step, s.pacing.Summary)
		}
	case step == domain.StepFinal:
		next, err := s.controller.Reveal(step)
		if err != nil {
			s.mu.Unlock()
			s.logger.Error("Summary reveal failed", "err", err)
			return
		}
		s.rec.Step = next
		s.rec.Status = domain.StatusCompleted
		if s.hooks.OnStep != nil {
			s.hooks.OnStep(ctx, s.stepEvent(domain.EventStepEnter, next))
		}
		if s.hooks.OnComplete != nil {
			s.hooks.OnComplete(ctx, s.sessionEvent(domain.EventComplete))
		}
	default:
		s.mu.Unlock()
		return
	}

	view := s.commit(ctx)
	s.mu.Unlock()
	s.notify(view)
}

// commit persists the record and returns the fresh view. Must be called with s.mu held.
func (s *Session) commit(ctx context.Context) domain.ConversationView {
	s.rec.Answers = s.answers.Snapshot()
	s.rec.UpdatedAt = s.clock.Now()
	if s.store != nil {
		if err := s.store.Save(ctx, s.rec.ID, s.rec.Clone()); err != nil {
			s.logger.Warn("Failed to persist session", "session_id", s.rec.ID, "err", err)
		}
	}
	return s.view()
}

func (s *Session) view() domain.ConversationView {
	st := runtime.StateOf(s.rec)
	st.Answers = s.answers.Snapshot()
	v := runtime.Resolve(st, s.translator)
	v.SessionID = s.rec.ID
	v.Language = s.translator.Language()
	v.Status = s.rec.Status
	if v.Affordance != nil && v.Affordance.Summary != nil {
		v.Affordance.Summary.Link = s.link.For(v.Affordance.Summary.Message)
	}
	return v
}

func (s *Session) notify(view domain.ConversationView) {
	s.listenersMu.Lock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.listenersMu.Unlock()

	for _, l := range ls {
		l(view)
	}
}

func (s *Session) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: s.clock.Now(), Type: t, SessionID: s.rec.ID}
}

func (s *Session) sessionEvent(t domain.EventType) *domain.SessionEvent {
	return &domain.SessionEvent{EventBase: s.base(t), Problem: s.answers.Snapshot().Problem}
}

func (s *Session) stepEvent(t domain.EventType, step domain.Step) *domain.StepEvent {
	p := s.answers.Snapshot().Problem
	return &domain.StepEvent{EventBase: s.base(t), Step: step, Branch: p.Branch(), Problem: p}
}

// halt stops the pacing timer without changing the record.
func (s *Session) halt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimer()
}
