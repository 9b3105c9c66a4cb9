// Package match keeps a user's match history, the statistics derived from
// it and the monthly performance buckets.
package match

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thesrcielos/PadelTracker/internal/apperrors"
	"github.com/thesrcielos/PadelTracker/internal/notify"
	"github.com/thesrcielos/PadelTracker/pkg/logger"
	"github.com/thesrcielos/PadelTracker/pkg/metrics"
	"go.uber.org/zap"
)

// UserSource tells an aggregator whose data it is looking at.
type UserSource interface {
	CurrentUserID() string
}

// StaticUser is a UserSource for a fixed user id.
type StaticUser string

func (u StaticUser) CurrentUserID() string {
	return string(u)
}

// View is what the dashboard renders for the match history.
type View struct {
	Matches []Match `json:"matches"`
	Stats   Stats   `json:"stats"`
	Loading bool    `json:"loading"`
	Error   string  `json:"error,omitempty"`
}

type Option func(*Aggregator)

// WithPerformance feeds every recorded bucket to p.
func WithPerformance(p *PerformanceAggregator) Option {
	return func(a *Aggregator) { a.performance = p }
}

// Aggregator is the single owner of the match list. Loads resolve
// last-started-wins; a match added while a load is in flight is replayed
// onto that load's result.
type Aggregator struct {
	repo        Repository
	users       UserSource
	notifier    notify.Notifier
	log         *logger.Logger
	performance *PerformanceAggregator
	now         func() time.Time

	mu       sync.Mutex
	userID   string
	matches  []Match
	stats    Stats
	err      error
	loadSeq  uint64
	inflight bool
	pending  []Match
	onChange func(View)
}

func NewAggregator(repo Repository, users UserSource, notifier notify.Notifier, log *logger.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		repo:     repo,
		users:    users,
		notifier: notifier,
		log:      log,
		now:      time.Now,
		stats:    ComputeStats(nil, time.Now()),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// OnChange sets the function called with the new view after every change.
func (a *Aggregator) OnChange(fn func(View)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onChange = fn
}

func (a *Aggregator) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.viewLocked()
}

func (a *Aggregator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Load replaces the list with the user's stored matches. A failure is kept
// in the view and returned.
func (a *Aggregator) Load(ctx context.Context) error {
	userID := a.users.CurrentUserID()

	a.mu.Lock()
	a.loadSeq++
	seq := a.loadSeq
	if userID != a.userID {
		a.matches = nil
	}
	a.userID = userID
	a.pending = nil
	if userID == "" {
		a.inflight = false
		a.err = nil
		a.matches = nil
		a.recomputeLocked()
		a.mu.Unlock()
		a.publish()
		return nil
	}
	a.inflight = true
	a.mu.Unlock()
	a.publish()

	matches, err := a.repo.ListMatches(ctx, userID)

	a.mu.Lock()
	if seq != a.loadSeq {
		a.mu.Unlock()
		return nil
	}
	a.inflight = false
	if err != nil {
		a.err = err
		a.pending = nil
		a.mu.Unlock()
		a.log.Error("error fetching matches", err, zap.String("user_id", userID))
		a.publish()
		return err
	}
	a.err = nil
	a.matches = matches
	for _, m := range a.pending {
		a.insertLocked(m)
	}
	a.pending = nil
	a.recomputeLocked()
	a.mu.Unlock()

	a.publish()
	return nil
}

// AddMatch stores the match, bumps the month's performance bucket and
// updates the list. A failed bucket update is reported but does not fail
// the call, since the match itself was saved.
func (a *Aggregator) AddMatch(ctx context.Context, nm NewMatch) (*Match, error) {
	userID := a.users.CurrentUserID()
	if userID == "" {
		a.notifier.Notify(notify.Failure("Error saving match", apperrors.ErrNoSession.Message))
		return nil, apperrors.ErrNoSession
	}
	if r := nm.Validate(); !r.Valid {
		a.notifier.Notify(notify.Failure("Error saving match", r.Message))
		return nil, apperrors.NewAppError(400, r.Message, nil)
	}

	date, _ := time.Parse(DateLayout, nm.Date)
	m := Match{
		ID:       uuid.New().String(),
		UserID:   userID,
		Date:     date,
		Opponent: strings.TrimSpace(nm.Opponent),
		Result:   nm.Result,
		Score:    strings.TrimSpace(nm.Score),
		Location: strings.TrimSpace(nm.Location),
	}
	if err := a.repo.InsertMatch(ctx, &m); err != nil {
		a.log.Error("error saving match", err, zap.String("user_id", userID))
		a.notifier.Notify(notify.Failure("Error saving match", "The match could not be saved"))
		return nil, err
	}
	m.FormattedDate = formatDate(m.Date)
	metrics.MatchesRecordedTotal.WithLabelValues(string(m.Result)).Inc()

	if b, err := a.recordBucket(ctx, userID, m); err != nil {
		metrics.BucketUpsertErrorsTotal.Inc()
		a.log.Error("error updating performance", err, zap.String("user_id", userID), zap.String("month", MonthLabel(m.Date)))
		a.notifier.Notify(notify.Failure("Error updating performance", "The match was saved but the monthly summary was not updated"))
	} else if a.performance != nil {
		a.performance.Apply(userID, *b)
	}

	a.mu.Lock()
	if a.userID == userID {
		if a.inflight {
			a.pending = append(a.pending, m)
		}
		a.insertLocked(m)
		a.recomputeLocked()
	}
	a.mu.Unlock()

	a.notifier.Notify(notify.Info("Match recorded", "The match has been added to your history"))
	a.publish()
	return &m, nil
}

// recordBucket increments the month's counter, creating the bucket on the
// month's first match.
func (a *Aggregator) recordBucket(ctx context.Context, userID string, m Match) (*PerformanceBucket, error) {
	month := MonthLabel(m.Date)
	b, err := a.repo.FindBucket(ctx, userID, month)
	if err != nil {
		return nil, err
	}
	if b == nil {
		b = &PerformanceBucket{ID: uuid.New().String(), UserID: userID, Month: month}
	}
	b.Record(m.Result)
	if err := a.repo.SaveBucket(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// insertLocked keeps matches ordered most recent first; a match already in
// the list is not added twice.
func (a *Aggregator) insertLocked(m Match) {
	for _, existing := range a.matches {
		if existing.ID == m.ID {
			return
		}
	}
	i := sort.Search(len(a.matches), func(i int) bool {
		return !a.matches[i].Date.After(m.Date)
	})
	a.matches = append(a.matches, Match{})
	copy(a.matches[i+1:], a.matches[i:])
	a.matches[i] = m
}

func (a *Aggregator) recomputeLocked() {
	for i := range a.matches {
		if a.matches[i].FormattedDate == "" {
			a.matches[i].FormattedDate = formatDate(a.matches[i].Date)
		}
	}
	a.stats = ComputeStats(a.matches, a.now())
}

func (a *Aggregator) viewLocked() View {
	v := View{
		Matches: make([]Match, len(a.matches)),
		Stats:   a.stats,
		Loading: a.inflight,
	}
	copy(v.Matches, a.matches)
	if a.err != nil {
		v.Error = a.err.Error()
	}
	return v
}

func (a *Aggregator) publish() {
	a.mu.Lock()
	fn := a.onChange
	v := a.viewLocked()
	a.mu.Unlock()
	if fn != nil {
		fn(v)
	}
}

func formatDate(t time.Time) string {
	return t.Format("2 Jan")
}
