package match

import (
	"context"
	"sync"
	"time"

	"github.com/thesrcielos/PadelTracker/pkg/logger"
	"go.uber.org/zap"
)

// DefaultMonths is how many placeholder months a user without buckets sees.
const DefaultMonths = 6

type MonthPerformance struct {
	Month  string `json:"month"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

type PerformanceView struct {
	Months  []MonthPerformance `json:"months"`
	Loading bool               `json:"loading"`
	Error   string             `json:"error,omitempty"`
}

// PerformanceAggregator holds the monthly buckets of the current user in
// creation order.
type PerformanceAggregator struct {
	repo  Repository
	users UserSource
	log   *logger.Logger
	now   func() time.Time

	mu       sync.Mutex
	userID   string
	buckets  []PerformanceBucket
	err      error
	loadSeq  uint64
	inflight bool
	pending  []PerformanceBucket
	onChange func(PerformanceView)
}

func NewPerformanceAggregator(repo Repository, users UserSource, log *logger.Logger) *PerformanceAggregator {
	return &PerformanceAggregator{repo: repo, users: users, log: log, now: time.Now}
}

func (p *PerformanceAggregator) OnChange(fn func(PerformanceView)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = fn
}

// DefaultBuckets is a zeroed bucket for each of the DefaultMonths months
// ending with now's month.
func DefaultBuckets(now time.Time) []PerformanceBucket {
	labels := RecentMonths(now, DefaultMonths)
	buckets := make([]PerformanceBucket, len(labels))
	for i, l := range labels {
		buckets[i] = PerformanceBucket{Month: l}
	}
	return buckets
}

func (p *PerformanceAggregator) Load(ctx context.Context) error {
	userID := p.users.CurrentUserID()

	p.mu.Lock()
	p.loadSeq++
	seq := p.loadSeq
	if userID != p.userID {
		p.buckets = nil
	}
	p.userID = userID
	p.pending = nil
	if userID == "" {
		p.inflight, p.err, p.buckets = false, nil, nil
		p.mu.Unlock()
		p.publish()
		return nil
	}
	p.inflight = true
	p.mu.Unlock()
	p.publish()

	buckets, err := p.repo.ListBuckets(ctx, userID)

	p.mu.Lock()
	if seq != p.loadSeq {
		p.mu.Unlock()
		return nil
	}
	p.inflight = false
	if err != nil {
		p.err = err
		p.pending = nil
		p.mu.Unlock()
		p.log.Error("error fetching performance", err, zap.String("user_id", userID))
		p.publish()
		return err
	}
	p.err = nil
	p.buckets = buckets
	for _, b := range p.pending {
		p.applyLocked(b)
	}
	p.pending = nil
	p.mu.Unlock()

	p.publish()
	return nil
}

// Apply merges a bucket that was just written for userID.
func (p *PerformanceAggregator) Apply(userID string, b PerformanceBucket) {
	p.mu.Lock()
	if userID != p.userID {
		p.mu.Unlock()
		return
	}
	if p.inflight {
		p.pending = append(p.pending, b)
	}
	p.applyLocked(b)
	p.mu.Unlock()
	p.publish()
}

func (p *PerformanceAggregator) applyLocked(b PerformanceBucket) {
	for i := range p.buckets {
		if p.buckets[i].Month == b.Month {
			p.buckets[i] = b
			return
		}
	}
	p.buckets = append(p.buckets, b)
}

func (p *PerformanceAggregator) View() PerformanceView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked()
}

func (p *PerformanceAggregator) viewLocked() PerformanceView {
	buckets := p.buckets
	if len(buckets) == 0 && p.userID != "" {
		buckets = DefaultBuckets(p.now())
	}
	v := PerformanceView{Months: make([]MonthPerformance, len(buckets)), Loading: p.inflight}
	for i, b := range buckets {
		v.Months[i] = MonthPerformance{Month: b.Month, Wins: b.Wins, Losses: b.Losses}
	}
	if p.err != nil {
		v.Error = p.err.Error()
	}
	return v
}

func (p *PerformanceAggregator) publish() {
	p.mu.Lock()
	fn := p.onChange
	v := p.viewLocked()
	p.mu.Unlock()
	if fn != nil {
		fn(v)
	}
}
