package skill

import (
	"context"
	"math"
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

type UserSource interface {
	CurrentUserID() string
}

type View struct {
	Skills      []Skill `json:"skills"`
	BestSkill   Best    `json:"bestSkill"`
	Improvement int     `json:"improvement"`
	Loading     bool    `json:"loading"`
	Error       string  `json:"error,omitempty"`
}

// Aggregator owns the skill list of the current user. Every write is
// followed by a reload, and the most recently started load wins.
type Aggregator struct {
	repo     Repository
	users    UserSource
	notifier notify.Notifier
	log      *logger.Logger
	now      func() time.Time

	mu       sync.Mutex
	userID   string
	skills   []Skill
	err      error
	loadSeq  uint64
	inflight bool
	onChange func(View)
}

func NewAggregator(repo Repository, users UserSource, notifier notify.Notifier, log *logger.Logger) *Aggregator {
	return &Aggregator{repo: repo, users: users, notifier: notifier, log: log, now: time.Now}
}

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

func (a *Aggregator) Load(ctx context.Context) error {
	userID := a.users.CurrentUserID()

	a.mu.Lock()
	a.loadSeq++
	seq := a.loadSeq
	if userID != a.userID {
		a.skills = nil
	}
	a.userID = userID
	if userID == "" {
		a.inflight, a.err = false, nil
		a.mu.Unlock()
		a.publish()
		return nil
	}
	a.inflight = true
	a.mu.Unlock()
	a.publish()

	skills, err := a.repo.List(ctx, userID)

	a.mu.Lock()
	if seq != a.loadSeq {
		a.mu.Unlock()
		return nil
	}
	a.inflight = false
	if err != nil {
		a.err = err
		a.mu.Unlock()
		a.log.Error("error fetching skills", err, zap.String("user_id", userID))
		a.publish()
		return err
	}
	a.err = nil
	a.skills = skills
	a.mu.Unlock()

	a.publish()
	return nil
}

// UpdateSkill rates name with value, creating the row on the first rating,
// and reloads the list.
func (a *Aggregator) UpdateSkill(ctx context.Context, name string, value int) error {
	if err := a.write(ctx, Rating{Name: name, Value: value}); err != nil {
		a.notifier.Notify(notify.Failure("Error", "The skill could not be updated"))
		return err
	}
	return a.Load(ctx)
}

// UpdateSkills applies every rating in order, stopping at the first failure,
// and reloads once at the end.
func (a *Aggregator) UpdateSkills(ctx context.Context, ratings []Rating) error {
	for _, r := range ratings {
		if err := a.write(ctx, r); err != nil {
			a.notifier.Notify(notify.Failure("Error", "The skills could not be updated"))
			_ = a.Load(ctx)
			return err
		}
	}
	if err := a.Load(ctx); err != nil {
		return err
	}
	a.notifier.Notify(notify.Info("Skills updated", "Your skills have been updated"))
	return nil
}

// RecordAssessment stores ratings as a dated assessment and then applies
// them as the user's current skill values.
func (a *Aggregator) RecordAssessment(ctx context.Context, notes string, ratings []Rating) (*Assessment, error) {
	assessment, err := a.newAssessment(notes, ratings)
	if err != nil {
		a.notifier.Notify(notify.Failure("Error", "The assessment could not be saved"))
		return nil, err
	}
	if err := a.repo.InsertAssessment(ctx, assessment); err != nil {
		a.log.Error("error saving assessment", err, zap.String("user_id", assessment.UserID))
		a.notifier.Notify(notify.Failure("Error", "The assessment could not be saved"))
		return nil, err
	}
	metrics.AssessmentsRecordedTotal.Inc()

	for _, r := range assessment.Ratings {
		if err := a.write(ctx, r); err != nil {
			a.notifier.Notify(notify.Failure("Error", "The assessment was saved but the skills could not be updated"))
			_ = a.Load(ctx)
			return assessment, err
		}
	}
	if err := a.Load(ctx); err != nil {
		return assessment, err
	}
	a.notifier.Notify(notify.Info("Assessment saved", "The new assessment has been saved"))
	return assessment, nil
}

func (a *Aggregator) newAssessment(notes string, ratings []Rating) (*Assessment, error) {
	userID := a.users.CurrentUserID()
	if userID == "" {
		return nil, apperrors.ErrNoSession
	}
	if len(ratings) == 0 {
		return nil, apperrors.NewAppError(400, MsgAssessmentEmpty, nil)
	}
	seen := make(map[string]bool, len(ratings))
	clean := make([]Rating, 0, len(ratings))
	for _, r := range ratings {
		if v := r.Validate(); !v.Valid {
			return nil, apperrors.NewAppError(400, v.Message, nil)
		}
		name := strings.TrimSpace(r.Name)
		if seen[name] {
			return nil, apperrors.NewAppError(400, MsgAssessmentDuplicate, nil)
		}
		seen[name] = true
		clean = append(clean, Rating{Name: name, Value: r.Value})
	}
	now := a.now()
	return &Assessment{
		ID:      uuid.New().String(),
		UserID:  userID,
		Date:    time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Notes:   strings.TrimSpace(notes),
		Ratings: clean,
	}, nil
}

// Assessments returns the assessment history of the current user, newest
// first.
func (a *Aggregator) Assessments(ctx context.Context) ([]AssessmentEntry, error) {
	userID := a.users.CurrentUserID()
	if userID == "" {
		return nil, apperrors.ErrNoSession
	}
	assessments, err := a.repo.ListAssessments(ctx, userID)
	if err != nil {
		a.log.Error("error fetching assessments", err, zap.String("user_id", userID))
		return nil, err
	}
	return History(assessments), nil
}

func (a *Aggregator) write(ctx context.Context, r Rating) error {
	userID := a.users.CurrentUserID()
	if userID == "" {
		return apperrors.ErrNoSession
	}
	if v := r.Validate(); !v.Valid {
		return apperrors.NewAppError(400, v.Message, nil)
	}
	name := strings.TrimSpace(r.Name)

	existing, err := a.repo.Find(ctx, userID, name)
	if err != nil {
		a.log.Error("error updating skill", err, zap.String("user_id", userID), zap.String("skill", name))
		return err
	}
	if existing != nil {
		err = a.repo.UpdateValue(ctx, existing.ID, r.Value)
	} else {
		err = a.repo.Insert(ctx, &Skill{ID: uuid.New().String(), UserID: userID, Name: name, Value: r.Value})
	}
	if err != nil {
		a.log.Error("error updating skill", err, zap.String("user_id", userID), zap.String("skill", name))
		return err
	}
	metrics.SkillUpdatesTotal.Inc()
	return nil
}

// BestSkill is the highest value; on a tie the earlier skill is kept.
func BestSkill(skills []Skill) Best {
	var best Best
	for i, s := range skills {
		if i == 0 || s.Value > best.Value {
			best = Best{Name: s.Name, Value: s.Value}
		}
	}
	return best
}

// Improvement is the average rating scaled down to a 0-10 score.
func Improvement(skills []Skill) int {
	if len(skills) == 0 {
		return 0
	}
	sum := 0
	for _, s := range skills {
		sum += s.Value
	}
	return int(math.Round(float64(sum) / float64(len(skills)) / 10))
}

func (a *Aggregator) viewLocked() View {
	v := View{
		Skills:      make([]Skill, len(a.skills)),
		BestSkill:   BestSkill(a.skills),
		Improvement: Improvement(a.skills),
		Loading:     a.inflight,
	}
	for i, s := range a.skills {
		s.FullMark = FullMark
		v.Skills[i] = s
	}
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
