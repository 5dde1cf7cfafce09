/*
Package interview drives a session from its first question to its match report.

A session starts active with the first selected question. Each submitted
answer is recorded and the session either advances to the next question or
completes because the time budget ran out, the question ceiling was hit, or
the catalog is exhausted. Once completed, the first result request ranks the
archetypes and stores a match report; later requests return it unchanged.

Work on a single session is serialized inside the service. Different
sessions proceed in parallel.
*/
package interview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/khanglvm/orbit/internal/domain"
	"github.com/khanglvm/orbit/internal/logger"
	"github.com/khanglvm/orbit/internal/matching"
	"github.com/khanglvm/orbit/internal/selector"
)

const (
	// DefaultTimeLimit is how long a session accepts answers after creation.
	DefaultTimeLimit = 20 * time.Minute

	// DefaultQuestionLimit is the number of distinct answered questions
	// that completes a session.
	DefaultQuestionLimit = 40

	// DefaultTopN is the number of recommendations kept in a match report.
	DefaultTopN = 3

	// DefaultReportCacheSize bounds the in-process match report cache.
	DefaultReportCacheSize = 256
)

// Service implements the session state machine and result retrieval.
type Service struct {
	store     Store
	selector  selector.Selector
	engine    *matching.Engine
	estimator Estimator
	logger    *zap.Logger
	metrics   *Metrics
	now       func() time.Time

	timeLimit     time.Duration
	questionLimit int
	topN          int
	cacheSize     int

	locks   *sessionLocks
	reports *lru.Cache[string, domain.MatchReport]
}

// Option configures a Service.
type Option func(*Service)

// WithSelector replaces the sequential question selector.
func WithSelector(sel selector.Selector) Option {
	return func(s *Service) { s.selector = sel }
}

// WithEngine replaces the matching engine.
func WithEngine(e *matching.Engine) Option {
	return func(s *Service) { s.engine = e }
}

// WithEstimator replaces the constant preference estimator.
func WithEstimator(e Estimator) Option {
	return func(s *Service) { s.estimator = e }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLimits overrides the time budget and question ceiling. Non-positive
// values keep the defaults.
func WithLimits(timeLimit time.Duration, questionLimit int) Option {
	return func(s *Service) {
		if timeLimit > 0 {
			s.timeLimit = timeLimit
		}
		if questionLimit > 0 {
			s.questionLimit = questionLimit
		}
	}
}

// WithTopN sets how many recommendations a report keeps.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithReportCacheSize sets the in-process report cache size.
func WithReportCacheSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.cacheSize = n
		}
	}
}

// NewService creates a service backed by store.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("interview: nil store")
	}

	s := &Service{
		store:         store,
		selector:      selector.NewSequential(),
		engine:        matching.NewEngine(),
		estimator:     NewConstantEstimator(),
		now:           func() time.Time { return time.Now().UTC() },
		timeLimit:     DefaultTimeLimit,
		questionLimit: DefaultQuestionLimit,
		topN:          DefaultTopN,
		cacheSize:     DefaultReportCacheSize,
		locks:         newSessionLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}

	cache, err := lru.New[string, domain.MatchReport](s.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create report cache: %w", err)
	}
	s.reports = cache

	return s, nil
}

// StartResult is the outcome of Start.
type StartResult struct {
	SessionID string
	Question  domain.Question
}

// SubmitRequest carries one answer.
type SubmitRequest struct {
	SessionID  string
	QuestionID string
	Answer     domain.Answer
	LatencyMS  *int64
}

// SubmitResult is either the next question or a completion.
type SubmitResult struct {
	// Question is set while the session stays active.
	Question *domain.Question

	Done      bool
	SessionID string
	Reason    domain.CompletionReason
}

// ResultView is a match report as returned to callers.
type ResultView struct {
	SessionID          string
	Recommendations    []domain.Recommendation
	Confidence         *float64
	AverageUncertainty *float64
	QuestionsAnswered  int
}

// Start creates a session and returns its first question. An empty catalog
// is a configuration error and no session is stored.
func (s *Service) Start(ctx context.Context) (StartResult, error) {
	catalog, err := s.store.ListQuestions(ctx)
	if err != nil {
		return StartResult{}, fmt.Errorf("failed to load questions: %w", err)
	}

	first, ok := s.selector.SelectNext(catalog, nil)
	if !ok {
		return StartResult{}, newError(KindConfiguration, "start", "no questions available")
	}

	userID, err := s.store.CreateUser(ctx)
	if err != nil {
		return StartResult{}, fmt.Errorf("failed to create user: %w", err)
	}

	now := s.now()
	session := domain.Session{
		ID:          uuid.NewString(),
		UserID:      userID,
		AnsweredIDs: []string{},
		Status:      domain.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return StartResult{}, fmt.Errorf("failed to create session: %w", err)
	}

	s.metrics.sessionsStarted.Inc()
	s.logger.Info("session started",
		zap.String(logger.FieldSession, session.ID),
		zap.String("first_question", first.ID),
	)

	return StartResult{SessionID: session.ID, Question: first}, nil
}

// SubmitAnswer records an answer and advances the session.
func (s *Service) SubmitAnswer(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	unlock := s.locks.lock(req.SessionID)
	defer unlock()

	session, err := s.loadSession(ctx, "submit", req.SessionID)
	if err != nil {
		return SubmitResult{}, err
	}

	if session.Status == domain.StatusCompleted {
		s.logger.Debug("answer rejected", zap.String(logger.FieldSession, session.ID), zap.String("cause", "completed"))
		return SubmitResult{}, newError(KindInvalidState, "submit", "session already completed")
	}

	now := s.now()
	if now.Sub(session.CreatedAt) >= s.timeLimit {
		return s.complete(ctx, session, domain.ReasonTimeLimit, now, nil)
	}

	catalog, err := s.store.ListQuestions(ctx)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("failed to load questions: %w", err)
	}

	question, ok := findQuestion(catalog, req.QuestionID)
	if !ok {
		s.logger.Debug("answer rejected", zap.String(logger.FieldSession, session.ID), zap.String(logger.FieldQuestion, req.QuestionID))
		return SubmitResult{}, newError(KindNotFound, "submit", "question not found")
	}

	resp := &domain.Response{
		ID:         uuid.NewString(),
		SessionID:  session.ID,
		QuestionID: question.ID,
		Answer:     req.Answer,
		LatencyMS:  req.LatencyMS,
		Timestamp:  now,
	}
	if !session.HasAnswered(question.ID) {
		session.AnsweredIDs = append(session.AnsweredIDs, question.ID)
	}
	session.UpdatedAt = now

	if len(session.AnsweredIDs) >= s.questionLimit {
		return s.complete(ctx, session, domain.ReasonQuestionLimit, now, resp)
	}

	next, ok := s.selector.SelectNext(catalog, session.AnsweredIDs)
	if !ok {
		return s.complete(ctx, session, domain.ReasonNoMoreQuestions, now, resp)
	}

	if err := s.store.SaveProgress(ctx, session, resp); err != nil {
		return SubmitResult{}, fmt.Errorf("failed to save progress: %w", err)
	}
	s.metrics.answersRecorded.Inc()

	return SubmitResult{Question: &next}, nil
}

func (s *Service) complete(ctx context.Context, session domain.Session, reason domain.CompletionReason, now time.Time, resp *domain.Response) (SubmitResult, error) {
	session.Complete(reason, now)
	if err := s.store.SaveProgress(ctx, session, resp); err != nil {
		return SubmitResult{}, fmt.Errorf("failed to save progress: %w", err)
	}
	if resp != nil {
		s.metrics.answersRecorded.Inc()
	}

	s.metrics.sessionsCompleted.WithLabelValues(string(reason)).Inc()
	s.logger.Info("session completed",
		zap.String(logger.FieldSession, session.ID),
		zap.String("reason", string(reason)),
		zap.Int("answered", len(session.AnsweredIDs)),
	)

	return SubmitResult{Done: true, SessionID: session.ID, Reason: reason}, nil
}

// Result returns the match report of a completed session, computing and
// storing it on the first call.
func (s *Service) Result(ctx context.Context, sessionID string) (ResultView, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.loadSession(ctx, "result", sessionID)
	if err != nil {
		return ResultView{}, err
	}

	if session.Status != domain.StatusCompleted {
		return ResultView{}, newError(KindInvalidState, "result", "session not completed")
	}

	if report, ok := s.reports.Get(session.ID); ok {
		s.metrics.reportCacheHits.Inc()
		return view(session, report), nil
	}

	report, err := s.store.GetMatchReport(ctx, session.ID)
	switch {
	case err == nil:
		s.reports.Add(session.ID, report)
		return view(session, report), nil
	case !errors.Is(err, domain.ErrNotFound):
		return ResultView{}, fmt.Errorf("failed to load match report: %w", err)
	}

	report, err = s.computeReport(ctx, session)
	if err != nil {
		return ResultView{}, err
	}

	report, err = s.store.CreateMatchReport(ctx, report)
	if err != nil {
		return ResultView{}, fmt.Errorf("failed to save match report: %w", err)
	}
	s.reports.Add(session.ID, report)

	return view(session, report), nil
}

func (s *Service) computeReport(ctx context.Context, session domain.Session) (domain.MatchReport, error) {
	responses, err := s.store.ListResponses(ctx, session.ID)
	if err != nil {
		return domain.MatchReport{}, fmt.Errorf("failed to load responses: %w", err)
	}

	user, err := s.estimator.Estimate(ctx, session, responses)
	if err != nil {
		return domain.MatchReport{}, fmt.Errorf("failed to estimate preferences: %w", err)
	}

	archetypes, err := s.store.ListArchetypes(ctx)
	if err != nil {
		return domain.MatchReport{}, fmt.Errorf("failed to load archetypes: %w", err)
	}

	matches, err := s.engine.RankMatches(user, archetypes)
	if errors.Is(err, matching.ErrNoArchetypes) {
		return domain.MatchReport{}, newError(KindConfiguration, "result", "no archetypes available")
	}
	if err != nil {
		return domain.MatchReport{}, fmt.Errorf("failed to rank archetypes: %w", err)
	}

	s.metrics.reportsComputed.Inc()
	s.logger.Info("match report computed",
		zap.String(logger.FieldSession, session.ID),
		zap.Int("archetypes", len(archetypes)),
		zap.Int("responses", len(responses)),
	)

	return domain.MatchReport{
		ID:              uuid.NewString(),
		SessionID:       session.ID,
		Recommendations: matching.Top(matches, s.topN),
		CreatedAt:       s.now(),
	}, nil
}

func (s *Service) loadSession(ctx context.Context, op, id string) (domain.Session, error) {
	session, err := s.store.GetSession(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Session{}, &Error{Kind: KindNotFound, Op: op, Msg: "session not found"}
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

func findQuestion(catalog []domain.Question, id string) (domain.Question, bool) {
	for _, q := range catalog {
		if q.ID == id {
			return q, true
		}
	}
	return domain.Question{}, false
}

// view copies the report so callers cannot mutate the cached entry.
func view(session domain.Session, report domain.MatchReport) ResultView {
	return ResultView{
		SessionID:          session.ID,
		Recommendations:    append([]domain.Recommendation(nil), report.Recommendations...),
		Confidence:         copyFloat(report.Confidence),
		AverageUncertainty: copyFloat(report.AverageUncertainty),
		QuestionsAnswered:  len(session.AnsweredIDs),
	}
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
