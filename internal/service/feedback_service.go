package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/support-kit/helpdesk-bot/internal/domain"
	"github.com/support-kit/helpdesk-bot/internal/events"
	"github.com/support-kit/helpdesk-bot/internal/limiter"
	"github.com/support-kit/helpdesk-bot/internal/store"
)

// FeedbackSubmission is the outcome of a submit attempt. A cooldown
// rejection is an ordinary result carried in Granted/RetryAfter, never an
// error.
type FeedbackSubmission struct {
	Feedback   *domain.Feedback
	Granted    bool
	RetryAfter time.Duration
}

// FeedbackService manages user suggestions and reviews, gated per
// (subject, kind) by the cooldown limiter.
type FeedbackService struct {
	store      store.FeedbackStore
	limiter    limiter.Limiter
	dispatcher events.Dispatcher
	bans       *BanService
	window     time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// FeedbackDependencies bundles collaborators for the feedback service.
type FeedbackDependencies struct {
	Store      store.FeedbackStore
	Limiter    limiter.Limiter
	Dispatcher events.Dispatcher
	Bans       *BanService
	Window     time.Duration
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewFeedbackService constructs the service.
func NewFeedbackService(deps FeedbackDependencies) *FeedbackService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &FeedbackService{
		store:      deps.Store,
		limiter:    deps.Limiter,
		dispatcher: deps.Dispatcher,
		bans:       deps.Bans,
		window:     deps.Window,
		logger:     deps.Logger,
		now:        now,
	}
}

// Submit stores a feedback record when the subject's cooldown for this
// kind has elapsed. The cooldown is granted before the write so two
// near-simultaneous submissions cannot both pass.
func (s *FeedbackService) Submit(ctx context.Context, subjectID int64, kind domain.FeedbackKind, text string) (FeedbackSubmission, error) {
	if s.bans != nil && s.bans.IsBanned(subjectID) {
		return FeedbackSubmission{}, domain.ErrSubjectBanned
	}

	result, err := s.limiter.Allow(ctx, subjectID, "feedback:"+string(kind), s.window)
	if err != nil {
		return FeedbackSubmission{}, fmt.Errorf("feedback cooldown check: %w", err)
	}
	if !result.Granted {
		s.logger.Debug("feedback on cooldown",
			zap.Int64("subject_id", subjectID),
			zap.String("kind", string(kind)),
			zap.Duration("retry_after", result.RetryAfter))
		return FeedbackSubmission{Granted: false, RetryAfter: result.RetryAfter}, nil
	}

	fb := &domain.Feedback{
		ID:        string(kind)[:3] + "_" + uuid.NewString()[:8],
		SubjectID: subjectID,
		Kind:      kind,
		Text:      text,
		CreatedAt: s.now(),
	}
	if err := s.store.PutFeedback(ctx, fb); err != nil {
		return FeedbackSubmission{}, err
	}
	s.logger.Info("feedback received",
		zap.String("feedback_id", fb.ID),
		zap.Int64("subject_id", subjectID),
		zap.String("kind", string(kind)))

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventFeedbackReceived,
			Actor:     domain.ActorUser,
			Timestamp: fb.CreatedAt,
			Payload: events.FeedbackReceivedPayload{
				FeedbackID: fb.ID,
				SubjectID:  subjectID,
				Kind:       kind,
				Text:       text,
			},
		})
	}
	return FeedbackSubmission{Feedback: fb, Granted: true}, nil
}

// Thank marks a feedback record as thanked by the admin.
func (s *FeedbackService) Thank(ctx context.Context, feedbackID string) (*domain.Feedback, error) {
	fb, err := s.store.GetFeedback(ctx, feedbackID)
	if err != nil {
		return nil, err
	}
	if fb.Thanked {
		return fb, nil
	}
	fb.Thanked = true
	if err := s.store.PutFeedback(ctx, fb); err != nil {
		return nil, err
	}
	s.logger.Info("feedback thanked", zap.String("feedback_id", fb.ID))
	return fb, nil
}

// List returns all feedback records.
func (s *FeedbackService) List(ctx context.Context) ([]domain.Feedback, error) {
	return s.store.ListFeedback(ctx)
}
