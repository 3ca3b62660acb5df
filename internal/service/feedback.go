package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/xid"

	"github.com/sakif/bloom/internal/apperror"
	"github.com/sakif/bloom/internal/model"
	"github.com/sakif/bloom/internal/repository"
)

type FeedbackService struct {
	repo      repository.FeedbackRepository
	validator *validator.Validate
	logger    *slog.Logger
}

func NewFeedbackService(repo repository.FeedbackRepository, logger *slog.Logger) *FeedbackService {
	return &FeedbackService{repo: repo, validator: newValidator(), logger: logger}
}

// FeedbackInput is the feedback dialog's payload. UserID is empty for
// anonymous visitors.
type FeedbackInput struct {
	UserID string `json:"userId"`
	Text   string `json:"feedback" validate:"required,min=10,max=1000"`
}

// Submit stores the message once its trimmed text is 10 to 1000 characters.
func (s *FeedbackService) Submit(ctx context.Context, in FeedbackInput) (*model.Feedback, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validate(s.validator, in); err != nil {
		return nil, err
	}

	fb := &model.Feedback{
		ID:     xid.New().String(),
		UserID: in.UserID,
		Text:   in.Text,
	}
	if err := s.repo.CreateFeedback(ctx, fb); err != nil {
		s.logger.Error("failed to store feedback", slog.String("error", err.Error()))
		return nil, apperror.Transient("Failed to submit feedback.", err)
	}

	s.logger.Info("feedback received", slog.String("id", fb.ID))
	return fb, nil
}
