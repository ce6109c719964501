package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
)

type ExamSlotService interface {
	// Slots returns the slot document as stored. The file is read on every call
	// so edits apply without a restart.
	Slots(ctx context.Context) (json.RawMessage, error)
}

type examSlotService struct {
	path string
	log  *zap.Logger
}

func NewExamSlotService(path string, log *zap.Logger) ExamSlotService {
	return &examSlotService{
		path: path,
		log:  log.With(zap.String("service", "exam_slots")),
	}
}

func (s *examSlotService) Slots(ctx context.Context) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		s.log.Error("Exam slots configuration not found", zap.Error(err), zap.String("path", s.path))
		return nil, fmt.Errorf("%w: configuration not found", ErrExamSlotsUnavailable)
	}

	if !json.Valid(raw) {
		s.log.Error("Invalid JSON in exam slots configuration", zap.String("path", s.path))
		return nil, fmt.Errorf("%w: configuration is invalid", ErrExamSlotsUnavailable)
	}

	return json.RawMessage(raw), nil
}
