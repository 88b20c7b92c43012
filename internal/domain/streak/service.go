package streak

import (
	"errors"
	"time"

	"github.com/phrazzld/action-deck/internal/domain"
)

// ErrNilProgress is returned when a nil progress value is passed in.
var ErrNilProgress = errors.New("progress cannot be nil")

// Service defines the interface for streak and quota arithmetic
type Service interface {
	// RecordCompletion computes new progress after one completed action
	RecordCompletion(p *domain.Progress, now time.Time) (*domain.Progress, error)

	// Reconcile applies the daily rollover rules for a new session at now
	Reconcile(p *domain.Progress, now time.Time) (*domain.Progress, error)

	// DaysBetween returns the calendar-day difference between two instants
	DaysBetween(from, to time.Time) int
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new streak service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new streak service with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// RecordCompletion implements Service.RecordCompletion
func (s *defaultService) RecordCompletion(
	p *domain.Progress,
	now time.Time,
) (*domain.Progress, error) {
	if p == nil {
		return nil, ErrNilProgress
	}
	return calculateCompletion(p, now, s.params), nil
}

// Reconcile implements Service.Reconcile
func (s *defaultService) Reconcile(
	p *domain.Progress,
	now time.Time,
) (*domain.Progress, error) {
	if p == nil {
		return nil, ErrNilProgress
	}
	return calculateRollover(p, now, s.params), nil
}

// DaysBetween implements Service.DaysBetween
func (s *defaultService) DaysBetween(from, to time.Time) int {
	return calendarDaysBetween(from, to, s.params.Location)
}
