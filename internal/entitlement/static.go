package entitlement

import (
	"context"
	"sync"
)

// StaticService is an in-process Service whose status is set by the host.
type StaticService struct {
	mu         sync.Mutex
	premium    bool
	restoreErr error
	checkErr   error
	updates    chan bool
}

var _ Service = (*StaticService)(nil)

// NewStaticService creates a StaticService with the given initial status.
func NewStaticService(premium bool) *StaticService {
	return &StaticService{
		premium: premium,
		updates: make(chan bool, 8),
	}
}

// IsPremiumActive implements Service.
func (s *StaticService) IsPremiumActive(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkErr != nil {
		return false, s.checkErr
	}
	return s.premium, nil
}

// RestorePurchases implements Service.
func (s *StaticService) RestorePurchases(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.restoreErr != nil {
		return false, s.restoreErr
	}
	return s.premium, nil
}

// Updates implements Service.
func (s *StaticService) Updates() <-chan bool {
	return s.updates
}

// Publish changes the status and pushes it to the update channel. The push
// is dropped if nobody has drained the previous ones.
func (s *StaticService) Publish(premium bool) {
	s.mu.Lock()
	s.premium = premium
	s.mu.Unlock()

	select {
	case s.updates <- premium:
	default:
	}
}

// Set changes the status without pushing an update.
func (s *StaticService) Set(premium bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.premium = premium
}

// SetRestoreError makes RestorePurchases fail with err until cleared with nil.
func (s *StaticService) SetRestoreError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restoreErr = err
}

// SetCheckError makes IsPremiumActive fail with err until cleared with nil.
func (s *StaticService) SetCheckError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkErr = err
}
