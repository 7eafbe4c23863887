package translation

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SimulatedBackend fakes a translation for development without any service.
type SimulatedBackend struct {
	delay time.Duration
}

func NewSimulatedBackend(delay time.Duration) *SimulatedBackend {
	if delay < 0 {
		delay = 0
	}
	return &SimulatedBackend{delay: delay}
}

func (b *SimulatedBackend) Name() string {
	return BackendSimulated
}

// Translate returns "[<TARGET>-Pseudo] <text>" after the configured delay.
func (b *SimulatedBackend) Translate(ctx context.Context, req Request) (string, error) {
	if b != nil && b.delay > 0 {
		timer := time.NewTimer(b.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Sprintf("[%s-Pseudo] %s", strings.ToUpper(req.TargetLang), req.Text), nil
}
