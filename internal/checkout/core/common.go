package core

import (
	"context"
	"fmt"

	apperrors "hotelbook/pkg/errors"
)

// Limiter caps how many callers run a section at once.
type Limiter struct {
	slots chan struct{}
}

func NewLimiter(max int) *Limiter {
	if max <= 0 {
		max = 1
	}
	return &Limiter{slots: make(chan struct{}, max)}
}

// Run waits for a slot or for ctx, then runs fn. The slot is released even if fn panics.
func (l *Limiter) Run(ctx context.Context, fn func() error) error {
	select {
	case l.slots <- struct{}{}:
	case <-ctx.Done():
		return apperrors.Unavailable("Payment gateway")
	}
	defer func() { <-l.slots }()

	return fn()
}

func IsMissing(str string) bool {
	return len(str) == 0
}

func MissingParamErr(paramName string) error {
	return apperrors.InvalidInput(fmt.Sprintf("required param [%v] is missing", paramName))
}
