// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant provides the simulated reply generator.
package assistant

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/mzansigpt/mzansi-tui/internal/model"
	"github.com/mzansigpt/mzansi-tui/internal/util"
)

// DefaultDelay is the simulated "thinking" time before a reply is delivered.
const DefaultDelay = time.Second

// =============================================================================
// RESPONDER
// =============================================================================

// Responder produces simulated assistant replies. Each reply is a pure
// function of the user's message, delivered after a bounded delay so the UI
// exercises the same deferred-completion path a real model would. Generation
// never blocks the stores: callers run Reply on their own goroutine and
// append the result themselves, guarding against the conversation having
// been deleted in the meantime.
type Responder struct {
	delay   time.Duration
	limiter *rate.Limiter
	now     func() time.Time
}

// Option configures a Responder.
type Option func(*Responder)

// WithDelay overrides the simulated thinking delay.
func WithDelay(d time.Duration) Option {
	return func(r *Responder) { r.delay = d }
}

// WithClock injects the timestamp source. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Responder) { r.now = now }
}

// WithRateLimit caps reply generation at n per second with the given burst.
func WithRateLimit(n float64, burst int) Option {
	return func(r *Responder) { r.limiter = rate.NewLimiter(rate.Limit(n), burst) }
}

// New creates a responder with the default delay and a generous rate limit.
func New(opts ...Option) *Responder {
	r := &Responder{
		delay:   DefaultDelay,
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reply generates the assistant reply to userContent after the configured
// delay. It returns early with ctx.Err() if the context is cancelled, which
// is how an in-flight reply is abandoned.
func (r *Responder) Reply(ctx context.Context, userContent string) (*model.Message, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	timer := time.NewTimer(r.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	return model.NewMessage(model.RoleAssistant, replyText(userContent), r.now()), nil
}

// replyText builds the canned reply, echoing a preview of the user message.
func replyText(userContent string) string {
	return "Thank you for your message! This is a simulated response. " +
		"In a real application, this would be connected to an AI model like GPT-4. " +
		"Your message was: \"" + util.EllipsizeRunes(userContent, 100) + "\""
}
