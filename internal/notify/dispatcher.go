// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrDispatcherClosed is returned for work submitted after [Dispatcher.Close].
var ErrDispatcherClosed = errors.New("notify: dispatcher closed")

// Dispatcher bounds and tracks deliveries made through a [Sender].
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// NewDispatcher wraps sender. Each delivery is bounded by timeout.
func NewDispatcher(sender Sender, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, timeout: timeout, logger: logger}
}

/*
Send delivers message synchronously.

Description: The caller's context is honoured and additionally capped by the
dispatcher timeout, so a slow relay never holds a request open indefinitely.

Returns:
  - error: the delivery failure, or ErrDispatcherClosed
*/
func (dispatcher *Dispatcher) Send(ctx context.Context, message Message) error {
	if !dispatcher.acquire() {
		return ErrDispatcherClosed
	}
	defer dispatcher.inflight.Done()

	return dispatcher.deliver(ctx, message)
}

/*
Go delivers message in the background.

Description: The delivery is detached from ctx cancellation but keeps its
values (request ID, logger). onDone, when non-nil, runs after delivery with
its outcome. Failures are logged and counted; they never reach the caller.
*/
func (dispatcher *Dispatcher) Go(ctx context.Context, message Message, onDone func(context.Context, error)) {
	if !dispatcher.acquire() {
		dispatcher.logger.WarnContext(ctx, "notification_dropped",
			slog.String("template", string(message.Template)),
		)
		if onDone != nil {
			onDone(ctx, ErrDispatcherClosed)
		}
		return
	}

	detached := context.WithoutCancel(ctx)
	go func() {
		defer dispatcher.inflight.Done()

		err := dispatcher.deliver(detached, message)
		if onDone != nil {
			onDone(detached, err)
		}
	}()
}

// Close stops accepting work and waits for in-flight deliveries or ctx.
func (dispatcher *Dispatcher) Close(ctx context.Context) error {
	dispatcher.mu.Lock()
	dispatcher.closed = true
	dispatcher.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		dispatcher.inflight.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// acquire registers one unit of in-flight work unless closed.
func (dispatcher *Dispatcher) acquire() bool {
	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()

	if dispatcher.closed {
		return false
	}
	dispatcher.inflight.Add(1)
	return true
}

func (dispatcher *Dispatcher) deliver(ctx context.Context, message Message) error {
	if dispatcher.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, dispatcher.timeout)
		defer cancel()
	}

	start := time.Now()
	err := dispatcher.sender.Send(ctx, message)
	recordDelivery(message.Template, err)

	if err != nil {
		dispatcher.logger.ErrorContext(ctx, "notification_failed",
			slog.String("template", string(message.Template)),
			slog.Duration("elapsed", time.Since(start)),
			slog.Any("error", err),
		)
		return err
	}

	dispatcher.logger.InfoContext(ctx, "notification_sent",
		slog.String("template", string(message.Template)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}
