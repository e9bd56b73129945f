package notify

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// default pacing, Telegram allows about 30 messages per second to different chats
const (
	DefaultBatchSize  = 20
	DefaultStride     = 40 * time.Millisecond
	DefaultBatchPause = time.Second
)

// Render returns the message for a recipient, or false to skip them
type Render func(chatID int64) (Message, bool)

// Same renders the same message for every recipient
func Same(msg Message) Render {
	return func(int64) (Message, bool) { return msg, true }
}

// Result represents the outcome of a broadcast
type Result struct {
	Sent    int
	Failed  int
	Skipped int
}

// Pacer delivers a message to many recipients in batches
type Pacer struct {
	sender     Sender
	batchSize  int
	stride     time.Duration
	batchPause time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

// PacerOption configures a Pacer
type PacerOption func(*Pacer)

// WithPacing overrides the default batch size and delays
func WithPacing(batchSize int, stride, batchPause time.Duration) PacerOption {
	return func(p *Pacer) {
		p.batchSize = batchSize
		p.stride = stride
		p.batchPause = batchPause
	}
}

// WithSleep replaces the function the pacer waits with
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) PacerOption {
	return func(p *Pacer) { p.sleep = sleep }
}

// NewPacer creates a pacer delivering through the sender
func NewPacer(sender Sender, opts ...PacerOption) *Pacer {
	p := &Pacer{
		sender:     sender,
		batchSize:  DefaultBatchSize,
		stride:     DefaultStride,
		batchPause: DefaultBatchPause,
		sleep:      sleep,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.batchSize <= 0 {
		p.batchSize = DefaultBatchSize
	}
	return p
}

// Broadcast delivers a rendered message to every recipient, waiting the stride between two
// messages of a batch and the batch pause between batches.
// A failed delivery is logged and counted, it never stops the broadcast; only the context does.
func (p *Pacer) Broadcast(ctx context.Context, recipients []int64, render Render) (Result, error) {
	var result Result
	delivered := 0
	for _, id := range recipients {
		msg, ok := render(id)
		if !ok {
			result.Skipped++
			continue
		}

		if delivered > 0 {
			wait := p.stride
			if delivered%p.batchSize == 0 {
				wait = p.batchPause
			}
			if err := p.sleep(ctx, wait); err != nil {
				return result, err
			}
		}
		delivered++

		if err := p.sender.Deliver(ctx, id, msg); err != nil {
			log.WithField("UID", id).Warnf("failed to deliver notification: %v", err)
			result.Failed++
			continue
		}
		result.Sent++
	}
	return result, nil
}

// sleep waits for the duration or until the context is done
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
