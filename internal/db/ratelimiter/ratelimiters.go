package ratelimiter

import (
	"context"
	"fmt"

	"github.com/go-redis/redis_rate/v10"
	log "github.com/sirupsen/logrus"
)

// limits
var (
	limitBotUpdate    = redis_rate.PerSecond(2)
	limitLinkAttempt  = redis_rate.PerMinute(3)
	limitManualVisit  = redis_rate.PerMinute(2)
	limitWebhookCalls = redis_rate.PerSecond(50)
)

// limit key prefixes
const (
	keyPrefixBotUpdate    = "r:bu"
	keyPrefixLinkAttempt  = "r:la"
	keyPrefixManualVisit  = "r:mv"
	keyPrefixWebhookCalls = "r:wh"
)

// Limiters checks the request rates of users against fixed limits
type Limiters struct {
	limiter *redis_rate.Limiter
}

// New creates the limiters on top of a redis rate limiter
func New(limiter *redis_rate.Limiter) *Limiters {
	return &Limiters{limiter: limiter}
}

// BotUpdateAllowed checks if an incoming message from a chat with the given ID is allowed to get processed
func (l *Limiters) BotUpdateAllowed(ctx context.Context, chatID int64) bool {
	return l.allow(ctx, fmt.Sprintf("%s:%d", keyPrefixBotUpdate, chatID), limitBotUpdate)
}

// LinkAttemptAllowed checks if a chat may look up another portal profile to link
func (l *Limiters) LinkAttemptAllowed(ctx context.Context, chatID int64) bool {
	return l.allow(ctx, fmt.Sprintf("%s:%d", keyPrefixLinkAttempt, chatID), limitLinkAttempt)
}

// ManualVisitAllowed checks if a chat may run the autovisit by hand
func (l *Limiters) ManualVisitAllowed(ctx context.Context, chatID int64) bool {
	return l.allow(ctx, fmt.Sprintf("%s:%d", keyPrefixManualVisit, chatID), limitManualVisit)
}

// WebhookRequestAllowed checks if a webhook request from the given IP address is allowed to get processed
func (l *Limiters) WebhookRequestAllowed(ctx context.Context, IP string) bool {
	return l.allow(ctx, fmt.Sprintf("%s:%s", keyPrefixWebhookCalls, IP), limitWebhookCalls)
}

// allow denies the request when the limiter fails
func (l *Limiters) allow(ctx context.Context, key string, limit redis_rate.Limit) bool {
	res, err := l.limiter.Allow(ctx, key, limit)
	if err != nil {
		log.Errorf("failed to check rate limit %s: %v", key, err)
		return false
	}
	return res.Allowed != 0
}
