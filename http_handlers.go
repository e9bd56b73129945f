package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v3"
)

// response bodies
const (
	InternalErrorResponseBody  = "Internal error"
	RateLimitedResponseBody    = "Rate limited"
	TelegramRequestTokenHeader = "X-Telegram-Bot-Api-Secret-Token"
)

// UpdateQueue accepts the updates received by the webhook
type UpdateQueue interface {
	Enqueue(ctx context.Context, u tele.Update) error
}

// RequestLimiter limits the webhook requests of a client
type RequestLimiter interface {
	WebhookRequestAllowed(ctx context.Context, IP string) bool
}

// webhookHandler handles the Telegram Bot updates pushed to the webhook
type webhookHandler struct {
	queue  UpdateQueue
	secret string
}

// ServeHTTP handles an incoming Telegram Bot Update request
func (h *webhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// check if request is legit from Telegram
	if h.secret != "" && r.Header.Get(TelegramRequestTokenHeader) != h.secret {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Errorf("failed to read request body: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintln(w, InternalErrorResponseBody)
		return
	}
	if len(body) == 0 { // Cloudflare sends an additional empty request sometimes
		return
	}

	var update tele.Update
	if err = json.Unmarshal(body, &update); err != nil {
		log.WithField("IP", r.RemoteAddr).Errorf("invalid update: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if update.Message == nil {
		log.WithField("IP", r.RemoteAddr).Debug("ignored update without message")
		return
	}

	if err = h.queue.Enqueue(r.Context(), update); err != nil {
		logger := log.WithField("update", update.ID)
		if update.Message.Chat != nil {
			logger = logger.WithField("UID", update.Message.Chat.ID)
		}
		logger.Errorf("failed to enqueue update: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
}

// handleHealth answers the liveness probes
func handleHealth(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintln(w, "ok")
}

// middleware provides some useful middlewares for the server
func middleware(limiter RequestLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() { // returns an HTTP 500 response if the next handler got panicked
			if err := recover(); err != nil {
				log.Errorf("error recovered in request \"%s %s\": %v", r.Method, r.URL.Path, err)
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprintln(w, InternalErrorResponseBody)
			}
		}()

		// gets client's real IP if serving behind Cloudflare
		if ip := r.Header.Get("Cf-Connecting-Ip"); ip != "" {
			r.RemoteAddr = ip
		}

		if limiter != nil && !limiter.WebhookRequestAllowed(r.Context(), r.RemoteAddr) {
			log.WithField("IP", r.RemoteAddr).Info("rate limited")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprintln(w, RateLimitedResponseBody)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// newHTTPHandler routes the webhook and the health check
func newHTTPHandler(config Config, queue UpdateQueue, limiter RequestLimiter) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	if config.WebhookPath != "" {
		mux.Handle(config.WebhookPath, &webhookHandler{queue: queue, secret: config.TelegramBot.WebhookSecret})
	}
	return middleware(limiter, mux)
}
