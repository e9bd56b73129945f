package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	tele "gopkg.in/telebot.v3"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/autovisit"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/bot"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/db"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/db/ratelimiter"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/jobs"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/locale"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/secret"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/session"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/stats"
	"github.com/Kofirs2634/p1-20-bot-telegram/pkg/portal"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "p1-20-bot",
		Short:         "Telegram bot of the П1-20 group",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config.toml", "config file path")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newSecretCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "p1-20-bot %s\n", bot.Version)
		},
	}
}

// newSecretCmd helps checking the credential secrets stored for the autovisit
func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Encode or decode an autovisit credential secret",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "encode <login> <password>",
		Short: "Encode portal credentials into a secret",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := secret.Encode(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "decode <secret>",
		Short: "Decode a secret into portal credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			login, password, err := secret.Decode(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", login, password)
			return nil
		},
	})
	return cmd
}

// run starts the bot and blocks until the context is done
func run(ctx context.Context, configPath string) error {
	config, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err = config.setupLogger(); err != nil {
		return err
	}

	timezone := config.Jobs.Timezone
	if timezone == "" {
		timezone = jobs.DefaultTimezone
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone: %w", err)
	}

	store, err := db.Open(ctx, config.Redis)
	if err != nil {
		return err
	}
	defer store.Close()
	limiters := ratelimiter.New(store.Limiter())

	client := portal.New(config.Portal, config.Master.SelfID)
	sessions := session.NewManager(store, store, client, config.Master)
	defer sessions.Close()

	st := stats.New(time.Now().In(location))
	visitor := autovisit.New(client, sessions, config.Portal.BaseURL)
	gradebook := jobs.NewGradebook(store, client, sessions, config.Jobs.Subjects)

	tb, err := bot.NewTelebot(config.TelegramBot)
	if err != nil {
		return err
	}
	if err = tb.SetCommands(locale.Get().CommandsMenu); err != nil {
		log.Warnf("failed to set commands menu: %v", err)
	}

	b := bot.New(config.TelegramBot, bot.Services{
		Messenger: tb,
		Store:     store,
		Limiter:   limiters,
		Portal:    client,
		Grades:    gradebook,
		Sessions:  sessions,
		Visitor:   visitor,
		Stats:     st,
		BaseURL:   config.Portal.BaseURL,
		Location:  location,
	})
	defer b.Wait()

	j, err := jobs.New(config.Jobs, jobs.Services{
		Store:     store,
		Portal:    client,
		Sessions:  sessions,
		Gradebook: gradebook,
		Visitor:   visitor,
		Sender:    b,
		Stats:     st,
		Group:     config.TelegramBot.Group,
		Admins:    config.TelegramBot.Admins,
		BaseURL:   config.Portal.BaseURL,
		Polling:   config.TelegramBot.WebhookURL == "",
	})
	if err != nil {
		return err
	}
	if err = j.Start(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      newHTTPHandler(config, b, limiters),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	if srv.TLSConfig, err = config.tlsConfig(); err != nil {
		return err
	}
	go serve(srv)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("failed to shutdown HTTP server: %v", err)
		}
	}()

	if config.TelegramBot.WebhookURL != "" {
		err = tb.SetWebhook(&tele.Webhook{
			Endpoint:       &tele.WebhookEndpoint{PublicURL: config.TelegramBot.WebhookURL},
			SecretToken:    config.TelegramBot.WebhookSecret,
			AllowedUpdates: []string{"message"},
		})
		if err != nil {
			return fmt.Errorf("failed to set webhook: %w", err)
		}
		log.Infof("receiving updates through the webhook %s", config.WebhookPath)
		b.Listen(ctx, nil)
	} else {
		if err = tb.RemoveWebhook(); err != nil {
			return fmt.Errorf("failed to remove webhook: %w", err)
		}
		log.Info("receiving updates by long polling")
		b.Listen(ctx, b.LongPoller(tb).Poll)
	}

	log.Info("received signal, exiting")
	return nil
}

// serve runs the HTTP server until it is shut down
func serve(srv *http.Server) {
	var err error
	if srv.TLSConfig != nil { // with HTTPS
		log.Infof("started listening on %s (HTTPS)", srv.Addr)
		err = srv.ListenAndServeTLS("", "")
	} else { // without HTTPS
		log.Infof("started listening on %s", srv.Addr)
		err = srv.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("error returned by HTTP server: %v", err)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error(err)
		stop()
		os.Exit(1)
	}
}
