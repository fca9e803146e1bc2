package main

import (
	"time"

	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/pkg/errors"
	"github.com/quesurifn/portal-deadline-sync/calendar"
	h "github.com/quesurifn/portal-deadline-sync/handlers"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort   string
	previewOnly bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server for previewing and registering deadlines",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			appConfig.Server.Port = servePort
		}

		loc, err := location()
		if err != nil {
			return err
		}

		var (
			registrar *calendar.Registrar
			upcoming  *calendar.Upcoming
		)
		if !previewOnly {
			svc, err := newAuthProvider().Service(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "calendar authorisation")
			}
			store, err := openLedger()
			if err != nil {
				return errors.Wrap(err, "open ledger")
			}
			registrar = &calendar.Registrar{
				Logger:     logger,
				Inserter:   calendar.GoogleCalendar{Service: svc},
				CalendarID: appConfig.Calendar.ID,
				TimeZone:   loc.String(),
			}
			upcoming = newUpcoming(calendar.GoogleCalendar{Service: svc})
			if store != nil {
				defer store.Close()
				registrar.Ledger = store
			}
		}

		feed, err := newFeed()
		if err != nil {
			return err
		}

		app := fiber.New(fiber.Config{AppName: appConfig.AppName})
		fiberLogger := fiberzap.New(fiberzap.Config{
			Logger: logger,
		})
		fiberLimiter := limiter.New(limiter.Config{
			Next: func(c *fiber.Ctx) bool {
				return c.IP() == "127.0.0.1"
			},
			Max:        20,
			Expiration: 30 * time.Second,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.Get("x-forwarded-for")
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Too many requests",
				})
			},
		})

		app.Use(fiberLimiter)
		app.Use(fiberLogger)

		h := &h.Handlers{
			Logger:   logger,
			Pipeline: newPipeline(loc, registrar),
			Feed:     feed,
			Upcoming: upcoming,
		}

		app.Get("/", h.RootHandler)
		app.Post("/assignments/preview", h.PreviewHandler)
		app.Post("/assignments", h.RegisterHandler)
		app.Post("/feed/preview", h.FeedPreviewHandler)
		app.Get("/events/upcoming", h.UpcomingHandler)
		app.Get("/events/next", h.NextEventHandler)

		logger.Info("listening", zap.String("port", appConfig.Server.Port), zap.Bool("preview_only", previewOnly))
		return app.Listen(":" + appConfig.Server.Port)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "3000", "app server port")
	serveCmd.Flags().BoolVar(&previewOnly, "preview-only", false, "serve previews without calendar access")
}
