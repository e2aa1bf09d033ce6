package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"feedsim/buffer"
	"feedsim/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

const (
	defaultLimit = 100
	pingInterval = 5 * time.Second
)

// BufferReader loads the current buffer contents
type BufferReader interface {
	Load(ctx context.Context) ([]models.Record, error)
}

type ServerConfig struct {
	// The buffer the simulator writes to
	Buffer BufferReader

	// Broadcast channel to pass new records to SSE clients
	Broadcaster *Broadcaster
}

// Returns a fiber.App instance serving a read-only view of the buffer
func Server(config *ServerConfig) *fiber.App {
	bc := config.Broadcaster

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"status":  c.Response().StatusCode(),
			"latency": time.Since(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New())
	app.Use(compress.New())
	app.Use(cors.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/records", func(c *fiber.Ctx) error {
		records, err := loadBuffer(c.UserContext(), config.Buffer)
		if err != nil {
			log.WithError(err).Error("Error reading buffer")
			return c.Status(fiber.StatusInternalServerError).SendString("Error reading buffer")
		}

		if source := c.Query("source"); source != "" {
			records = lo.Filter(records, func(r models.Record, _ int) bool {
				return r.SourceName == source
			})
		}

		limit := c.QueryInt("limit", defaultLimit)
		if limit < 1 {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid limit")
		}
		if len(records) > limit {
			records = records[len(records)-limit:]
		}

		return c.JSON(records)
	})

	app.Get("/records/latest", func(c *fiber.Ctx) error {
		records, err := loadBuffer(c.UserContext(), config.Buffer)
		if err != nil {
			log.WithError(err).Error("Error reading buffer")
			return c.Status(fiber.StatusInternalServerError).SendString("Error reading buffer")
		}

		if len(records) == 0 {
			return c.Status(fiber.StatusNotFound).SendString("No records yet")
		}

		return c.JSON(records[len(records)-1])
	})

	app.Get("/stats", func(c *fiber.Ctx) error {
		records, err := loadBuffer(c.UserContext(), config.Buffer)
		if err != nil {
			log.WithError(err).Error("Error reading buffer")
			return c.Status(fiber.StatusInternalServerError).SendString("Error reading buffer")
		}

		bySource := lo.GroupBy(records, func(r models.Record) string {
			return r.SourceName
		})
		sources := lo.Keys(bySource)
		slices.Sort(sources)

		counts := lo.Map(sources, func(source string, _ int) models.SourceCount {
			return models.SourceCount{Source: source, Count: len(bySource[source])}
		})

		return c.JSON(fiber.Map{
			"total":   len(records),
			"sources": counts,
		})
	})

	app.Delete("/records/sse", func(c *fiber.Ctx) error {
		bc.RemoveClient(c.Query("key"))
		return c.SendString("OK")
	})

	app.Get("/records/sse", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("Transfer-Encoding", "chunked")

		// Unique client key
		key := uuid.New().String()
		events := make(chan models.RecordEvent, 10)
		bc.AddClient(key, events)

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer bc.RemoveClient(key)

			alive := time.NewTicker(pingInterval)
			defer alive.Stop()

			fmt.Fprintf(w, "event: init\ndata: %s\n\n", key)
			if err := w.Flush(); err != nil {
				log.Errorf("Failed to send init event: %v", err)
				return
			}

			for {
				select {
				case <-alive.C:
					fmt.Fprintf(w, "event: ping\ndata: \n\n")
					if err := w.Flush(); err != nil {
						log.Warnf("Failed to flush ping for client %s: %v", key, err)
						return
					}

				case event, ok := <-events:
					if !ok {
						return
					}
					data, err := json.Marshal(event.Record)
					if err != nil {
						log.Errorf("Error marshalling record for client %s: %v", key, err)
						continue
					}
					fmt.Fprintf(w, "event: record\ndata: %s\n\n", data)
					if err := w.Flush(); err != nil {
						log.Warnf("Failed to flush record for client %s: %v", key, err)
						return
					}
				}
			}
		}))

		return nil
	})

	return app
}

// loadBuffer treats a malformed buffer as empty, the same way the simulator does
func loadBuffer(ctx context.Context, reader BufferReader) ([]models.Record, error) {
	records, err := reader.Load(ctx)
	if errors.Is(err, buffer.ErrMalformed) {
		log.WithError(err).Warn("Serving empty buffer")
		return []models.Record{}, nil
	}
	return records, err
}
