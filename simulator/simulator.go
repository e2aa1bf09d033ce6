// Package simulator runs the generate, merge and write loop that keeps the
// buffer file fed with synthetic records.
package simulator

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"feedsim/buffer"
	"feedsim/models"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// Store persists the buffer between cycles
type Store interface {
	Load(ctx context.Context) ([]models.Record, error)
	Save(ctx context.Context, records []models.Record) error
}

// Sink receives every record after it has been written to the buffer
type Sink interface {
	Publish(ctx context.Context, record models.Record) error
}

// Config holds the loop settings
type Config struct {
	// Capacity is the maximum number of records kept in the buffer
	Capacity int
	// MinInterval and MaxInterval bound the random wait before each cycle
	MinInterval time.Duration
	MaxInterval time.Duration
	// ErrorDelay is the fixed wait after a failed cycle
	ErrorDelay time.Duration
}

// DefaultConfig returns a Config with the reference timings
func DefaultConfig() Config {
	return Config{
		Capacity:    100,
		MinInterval: 30 * time.Second,
		MaxInterval: 60 * time.Second,
		ErrorDelay:  5 * time.Second,
	}
}

type Simulator struct {
	cfg       Config
	generator *Generator
	store     Store
	sinks     []Sink
	clock     Clock
	rng       *rand.Rand
}

type Option func(*Simulator)

func WithSinks(sinks ...Sink) Option {
	return func(s *Simulator) {
		s.sinks = append(s.sinks, sinks...)
	}
}

func WithClock(clock Clock) Option {
	return func(s *Simulator) {
		s.clock = clock
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(s *Simulator) {
		s.rng = rng
	}
}

func New(cfg Config, generator *Generator, store Store, opts ...Option) *Simulator {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultConfig().Capacity
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}
	if cfg.MaxInterval < cfg.MinInterval {
		cfg.MaxInterval = cfg.MinInterval
	}
	if cfg.ErrorDelay < 0 {
		cfg.ErrorDelay = 0
	}

	s := &Simulator{
		cfg:       cfg,
		generator: generator,
		store:     store,
		clock:     RealClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = NewRand()
	}

	return s
}

// NextInterval draws the wait before the next cycle, uniform over
// [MinInterval, MaxInterval]
func (s *Simulator) NextInterval() time.Duration {
	spread := int64(s.cfg.MaxInterval - s.cfg.MinInterval)
	return s.cfg.MinInterval + time.Duration(s.rng.Int64N(spread+1))
}

// Run sleeps, runs a cycle, and repeats until ctx is cancelled or a fatal
// error occurs. Recoverable cycle errors are logged and followed by the
// configured error delay.
func (s *Simulator) Run(ctx context.Context) error {
	log.WithFields(log.Fields{
		"capacity":     s.cfg.Capacity,
		"min_interval": s.cfg.MinInterval,
		"max_interval": s.cfg.MaxInterval,
	}).Info("Starting feed simulator...")

	retry := backoff.NewConstantBackOff(s.cfg.ErrorDelay)

	for {
		if err := s.clock.Sleep(ctx, s.NextInterval()); err != nil {
			return err
		}

		_, err := s.RunCycle(ctx)
		if err == nil {
			retry.Reset()
			continue
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if IsFatal(err) {
			log.WithError(err).Error("Fatal error in feed simulator")
			return err
		}

		log.WithError(err).Error("Error in feed simulator")

		if err := s.clock.Sleep(ctx, retry.NextBackOff()); err != nil {
			return err
		}
	}
}

// RunCycle generates one record, merges it into the buffer and writes the
// buffer back. A missing or malformed buffer counts as empty.
func (s *Simulator) RunCycle(ctx context.Context) (models.Record, error) {
	start := time.Now()
	defer func() {
		cycleDuration.Observe(time.Since(start).Seconds())
	}()

	record := s.generator.Generate()

	records, err := s.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, buffer.ErrMalformed) {
			cycleErrors.WithLabelValues("load").Inc()
			return record, classify("load buffer", err)
		}
		log.WithError(err).Warn("Discarding malformed buffer")
		records = nil
	}

	records = buffer.Append(records, record, s.cfg.Capacity)

	if err := s.store.Save(ctx, records); err != nil {
		cycleErrors.WithLabelValues("save").Inc()
		return record, classify("save buffer", err)
	}

	recordsGenerated.WithLabelValues(record.SourceName).Inc()
	bufferRecords.Set(float64(len(records)))

	log.WithFields(log.Fields{
		"id":       record.Id,
		"source":   record.SourceName,
		"buffered": len(records),
	}).Infof("Generated new data item: %s", record.Title)

	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, record); err != nil {
			cycleErrors.WithLabelValues("publish").Inc()
			return record, classify("publish record", err)
		}
	}

	return record, nil
}
