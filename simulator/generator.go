package simulator

import (
	"fmt"
	"math/rand/v2"
	"time"

	"feedsim/catalog"
	"feedsim/models"
)

// Generator fabricates records from a catalog. It owns the running counter
// that ids and urls are derived from. Not safe for concurrent use.
type Generator struct {
	catalog *catalog.Catalog
	clock   Clock
	rng     *rand.Rand
	counter uint64
}

// NewRand returns a generator seeded from the wall clock
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
}

func NewGenerator(cat *catalog.Catalog, clock Clock, rng *rand.Rand) (*Generator, error) {
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = RealClock{}
	}
	if rng == nil {
		rng = NewRand()
	}

	return &Generator{
		catalog: cat,
		clock:   clock,
		rng:     rng,
	}, nil
}

// Counter returns the number of records generated so far
func (g *Generator) Counter() uint64 {
	return g.counter
}

// Generate picks a source, a title from that source's category and a
// snippet, all uniformly at random. The id combines the counter and the
// current unix second, so it is only unique as long as the counter is.
func (g *Generator) Generate() models.Record {
	source := pick(g.rng, g.catalog.Sources)
	title := pick(g.rng, g.catalog.TitlesFor(source.Category))
	content := pick(g.rng, g.catalog.Snippets)
	baseURL := pick(g.rng, source.BaseURLs)

	now := g.clock.Now().UTC()
	record := models.Record{
		Id:         fmt.Sprintf("pathway_%d_%d", g.counter, now.Unix()),
		Title:      title,
		Content:    content,
		Url:        fmt.Sprintf("%s/article/%d", baseURL, g.counter),
		CreatedAt:  now,
		SourceName: source.Name,
	}

	g.counter++

	return record
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}
