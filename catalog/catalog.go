// Package catalog holds the static sources, titles and content snippets that
// synthetic records are drawn from.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"feedsim/models"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var (
	ErrDuplicateSource = errors.New("source names must be unique")
	ErrMissingTitles   = errors.New("no titles for source category")
)

// Catalog is the immutable pool of content the generator draws from
type Catalog struct {
	Sources      []models.Source `toml:"sources" validate:"required,min=1,dive"`
	NewsTitles   []string        `toml:"news_titles" validate:"dive,required"`
	MarketTitles []string        `toml:"market_titles" validate:"dive,required"`
	Snippets     []string        `toml:"snippets" validate:"required,min=1,dive,required"`
}

var validate = validator.New()

// Default returns the reference catalog with two sources
func Default() *Catalog {
	return &Catalog{
		Sources: []models.Source{
			{
				Name:     "Tech News",
				Category: models.CategoryNews,
				BaseURLs: []string{"https://techcrunch.com", "https://arstechnica.com"},
			},
			{
				Name:     "Market Data",
				Category: models.CategoryMarket,
				BaseURLs: []string{"https://marketwatch.com", "https://bloomberg.com"},
			},
		},
		NewsTitles: []string{
			"AI Productivity Tools See 340% Growth in Enterprise Adoption",
			"OpenAI Releases New GPT-5 Model with Enhanced Reasoning",
			"Startup Funding Reaches Record Highs in Q1 2024",
			"Microsoft Integrates AI Assistants Across Office Suite",
			"Google's Gemini Model Shows Breakthrough in Code Generation",
		},
		MarketTitles: []string{
			"Tech Stocks Rally on AI Investment News",
			"Venture Capital Focuses on AI Infrastructure",
			"SaaS Companies Report Strong Q1 Earnings",
			"Cloud Computing Revenue Exceeds Projections",
			"Cybersecurity Spending Increases 45% Year-over-Year",
		},
		Snippets: []string{
			"Recent market analysis shows unprecedented growth in AI-powered tools, with enterprise adoption increasing by 340% year-over-year. Companies are investing heavily in automation and productivity enhancement solutions.",
			"The latest developments in artificial intelligence are transforming how businesses operate, with new models offering enhanced capabilities for content generation, data analysis, and process automation.",
			"Investment patterns indicate a strong preference for AI and automation technologies, with funding rounds averaging 60% higher than previous quarters for companies in this sector.",
			"Integration of AI assistants into existing software ecosystems is accelerating, providing users with intelligent automation capabilities across multiple platforms and workflows.",
			"Market research indicates that companies implementing AI productivity tools are seeing average efficiency gains of 25-40% across various operational metrics.",
		},
	}
}

// TitlesFor returns the title pool for a category
func (c *Catalog) TitlesFor(category models.Category) []string {
	switch category {
	case models.CategoryNews:
		return c.NewsTitles
	case models.CategoryMarket:
		return c.MarketTitles
	}
	return nil
}

// Source looks up a source by name
func (c *Catalog) Source(name string) (models.Source, bool) {
	return lo.Find(c.Sources, func(s models.Source) bool {
		return s.Name == name
	})
}

func (c *Catalog) SourceNames() []string {
	return lo.Map(c.Sources, func(s models.Source, _ int) string {
		return s.Name
	})
}

// Validate checks that every source can produce a record
func (c *Catalog) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}

	if dups := lo.FindDuplicates(c.SourceNames()); len(dups) > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateSource, strings.Join(dups, ", "))
	}

	for _, source := range c.Sources {
		if len(c.TitlesFor(source.Category)) == 0 {
			return fmt.Errorf("%w: %s (%s)", ErrMissingTitles, source.Name, source.Category)
		}
	}

	return nil
}
