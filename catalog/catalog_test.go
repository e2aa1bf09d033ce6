package catalog_test

import (
	"testing"

	"feedsim/catalog"
	"feedsim/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	c := catalog.Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, []string{"Tech News", "Market Data"}, c.SourceNames())
	assert.Len(t, c.NewsTitles, 5)
	assert.Len(t, c.MarketTitles, 5)
	assert.Len(t, c.Snippets, 5)
}

func TestTitlesFor(t *testing.T) {
	c := catalog.Default()
	assert.Equal(t, c.NewsTitles, c.TitlesFor(models.CategoryNews))
	assert.Equal(t, c.MarketTitles, c.TitlesFor(models.CategoryMarket))
	assert.Nil(t, c.TitlesFor("weather"))
}

func TestSourceLookup(t *testing.T) {
	c := catalog.Default()

	source, ok := c.Source("Market Data")
	require.True(t, ok)
	assert.Equal(t, models.CategoryMarket, source.Category)

	_, ok = c.Source("Sports")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *catalog.Catalog)
		wantErr error
	}{
		{
			name:   "default",
			mutate: func(c *catalog.Catalog) {},
		},
		{
			name:   "no sources",
			mutate: func(c *catalog.Catalog) { c.Sources = nil },
		},
		{
			name:   "unknown category",
			mutate: func(c *catalog.Catalog) { c.Sources[0].Category = "weather" },
		},
		{
			name:   "invalid base url",
			mutate: func(c *catalog.Catalog) { c.Sources[0].BaseURLs = []string{"not a url"} },
		},
		{
			name:   "no snippets",
			mutate: func(c *catalog.Catalog) { c.Snippets = nil },
		},
		{
			name: "duplicate source names",
			mutate: func(c *catalog.Catalog) {
				c.Sources[1].Name = c.Sources[0].Name
			},
			wantErr: catalog.ErrDuplicateSource,
		},
		{
			name:    "missing market titles",
			mutate:  func(c *catalog.Catalog) { c.MarketTitles = nil },
			wantErr: catalog.ErrMissingTitles,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := catalog.Default()
			tt.mutate(c)
			err := c.Validate()

			switch {
			case tt.name == "default":
				assert.NoError(t, err)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				assert.Error(t, err)
			}
		})
	}
}

func TestMarketOnlyCatalogNeedsNoNewsTitles(t *testing.T) {
	c := catalog.Default()
	c.Sources = c.Sources[1:]
	c.NewsTitles = nil
	assert.NoError(t, c.Validate())
}
