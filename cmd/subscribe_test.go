package cmd

import (
	"fmt"
	"testing"

	"feedsim/models"

	"github.com/stretchr/testify/assert"
)

func subscribeRecords(ids ...int) []models.Record {
	records := []models.Record{}
	for _, id := range ids {
		records = append(records, models.Record{
			Id:         fmt.Sprintf("pathway_%d_1714555800", id),
			Title:      fmt.Sprintf("Title %d", id),
			SourceName: "Tech News",
		})
	}
	return records
}

func TestDiffRecords(t *testing.T) {
	tests := []struct {
		name      string
		previous  []models.Record
		current   []models.Record
		wantFresh []models.Record
	}{
		{
			name:      "from start prints everything",
			previous:  nil,
			current:   subscribeRecords(0, 1, 2),
			wantFresh: subscribeRecords(0, 1, 2),
		},
		{
			name:      "only new ids",
			previous:  subscribeRecords(0, 1, 2),
			current:   subscribeRecords(0, 1, 2, 3, 4),
			wantFresh: subscribeRecords(3, 4),
		},
		{
			name:      "rewritten buffer after eviction",
			previous:  subscribeRecords(0, 1, 2),
			current:   subscribeRecords(2, 3),
			wantFresh: subscribeRecords(3),
		},
		{
			name:      "unchanged buffer",
			previous:  subscribeRecords(0, 1),
			current:   subscribeRecords(0, 1),
			wantFresh: []models.Record{},
		},
		{
			name:      "emptied buffer",
			previous:  subscribeRecords(0, 1),
			current:   []models.Record{},
			wantFresh: []models.Record{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fresh, next := diffRecords(tt.current, idSet(tt.previous))

			assert.Equal(t, tt.wantFresh, fresh)
			assert.Equal(t, idSet(tt.current), next)
			assert.Len(t, next, len(tt.current))
		})
	}
}

func TestDiffRecordsAcrossPolls(t *testing.T) {
	seen := idSet(nil)

	fresh, seen := diffRecords(subscribeRecords(0, 1), seen)
	assert.Equal(t, subscribeRecords(0, 1), fresh)

	fresh, seen = diffRecords(subscribeRecords(1, 2), seen)
	assert.Equal(t, subscribeRecords(2), fresh)

	fresh, _ = diffRecords(subscribeRecords(2, 3, 4), seen)
	assert.Equal(t, subscribeRecords(3, 4), fresh)
}
