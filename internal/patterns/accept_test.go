package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/hearth/internal/model"
	"github.com/cleared-dev/hearth/internal/recurrence"
)

func TestExcludeTemplated(t *testing.T) {
	txns := append(netflix(),
		expense("Spotify", date(2024, 2, 3), "10.99"),
		expense("Spotify", date(2024, 3, 3), "10.99"),
		expense("Water Board", date(2024, 2, 9), "31"),
		expense("Water Board", date(2024, 3, 9), "31"),
	)
	found := Detect(txns, DefaultConfig(), now)
	require.Len(t, found, 3)

	templates := []model.RecurrenceTemplate{
		{Merchant: "NETFLIX, INC.", IsActive: true},
		{Description: "Water Boards", IsActive: true}, // near match
		{Merchant: "Spotify", IsActive: false},        // paused templates do not hide candidates
	}
	left := ExcludeTemplated(found, templates)
	require.Len(t, left, 1)
	assert.Equal(t, "spotify", left[0].NormalizedCounterparty)
}

func TestExcludeTemplated_NoTemplates(t *testing.T) {
	found := Detect(netflix(), DefaultConfig(), now)
	assert.Equal(t, found, ExcludeTemplated(found, nil))
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0, similarity("netflix", "netflix"), 1e-9)
	assert.InDelta(t, 1-1.0/12, similarity("water boards", "water board"), 1e-9)
	assert.Less(t, similarity("spotify", "netflix"), similarityThreshold)
}

func TestToTemplate_SchedulesFromLastPayment(t *testing.T) {
	found := Detect(netflix(), DefaultConfig(), now)
	require.Len(t, found, 1)

	tpl := ToTemplate(found[0], TemplateParams{
		ID:          "tpl-netflix",
		HouseholdID: "hh-1",
		CategoryID:  "subscriptions",
		AccountID:   "card",
		Timezone:    "Europe/Stockholm",
	})
	assert.Equal(t, "tpl-netflix", tpl.ID)
	assert.Equal(t, model.FrequencyMonthly, tpl.Frequency)
	assert.Equal(t, 1, tpl.Interval)
	assert.Equal(t, 15, tpl.ByMonthDay)
	assert.Equal(t, date(2024, 4, 15), tpl.StartDate)
	assert.Equal(t, model.DirectionExpense, tpl.Direction)
	assert.Equal(t, "39.25", tpl.Amount.StringFixed(2))
	assert.Equal(t, "Netflix", tpl.Merchant)
	assert.Equal(t, "Europe/Stockholm", tpl.Timezone)
	assert.True(t, tpl.IsActive)
	assert.Empty(t, recurrence.Validate(recurrence.DraftOf(tpl)))

	next, ok := recurrence.NextRun(tpl, now)
	require.True(t, ok)
	assert.Equal(t, date(2024, 5, 15), next)

	occs := recurrence.Expand(tpl, date(2024, 5, 1), date(2024, 7, 31), nil)
	require.Len(t, occs, 3)
	assert.Equal(t, "2024-07-15", occs[2].InstanceKey)
	assert.Equal(t, "tpl-netflix", occs[2].TemplateID)
}
