package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/hearth/internal/ledger"
	"github.com/cleared-dev/hearth/internal/runlog"
)

func newHousehold(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	out, err := runHearth(t, "init", dir, "--name", "The Smiths", "--no-git")
	require.NoError(t, err, out)
	return dir
}

// addRent adds a monthly rent template and returns its short id.
func addRent(t *testing.T, dir string, asOf string) string {
	t.Helper()
	out, err := runHearth(t, "template", "add", "--dir", dir, "--as-of", asOf,
		"--frequency", "monthly", "--day", "1", "--start", "2024-01-01",
		"--amount", "1200", "--description", "Rent", "--category", "rent")
	require.NoError(t, err, out)
	fields := strings.Fields(out)
	require.GreaterOrEqual(t, len(fields), 3, out)
	return strings.TrimSuffix(fields[2], ":")
}

func TestTemplateAdd(t *testing.T) {
	dir := newHousehold(t)
	out, err := runHearth(t, "template", "add", "--dir", dir, "--as-of", "2024-11-15",
		"--frequency", "monthly", "--day", "1", "--start", "2024-01-01",
		"--amount", "1200", "--description", "Rent", "--category", "rent")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Monthly on the 1st")
	assert.Contains(t, out, "1200.00")
	assert.Contains(t, out, "next run 2024-12-01")
}

func TestTemplateAdd_WeeklyWeekdays(t *testing.T) {
	dir := newHousehold(t)
	out, err := runHearth(t, "template", "add", "--dir", dir, "--as-of", "2024-12-01",
		"--frequency", "weekly", "--interval", "2", "--weekday", "thu", "--weekday", "mon",
		"--start", "2024-12-02", "--amount", "40", "--description", "Cleaner")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Bi-weekly on Mon, Thu")
	assert.Contains(t, out, "next run 2024-12-02")
}

func TestTemplateAdd_ReportsAllErrors(t *testing.T) {
	dir := newHousehold(t)
	out, err := runHearth(t, "template", "add", "--dir", dir,
		"--frequency", "fortnightly", "--interval", "0", "--day", "32",
		"--amount", "10", "--description", "Bad")
	require.Error(t, err)
	assert.Contains(t, out, `unknown frequency "fortnightly"`)
	assert.Contains(t, out, "interval must be at least 1")
	assert.Contains(t, out, "day of month must be between 1 and 31")
}

func TestTemplateAdd_UnknownCategory(t *testing.T) {
	dir := newHousehold(t)
	out, err := runHearth(t, "template", "add", "--dir", dir,
		"--frequency", "monthly", "--amount", "10", "--description", "Gym", "--category", "fitness")
	require.Error(t, err)
	assert.Contains(t, out, `unknown category "fitness"`)
}

func TestTemplateListShow(t *testing.T) {
	dir := newHousehold(t)
	short := addRent(t, dir, "2024-11-15")

	out, err := runHearth(t, "template", "list", "--dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, short)
	assert.Contains(t, out, "active")
	assert.Contains(t, out, "expense 1200.00")

	out, err = runHearth(t, "template", "show", short, "--dir", dir, "--as-of", "2024-11-15")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Schedule:    Monthly on the 1st")
	assert.Contains(t, out, "Next run:    2024-12-01")
	assert.Contains(t, out, "2024-12-01  expense     1200.00  Rent")
	assert.Contains(t, out, "2025-02-01")
	assert.NotContains(t, out, "2025-03-01")
}

func TestTemplatePauseResume(t *testing.T) {
	dir := newHousehold(t)
	short := addRent(t, dir, "2024-11-15")

	out, err := runHearth(t, "template", "pause", short, "--dir", dir, "--as-of", "2024-11-15")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Paused template")

	out, err = runHearth(t, "next", "--dir", dir, "--as-of", "2024-11-15")
	require.NoError(t, err, out)
	assert.Contains(t, out, "No active templates")

	out, err = runHearth(t, "template", "list", "--dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "paused")

	out, err = runHearth(t, "template", "resume", short, "--dir", dir, "--as-of", "2024-11-15")
	require.NoError(t, err, out)
	assert.Contains(t, out, "next run 2024-12-01")

	out, err = runHearth(t, "next", "--dir", dir, "--as-of", "2024-11-15")
	require.NoError(t, err, out)
	assert.Contains(t, out, "2024-12-01")
}

func TestExpand_December(t *testing.T) {
	dir := newHousehold(t)
	short := addRent(t, dir, "2024-11-15")

	out, err := runHearth(t, "expand", short, "--dir", dir, "--from", "2024-12-01", "--to", "2024-12-31")
	require.NoError(t, err, out)
	assert.Equal(t, "2024-12-01  expense     1200.00  Rent\n", out)
}

func TestOverrideModify(t *testing.T) {
	dir := newHousehold(t)
	short := addRent(t, dir, "2024-11-15")

	out, err := runHearth(t, "override", "modify", short, "2024-12-01", "--dir", dir, "--amount", "1300")
	require.NoError(t, err, out)
	assert.Contains(t, out, "modified amount=1300.00")

	out, err = runHearth(t, "expand", short, "--dir", dir, "--from", "2024-12-01", "--to", "2024-12-31")
	require.NoError(t, err, out)
	assert.Equal(t, "2024-12-01  expense     1300.00  Rent  (modified)\n", out)

	out, err = runHearth(t, "template", "show", short, "--dir", dir, "--as-of", "2024-11-15")
	require.NoError(t, err, out)
	assert.Contains(t, out, "2024-12-01  modified amount=1300.00")
}

func TestOverrideModify_EmptyDescription(t *testing.T) {
	dir := newHousehold(t)
	short := addRent(t, dir, "2024-11-15")

	out, err := runHearth(t, "override", "modify", short, "2024-12-01", "--dir", dir, "--description", "")
	require.NoError(t, err, out)
	assert.Contains(t, out, `modified description=""`)

	out, err = runHearth(t, "expand", short, "--dir", dir, "--from", "2024-12-01", "--to", "2024-12-31")
	require.NoError(t, err, out)
	assert.Equal(t, "2024-12-01  expense     1200.00    (modified)\n", out)
}

func TestOverrideSkip(t *testing.T) {
	dir := newHousehold(t)
	short := addRent(t, dir, "2024-11-15")

	out, err := runHearth(t, "override", "skip", short, "2024-12-01", "--dir", dir)
	require.NoError(t, err, out)

	out, err = runHearth(t, "expand", short, "--dir", dir, "--from", "2024-12-01", "--to", "2024-12-31")
	require.NoError(t, err, out)
	assert.Equal(t, "No occurrences\n", out)

	out, err = runHearth(t, "expand", short, "--dir", dir, "--from", "2024-11-01", "--to", "2025-01-31")
	require.NoError(t, err, out)
	assert.Contains(t, out, "2024-11-01")
	assert.Contains(t, out, "2025-01-01")
	assert.NotContains(t, out, "2024-12-01")
}

func TestOverride_NotScheduled(t *testing.T) {
	dir := newHousehold(t)
	short := addRent(t, dir, "2024-11-15")

	out, err := runHearth(t, "override", "skip", short, "2024-12-02", "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, out, "2024-12-02 is not a scheduled date")

	out, err = runHearth(t, "override", "modify", short, "2024-12-01", "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, out, "nothing to modify")
}

func TestGenerate_Idempotent(t *testing.T) {
	dir := newHousehold(t)
	addRent(t, dir, "2024-01-01")

	out, err := runHearth(t, "generate", "--dir", dir, "--as-of", "2024-03-15", "--up-to", "2024-03-31")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Generated 3 entries up to 2024-03-31")

	out, err = runHearth(t, "generate", "--dir", dir, "--as-of", "2024-03-15", "--up-to", "2024-03-31")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Generated 0 entries up to 2024-03-31")

	entries, err := ledger.NewService(dir).ReadAll()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "2024-03-01", entries[2].InstanceKey)

	_, err = os.Stat(filepath.Join(dir, "ledger", "2024", "02", "ledger.csv"))
	assert.NoError(t, err)

	log, err := runlog.Read(dir)
	require.NoError(t, err)
	var counts []int
	for _, e := range log {
		if e.Command == "generate" {
			counts = append(counts, e.Count)
		}
	}
	assert.Equal(t, []int{3, 0}, counts)
}

func TestGenerate_DefaultHorizon(t *testing.T) {
	dir := newHousehold(t)
	addRent(t, dir, "2024-01-01")

	// Horizon is 30 days: 2024-01-15 + 30 = 2024-02-14.
	out, err := runHearth(t, "generate", "--dir", dir, "--as-of", "2024-01-15")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Generated 2 entries up to 2024-02-14")
}

func TestGenerate_Commits(t *testing.T) {
	dir := t.TempDir()
	_, err := runHearth(t, "init", dir, "--name", "The Smiths")
	require.NoError(t, err)
	addRent(t, dir, "2024-01-01")

	out, err := runHearth(t, "generate", "--dir", dir, "--as-of", "2024-03-15", "--up-to", "2024-03-31")
	require.NoError(t, err, out)

	subjects := gitLog(t, dir, "%s")
	assert.Contains(t, subjects, "generate: 3 entries up to 2024-03-31")
	assert.Contains(t, subjects, "template: add Rent")
}

func seedImport(t *testing.T, dir string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "chase_checking.csv"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "chase_checking.csv"), data, 0o644))
}

func TestDetect(t *testing.T) {
	dir := newHousehold(t)
	seedImport(t, dir)

	out, err := runHearth(t, "detect", "--dir", dir, "--as-of", "2024-11-01")
	require.NoError(t, err, out)
	assert.Contains(t, out, "NETFLIX.COM")
	assert.Contains(t, out, "monthly (day 10), 15.49, confidence 0.95")
	assert.Contains(t, out, "6 payments across 6 months, avg 15.49 every ~31 days")
	assert.NotContains(t, out, "PAYROLL", "income is never a pattern")
	assert.NotContains(t, out, "BLUE BOTTLE", "amounts vary too much")
	assert.NotContains(t, out, "WATER", "a single payment is not a pattern")
}

func TestDetect_NoImports(t *testing.T) {
	dir := newHousehold(t)
	out, err := runHearth(t, "detect", "--dir", dir, "--as-of", "2024-11-01")
	require.NoError(t, err, out)
	assert.Contains(t, out, "No recurring patterns found")
}

func TestAccept(t *testing.T) {
	dir := newHousehold(t)
	seedImport(t, dir)

	out, err := runHearth(t, "accept", "netflix.com", "--dir", dir, "--as-of", "2024-11-01", "--category", "subscriptions")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Accepted NETFLIX.COM")
	assert.Contains(t, out, "Monthly on the 10th 15.49")
	assert.Contains(t, out, "next run 2024-11-10")

	// Templated counterparties drop out of detection.
	out, err = runHearth(t, "detect", "--dir", dir, "--as-of", "2024-11-01")
	require.NoError(t, err, out)
	assert.Contains(t, out, "No recurring patterns found")

	out, err = runHearth(t, "detect", "--all", "--dir", dir, "--as-of", "2024-11-01")
	require.NoError(t, err, out)
	assert.Contains(t, out, "NETFLIX.COM")

	// The last observed payment counts as already recorded.
	out, err = runHearth(t, "generate", "--dir", dir, "--as-of", "2024-11-01", "--up-to", "2024-11-30")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Generated 1 entries up to 2024-11-30")

	entries, err := ledger.NewService(dir).ReadAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2024-11-10", entries[0].InstanceKey)
	assert.Equal(t, "subscriptions", entries[0].CategoryID)
	assert.Equal(t, "15.49", entries[0].Amount.StringFixed(2))

	_, err = runHearth(t, "accept", "netflix.com", "--dir", dir, "--as-of", "2024-11-01")
	assert.Error(t, err, "already templated")
}

func TestNotAHousehold(t *testing.T) {
	out, err := runHearth(t, "next", "--dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, out, "run hearth init")
}

func TestBadAsOf(t *testing.T) {
	dir := newHousehold(t)
	out, err := runHearth(t, "next", "--dir", dir, "--as-of", "15/11/2024")
	require.Error(t, err)
	assert.Contains(t, out, "--as-of")
}
