package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/hearth/internal/categories"
	"github.com/cleared-dev/hearth/internal/runlog"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "hearth-test-*")
	if err != nil {
		panic(err)
	}

	binaryPath = filepath.Join(tmpDir, "hearth")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/hearth")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		os.RemoveAll(tmpDir)
		panic("failed to build binary: " + err.Error())
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

func runHearth(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "LOG_LEVEL=error")
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func gitLog(t *testing.T, dir, format string) string {
	t.Helper()
	log := exec.Command("git", "log", "--format="+format)
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	return string(out)
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	out, err := runHearth(t, "init", dir, "--name", "The Smiths")
	require.NoError(t, err, out)
	assert.Contains(t, out, `Initialized household "The Smiths"`)

	for _, d := range []string{"recurring", "ledger", "categories", "import", "logs"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}

	for _, f := range []string{"recurring/templates.csv", "recurring/overrides.csv", ".gitignore"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "%s should exist", f)
	}
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runHearth(t, "init", dir, "--name", "The Smiths", "--timezone", "Europe/London")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "hearth.yaml"))
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: The Smiths")
	assert.Contains(t, contents, "timezone: Europe/London")
	assert.Contains(t, contents, "auto_commit: true")
}

func TestInit_Categories(t *testing.T) {
	dir := t.TempDir()
	_, err := runHearth(t, "init", dir, "--name", "The Smiths")
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, "categories", "categories.csv"))
	require.NoError(t, err)
	defer f.Close()

	cats, err := categories.ReadCategories(f)
	require.NoError(t, err)
	assert.Len(t, cats, len(categories.DefaultChart()))
}

func TestInit_GitRepo(t *testing.T) {
	dir := t.TempDir()
	_, err := runHearth(t, "init", dir, "--name", "The Smiths")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git should exist")

	assert.Contains(t, gitLog(t, dir, "%s"), "init: The Smiths")
	assert.Contains(t, gitLog(t, dir, "%an <%ae>"), "Hearth <hearth@localhost>")
}

func TestInit_NoGit(t *testing.T) {
	dir := t.TempDir()
	_, err := runHearth(t, "init", dir, "--name", "The Smiths", "--no-git")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	assert.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(filepath.Join(dir, "hearth.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "auto_commit: false")
}

func TestInit_RunLog(t *testing.T) {
	dir := t.TempDir()
	_, err := runHearth(t, "init", dir, "--name", "The Smiths", "--no-git")
	require.NoError(t, err)

	entries, err := runlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "init", entries[0].Command)
	assert.Equal(t, "The Smiths", entries[0].Details)
}

func TestInit_RequiresName(t *testing.T) {
	_, err := runHearth(t, "init", t.TempDir())
	require.Error(t, err, "init without --name should fail")
}

func TestInit_RefusesExisting(t *testing.T) {
	dir := t.TempDir()
	_, err := runHearth(t, "init", dir, "--name", "The Smiths", "--no-git")
	require.NoError(t, err)

	out, err := runHearth(t, "init", dir, "--name", "Again", "--no-git")
	require.Error(t, err)
	assert.True(t, strings.Contains(out, "already exists"), out)
}
