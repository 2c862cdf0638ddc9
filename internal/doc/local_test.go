package doc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*LocalStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewLocalStore(dir)
	require.NoError(t, err)
	return s, dir
}

func TestCreateAndOpenByURL(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	ref, err := s.Create(ctx, "[OPEN] HELP-1")
	require.NoError(t, err)
	require.NotEmpty(t, ref.URL())

	title, err := s.Title(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "[OPEN] HELP-1", title)

	reopened, err := s.OpenByURL(ctx, ref.URL())
	require.NoError(t, err)
	assert.Equal(t, ref.URL(), reopened.URL())
}

func TestOpenByURL_Missing(t *testing.T) {
	s, dir := newTestStore(t)

	_, err := s.OpenByURL(context.Background(), filepath.Join(dir, "nope.md"))
	assert.Error(t, err)
}

func TestRename_KeepsFileAndBody(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	ref, err := s.Create(ctx, "[OPEN] HELP-1")
	require.NoError(t, err)
	require.NoError(t, s.AppendBody(ctx, ref, Body{
		Submitter:  "a@x.com",
		CreateTime: time.Date(2023, 9, 9, 1, 1, 1, 0, time.Local),
		Summary:    "printer on fire",
	}))

	url := ref.URL()
	require.NoError(t, s.Rename(ctx, ref, "[CLOSED] HELP-1"))
	assert.Equal(t, url, ref.URL(), "rename must not move the file")

	title, err := s.Title(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "[CLOSED] HELP-1", title)

	data, err := os.ReadFile(url)
	require.NoError(t, err)
	assert.Contains(t, string(data), "printer on fire", "body survives rename")
}

func TestAppendBody_Layout(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	ref, err := s.Create(ctx, "[OPEN] HELP-1")
	require.NoError(t, err)

	body := Body{
		Submitter:       "a@x.com",
		CreateTime:      time.Date(2023, 9, 9, 1, 1, 1, 0, time.Local),
		Severity:        "high",
		DesiredDeadline: time.Date(2023, 9, 20, 0, 0, 0, 0, time.Local),
		Summary:         "printer on fire",
		Details:         "smoke everywhere",
		Reason:          "deadline tomorrow",
	}
	require.NoError(t, s.AppendBody(ctx, ref, body))

	data, err := os.ReadFile(ref.URL())
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "- Submitted by: a@x.com")
	assert.Contains(t, text, "- Created: 2023/09/09 01:01:01")
	assert.Contains(t, text, "- Severity: high")
	assert.Contains(t, text, "- Desired deadline: 2023/09/20")
	assert.Contains(t, text, "## Summary")
	assert.Contains(t, text, "## Details")
	assert.Contains(t, text, "## Reason")
	assert.Contains(t, text, "## Work Log")
}

func TestGrants_Deduplicated(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	ref, err := s.Create(ctx, "[OPEN] HELP-1")
	require.NoError(t, err)

	require.NoError(t, s.AddEditor(ctx, ref, "lead@x.com"))
	require.NoError(t, s.AddEditor(ctx, ref, "lead@x.com"))
	require.NoError(t, s.AddViewer(ctx, ref, "watch@x.com"))

	fm, _, err := readDoc(ref.URL())
	require.NoError(t, err)
	assert.Equal(t, []string{"lead@x.com"}, fm.Editors)
	assert.Equal(t, []string{"watch@x.com"}, fm.Viewers)
}

func TestFolder_MovesFileAndUpdatesURL(t *testing.T) {
	s, dir := newTestStore(t)
	ctx := context.Background()

	folder, err := NewLocalFolder(filepath.Join(dir, "issues"))
	require.NoError(t, err)

	ref, err := s.Create(ctx, "[OPEN] HELP-1")
	require.NoError(t, err)
	orig := ref.URL()

	require.NoError(t, folder.AddFile(ctx, ref))
	assert.NotEqual(t, orig, ref.URL())
	assert.Equal(t, filepath.Join(dir, "issues"), filepath.Dir(ref.URL()))

	_, err = os.Stat(orig)
	assert.True(t, os.IsNotExist(err), "original location must be empty")

	// The persisted URL keeps resolving after filing.
	_, err = s.OpenByURL(ctx, ref.URL())
	assert.NoError(t, err)
}
