package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/lorebook/internal/model"
	"github.com/rcliao/lorebook/internal/store"
)

func newEntryCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addEntryFlags(cmd)
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestApplyEntryFlagsOnlyChanged(t *testing.T) {
	p0 := 30
	p := store.PutParams{
		Comment:     "kept",
		Key:         []string{"old"},
		Probability: &p0,
		Role:        model.RoleUser,
	}
	cmd := newEntryCmd(t, "--key", " dragon, wyrm ,,", "--whole-words", "--depth", "2")
	require.NoError(t, applyEntryFlags(cmd, &p))

	assert.Equal(t, "kept", p.Comment)
	assert.Equal(t, []string{"dragon", "wyrm"}, p.Key)
	assert.True(t, p.MatchWholeWords)
	assert.Equal(t, 30, *p.Probability)
	assert.Equal(t, 2, *p.Depth)
	assert.Equal(t, model.RoleUser, p.Role)
	assert.Nil(t, p.ScanDepth)
}

func TestApplyEntryFlagsExtensions(t *testing.T) {
	var p store.PutParams
	cmd := newEntryCmd(t, "--ext", `{"depth": 3, "role": "assistant"}`, "--probability", "55")
	require.NoError(t, applyEntryFlags(cmd, &p))

	assert.Equal(t, float64(3), p.Extensions["depth"])
	assert.Equal(t, 55, *p.Probability)
}

func TestApplyEntryFlagsRejectsBadInput(t *testing.T) {
	var p store.PutParams
	assert.Error(t, applyEntryFlags(newEntryCmd(t, "--ext", "{nope"), &p))
	assert.Error(t, applyEntryFlags(newEntryCmd(t, "--probability", "101"), &p))
}

func TestParamsFromEntryRoundTrip(t *testing.T) {
	e := &model.LoreEntry{Book: "b", Comment: "c", Depth: 0, Key: []string{"k"}, Role: model.RoleSystem}
	p := paramsFromEntry(e)
	assert.Equal(t, "b", p.Book)
	require.NotNil(t, p.Depth)
	assert.Equal(t, 0, *p.Depth)
	assert.Equal(t, []string{"k"}, p.Key)
}
