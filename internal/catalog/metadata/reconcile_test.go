package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"

	types "github.com/yungbote/drawhub-backend/internal/domain"
)

func TestReplaceMarksChangedAndNewKeys(t *testing.T) {
	res := Replace(types.Metadata{"a": "1"}, types.Metadata{}, types.Metadata{"a": "2", "b": "3"})
	assert.Equal(t, types.Metadata{"a": "2", "b": "3"}, res.Metadata)
	assert.Equal(t, types.Metadata{"a": SourceHuman, "b": SourceHuman}, res.Sources)
	assert.Equal(t, []string{"a", "b"}, res.Marked)
	assert.Empty(t, res.Removed)
}

func TestReplaceDropsSourceOfRemovedKey(t *testing.T) {
	res := Replace(
		types.Metadata{"a": "2", "b": "3"},
		types.Metadata{"a": SourceHuman, "b": SourceHuman},
		types.Metadata{"b": "3"},
	)
	assert.Equal(t, types.Metadata{"b": "3"}, res.Metadata)
	assert.Equal(t, types.Metadata{"b": SourceHuman}, res.Sources)
	assert.Empty(t, res.Marked)
	assert.Equal(t, []string{"a"}, res.Removed)
	assert.True(t, res.Changed(types.Metadata{"a": "2", "b": "3"}))
}

func TestReplaceKeepsSystemSourceForUnchangedKeys(t *testing.T) {
	res := Replace(types.Metadata{"sheet": "1", "title": "x"}, types.Metadata{}, types.Metadata{"sheet": "1", "title": "y"})
	assert.Equal(t, types.Metadata{"title": SourceHuman}, res.Sources)
	_, hasSheet := res.Sources["sheet"]
	assert.False(t, hasSheet)
}

func TestReplaceIsIdempotent(t *testing.T) {
	cases := []struct {
		old, sources, next types.Metadata
	}{
		{types.Metadata{"a": "1"}, types.Metadata{}, types.Metadata{"a": "2", "b": "3"}},
		{types.Metadata{"a": "1", "b": "2"}, types.Metadata{"a": SourceHuman}, types.Metadata{}},
		{nil, nil, types.Metadata{"x": ""}},
		{types.Metadata{"k": "v"}, types.Metadata{"k": SourceHuman}, types.Metadata{"k": "v"}},
	}
	for _, tc := range cases {
		once := Replace(tc.old, tc.sources, tc.next)
		twice := Replace(once.Metadata, once.Sources, tc.next)
		assert.Equal(t, once.Metadata, twice.Metadata)
		assert.Equal(t, once.Sources, twice.Sources)
		assert.True(t, once.Sources.SubsetOf(once.Metadata))
	}
}

func TestReplaceDoesNotMutateInputs(t *testing.T) {
	old := types.Metadata{"a": "1"}
	sources := types.Metadata{"a": SourceHuman}
	next := types.Metadata{"b": "2"}
	_ = Replace(old, sources, next)
	assert.Equal(t, types.Metadata{"a": "1"}, old)
	assert.Equal(t, types.Metadata{"a": SourceHuman}, sources)
	assert.Equal(t, types.Metadata{"b": "2"}, next)
}

func TestMergeOverwritesAndMarks(t *testing.T) {
	res := Merge(types.Metadata{"orderNumber": "OLD", "keep": "k"}, types.Metadata{}, map[string]string{"orderNumber": "ORD-9"})
	assert.Equal(t, types.Metadata{"orderNumber": "ORD-9", "keep": "k"}, res.Metadata)
	assert.Equal(t, types.Metadata{"orderNumber": SourceHuman}, res.Sources)
	assert.Equal(t, []string{"orderNumber"}, res.Marked)
}

func TestMergeSkipsBlankValues(t *testing.T) {
	oldSources := types.Metadata{"orderNumber": SourceHuman}
	res := Merge(types.Metadata{"orderNumber": "OLD"}, oldSources, map[string]string{"orderNumber": "", "other": "   "})
	assert.Equal(t, types.Metadata{"orderNumber": "OLD"}, res.Metadata)
	assert.Equal(t, oldSources, res.Sources)
	assert.Empty(t, res.Marked)
	assert.False(t, res.Changed(types.Metadata{"orderNumber": "OLD"}))
}

func TestMergeTrimsValues(t *testing.T) {
	res := Merge(nil, nil, map[string]string{"client": "  Acme  "})
	assert.Equal(t, "Acme", res.Metadata["client"])
	assert.Equal(t, SourceHuman, res.Sources["client"])
}
