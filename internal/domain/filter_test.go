package domain

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskFilter(t *testing.T) {
	t.Run("empty query", func(t *testing.T) {
		f := ParseTaskFilter(url.Values{}, 1)
		assert.True(t, f.Empty())
	})

	t.Run("all fields", func(t *testing.T) {
		q := url.Values{
			"status":        {"2"},
			"executor":      {"3"},
			"label":         {"4"},
			"isCreatorUser": {"on"},
		}
		f := ParseTaskFilter(q, 9)

		require.NotNil(t, f.StatusID)
		require.NotNil(t, f.ExecutorID)
		require.NotNil(t, f.LabelID)
		require.NotNil(t, f.CreatorID)
		assert.Equal(t, int64(2), *f.StatusID)
		assert.Equal(t, int64(3), *f.ExecutorID)
		assert.Equal(t, int64(4), *f.LabelID)
		assert.Equal(t, int64(9), *f.CreatorID)
	})

	t.Run("malformed and non positive ids are ignored", func(t *testing.T) {
		q := url.Values{"status": {"abc"}, "executor": {"0"}, "label": {"-1"}}
		assert.True(t, ParseTaskFilter(q, 1).Empty())
	})

	t.Run("creator flag needs an actor", func(t *testing.T) {
		q := url.Values{"isCreatorUser": {"true"}}
		assert.Nil(t, ParseTaskFilter(q, 0).CreatorID)
	})

	t.Run("creator flag off", func(t *testing.T) {
		q := url.Values{"isCreatorUser": {"off"}}
		assert.Nil(t, ParseTaskFilter(q, 5).CreatorID)
	})
}

func TestTaskFilterValues(t *testing.T) {
	status := int64(2)
	creator := int64(7)
	f := TaskFilter{StatusID: &status, CreatorID: &creator}

	v := f.Values()
	assert.Equal(t, "2", v.Get("status"))
	assert.Equal(t, "on", v.Get("isCreatorUser"))
	assert.Empty(t, v.Get("executor"))
}
