package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperations(t *testing.T) {
	t.Run("plain array", func(t *testing.T) {
		ops := ParseOperations(`[{"action":"update","key":"興趣","value":"攝影"}]`)
		require.Len(t, ops, 1)
		assert.Equal(t, "攝影", ops[0].Get("value").String())
	})

	t.Run("reasoning preamble is stripped", func(t *testing.T) {
		raw := "<think>\nthe user states a fact about [food]\n</think>\n" +
			`[{"action":"update","key":"喜歡的食物","value":"披薩"}]`
		ops := ParseOperations(raw)
		require.Len(t, ops, 1)
		assert.Equal(t, "喜歡的食物", ops[0].Get("key").String())
	})

	t.Run("preamble containing brackets does not shift the slice", func(t *testing.T) {
		raw := "<think>maybe [1] or [2]</think>" +
			`prose before [{"key":"a","value":"b"}] prose after`
		ops := ParseOperations(raw)
		require.Len(t, ops, 1)
		assert.Equal(t, "a", ops[0].Get("key").String())
	})

	t.Run("empty array", func(t *testing.T) {
		assert.Empty(t, ParseOperations("[]"))
	})

	t.Run("no brackets", func(t *testing.T) {
		assert.Empty(t, ParseOperations("我無法從這句話中提取任何記憶操作。"))
	})

	t.Run("malformed json", func(t *testing.T) {
		assert.Empty(t, ParseOperations(`[{"key": "a", "value": }]`))
	})

	t.Run("top-level object is rejected", func(t *testing.T) {
		// An object containing an array would slice to the inner array, but
		// a bare object without brackets has no slice at all.
		assert.Empty(t, ParseOperations(`{"key":"a","value":"b"}`))
	})

	t.Run("non-object elements are dropped", func(t *testing.T) {
		ops := ParseOperations(`["just a string", 42, {"key":"a","value":"b"}]`)
		require.Len(t, ops, 1)
		assert.Equal(t, "a", ops[0].Get("key").String())
	})

	t.Run("objects without key are dropped", func(t *testing.T) {
		ops := ParseOperations(`[{"value":"orphan"}, {"key":"a","value":"b"}]`)
		require.Len(t, ops, 1)
		assert.Equal(t, "a", ops[0].Get("key").String())
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, ParseOperations(""))
	})
}
