package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_KitExpansion(t *testing.T) {
	c := Default()

	entries := c.Lookup("RO900S")
	require.Len(t, entries, 2)
	assert.Equal(t, "1351", entries[0].Code)
	assert.Equal(t, 24, entries[0].CycleMonths)
	assert.Equal(t, "1350", entries[1].Code)
	assert.Equal(t, 12, entries[1].CycleMonths)
}

func TestLookup_DirectKey(t *testing.T) {
	c := Default()

	entries := c.Lookup("HS990智慧節能殺菌飲水機")
	require.Len(t, entries, 1)
	assert.Equal(t, "1005", entries[0].Code)
	assert.Equal(t, 0, entries[0].CycleMonths)
}

func TestLookup_TapKeyword(t *testing.T) {
	c := Default()

	entries := c.Lookup("原裝龍頭")
	require.Len(t, entries, 1)
	assert.Equal(t, "1138", entries[0].Code)
}

func TestLookup_NameContainment(t *testing.T) {
	c := Default()

	entries := c.Lookup("多折式雙效復合濾芯")
	require.Len(t, entries, 1)
	assert.Equal(t, "1350", entries[0].Code)
	assert.Equal(t, "R-001多折式雙效復合濾芯", entries[0].Name)
}

func TestLookup_NoMatch(t *testing.T) {
	c := Default()

	assert.Empty(t, c.Lookup("神秘產品"))
	assert.Empty(t, c.Lookup(""))
}

func TestParseInstallItems(t *testing.T) {
	c := Default()

	t.Run("kit with quantity suffix", func(t *testing.T) {
		items := c.ParseInstallItems("RO900S*2")
		require.Len(t, items, 2)
		assert.Equal(t, Item{Name: "R-002高效抗污RO膜", Code: "1351", CycleMonths: 24, Qty: 2}, items[0])
		assert.Equal(t, Item{Name: "R-001多折式雙效復合濾芯", Code: "1350", CycleMonths: 12, Qty: 2}, items[1])
	})

	t.Run("repeated tokens dedupe", func(t *testing.T) {
		items := c.ParseInstallItems("RO900S*2+RO900S*2")
		assert.Len(t, items, 2)
	})

	t.Run("different quantities kept apart", func(t *testing.T) {
		items := c.ParseInstallItems("HS990*1+HS990*3")
		require.Len(t, items, 2)
		assert.Equal(t, 1, items[0].Qty)
		assert.Equal(t, 3, items[1].Qty)
	})

	t.Run("mixed separators", func(t *testing.T) {
		items := c.ParseInstallItems("HS990，龍頭；UF")
		require.Len(t, items, 3)
		assert.Equal(t, "1005", items[0].Code)
		assert.Equal(t, "1138", items[1].Code)
		assert.Equal(t, "1439", items[2].Code)
	})

	t.Run("unknown tokens dropped", func(t *testing.T) {
		assert.Empty(t, c.ParseInstallItems("神秘產品"))
		assert.Empty(t, c.ParseInstallItems("   "))
	})
}
