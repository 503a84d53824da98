package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quote-service/internal/quote/model"
)

func TestSlotSnapshot(t *testing.T) {
	grid := [][]any{testHeaders(3)}
	s := Build(grid)
	row := make([]any, len(grid[0]))
	row[0], row[1], row[2], row[3] = "气缸", "FESTO", "CPE14", "None"
	row[s.SlotIndex(1, model.FieldPrice)] = 650.0
	row[s.SlotIndex(1, model.FieldSupplier)] = "张三"
	grid = append(grid, row)

	snap := s.SlotSnapshot(grid, 2, 2)
	require.NotNil(t, snap)
	assert.Equal(t, 2, snap.Row)
	assert.Equal(t, "气缸", snap.Name)
	assert.Nil(t, snap.Spec) // serialized nulls read back as empty

	require.Len(t, snap.Slots, 2)
	assert.Equal(t, 650.0, snap.Slots["1"][model.FieldPrice])
	assert.Equal(t, "张三", snap.Slots["1"][model.FieldSupplier])
	assert.Nil(t, snap.Slots["2"][model.FieldPrice])
	assert.NotContains(t, snap.Slots, "3")
}

func TestSlotSnapshotOutOfRange(t *testing.T) {
	grid := [][]any{testHeaders(1)}
	s := Build(grid)
	assert.Nil(t, s.SlotSnapshot(grid, 0, 3))
	assert.Nil(t, s.SlotSnapshot(grid, 5, 3))
}
