package gen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinMax(t *testing.T) {
	require.Equal(t, 3, Min(3, 7))
	require.Equal(t, 7, Max(3, 7))
	require.Equal(t, -1.5, Min(-1.5, 0.0))
	require.Equal(t, 0.0, Max(-1.5, 0.0))
}

func TestAbs(t *testing.T) {
	require.Equal(t, 5, Abs(-5))
	require.Equal(t, 5, Abs(5))
	require.Equal(t, float32(2.5), Abs(float32(-2.5)))
}

func TestClamp(t *testing.T) {
	require.Equal(t, 0.0, Clamp(-0.2, 0.0, 1.0))
	require.Equal(t, 1.0, Clamp(1.7, 0.0, 1.0))
	require.Equal(t, 0.5, Clamp(0.5, 0.0, 1.0))
}

func TestDeleteFromSliceUnordered(t *testing.T) {
	s := []int{1, 2, 3, 4}
	s = DeleteFromSliceUnordered(s, 1)
	require.Len(t, s, 3)
	require.ElementsMatch(t, []int{1, 3, 4}, s)

	// Deleting the last element
	s = DeleteFromSliceUnordered(s, len(s)-1)
	require.Len(t, s, 2)

	// Down to empty
	s = DeleteFromSliceUnordered(s, 0)
	s = DeleteFromSliceUnordered(s, 0)
	require.Len(t, s, 0)
}
