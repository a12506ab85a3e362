package handlers_test

import (
	"testing"

	"emcon-server/internal/handlers"

	"github.com/stretchr/testify/require"
)

func TestAverageRating(t *testing.T) {
	// Mean of [5,4,3] is 4.0; dropping the 3 lifts it to 4.5.
	require.Equal(t, 4.0, handlers.AverageRating([]int{5, 4, 3}))
	require.Equal(t, 4.5, handlers.AverageRating([]int{5, 4}))
	require.Equal(t, 0.0, handlers.AverageRating(nil))
	require.Equal(t, 5.0, handlers.AverageRating([]int{5}))

	// Rounded to one decimal.
	require.Equal(t, 3.7, handlers.AverageRating([]int{5, 4, 2}))
	require.Equal(t, 3.3, handlers.AverageRating([]int{5, 4, 1}))
}
