package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardizeZeroMeanUnitVariance(t *testing.T) {
	features := [][]float64{
		{1, 100},
		{2, 200},
		{3, 300},
		{4, 400},
	}

	scaled := standardize(features)
	require.Len(t, scaled, 4)

	for j := 0; j < 2; j++ {
		var mean, variance float64
		for _, row := range scaled {
			mean += row[j]
		}
		mean /= 4
		for _, row := range scaled {
			variance += (row[j] - mean) * (row[j] - mean)
		}
		variance /= 4

		assert.InDelta(t, 0.0, mean, 1e-12)
		assert.InDelta(t, 1.0, math.Sqrt(variance), 1e-12)
	}
}

func TestStandardizeConstantColumn(t *testing.T) {
	scaled := standardize([][]float64{
		{5, 1},
		{5, 2},
		{5, 3},
	})

	for _, row := range scaled {
		assert.Equal(t, 0.0, row[0])
	}
}

func TestKMeansSeparatesDistinctGroups(t *testing.T) {
	// Two tight blobs far apart. Any reasonable run must put each blob in
	// its own cluster.
	features := [][]float64{
		{0.0, 0.0}, {0.1, 0.0}, {0.0, 0.1},
		{10.0, 10.0}, {10.1, 10.0}, {10.0, 10.1},
	}

	labels := kMeans(features, 2)
	require.Len(t, labels, 6)

	assert.Equal(t, labels[0], labels[1])
	assert.Equal(t, labels[0], labels[2])
	assert.Equal(t, labels[3], labels[4])
	assert.Equal(t, labels[3], labels[5])
	assert.NotEqual(t, labels[0], labels[3])
}

func TestKMeansDeterministic(t *testing.T) {
	features := [][]float64{
		{0.1, 0.2, 0.3}, {0.2, 0.1, 0.4}, {1.5, 1.4, 1.2},
		{1.6, 1.3, 1.1}, {3.0, 2.9, 3.1}, {2.8, 3.1, 3.0},
		{0.15, 0.25, 0.35}, {1.55, 1.35, 1.15},
	}

	first := kMeans(features, 3)
	second := kMeans(features, 3)

	assert.Equal(t, first, second)
}

func TestKMeansClampsKToRowCount(t *testing.T) {
	features := [][]float64{{1, 1}, {2, 2}}

	labels := kMeans(features, 6)
	require.Len(t, labels, 2)
	for _, l := range labels {
		assert.Less(t, l, 2)
	}
}

func TestKMeansEmptyInput(t *testing.T) {
	assert.Nil(t, kMeans(nil, 3))
}
