package analysis

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Clustering determinism: the same data always yields the same partition
// within one process run. Labels still carry no meaning across runs because
// centroids are never seeded from a previous result.
const (
	kmeansSeed     = 42
	kmeansRestarts = 10
	kmeansMaxIter  = 300
)

// standardize scales each feature column to zero mean and unit variance.
// Required before clustering: the three features live on incomparable scales
// and unscaled distance would be dominated by return/volatility magnitude.
// Constant columns are left centered at zero.
func standardize(features [][]float64) [][]float64 {
	if len(features) == 0 {
		return nil
	}
	rows := len(features)
	cols := len(features[0])

	means := make([]float64, cols)
	for _, row := range features {
		floats.Add(means, row)
	}
	floats.Scale(1/float64(rows), means)

	stds := make([]float64, cols)
	for _, row := range features {
		for j, v := range row {
			d := v - means[j]
			stds[j] += d * d
		}
	}
	for j := range stds {
		stds[j] = math.Sqrt(stds[j] / float64(rows))
		if stds[j] == 0 {
			stds[j] = 1
		}
	}

	scaled := make([][]float64, rows)
	for i, row := range features {
		scaled[i] = make([]float64, cols)
		for j, v := range row {
			scaled[i][j] = (v - means[j]) / stds[j]
		}
	}
	return scaled
}

// kMeans partitions the rows of features into k clusters with Lloyd's
// algorithm, restarted kmeansRestarts times from seeded random centers,
// keeping the assignment with the lowest within-cluster sum of squares.
// Returns one label in [0, k) per row.
func kMeans(features [][]float64, k int) []int {
	n := len(features)
	if n == 0 {
		return nil
	}
	if k > n {
		k = n
	}

	rng := rand.New(rand.NewSource(kmeansSeed))

	bestLabels := make([]int, n)
	bestInertia := math.Inf(1)

	for restart := 0; restart < kmeansRestarts; restart++ {
		centers := initialCenters(features, k, rng)
		labels := make([]int, n)

		for iter := 0; iter < kmeansMaxIter; iter++ {
			changed := false
			for i, row := range features {
				best := nearestCenter(row, centers)
				if labels[i] != best {
					labels[i] = best
					changed = true
				}
			}

			centers = recomputeCenters(features, labels, centers)

			if !changed && iter > 0 {
				break
			}
		}

		inertia := 0.0
		for i, row := range features {
			inertia += squaredDistance(row, centers[labels[i]])
		}
		if inertia < bestInertia {
			bestInertia = inertia
			copy(bestLabels, labels)
		}
	}

	return bestLabels
}

// initialCenters picks k distinct rows as starting centers.
func initialCenters(features [][]float64, k int, rng *rand.Rand) [][]float64 {
	perm := rng.Perm(len(features))
	centers := make([][]float64, k)
	for i := 0; i < k; i++ {
		row := features[perm[i]]
		centers[i] = make([]float64, len(row))
		copy(centers[i], row)
	}
	return centers
}

// recomputeCenters moves each center to the mean of its members. A center
// that lost every member keeps its previous position.
func recomputeCenters(features [][]float64, labels []int, prev [][]float64) [][]float64 {
	k := len(prev)
	cols := len(features[0])

	sums := make([][]float64, k)
	counts := make([]int, k)
	for i := range sums {
		sums[i] = make([]float64, cols)
	}
	for i, row := range features {
		floats.Add(sums[labels[i]], row)
		counts[labels[i]]++
	}

	centers := make([][]float64, k)
	for c := range centers {
		if counts[c] == 0 {
			centers[c] = prev[c]
			continue
		}
		floats.Scale(1/float64(counts[c]), sums[c])
		centers[c] = sums[c]
	}
	return centers
}

func nearestCenter(row []float64, centers [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for c, center := range centers {
		if d := squaredDistance(row, center); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
