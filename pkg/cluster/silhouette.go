package cluster

import (
	"fmt"
	"math"
)

// Silhouette computes the mean silhouette coefficient of a labeling: for
// each point, (b-a)/max(a,b) where a is the mean distance to its own
// cluster and b the mean distance to the nearest other cluster. The result
// lies in [-1, 1]. Configurations where the metric is undefined (fewer than
// two clusters, or as many clusters as points) return an error; callers
// record quality 0.0 for those candidates.
func Silhouette(rows [][]float64, labels []int) (float64, error) {
	n := len(rows)
	if n == 0 || len(labels) != n {
		return 0, fmt.Errorf("silhouette: %d labels for %d rows", len(labels), n)
	}

	clusters := make(map[int][]int)
	for i, label := range labels {
		clusters[label] = append(clusters[label], i)
	}
	k := len(clusters)
	if k < 2 || k >= n {
		return 0, fmt.Errorf("silhouette: undefined for %d clusters over %d points", k, n)
	}

	var total float64
	for i := 0; i < n; i++ {
		own := clusters[labels[i]]
		if len(own) == 1 {
			// Singleton clusters score zero by convention.
			continue
		}

		var a float64
		for _, j := range own {
			if j != i {
				a += euclidean(rows[i], rows[j])
			}
		}
		a /= float64(len(own) - 1)

		b := math.Inf(1)
		for label, idxs := range clusters {
			if label == labels[i] {
				continue
			}
			var mean float64
			for _, j := range idxs {
				mean += euclidean(rows[i], rows[j])
			}
			mean /= float64(len(idxs))
			if mean < b {
				b = mean
			}
		}

		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(n), nil
}

func euclidean(a, b []float64) float64 {
	return math.Sqrt(sqEuclidean(a, b))
}
