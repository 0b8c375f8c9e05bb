// Package cluster partitions the feature matrix into communities. It runs a
// deterministic minimum-variance (Ward) agglomerative clustering for each
// candidate community count, scores every candidate with a silhouette
// cohesion metric, and selects the best count subject to an average-size
// constraint.
package cluster

import (
	"fmt"
	"sort"
)

// Ward performs agglomerative clustering with Ward linkage, producing
// exactly k non-overlapping groups covering all rows. Identical input always
// yields identical labels: merges are chosen by minimum linkage distance
// with ties broken by the smallest cluster index pair, and final labels are
// dense 0..k-1 in order of each group's first row.
func Ward(rows [][]float64, k int) ([]int, error) {
	n := len(rows)
	if k <= 1 || k >= n {
		return nil, fmt.Errorf("ward: need 1 < k < %d, got %d", n, k)
	}

	// Lance-Williams recurrence over squared Euclidean distances.
	active := make([]bool, n)
	size := make([]float64, n)
	members := make([][]int, n)
	for i := 0; i < n; i++ {
		active[i] = true
		size[i] = 1
		members[i] = []int{i}
	}

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := sqEuclidean(rows[i], rows[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	for remaining := n; remaining > k; remaining-- {
		// Find the closest active pair, smallest indices on ties.
		bi, bj := -1, -1
		best := 0.0
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !active[j] {
					continue
				}
				if bi < 0 || dist[i][j] < best {
					best = dist[i][j]
					bi, bj = i, j
				}
			}
		}

		// Merge bj into bi and update distances to every other cluster.
		ni, nj := size[bi], size[bj]
		for m := 0; m < n; m++ {
			if !active[m] || m == bi || m == bj {
				continue
			}
			nm := size[m]
			d := ((ni+nm)*dist[bi][m] + (nj+nm)*dist[bj][m] - nm*dist[bi][bj]) / (ni + nj + nm)
			dist[bi][m] = d
			dist[m][bi] = d
		}
		size[bi] += size[bj]
		members[bi] = append(members[bi], members[bj]...)
		active[bj] = false
	}

	// Relabel groups densely by their first (lowest) row index.
	var groups [][]int
	for i := 0; i < n; i++ {
		if active[i] {
			sort.Ints(members[i])
			groups = append(groups, members[i])
		}
	}
	sort.Slice(groups, func(a, b int) bool { return groups[a][0] < groups[b][0] })

	labels := make([]int, n)
	for id, group := range groups {
		for _, row := range group {
			labels[row] = id
		}
	}
	return labels, nil
}

func sqEuclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
