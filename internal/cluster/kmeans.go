package cluster

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/teemow/inboxgroups/internal/vectorize"
)

// Reference configuration, preserved as explicit parameters so runs are
// reproducible and testable.
const (
	DefaultK        = 3
	DefaultRestarts = 10
	DefaultMaxIter  = 300
	DefaultSeed     = 42
)

// Config controls a clustering run.
type Config struct {
	// K is the requested number of clusters; the effective count may be
	// lower on degenerate input.
	K int
	// Restarts is the number of independent seeded initializations.
	Restarts int
	// MaxIter bounds the relocation iterations per restart.
	MaxIter int
	// Seed is the base random seed; restart r uses Seed+r.
	Seed int64
	// TimeBudget bounds the wall-clock time of the whole run. When a
	// further restart would exceed it, remaining restarts are skipped and
	// the best result so far is kept. Zero means no budget.
	TimeBudget time.Duration
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		K:        DefaultK,
		Restarts: DefaultRestarts,
		MaxIter:  DefaultMaxIter,
		Seed:     DefaultSeed,
	}
}

func (c Config) withDefaults() Config {
	if c.K <= 0 {
		c.K = DefaultK
	}
	if c.Restarts <= 0 {
		c.Restarts = DefaultRestarts
	}
	if c.MaxIter <= 0 {
		c.MaxIter = DefaultMaxIter
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	return c
}

// Result holds the outcome of a clustering run.
type Result struct {
	// Assignments maps each input vector to a cluster index in [0, K).
	Assignments []int
	// Centroids are the normalized cluster centers, one per cluster.
	Centroids []vectorize.Vector
	// K is the effective cluster count, at most min(requested K, inputs).
	K int
	// Inertia is the within-cluster sum of squared cosine distances.
	Inertia float64
	// Restarts is the number of initializations actually executed.
	Restarts int
}

// Run clusters the vectors and returns the best result over all restarts.
// It never fails: degenerate input degrades to fewer clusters, down to a
// single cluster containing every vector.
func Run(vectors []vectorize.Vector, cfg Config) *Result {
	cfg = cfg.withDefaults()
	n := len(vectors)
	if n == 0 {
		return &Result{Assignments: []int{}, K: 0}
	}

	nonEmpty := make([]int, 0, n)
	for i, v := range vectors {
		if !v.IsZero() {
			nonEmpty = append(nonEmpty, i)
		}
	}

	// Fully degenerate corpus: every vector is zero.
	if len(nonEmpty) == 0 {
		return singleCluster(vectors)
	}

	k := cfg.K
	if d := distinctCount(vectors, nonEmpty); d < k {
		k = d
	}
	if k <= 1 {
		return singleCluster(vectors)
	}

	var best *Result
	start := time.Now()
	var slowest time.Duration
	restarts := 0

	for r := 0; r < cfg.Restarts; r++ {
		runStart := time.Now()
		res := kmeansOnce(vectors, nonEmpty, k, cfg.Seed+int64(r), cfg.MaxIter)
		restarts++
		if best == nil || res.Inertia < best.Inertia {
			best = res
		}

		if d := time.Since(runStart); d > slowest {
			slowest = d
		}
		if cfg.TimeBudget > 0 && time.Since(start)+slowest > cfg.TimeBudget {
			break
		}
	}

	best.Restarts = restarts
	compact(best)
	return best
}

// singleCluster assigns every vector to one cluster.
func singleCluster(vectors []vectorize.Vector) *Result {
	n := len(vectors)
	assign := make([]int, n)
	centroid := meanVector(vectors, assign, 0)
	var inertia float64
	for _, v := range vectors {
		d := 1 - v.Dot(centroid)
		inertia += d * d
	}
	return &Result{
		Assignments: assign,
		Centroids:   []vectorize.Vector{centroid},
		K:           1,
		Inertia:     inertia,
		Restarts:    1,
	}
}

// kmeansOnce performs a single seeded k-means run.
func kmeansOnce(vectors []vectorize.Vector, nonEmpty []int, k int, seed int64, maxIter int) *Result {
	rng := rand.New(rand.NewSource(seed))
	centroids := seedCentroids(vectors, nonEmpty, k, rng)
	assign := assignAll(vectors, centroids)

	for iter := 0; iter < maxIter; iter++ {
		// Repair empty clusters before recomputing centers: steal the
		// worst-fitting vector so no cluster stays permanently empty.
		for fixEmptyClusters(vectors, centroids, assign, k) {
			assign = assignAll(vectors, centroids)
		}

		for c := 0; c < k; c++ {
			centroids[c] = meanVector(vectors, assign, c)
		}

		next := assignAll(vectors, centroids)
		if equalAssignments(assign, next) {
			assign = next
			break
		}
		assign = next
	}

	var inertia float64
	for i, v := range vectors {
		d := 1 - v.Dot(centroids[assign[i]])
		inertia += d * d
	}

	return &Result{
		Assignments: assign,
		Centroids:   centroids,
		K:           k,
		Inertia:     inertia,
	}
}

// seedCentroids picks k initial centroids by farthest-point seeding: the
// first is random per seed, each subsequent one is the vector with the
// greatest distance to its nearest chosen centroid.
func seedCentroids(vectors []vectorize.Vector, nonEmpty []int, k int, rng *rand.Rand) []vectorize.Vector {
	centroids := make([]vectorize.Vector, 0, k)
	first := nonEmpty[rng.Intn(len(nonEmpty))]
	centroids = append(centroids, vectors[first].Clone())

	for len(centroids) < k {
		bestIdx := -1
		bestDist := -1.0
		for _, i := range nonEmpty {
			nearest := 0.0
			for _, c := range centroids {
				if s := vectors[i].Dot(c); s > nearest {
					nearest = s
				}
			}
			if d := 1 - nearest; d > bestDist {
				bestDist = d
				bestIdx = i
			}
		}
		centroids = append(centroids, vectors[bestIdx].Clone())
	}
	return centroids
}

// assignAll maps each vector to the centroid of highest cosine similarity.
// Ties go to the lowest centroid index.
func assignAll(vectors []vectorize.Vector, centroids []vectorize.Vector) []int {
	assign := make([]int, len(vectors))
	for i, v := range vectors {
		best := 0
		bestSim := v.Dot(centroids[0])
		for c := 1; c < len(centroids); c++ {
			if s := v.Dot(centroids[c]); s > bestSim {
				bestSim = s
				best = c
			}
		}
		assign[i] = best
	}
	return assign
}

// fixEmptyClusters reseeds each empty cluster's centroid to the assigned
// vector farthest from its own cluster's centroid. Returns true if any
// centroid changed, in which case assignment must be rerun.
func fixEmptyClusters(vectors []vectorize.Vector, centroids []vectorize.Vector, assign []int, k int) bool {
	sizes := make([]int, k)
	for _, c := range assign {
		sizes[c]++
	}

	changed := false
	for c := 0; c < k; c++ {
		if sizes[c] > 0 {
			continue
		}
		worst := -1
		worstSim := 2.0
		for i, v := range vectors {
			// Only steal from clusters that can spare a member.
			if sizes[assign[i]] <= 1 {
				continue
			}
			if s := v.Dot(centroids[assign[i]]); s < worstSim {
				worstSim = s
				worst = i
			}
		}
		if worst < 0 {
			// Not enough distinct members to fill this cluster; callers
			// guarantee k never exceeds the distinct vector count, so
			// this only happens transiently and resolves on reassign.
			continue
		}
		centroids[c] = vectors[worst].Clone()
		sizes[assign[worst]]--
		sizes[c]++
		assign[worst] = c
		changed = true
	}
	return changed
}

// meanVector computes the re-normalized mean of the vectors assigned to
// cluster c.
func meanVector(vectors []vectorize.Vector, assign []int, c int) vectorize.Vector {
	mean := vectorize.Vector{}
	count := 0
	for i, v := range vectors {
		if assign[i] != c {
			continue
		}
		count++
		for j, w := range v {
			mean[j] += w
		}
	}
	if count == 0 {
		return mean
	}
	for j := range mean {
		mean[j] /= float64(count)
	}
	mean.Normalize()
	return mean
}

// compact renumbers cluster indices densely to 0..K'-1, dropping any index
// that ended up without members.
func compact(res *Result) {
	seen := make(map[int]bool, res.K)
	order := make([]int, 0, res.K)
	for _, c := range res.Assignments {
		if !seen[c] {
			seen[c] = true
			order = append(order, c)
		}
	}
	sort.Ints(order)

	remap := make(map[int]int, len(order))
	centroids := make([]vectorize.Vector, 0, len(order))
	for dense, c := range order {
		remap[c] = dense
		centroids = append(centroids, res.Centroids[c])
	}
	for i, c := range res.Assignments {
		res.Assignments[i] = remap[c]
	}
	res.Centroids = centroids
	res.K = len(order)
}

// distinctCount returns the number of distinct vectors among the given
// indices.
func distinctCount(vectors []vectorize.Vector, indices []int) int {
	seen := make(map[string]struct{}, len(indices))
	for _, i := range indices {
		seen[fingerprint(vectors[i])] = struct{}{}
	}
	return len(seen)
}

// fingerprint renders a vector as a canonical string for distinctness
// checks.
func fingerprint(v vectorize.Vector) string {
	keys := make([]int, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%d:%.12f;", k, v[k])
	}
	return b.String()
}

// equalAssignments reports whether two assignment slices are identical.
func equalAssignments(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
