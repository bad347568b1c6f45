package cluster

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/mat"
)

// ErrEmptyGraph reports a weight matrix without a single positive edge
var ErrEmptyGraph = errors.New("graph has no positive edges")

// Seed fixes the node visiting order of Louvain so partitions repeat across runs
const Seed = 42

// Cluster represents a community of parcels
type Cluster struct {
	Identifier int
	Members    []int
}

// AddMember adds a member to the cluster
func (c *Cluster) AddMember(idx int) {
	c.Members = append(c.Members, idx)
	return
}

// WeightedGraph builds an undirected graph from the upper triangle of w.
// Only finite positive weights become edges; the diagonal is ignored.
func WeightedGraph(w mat.Matrix) (*simple.WeightedUndirectedGraph, int) {
	n, _ := w.Dims()
	g := simple.NewWeightedUndirectedGraph(0, 0)

	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}

	edges := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			weight := w.At(i, j)
			if !(weight > 0) || math.IsInf(weight, 0) {
				continue
			}

			g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(i), simple.Node(j), weight))
			edges++
		}
	}

	return g, edges
}

// Louvain partitions the weighted graph w into communities and returns them with their modularity Q
func Louvain(w mat.Matrix, resolution float64) (clusters []Cluster, q float64, err error) {
	rows, cols := w.Dims()
	if rows != cols {
		return nil, math.NaN(), fmt.Errorf("weight matrix is %d by %d, want square", rows, cols)
	}

	g, edges := WeightedGraph(w)
	if edges == 0 {
		return nil, math.NaN(), ErrEmptyGraph
	}

	defer func() {
		if r := recover(); r != nil {
			clusters, q, err = nil, math.NaN(), fmt.Errorf("louvain: %v", r)
		}
	}()

	communities := community.Modularize(g, resolution, rand.NewSource(Seed)).Communities()
	q = community.Q(g, communities, resolution)
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return nil, q, fmt.Errorf("louvain: modularity is not finite (%v)", q)
	}

	return fromCommunities(communities), q, nil
}

func fromCommunities(communities [][]graph.Node) []Cluster {
	clusters := make([]Cluster, 0, len(communities))

	for _, nodes := range communities {
		var c Cluster
		for _, n := range nodes {
			c.AddMember(int(n.ID()))
		}
		sort.Ints(c.Members)

		clusters = append(clusters, c)
	}

	// Ordering: by lowest member index
	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i].Members[0] < clusters[j].Members[0]
	})

	for i := range clusters {
		clusters[i].Identifier = i
	}

	return clusters
}

// GetEssentialClusters returns clusters with cluster size >= 2, largest first
func GetEssentialClusters(clusters []Cluster) []Cluster {
	var essClusters []Cluster

	for i := 0; i < len(clusters); i++ {
		if len(clusters[i].Members) >= 2 {
			essClusters = append(essClusters, clusters[i])
		}
	}

	sort.SliceStable(essClusters, func(i, j int) bool {
		return len(essClusters[i].Members) > len(essClusters[j].Members)
	})

	return essClusters
}
