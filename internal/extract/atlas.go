package extract

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
)

type voxel struct {
	x int
	y int
	z int
}

// Atlas is a labelled parcellation; label 0 is background
type Atlas struct {
	Labels  []int
	Names   []string
	dims    [3]int
	parcels [][]voxel
}

// NewAtlas collects the voxels of every non-zero integer label of the first volume of v
func NewAtlas(v Volume) (*Atlas, error) {
	d := v.Dims()
	members := make(map[int][]voxel)

	for z := 0; z < d[2]; z++ {
		for y := 0; y < d[1]; y++ {
			for x := 0; x < d[0]; x++ {
				label := int(math.Round(v.At(x, y, z, 0)))
				if label > 0 {
					members[label] = append(members[label], voxel{x, y, z})
				}
			}
		}
	}

	if len(members) == 0 {
		return nil, fmt.Errorf("%w: atlas has no labelled voxels", ErrGeometry)
	}

	a := &Atlas{dims: [3]int{d[0], d[1], d[2]}}
	for label := range members {
		a.Labels = append(a.Labels, label)
	}
	sort.Ints(a.Labels)

	for _, label := range a.Labels {
		a.parcels = append(a.parcels, members[label])
	}

	return a, nil
}

// Len returns the number of parcels
func (a *Atlas) Len() int {
	return len(a.Labels)
}

// SetNames attaches one name per parcel, in label order
func (a *Atlas) SetNames(names []string) error {
	if len(names) != a.Len() {
		return fmt.Errorf("%w: %d label names for %d atlas parcels", ErrGeometry, len(names), a.Len())
	}
	a.Names = names

	return nil
}

// LoadLabels reads one label per non-empty line; tab separated lines keep their last field
func LoadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("[LoadLabels] failed to open %s: %w", path, err)
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		labels = append(labels, strings.TrimSpace(fields[len(fields)-1]))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("[LoadLabels] failed to read %s: %w", path, err)
	}

	return labels, nil
}
