package forecast

import (
	"errors"
	"sort"
)

// gbtRegressor is a deterministic gradient-boosted regression tree ensemble:
// shallow exact-greedy CART trees fit to squared-error residuals. No row or
// feature subsampling is performed, so repeated fits on the same data are
// bit-identical without a seed.
type gbtRegressor struct {
	nEstimators  int
	learningRate float64
	maxDepth     int

	base  float64
	trees []*treeNode
}

func newGBTRegressor() *gbtRegressor {
	return &gbtRegressor{
		nEstimators:  50,
		learningRate: 0.1,
		maxDepth:     3,
	}
}

type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
	leaf      bool
}

func (g *gbtRegressor) fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return errors.New("empty or mismatched training data")
	}

	g.base = 0
	for _, v := range y {
		g.base += v
	}
	g.base /= float64(len(y))

	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = g.base
	}

	residual := make([]float64, len(y))
	indices := make([]int, len(y))
	for i := range indices {
		indices[i] = i
	}

	g.trees = make([]*treeNode, 0, g.nEstimators)
	for t := 0; t < g.nEstimators; t++ {
		for i := range residual {
			residual[i] = y[i] - pred[i]
		}
		tree := buildTree(x, residual, indices, g.maxDepth)
		g.trees = append(g.trees, tree)
		for i := range pred {
			pred[i] += g.learningRate * tree.eval(x[i])
		}
	}
	return nil
}

func (g *gbtRegressor) predict(row []float64) float64 {
	out := g.base
	for _, tree := range g.trees {
		out += g.learningRate * tree.eval(row)
	}
	return out
}

func (t *treeNode) eval(row []float64) float64 {
	node := t
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

// buildTree grows a depth-limited regression tree on the given row subset,
// choosing at each node the split minimizing total squared error. Ties keep
// the first (lowest feature index, lowest threshold) candidate so the tree
// is deterministic.
func buildTree(x [][]float64, y []float64, indices []int, depth int) *treeNode {
	node := &treeNode{leaf: true, value: subsetMean(y, indices)}
	if depth == 0 || len(indices) < 2 {
		return node
	}

	bestSSE := subsetSSE(y, indices)
	if bestSSE == 0 {
		return node
	}
	bestFeature := -1
	var bestThreshold float64
	var bestLeft, bestRight []int

	features := len(x[indices[0]])
	order := make([]int, len(indices))
	for feature := 0; feature < features; feature++ {
		copy(order, indices)
		sort.SliceStable(order, func(a, b int) bool {
			return x[order[a]][feature] < x[order[b]][feature]
		})

		// Prefix sums over the sorted order allow O(1) SSE per split point.
		var leftSum, leftSq float64
		totalSum, totalSq := subsetSums(y, order)
		for i := 0; i < len(order)-1; i++ {
			v := y[order[i]]
			leftSum += v
			leftSq += v * v
			cur := x[order[i]][feature]
			next := x[order[i+1]][feature]
			if cur == next {
				continue
			}
			nLeft := float64(i + 1)
			nRight := float64(len(order) - i - 1)
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/nLeft) + (rightSq - rightSum*rightSum/nRight)
			if sse < bestSSE {
				bestSSE = sse
				bestFeature = feature
				bestThreshold = (cur + next) / 2
				bestLeft = append(bestLeft[:0], order[:i+1]...)
				bestRight = append(bestRight[:0], order[i+1:]...)
			}
		}
	}

	if bestFeature < 0 {
		return node
	}

	node.leaf = false
	node.feature = bestFeature
	node.threshold = bestThreshold
	left := append([]int(nil), bestLeft...)
	right := append([]int(nil), bestRight...)
	node.left = buildTree(x, y, left, depth-1)
	node.right = buildTree(x, y, right, depth-1)
	return node
}

func subsetMean(y []float64, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range indices {
		sum += y[i]
	}
	return sum / float64(len(indices))
}

func subsetSums(y []float64, indices []int) (sum, sq float64) {
	for _, i := range indices {
		sum += y[i]
		sq += y[i] * y[i]
	}
	return sum, sq
}

func subsetSSE(y []float64, indices []int) float64 {
	sum, sq := subsetSums(y, indices)
	n := float64(len(indices))
	if n == 0 {
		return 0
	}
	return sq - sum*sum/n
}
