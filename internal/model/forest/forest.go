// Package forest evaluates a random forest classifier exported to JSON.
//
// Trees follow scikit-learn conventions: node 0 is the root, a split sends a
// row left when row[feature] <= threshold, and a leaf holds per-class weights.
// Class probabilities are the mean of the normalized leaf weights.
package forest

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/spigell/career-recommender/internal/model"
)

// Format is the only artifact format understood by this package.
const Format = "random-forest/v1"

//go:embed artifact.schema.json
var artifactSchema []byte

// Artifact is the serialized form of a forest.
type Artifact struct {
	Format       string   `json:"format"`
	NFeatures    int      `json:"n_features"`
	FeatureNames []string `json:"feature_names,omitempty"`
	Classes      []string `json:"classes"`
	Trees        []Tree   `json:"trees"`
}

// Tree is a flat list of nodes, root first.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is either a split or a leaf. Leaves carry Value.
type Node struct {
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      int       `json:"left,omitempty"`
	Right     int       `json:"right,omitempty"`
	Value     []float64 `json:"value,omitempty"`
}

func (n Node) IsLeaf() bool { return len(n.Value) > 0 }

// Forest is a loaded, structurally checked classifier. It is read-only after
// construction and safe for concurrent use.
type Forest struct {
	nFeatures    int
	featureNames []string
	classes      []string
	trees        []tree
}

type tree struct {
	nodes []node
}

type node struct {
	leaf      bool
	feature   int
	threshold float64
	left      int
	right     int
	proba     []float64
}

var _ model.Classifier = (*Forest)(nil)

// Load reads and parses an artifact file.
func Load(path string) (*Forest, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: model path is not configured", model.ErrArtifactLoad)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %q: %v", model.ErrArtifactLoad, path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse validates data against the artifact schema and builds the forest.
func Parse(data []byte) (*Forest, error) {
	if err := validateDocument(data); err != nil {
		return nil, err
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: decoding artifact: %v", model.ErrArtifactLoad, err)
	}

	return New(&a)
}

func validateDocument(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(artifactSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrArtifactLoad, err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: artifact does not match schema: %s", model.ErrArtifactLoad, strings.Join(msgs, "; "))
}

// New checks the structure of a and prepares it for evaluation.
func New(a *Artifact) (*Forest, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: artifact is nil", model.ErrArtifactLoad)
	}
	if a.Format != Format {
		return nil, fmt.Errorf("%w: unsupported format %q", model.ErrArtifactLoad, a.Format)
	}
	if a.NFeatures <= 0 {
		return nil, fmt.Errorf("%w: n_features must be positive", model.ErrArtifactLoad)
	}
	if len(a.FeatureNames) > 0 && len(a.FeatureNames) != a.NFeatures {
		return nil, fmt.Errorf("%w: %d feature names for %d features", model.ErrArtifactLoad, len(a.FeatureNames), a.NFeatures)
	}
	if len(a.Classes) == 0 {
		return nil, fmt.Errorf("%w: no classes", model.ErrArtifactLoad)
	}
	if len(a.Trees) == 0 {
		return nil, fmt.Errorf("%w: no trees", model.ErrArtifactLoad)
	}

	f := &Forest{
		nFeatures:    a.NFeatures,
		featureNames: append([]string(nil), a.FeatureNames...),
		classes:      append([]string(nil), a.Classes...),
		trees:        make([]tree, 0, len(a.Trees)),
	}

	for i, t := range a.Trees {
		built, err := buildTree(t, a.NFeatures, len(a.Classes))
		if err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", model.ErrArtifactLoad, i, err)
		}
		f.trees = append(f.trees, built)
	}

	return f, nil
}

func buildTree(t Tree, nFeatures, nClasses int) (tree, error) {
	if len(t.Nodes) == 0 {
		return tree{}, errors.New("empty tree")
	}

	out := tree{nodes: make([]node, len(t.Nodes))}
	for i, n := range t.Nodes {
		if n.IsLeaf() {
			proba, err := normalize(n.Value, nClasses)
			if err != nil {
				return tree{}, fmt.Errorf("node %d: %w", i, err)
			}
			out.nodes[i] = node{leaf: true, proba: proba}
			continue
		}

		if n.Feature < 0 || n.Feature >= nFeatures {
			return tree{}, fmt.Errorf("node %d: feature %d out of range", i, n.Feature)
		}
		// Children always come after their parent, so walks terminate.
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(t.Nodes) {
				return tree{}, fmt.Errorf("node %d: child %d out of range", i, child)
			}
		}

		out.nodes[i] = node{
			feature:   n.Feature,
			threshold: n.Threshold,
			left:      n.Left,
			right:     n.Right,
		}
	}

	return out, nil
}

func normalize(value []float64, nClasses int) ([]float64, error) {
	if len(value) != nClasses {
		return nil, fmt.Errorf("leaf has %d values for %d classes", len(value), nClasses)
	}

	total := 0.0
	for _, v := range value {
		if v < 0 {
			return nil, errors.New("negative leaf weight")
		}
		total += v
	}
	if total == 0 {
		return nil, errors.New("leaf has zero total weight")
	}

	out := make([]float64, len(value))
	for i, v := range value {
		out[i] = v / total
	}
	return out, nil
}

func (f *Forest) NumFeatures() int { return f.nFeatures }

func (f *Forest) Classes() []string {
	return append([]string(nil), f.classes...)
}

func (f *Forest) FeatureNames() []string {
	return append([]string(nil), f.featureNames...)
}

func (f *Forest) NumTrees() int { return len(f.trees) }

// PredictProba averages the leaf distributions reached by row in every tree.
func (f *Forest) PredictProba(ctx context.Context, row []float64) ([]float64, error) {
	if len(row) != f.nFeatures {
		return nil, fmt.Errorf("%w: got %d features, forest expects %d", model.ErrSchemaMismatch, len(row), f.nFeatures)
	}

	out := make([]float64, len(f.classes))
	for _, t := range f.trees {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i, p := range t.leaf(row) {
			out[i] += p
		}
	}

	n := float64(len(f.trees))
	for i := range out {
		out[i] /= n
	}
	return out, nil
}

func (t tree) leaf(row []float64) []float64 {
	i := 0
	for {
		n := t.nodes[i]
		if n.leaf {
			return n.proba
		}
		if row[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}
