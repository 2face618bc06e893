package traversal

import (
	_ "embed"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

//go:embed catalog.schema.json
var catalogSchema []byte

// ErrInvalidCatalog is returned when a catalog document fails schema
// validation or does not describe every order exactly once.
var ErrInvalidCatalog = errors.New("invalid traversal catalog")

// Algorithm describes one traversal order for display.
type Algorithm struct {
	ID              string `json:"id"               yaml:"id"`
	Name            string `json:"name"             yaml:"name"`
	Description     string `json:"description"      yaml:"description"`
	Difficulty      string `json:"difficulty"       yaml:"difficulty"`
	TimeComplexity  string `json:"time_complexity"  yaml:"time_complexity"`
	SpaceComplexity string `json:"space_complexity" yaml:"space_complexity"`
	TraverseOrder   string `json:"traverse_order"   yaml:"traverse_order"`
	Explanation     string `json:"explanation"      yaml:"explanation"`
	Usage           string `json:"usage"            yaml:"usage"`
}

// Order returns the traversal order the entry describes.
func (a Algorithm) Order() Order {
	order, err := ParseOrder(a.ID)
	if err != nil {
		// Catalog entries are validated on load.
		panic(errors.NewAssertionErrorWithWrappedErrf(err, "catalog entry %q", a.ID))
	}

	return order
}

type catalogDocument struct {
	Algorithms []Algorithm `yaml:"algorithms"`
}

var builtinCatalog = sync.OnceValues(func() ([]Algorithm, error) {
	return ParseCatalog(catalogYAML)
})

// Catalog returns the built-in entries, one per order, in catalog order.
func Catalog() ([]Algorithm, error) {
	algs, err := builtinCatalog()
	if err != nil {
		return nil, err
	}

	return slices.Clone(algs), nil
}

// Lookup returns the built-in entry for order.
func Lookup(order Order) (Algorithm, error) {
	if !order.valid() {
		return Algorithm{}, errors.Wrapf(ErrUnknownOrder, "%d", int(order))
	}

	algs, err := builtinCatalog()
	if err != nil {
		return Algorithm{}, err
	}

	return algs[order], nil
}

// ParseCatalog decodes a YAML catalog, validates it against the catalog
// schema, and returns its entries sorted into catalog order.
func ParseCatalog(data []byte) ([]Algorithm, error) {
	var raw any

	err := yaml.Unmarshal(data, &raw)
	if err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(catalogSchema),
		gojsonschema.NewGoLoader(raw),
	)
	if err != nil {
		return nil, errors.Wrap(err, "validate catalog")
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}

		return nil, errors.Wrapf(ErrInvalidCatalog, "%s", strings.Join(msgs, "; "))
	}

	var doc catalogDocument

	err = yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}

	byOrder := make([]Algorithm, len(Orders()))
	seen := make([]bool, len(Orders()))

	for _, alg := range doc.Algorithms {
		order, parseErr := ParseOrder(alg.ID)
		if parseErr != nil {
			return nil, errors.Wrapf(ErrInvalidCatalog, "entry %q", alg.ID)
		}

		if seen[order] {
			return nil, errors.Wrapf(ErrInvalidCatalog, "duplicate entry %q", alg.ID)
		}

		seen[order] = true
		byOrder[order] = alg
	}

	for _, order := range Orders() {
		if !seen[order] {
			return nil, errors.Wrapf(ErrInvalidCatalog, "missing entry %q", order)
		}
	}

	return byOrder, nil
}
