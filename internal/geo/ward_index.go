package geo

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nairobi-county/county-tickets/internal/domain"
)

//go:embed wards.yaml
var defaultWardsYAML []byte

type wardFile struct {
	SubCounties []domain.SubCounty `yaml:"sub_counties"`
}

// WardIndex is the immutable sub-county → ward → zone hierarchy. It is safe
// for concurrent readers.
type WardIndex struct {
	wards       []domain.Ward
	byCode      map[string]int
	subCounties []string
}

// NewWardIndex validates the hierarchy and builds the index. Ward codes must
// be unique across all sub-counties.
func NewWardIndex(subCounties []domain.SubCounty) (*WardIndex, error) {
	idx := &WardIndex{byCode: make(map[string]int)}
	for _, sc := range subCounties {
		name := strings.TrimSpace(sc.Name)
		if name == "" {
			return nil, fmt.Errorf("sub-county name required")
		}
		idx.subCounties = append(idx.subCounties, name)
		for _, ward := range sc.Wards {
			ward.Code = strings.TrimSpace(ward.Code)
			if ward.Code == "" {
				return nil, fmt.Errorf("ward in %s has no code", name)
			}
			if _, dup := idx.byCode[ward.Code]; dup {
				return nil, fmt.Errorf("duplicate ward code %s", ward.Code)
			}
			if err := validateCoordinate(ward.Center.Lat, ward.Center.Lng); err != nil {
				return nil, fmt.Errorf("ward %s center: %w", ward.Code, err)
			}
			ward.SubCounty = name
			ward.Zones = append([]domain.Zone(nil), ward.Zones...)
			idx.byCode[ward.Code] = -1
			idx.wards = append(idx.wards, ward)
		}
	}
	if len(idx.wards) == 0 {
		return nil, fmt.Errorf("ward index is empty")
	}

	sort.SliceStable(idx.wards, func(i, j int) bool {
		return idx.wards[i].Code < idx.wards[j].Code
	})
	for i, ward := range idx.wards {
		idx.byCode[ward.Code] = i
	}
	sort.Strings(idx.subCounties)
	return idx, nil
}

// ParseWardIndex builds an index from the YAML reference format.
func ParseWardIndex(data []byte) (*WardIndex, error) {
	var file wardFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse wards: %w", err)
	}
	return NewWardIndex(file.SubCounties)
}

// LoadWardIndex reads the reference table from path, falling back to the
// embedded table when path is empty.
func LoadWardIndex(path string) (*WardIndex, error) {
	if path == "" {
		return DefaultWardIndex()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wards file: %w", err)
	}
	return ParseWardIndex(data)
}

// DefaultWardIndex returns the embedded Nairobi reference table.
func DefaultWardIndex() (*WardIndex, error) {
	return ParseWardIndex(defaultWardsYAML)
}

// Wards returns all wards ordered by code.
func (idx *WardIndex) Wards() []domain.Ward {
	out := make([]domain.Ward, len(idx.wards))
	copy(out, idx.wards)
	return out
}

// Lookup returns the ward with the given code.
func (idx *WardIndex) Lookup(code string) (domain.Ward, bool) {
	i, ok := idx.byCode[code]
	if !ok {
		return domain.Ward{}, false
	}
	return idx.wards[i], true
}

// SubCounties returns sub-county names in lexical order.
func (idx *WardIndex) SubCounties() []string {
	return append([]string(nil), idx.subCounties...)
}

// Len returns the number of wards.
func (idx *WardIndex) Len() int {
	return len(idx.wards)
}
