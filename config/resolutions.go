package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mahirjain10/image-resolution-worker/internal/types"
)

type resolutionsFile struct {
	Resolutions []types.Resolution `yaml:"resolutions"`
}

// DefaultResolutions is the reference deployment: 720p, 1080p and 4K.
func DefaultResolutions(outputPrefix string) []types.Resolution {
	sizes := [][2]int{{1280, 720}, {1920, 1080}, {3840, 2160}}
	res := make([]types.Resolution, 0, len(sizes))
	for _, s := range sizes {
		r := types.Resolution{Width: s[0], Height: s[1]}
		r.DestinationPrefix = outputPrefix + "/" + r.String()
		res = append(res, r)
	}
	return res
}

// LoadResolutions reads the full resolution list from a YAML file. Entries
// without destinationPrefix get outputPrefix/<W>x<H>.
func LoadResolutions(path string, outputPrefix string) ([]types.Resolution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resolutions file: %w", err)
	}
	return ParseResolutions(data, outputPrefix)
}

func ParseResolutions(data []byte, outputPrefix string) ([]types.Resolution, error) {
	var f resolutionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse resolutions file: %w", err)
	}
	for i := range f.Resolutions {
		r := &f.Resolutions[i]
		r.DestinationPrefix = strings.TrimSuffix(r.DestinationPrefix, "/")
		if r.DestinationPrefix == "" {
			r.DestinationPrefix = outputPrefix + "/" + r.String()
		}
	}
	if err := ValidateResolutions(f.Resolutions); err != nil {
		return nil, err
	}
	return f.Resolutions, nil
}

// ValidateResolutions rejects empty lists, non-positive sizes and two
// entries writing under the same prefix.
func ValidateResolutions(res []types.Resolution) error {
	if len(res) == 0 {
		return fmt.Errorf("no resolutions configured")
	}
	seen := make(map[string]struct{}, len(res))
	for _, r := range res {
		if r.Width <= 0 || r.Height <= 0 {
			return fmt.Errorf("resolution %s: width and height must be positive", r)
		}
		if _, dup := seen[r.DestinationPrefix]; dup {
			return fmt.Errorf("resolution %s: duplicate destination prefix %q", r, r.DestinationPrefix)
		}
		seen[r.DestinationPrefix] = struct{}{}
	}
	return nil
}
