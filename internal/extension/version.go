package extension

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrDevVersion is returned for branch versions such as "dev-main" or
// "2.x-dev", which have no release order.
var ErrDevVersion = errors.New("development version")

// ParseVersion reads a composer package version. Besides plain semver it
// accepts a "v" prefix and the four-part normalized form that composer
// writes to installed.json ("1.2.0.0").
func ParseVersion(raw string) (*semver.Version, error) {
	v := strings.TrimSpace(raw)
	if strings.HasPrefix(v, "dev-") || strings.HasSuffix(v, "-dev") {
		return nil, fmt.Errorf("%w %q", ErrDevVersion, raw)
	}
	v = strings.TrimPrefix(strings.TrimPrefix(v, "v"), "V")

	core, suffix := v, ""
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		core, suffix = v[:i], v[i:]
	}
	if parts := strings.Split(core, "."); len(parts) == 4 && parts[3] == "0" {
		v = strings.Join(parts[:3], ".") + suffix
	}

	sv, err := semver.StrictNewVersion(v)
	if err != nil {
		return nil, fmt.Errorf("version %q: %w", raw, err)
	}
	return sv, nil
}

// IsNewer reports whether candidate is a later release than recorded.
func IsNewer(recorded, candidate string) (bool, error) {
	r, err := ParseVersion(recorded)
	if err != nil {
		return false, err
	}
	c, err := ParseVersion(candidate)
	if err != nil {
		return false, err
	}
	return c.GreaterThan(r), nil
}
