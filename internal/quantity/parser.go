// internal/quantity/parser.go
package quantity

import (
	"fmt"
	"regexp"
	"strings"
)

// segmentRegex matches a single group or name segment.
var segmentRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// isValidSegment rejects names that are technically matched but confusing.
func isValidSegment(s string) bool {
	return segmentRegex.MatchString(s) && s != "-"
}

// ParseAddress parses `group.name`. A bare `name` resolves to defaultGroup.
func ParseAddress(raw string, defaultGroup Group) (Address, error) {
	if raw == "" {
		return Address{}, fmt.Errorf("address cannot be empty")
	}

	parts := strings.Split(raw, ".")
	switch len(parts) {
	case 1:
		if !isValidSegment(parts[0]) {
			return Address{}, fmt.Errorf("invalid quantity name: %q", parts[0])
		}
		if defaultGroup == "" {
			return Address{}, fmt.Errorf("address %q has no group and no default group applies", raw)
		}
		return NewAddress(defaultGroup, parts[0]), nil
	case 2:
		for _, p := range parts {
			if p == "" {
				return Address{}, fmt.Errorf("address %q contains an empty segment", raw)
			}
			if !isValidSegment(p) {
				return Address{}, fmt.Errorf("invalid address segment: %q", p)
			}
		}
		return NewAddress(Group(parts[0]), parts[1]), nil
	default:
		return Address{}, fmt.Errorf("address %q must have the form group.name", raw)
	}
}
