package trade

import (
	"fmt"
	"strings"
)

// String implements the stringer interface
func (r RiskType) String() string {
	return string(r)
}

// Equals compares two risk types ignoring case
func (r RiskType) Equals(other RiskType) bool {
	return strings.EqualFold(string(r), string(other))
}

// StringToRiskType converts a case insensitive string to a RiskType
func StringToRiskType(riskType string) (RiskType, error) {
	switch {
	case strings.EqualFold(riskType, Fixed.String()):
		return Fixed, nil
	case strings.EqualFold(riskType, Trailing.String()):
		return Trailing, nil
	default:
		return "", fmt.Errorf("%w %q", ErrInvalidRiskType, riskType)
	}
}

// String implements the stringer interface
func (k RuleKind) String() string {
	return string(k)
}
