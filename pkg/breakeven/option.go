package breakeven

import (
	"fmt"
	"strings"
	"unicode"
)

// CostOption is one way of manufacturing the product: a fixed outlay plus a
// per-unit variable cost.
type CostOption struct {
	Name         string  `json:"name" yaml:"name"`
	Key          string  `json:"key" yaml:"key"`
	VariableCost float64 `json:"variableCost" yaml:"variableCost"`
	FixedCost    float64 `json:"fixedCost" yaml:"fixedCost"`
}

// NewCostOption builds a CostOption with its key derived from the name.
func NewCostOption(name string, variableCost, fixedCost float64) CostOption {
	return CostOption{
		Name:         name,
		Key:          KeyFromName(name),
		VariableCost: variableCost,
		FixedCost:    fixedCost,
	}
}

// ID returns the option's key, falling back to one derived from its name.
func (o CostOption) ID() string {
	if o.Key != "" {
		return o.Key
	}
	return KeyFromName(o.Name)
}

// KeyFromName lower-cases name and drops everything that is not a letter or
// digit, so "Co-Packer" becomes "copacker".
func KeyFromName(name string) string {
	var builder strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// ValidateOption returns an error when the option cannot describe a real
// cost structure.
func ValidateOption(o CostOption) error {
	if strings.TrimSpace(o.Name) == "" {
		return fmt.Errorf("cost option name cannot be empty")
	}
	if o.VariableCost < 0 {
		return fmt.Errorf("cost option %s: variable cost %.2f cannot be negative", o.Name, o.VariableCost)
	}
	if o.FixedCost < 0 {
		return fmt.Errorf("cost option %s: fixed cost %.2f cannot be negative", o.Name, o.FixedCost)
	}
	return nil
}
