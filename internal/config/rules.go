package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"watchdog/internal/rules"
	"watchdog/pkg/contracts/domain"
)

// RulesDocument is the user-supplied YAML document describing one gate
// configuration: the role-to-column mapping and the ordered rule list.
//
//	mapping:
//	  price: Price
//	  quantity: Quantity
//	  customer: "Customer ID"
//	rules:
//	  - name: price_non_negative
//	    kind: range
//	    role: price
//	    min: 0
//	  - name: quantity_present
//	    kind: not_null
//	    role: quantity
type RulesDocument struct {
	Version int               `yaml:"version"`
	Mapping map[string]string `yaml:"mapping" validate:"required,min=1"`
	Rules   []RuleConfig      `yaml:"rules" validate:"required,min=1,dive"`
}

// RuleConfig is one rule entry in a rules document. Enabled defaults to true
// when omitted. Min/Max apply to range rules, Values to allowed_values rules.
type RuleConfig struct {
	Name    string    `yaml:"name" validate:"required"`
	Kind    string    `yaml:"kind" validate:"required,oneof=range not_null unique allowed_values"`
	Role    string    `yaml:"role" validate:"required"`
	Enabled *bool     `yaml:"enabled"`
	Min     *float64  `yaml:"min"`
	Max     *float64  `yaml:"max"`
	Values  []string  `yaml:"values"`
}

// LoadRulesDocument reads and parses a rules document from disk.
func LoadRulesDocument(path string) (*RulesDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	return ParseRulesDocument(data)
}

// ParseRulesDocument parses and validates a YAML rules document.
func ParseRulesDocument(data []byte) (*RulesDocument, error) {
	var doc RulesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rules document: %w", err)
	}
	if err := validator.New().Struct(&doc); err != nil {
		return nil, fmt.Errorf("rules document validation failed: %w", err)
	}
	return &doc, nil
}

// Build converts the document into a rule set and field mapping ready for the
// engine. Structural problems (bad bounds, unknown kinds, duplicate names)
// are reported here, before any data is touched.
func (d *RulesDocument) Build() (rules.Set, domain.FieldMapping, error) {
	mapping := make(domain.FieldMapping, len(d.Mapping))
	for role, column := range d.Mapping {
		mapping[domain.Role(role)] = column
	}

	set := rules.Set{Rules: make([]rules.Rule, 0, len(d.Rules))}
	for _, rc := range d.Rules {
		check, err := rules.NewCheck(rules.Kind(rc.Kind), rc.Min, rc.Max, rc.Values)
		if err != nil {
			return rules.Set{}, nil, fmt.Errorf("rule %q: %w", rc.Name, err)
		}
		enabled := true
		if rc.Enabled != nil {
			enabled = *rc.Enabled
		}
		set.Rules = append(set.Rules, rules.Rule{
			Name:    rc.Name,
			Role:    domain.Role(rc.Role),
			Enabled: enabled,
			Check:   check,
		})
	}
	if err := set.Validate(); err != nil {
		return rules.Set{}, nil, err
	}
	return set, mapping, nil
}

// DefaultRulesDocument is the e-commerce transaction profile the CLI falls
// back to when no rules file is given: non-negative price, quantity and
// customer ID present.
func DefaultRulesDocument() *RulesDocument {
	zero := 0.0
	return &RulesDocument{
		Version: 1,
		Mapping: map[string]string{
			"price":    "Price",
			"quantity": "Quantity",
			"customer": "Customer ID",
		},
		Rules: []RuleConfig{
			{Name: "price_non_negative", Kind: "range", Role: "price", Min: &zero},
			{Name: "quantity_present", Kind: "not_null", Role: "quantity"},
			{Name: "customer_present", Kind: "not_null", Role: "customer"},
		},
	}
}
