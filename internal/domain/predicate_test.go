package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicate_Validate(t *testing.T) {
	tests := []struct {
		name      string
		predicate *Predicate
		wantErr   bool
	}{
		{
			name:      "nil predicate",
			predicate: nil,
			wantErr:   true,
		},
		{
			name:      "empty predicate",
			predicate: &Predicate{},
			wantErr:   true,
		},
		{
			name: "both leaf and composite set",
			predicate: &Predicate{
				Leaf:      &LeafPredicate{Attribute: "plan", Operator: OperatorEquals, Value: "pro"},
				Composite: &CompositePredicate{Logic: LogicAnd, Conditions: []*Predicate{{Leaf: &LeafPredicate{Attribute: "plan", Operator: OperatorEquals, Value: "pro"}}}},
			},
			wantErr: true,
		},
		{
			name:      "valid leaf",
			predicate: &Predicate{Leaf: &LeafPredicate{Attribute: "plan", Operator: OperatorEquals, Value: "pro"}},
		},
		{
			name: "valid composite",
			predicate: &Predicate{Composite: &CompositePredicate{
				Logic: LogicOr,
				Conditions: []*Predicate{
					{Leaf: &LeafPredicate{Attribute: "plan", Operator: OperatorEquals, Value: "pro"}},
					{Leaf: &LeafPredicate{Attribute: "plan", Operator: OperatorEquals, Value: "enterprise"}},
				},
			}},
		},
		{
			name:      "composite with no conditions",
			predicate: &Predicate{Composite: &CompositePredicate{Logic: LogicAnd}},
			wantErr:   true,
		},
		{
			name:      "leaf with unknown operator",
			predicate: &Predicate{Leaf: &LeafPredicate{Attribute: "plan", Operator: "startswith", Value: "p"}},
			wantErr:   true,
		},
		{
			name:      "leaf on consent_state with valid value",
			predicate: &Predicate{Leaf: &LeafPredicate{Attribute: consentAttribute, Operator: OperatorEquals, Value: string(ConsentStateOptIn)}},
		},
		{
			name:      "leaf on consent_state with invalid value",
			predicate: &Predicate{Leaf: &LeafPredicate{Attribute: consentAttribute, Operator: OperatorEquals, Value: "MAYBE"}},
			wantErr:   true,
		},
		{
			name:      "leaf with sql injection attempt in attribute",
			predicate: &Predicate{Leaf: &LeafPredicate{Attribute: "plan'); DROP TABLE users;--", Operator: OperatorEquals, Value: "pro"}},
			wantErr:   true,
		},
		{
			name:      "leaf with whitespace in attribute",
			predicate: &Predicate{Leaf: &LeafPredicate{Attribute: "plan type", Operator: OperatorEquals, Value: "pro"}},
			wantErr:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.predicate.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPredicate_Match(t *testing.T) {
	u := &User{
		Phone:        "+14155552671",
		ConsentState: ConsentStateOptIn,
		Attributes: MapOfAny{
			"plan":  "enterprise",
			"city":  "San Francisco",
		},
	}

	tests := []struct {
		name      string
		predicate *Predicate
		want      bool
	}{
		{
			name:      "equals match",
			predicate: &Predicate{Leaf: &LeafPredicate{Attribute: "plan", Operator: OperatorEquals, Value: "enterprise"}},
			want:      true,
		},
		{
			name:      "equals no match",
			predicate: &Predicate{Leaf: &LeafPredicate{Attribute: "plan", Operator: OperatorEquals, Value: "starter"}},
			want:      false,
		},
		{
			name:      "contains case-insensitive match",
			predicate: &Predicate{Leaf: &LeafPredicate{Attribute: "city", Operator: OperatorContains, Value: "francisco"}},
			want:      true,
		},
		{
			name:      "missing attribute",
			predicate: &Predicate{Leaf: &LeafPredicate{Attribute: "missing", Operator: OperatorEquals, Value: "x"}},
			want:      false,
		},
		{
			name:      "consent_state leaf",
			predicate: &Predicate{Leaf: &LeafPredicate{Attribute: consentAttribute, Operator: OperatorEquals, Value: string(ConsentStateOptIn)}},
			want:      true,
		},
		{
			name: "composite AND both true",
			predicate: &Predicate{Composite: &CompositePredicate{
				Logic: LogicAnd,
				Conditions: []*Predicate{
					{Leaf: &LeafPredicate{Attribute: "plan", Operator: OperatorEquals, Value: "enterprise"}},
					{Leaf: &LeafPredicate{Attribute: "city", Operator: OperatorContains, Value: "San"}},
				},
			}},
			want: true,
		},
		{
			name: "composite AND one false",
			predicate: &Predicate{Composite: &CompositePredicate{
				Logic: LogicAnd,
				Conditions: []*Predicate{
					{Leaf: &LeafPredicate{Attribute: "plan", Operator: OperatorEquals, Value: "enterprise"}},
					{Leaf: &LeafPredicate{Attribute: "city", Operator: OperatorEquals, Value: "Boston"}},
				},
			}},
			want: false,
		},
		{
			name: "composite OR one true",
			predicate: &Predicate{Composite: &CompositePredicate{
				Logic: LogicOr,
				Conditions: []*Predicate{
					{Leaf: &LeafPredicate{Attribute: "plan", Operator: OperatorEquals, Value: "starter"}},
					{Leaf: &LeafPredicate{Attribute: "city", Operator: OperatorContains, Value: "San"}},
				},
			}},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.predicate.Match(u))
		})
	}
}
