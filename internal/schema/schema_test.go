package schema

import "testing"

func TestUnitOf(t *testing.T) {
	tests := []struct {
		key  string
		want Unit
		ok   bool
	}{
		{"Length ftin", UnitFeetInches, true},
		{"Refrigerator size", UnitCubicFeet, true},
		{"Torque lbft", UnitPoundFeet, true},
		{"Shower", UnitBoolean, true},
		{"Heater", UnitBTU, true},
		{"Sleeps", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := UnitOf(tt.key)
			if got != tt.want || ok != tt.ok {
				t.Errorf("UnitOf(%q) = %q, %v, want %q, %v", tt.key, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestWellKnownFieldsPresent(t *testing.T) {
	for _, k := range []string{
		URL, Year, Make, Model, Trim, Name, Type, Description, WebFeatures, FloorPlan,
		DryWeight, GVWR, CCC, TireCode, RearTireDiameter, RearWheelDiameter,
		RearWheelWidth, AwningLength,
	} {
		if !Has(k) {
			t.Errorf("Has(%q) = false", k)
		}
	}
	if Len() < 150 {
		t.Errorf("Len() = %d, want at least 150", Len())
	}
}

func TestKeysSortedCopy(t *testing.T) {
	a := Keys()
	for i := 1; i < len(a); i++ {
		if a[i-1] > a[i] {
			t.Fatalf("Keys() not sorted at %d: %q > %q", i, a[i-1], a[i])
		}
	}
	a[0] = "mutated"
	if Keys()[0] == "mutated" {
		t.Error("Keys() returned shared slice")
	}
}

func TestSuggest(t *testing.T) {
	got := Suggest("gvwr lbs", 3)
	if len(got) != 3 {
		t.Fatalf("Suggest() returned %d keys, want 3", len(got))
	}
	if got[0] != GVWR {
		t.Errorf("Suggest(gvwr lbs)[0] = %q, want %q", got[0], GVWR)
	}
	if Suggest("x", 0) != nil {
		t.Error("Suggest(n=0) should be nil")
	}
}
