package filter

import (
	"strings"
	"testing"
)

func TestNew_Valid(t *testing.T) {
	f, err := New("color", []string{"red", "blue"}, MustAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Name() != "color" {
		t.Errorf("Name() = %q", f.Name())
	}
	if got := f.Values(); len(got) != 2 || got[0] != "red" || got[1] != "blue" {
		t.Errorf("Values() = %v", got)
	}
	if f.ApplicationType() != MustAll {
		t.Errorf("ApplicationType() = %q", f.ApplicationType())
	}
}

func TestNew_DefaultApplicationType(t *testing.T) {
	f, err := New("color", nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.ApplicationType() != AtLeastOne {
		t.Errorf("ApplicationType() = %q, want %q", f.ApplicationType(), AtLeastOne)
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name    string
		fname   string
		values  []string
		appType ApplicationType
		wantErr string
	}{
		{"empty name", "", nil, MustAll, "name is required"},
		{"bad type", "color", nil, "sometimes", "invalid application type"},
		{"too many", "color", make([]string, MaxValuesPerFilter+1), MustAll, "too many values"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.fname, tt.values, tt.appType)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestNew_CopiesValues(t *testing.T) {
	in := []string{"a"}
	f, _ := New("x", in, MustAll)
	in[0] = "mutated"
	if f.Values()[0] != "a" {
		t.Error("filter must not alias caller slice")
	}
	f.Values()[0] = "mutated"
	if f.Values()[0] != "a" {
		t.Error("Values() must return a copy")
	}
}

func TestNewQueryText(t *testing.T) {
	f := NewQueryText("red shoes")
	if f.Name() != QueryName {
		t.Errorf("Name() = %q", f.Name())
	}
	if f.FirstValue() != "red shoes" {
		t.Errorf("FirstValue() = %q", f.FirstValue())
	}
}

func TestApplicationType(t *testing.T) {
	if !MustAllWithLevels.IsHierarchical() {
		t.Error("must_all_with_levels must be hierarchical")
	}
	for _, at := range []ApplicationType{MustAll, AtLeastOne, Exclude} {
		if at.IsHierarchical() {
			t.Errorf("%q must not be hierarchical", at)
		}
		if !at.IsValid() {
			t.Errorf("%q must be valid", at)
		}
	}
	if ApplicationType("nope").IsValid() {
		t.Error("unknown type must be invalid")
	}
}

func TestFirstValue_Empty(t *testing.T) {
	f, _ := New("x", nil, MustAll)
	if f.FirstValue() != "" {
		t.Errorf("FirstValue() = %q", f.FirstValue())
	}
}
