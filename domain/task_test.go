package domain

import "testing"

func strPtr(s string) *string { return &s }

func TestTaskPatchDescription(t *testing.T) {
	cases := []struct {
		name  string
		patch TaskPatch
		sets  bool
		value *string
	}{
		{"untouched", TaskPatch{Title: strPtr("x")}, false, nil},
		{"set", TaskPatch{Description: strPtr("new")}, true, strPtr("new")},
		{"clear", TaskPatch{ClearDescription: true}, true, nil},
		{"clear wins over value", TaskPatch{ClearDescription: true, Description: strPtr("ignored")}, true, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.patch.SetsDescription(); got != tc.sets {
				t.Fatalf("SetsDescription() = %v, want %v", got, tc.sets)
			}
			if !tc.sets {
				return
			}
			got := tc.patch.DescriptionValue()
			if (got == nil) != (tc.value == nil) || (got != nil && *got != *tc.value) {
				t.Fatalf("DescriptionValue() = %v, want %v", got, tc.value)
			}
		})
	}
}

func TestValidPriority(t *testing.T) {
	for p, want := range map[int]bool{
		0:                   true,
		MaxTaskPriority:     true,
		MinTaskPriority:     true,
		MaxTaskPriority + 1: false,
		MinTaskPriority - 1: false,
	} {
		if got := ValidPriority(p); got != want {
			t.Fatalf("ValidPriority(%d) = %v, want %v", p, got, want)
		}
	}
}
