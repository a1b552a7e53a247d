package model

import "testing"

func TestClassName(t *testing.T) {
	tests := []struct {
		label int
		want  string
	}{
		{LabelHome, "home"},
		{LabelAuto, "auto"},
		{2, "unknown"},
		{-1, "unknown"},
	}
	for _, tc := range tests {
		if got := ClassName(tc.label); got != tc.want {
			t.Errorf("ClassName(%d) = %q, want %q", tc.label, got, tc.want)
		}
	}
}

func TestScoreErrorMessage(t *testing.T) {
	err := NewScoreError(KindBadRequest, "bad batch: %d items", 0)
	if err.Error() != "bad_request: bad batch: 0 items" {
		t.Errorf("unexpected error string: %q", err.Error())
	}
}
