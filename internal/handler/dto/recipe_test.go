package dto

import (
	"encoding/json"
	"testing"
)

func TestUpdateRecipeRequest_AbsentVersusNull(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValue *int
	}{
		{"absent", `{"title":"x"}`, false, nil},
		{"null", `{"prep_time":null}`, true, nil},
		{"value", `{"prep_time":15}`, true, intPtr(15)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var req UpdateRecipeRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if req.PrepTime.Set != tt.wantSet {
				t.Errorf("Set = %v, want %v", req.PrepTime.Set, tt.wantSet)
			}
			switch {
			case tt.wantValue == nil && req.PrepTime.Value != nil:
				t.Errorf("Value = %d, want nil", *req.PrepTime.Value)
			case tt.wantValue != nil && (req.PrepTime.Value == nil || *req.PrepTime.Value != *tt.wantValue):
				t.Errorf("Value = %v, want %d", req.PrepTime.Value, *tt.wantValue)
			}
		})
	}
}

func TestUpdateRecipeRequest_MarshalOmitsUnset(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(UpdateRecipeRequest{CookTime: ClearInt(), Servings: SetInt(4)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(raw), `{"cook_time":null,"servings":4}`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestUpdateRecipeRequest_RejectsNonInteger(t *testing.T) {
	t.Parallel()

	var req UpdateRecipeRequest
	if err := json.Unmarshal([]byte(`{"servings":"four"}`), &req); err == nil {
		t.Fatal("expected error for string servings")
	}
}

func intPtr(i int) *int { return &i }
