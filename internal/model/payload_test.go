package model_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/Tiliavir/standup/internal/model"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{nil, []string{}},
		{[]string{"API", " api ", "Backend"}, []string{"api", "backend"}},
		{[]string{"", "  ", "x"}, []string{"x"}},
		{[]string{"b", "a", "B"}, []string{"b", "a"}},
	}
	for _, tt := range tests {
		got := model.NormalizeTags(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("NormalizeTags(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitTags(t *testing.T) {
	got := model.SplitTags("api, Testing,,api")
	want := []string{"api", "testing"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitTags = %q, want %q", got, want)
	}
	if got := model.SplitTags("  "); len(got) != 0 {
		t.Errorf("SplitTags(blank) = %q, want empty", got)
	}
}

func TestPayloadOmitsUnratedValues(t *testing.T) {
	e := model.Entry{Date: "2024-01-05", Today: "ship it", Mood: 0, Productivity: 4}
	data, err := json.Marshal(model.PayloadFromEntry(e))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	body := string(data)
	if strings.Contains(body, `"mood"`) {
		t.Errorf("payload %s contains mood, want it omitted", body)
	}
	if !strings.Contains(body, `"productivity":4`) {
		t.Errorf("payload %s lacks productivity 4", body)
	}
}

func TestPrepareStripsExplicitZero(t *testing.T) {
	zero := 0
	p := model.EntryPayload{Mood: &zero, Productivity: &zero, Tags: []string{"A", "a"}}.Prepare()
	if p.Mood != nil || p.Productivity != nil {
		t.Errorf("Prepare kept zero ratings: mood=%v productivity=%v", p.Mood, p.Productivity)
	}
	if !reflect.DeepEqual(p.Tags, []string{"a"}) {
		t.Errorf("Prepare tags = %q, want [a]", p.Tags)
	}
}

func TestValidate(t *testing.T) {
	six := 6
	three := 3
	tests := []struct {
		name        string
		p           model.EntryPayload
		requireDate bool
		wantField   string
	}{
		{"valid create", model.EntryPayload{Date: "2024-01-05", Mood: &three}, true, ""},
		{"missing date on create", model.EntryPayload{}, true, "date"},
		{"bad date", model.EntryPayload{Date: "05/01/2024"}, false, "date"},
		{"partial update without date", model.EntryPayload{Mood: &three}, false, ""},
		{"mood out of range", model.EntryPayload{Mood: &six}, false, "mood"},
		{"productivity out of range", model.EntryPayload{Productivity: &six}, false, "productivity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate(tt.requireDate)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate: unexpected error %v", err)
				}
				return
			}
			var ve *model.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate error = %v, want *ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}
