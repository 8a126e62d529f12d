package portfolio

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestSkillLevelUnmarshalJSONAcceptsTextAndNumber(t *testing.T) {
	var skills []Skill
	input := `[{"name":"Go","level":"Expert"},{"name":"Rust","level":3},{"name":"Zig","level":null},{"name":"C"}]`
	if err := json.Unmarshal([]byte(input), &skills); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if skills[0].Level.Numeric || skills[0].Level.Label() != "Expert" {
		t.Fatalf("unexpected text level: %+v", skills[0].Level)
	}
	if !skills[1].Level.Numeric || skills[1].Level.Value != 3 {
		t.Fatalf("unexpected numeric level: %+v", skills[1].Level)
	}
	if skills[1].Level.Label() != "Advanced" {
		t.Fatalf("expected Advanced, got %q", skills[1].Level.Label())
	}
	if !skills[2].Level.IsZero() || !skills[3].Level.IsZero() {
		t.Fatalf("expected missing levels to be zero")
	}
}

func TestSkillLevelUnmarshalJSONRejectsFraction(t *testing.T) {
	var level SkillLevel
	if err := json.Unmarshal([]byte(`2.5`), &level); err == nil {
		t.Fatalf("expected error for fractional level")
	}
}

func TestSkillLevelRejectsFractionInBothFormats(t *testing.T) {
	var level SkillLevel
	if err := json.Unmarshal([]byte(`3.5`), &level); err == nil {
		t.Fatalf("json: expected error for fractional level")
	}

	var skills []Skill
	if err := yaml.Unmarshal([]byte("- name: Go\n  level: 3.5\n"), &skills); err == nil {
		t.Fatalf("yaml: expected error for fractional level, got %+v", skills)
	}

	// 加引号的 "3.5" 在两种格式下都是文本
	if err := json.Unmarshal([]byte(`"3.5"`), &level); err != nil || level.Label() != "3.5" {
		t.Fatalf("json quoted: %+v %v", level, err)
	}
	skills = nil
	if err := yaml.Unmarshal([]byte("- name: Go\n  level: \"3.5\"\n"), &skills); err != nil || skills[0].Level.Label() != "3.5" {
		t.Fatalf("yaml quoted: %+v %v", skills, err)
	}
}

func TestSkillLevelLabels(t *testing.T) {
	cases := []struct {
		level SkillLevel
		want  string
	}{
		{NumericLevel(1), "Beginner"},
		{NumericLevel(5), "Master"},
		{NumericLevel(7), "7"},
		{NumericLevel(0), ""},
		{TextLevel("  Fluent "), "Fluent"},
	}
	for _, tc := range cases {
		if got := tc.level.Label(); got != tc.want {
			t.Errorf("Label(%+v) = %q, want %q", tc.level, got, tc.want)
		}
	}
}

func TestSkillLevelJSONKeepsShape(t *testing.T) {
	data, err := json.Marshal([]SkillLevel{NumericLevel(4), TextLevel("Expert")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `[4,"Expert"]` {
		t.Fatalf("unexpected json %s", data)
	}
}

func TestSkillLevelUnmarshalYAML(t *testing.T) {
	var skills []Skill
	input := "- name: Go\n  level: 2\n- name: SQL\n  level: Advanced\n"
	if err := yaml.Unmarshal([]byte(input), &skills); err != nil {
		t.Fatalf("unmarshal yaml: %v", err)
	}
	if !skills[0].Level.Numeric || skills[0].Level.Value != 2 {
		t.Fatalf("unexpected yaml numeric level: %+v", skills[0].Level)
	}
	if skills[1].Level.Label() != "Advanced" {
		t.Fatalf("unexpected yaml text level: %+v", skills[1].Level)
	}
}

func TestDefaultRecordUsesModernTheme(t *testing.T) {
	record := DefaultRecord()
	if record.Theme.ColorHex != "#10b981" {
		t.Fatalf("expected modern theme color, got %q", record.Theme.ColorHex)
	}
	if record.Personal.FullName() != "Diya Adhikari" {
		t.Fatalf("unexpected full name %q", record.Personal.FullName())
	}
	if len(Themes()) != 6 {
		t.Fatalf("expected 6 themes")
	}
}

func TestHasImage(t *testing.T) {
	if HasImage("") || HasImage("   ") {
		t.Fatalf("blank values must not count as images")
	}
	if !HasImage("data:image/png;base64,AAAA") {
		t.Fatalf("data uri must count as image")
	}
}
