package portfolio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var levelLabels = [...]string{"Beginner", "Intermediate", "Advanced", "Expert", "Master"}

// SkillLevel holds either a free-text level ("Expert") or a numeric
// severity. Numeric is true only when the source value was an integer.
type SkillLevel struct {
	Text    string
	Value   int
	Numeric bool
}

// TextLevel builds a free-text level.
func TextLevel(text string) SkillLevel {
	return SkillLevel{Text: text}
}

// NumericLevel builds an integer level.
func NumericLevel(value int) SkillLevel {
	return SkillLevel{Value: value, Numeric: true}
}

// IsZero reports whether the level should be omitted when rendered.
func (l SkillLevel) IsZero() bool {
	if l.Numeric {
		return l.Value == 0
	}
	return strings.TrimSpace(l.Text) == ""
}

// Label returns the human readable level. Integers 1-5 map to named
// levels, any other integer is printed as-is.
func (l SkillLevel) Label() string {
	if !l.Numeric {
		return strings.TrimSpace(l.Text)
	}
	if l.Value >= 1 && l.Value <= len(levelLabels) {
		return levelLabels[l.Value-1]
	}
	if l.Value == 0 {
		return ""
	}
	return strconv.Itoa(l.Value)
}

func (l SkillLevel) String() string {
	return l.Label()
}

// MarshalJSON keeps the original shape: a number stays a number.
func (l SkillLevel) MarshalJSON() ([]byte, error) {
	if l.Numeric {
		return []byte(strconv.Itoa(l.Value)), nil
	}
	return json.Marshal(l.Text)
}

// UnmarshalJSON accepts a string, an integer or null.
func (l *SkillLevel) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = SkillLevel{}
		return nil
	}
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return fmt.Errorf("skill level: %w", err)
		}
		*l = TextLevel(text)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(trimmed, &number); err != nil {
		return fmt.Errorf("skill level: %w", err)
	}
	value, err := number.Int64()
	if err != nil {
		return fmt.Errorf("skill level %s is not an integer", number)
	}
	*l = NumericLevel(int(value))
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML input.
func (l *SkillLevel) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("skill level must be a scalar, got kind %d", node.Kind)
	}
	switch node.Tag {
	case "!!null":
		*l = SkillLevel{}
	case "!!int":
		value, err := strconv.Atoi(node.Value)
		if err != nil {
			return fmt.Errorf("skill level: %w", err)
		}
		*l = NumericLevel(value)
	case "!!float":
		// 与 JSON 一致：数字等级必须是整数
		return fmt.Errorf("skill level %s is not an integer", node.Value)
	default:
		*l = TextLevel(node.Value)
	}
	return nil
}

// MarshalYAML keeps integers as integers.
func (l SkillLevel) MarshalYAML() (any, error) {
	if l.Numeric {
		return l.Value, nil
	}
	return l.Text, nil
}
