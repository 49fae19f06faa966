package props

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

func ParseBoolPropSafe(prop FieldProp, value string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("%s(%s) is not a valid prop; expected true or false", prop, value)
	}
	return b, nil
}

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func ParseNamePropSafe(value string) (string, error) {
	name := strings.TrimSpace(value)
	if !namePattern.MatchString(name) {
		return "", fmt.Errorf("name(%s) is not a valid prop; %q is not a valid name", value, name)
	}
	return name, nil
}

// ParseDefaultPropSafe strips one pair of matching quotes, so that
// default("a b") and default(ab) both yield text.
func ParseDefaultPropSafe(value string) string {
	v := strings.TrimSpace(value)
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

// ParseFieldProp validates a prop and its raw value as written in a schema.
func ParseFieldProp(prop FieldProp, value string) error {
	if !prop.IsValid() {
		return fmt.Errorf("Invalid field prop: %s", prop)
	}
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("No value for prop: %s", prop)
	}
	if prop.IsBool() {
		_, err := ParseBoolPropSafe(prop, value)
		return err
	}
	if prop == FieldPropName {
		_, err := ParseNamePropSafe(value)
		return err
	}
	return nil
}
