package llmcontracts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ValidationResult carries validation details.
type ValidationResult struct {
	IsValid bool
	Errors  []string
	// Fields holds the trimmed string value of every declared field that
	// passed its checks. Enum values are normalised to their declared spelling.
	Fields map[string]string
}

// Validate checks LLM response against registered contract.
func Validate(contractName string, llmText string) (ValidationResult, error) {
	contract, err := Lookup(contractName)
	if err != nil {
		return ValidationResult{}, err
	}
	return contract.Validate(llmText), nil
}

// Validate checks llmText against the contract. Validation is all-or-nothing:
// IsValid is true only when every required field is present, is a non-empty
// string and satisfies its constraints.
func (c Contract) Validate(llmText string) ValidationResult {
	result := ValidationResult{Fields: make(map[string]string, len(c.Fields))}

	raw := strings.TrimSpace(llmText)
	if raw == "" {
		result.Errors = append(result.Errors, "empty LLM response")
		return result
	}

	dec := json.NewDecoder(strings.NewReader(raw))

	var obj map[string]json.RawMessage
	if err := dec.Decode(&obj); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("invalid JSON: %v", err))
		return result
	}
	if obj == nil {
		result.Errors = append(result.Errors, "response is not a JSON object")
		return result
	}
	if err := ensureSingleJSON(dec); err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	for _, field := range c.Fields {
		value, problem := c.checkField(field, obj)
		if problem != "" {
			result.Errors = append(result.Errors, problem)
			continue
		}
		if value != "" {
			result.Fields[field.Name] = value
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

func (c Contract) checkField(field Field, obj map[string]json.RawMessage) (string, string) {
	required := c.IsRequired(field.Name)

	rawValue, ok := obj[field.Name]
	if !ok || bytes.Equal(bytes.TrimSpace(rawValue), []byte("null")) {
		if required {
			return "", fmt.Sprintf("missing required field %q", field.Name)
		}
		return "", ""
	}

	var value string
	if err := json.Unmarshal(rawValue, &value); err != nil {
		return "", fmt.Sprintf("field %q must be a %s", field.Name, field.Type)
	}
	value = strings.TrimSpace(value)

	if value == "" {
		if required {
			return "", fmt.Sprintf("field %q must not be empty", field.Name)
		}
		return "", ""
	}

	if field.Pattern != nil && !field.Pattern.MatchString(value) {
		return "", fmt.Sprintf("field %q value %q does not match %s", field.Name, value, field.Pattern.String())
	}

	if len(field.Enum) > 0 {
		canonical, ok := matchEnum(field.Enum, value)
		if !ok {
			return "", fmt.Sprintf("field %q must be one of %s", field.Name, strings.Join(field.Enum, ", "))
		}
		value = canonical
	}

	return value, ""
}

func matchEnum(allowed []string, value string) (string, bool) {
	for _, candidate := range allowed {
		if strings.EqualFold(candidate, value) {
			return candidate, true
		}
	}
	return "", false
}

func ensureSingleJSON(dec *json.Decoder) error {
	if dec.More() {
		return fmt.Errorf("response contains more than one JSON value")
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); err != nil && err != io.EOF {
		return fmt.Errorf("trailing data after JSON: %v", err)
	}
	if len(bytes.TrimSpace(extra)) > 0 {
		return fmt.Errorf("trailing data after JSON")
	}
	return nil
}
