package llmcontracts

import (
	"fmt"
	"regexp"
)

const (
	ContractFortuneV1 = "FORTUNE_V1"
	ContractTarotV1   = "TAROT_V1"
)

// FieldType is the JSON type a contract field must carry.
type FieldType string

const (
	FieldString FieldType = "string"
)

// Field declares one property of the structured output.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	// Pattern, when set, must match the whole value.
	Pattern *regexp.Regexp
	// Enum, when set, lists the accepted values (compared case-insensitively).
	Enum []string
}

// Contract is the declared shape the generative service is instructed to follow.
type Contract struct {
	Name     string
	Fields   []Field
	Required []string
}

// CardIDPattern matches the 78 PKT card codes: ar00..ar21 and {wa|cu|sw|pe}01..14.
var CardIDPattern = regexp.MustCompile(`^(?:ar(?:0[0-9]|1[0-9]|2[01])|(?:wa|cu|sw|pe)(?:0[1-9]|1[0-4]))$`)

const (
	OrientationUpright  = "Xuôi"
	OrientationReversed = "Ngược"
)

var contractsRegistry = map[string]Contract{
	ContractFortuneV1: {
		Name: ContractFortuneV1,
		Fields: []Field{
			{Name: "personality", Type: FieldString, Description: "Phân tích tính cách dựa trên ngày sinh."},
			{Name: "prediction", Type: FieldString, Description: "Dự đoán tương lai về chủ đề đã chọn."},
			{Name: "advice", Type: FieldString, Description: "Lời khuyên thực tế và tích cực."},
		},
		Required: []string{"personality", "prediction", "advice"},
	},
	ContractTarotV1: {
		Name: ContractTarotV1,
		Fields: []Field{
			{Name: "cardName", Type: FieldString, Description: "Tên lá bài Tarot (ví dụ: The Fool)."},
			{Name: "cardId", Type: FieldString, Description: "Mã định danh theo chuẩn PKT (ví dụ: ar00, cu01).", Pattern: CardIDPattern},
			{Name: "orientation", Type: FieldString, Description: "Chiều của lá bài: 'Xuôi' hoặc 'Ngược'.", Enum: []string{OrientationUpright, OrientationReversed}},
			{Name: "meaning", Type: FieldString, Description: "Ý nghĩa cốt lõi."},
			{Name: "todayInterpretation", Type: FieldString, Description: "Ý nghĩa cụ thể cho ngày hôm nay."},
			{Name: "advice", Type: FieldString, Description: "Lời khuyên thực tế."},
		},
		Required: []string{"cardName", "cardId", "orientation", "meaning", "todayInterpretation", "advice"},
	},
}

// Lookup returns a registered contract by name.
func Lookup(name string) (Contract, error) {
	contract, ok := contractsRegistry[name]
	if !ok {
		return Contract{}, fmt.Errorf("unknown contract: %s", name)
	}
	return contract, nil
}

// MustLookup is Lookup for contract names known at compile time.
func MustLookup(name string) Contract {
	contract, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return contract
}

// IsRequired reports whether field is in the required list.
func (c Contract) IsRequired(field string) bool {
	for _, name := range c.Required {
		if name == field {
			return true
		}
	}
	return false
}

// JSONSchema renders the contract as a JSON Schema object, the form
// OpenAI-compatible endpoints accept in response_format.
func (c Contract) JSONSchema() map[string]any {
	properties := make(map[string]any, len(c.Fields))
	for _, f := range c.Fields {
		prop := map[string]any{
			"type":        string(f.Type),
			"description": f.Description,
		}
		if f.Pattern != nil {
			prop["pattern"] = f.Pattern.String()
		}
		if len(f.Enum) > 0 {
			prop["enum"] = append([]string(nil), f.Enum...)
		}
		properties[f.Name] = prop
	}

	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             append([]string(nil), c.Required...),
		"additionalProperties": false,
	}
}
