package reading

import (
	"celestialview/internal/llmcontracts"
)

// ParseFortune validates raw against FORTUNE_V1 and builds the record.
func ParseFortune(raw string) (FortuneResponse, error) {
	fields, err := validate(KindFortune, llmcontracts.ContractFortuneV1, raw)
	if err != nil {
		return FortuneResponse{}, err
	}
	return FortuneResponse{
		Personality: fields["personality"],
		Prediction:  fields["prediction"],
		Advice:      fields["advice"],
	}, nil
}

// ParseTarot validates raw against TAROT_V1. Orientation comes back in its
// canonical spelling.
func ParseTarot(raw string) (TarotResponse, error) {
	fields, err := validate(KindTarot, llmcontracts.ContractTarotV1, raw)
	if err != nil {
		return TarotResponse{}, err
	}
	id, err := ParseCardID(fields["cardId"])
	if err != nil {
		return TarotResponse{}, &ValidationError{Kind: KindTarot, Err: err}
	}
	return TarotResponse{
		CardName:            fields["cardName"],
		CardID:              id,
		Orientation:         Orientation(fields["orientation"]),
		Meaning:             fields["meaning"],
		TodayInterpretation: fields["todayInterpretation"],
		Advice:              fields["advice"],
	}, nil
}

func validate(kind Kind, contractName, raw string) (map[string]string, error) {
	result, err := llmcontracts.Validate(contractName, raw)
	if err != nil {
		return nil, err
	}
	if !result.IsValid {
		return nil, &ValidationError{Kind: kind, Problems: result.Errors}
	}
	return result.Fields, nil
}
