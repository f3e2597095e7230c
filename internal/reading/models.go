package reading

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"celestialview/internal/llmcontracts"
)

const birthdateLayout = "2006-01-02"

var ErrInvalidBirthdate = errors.New("birthdate must be a YYYY-MM-DD date")

// Kind identifies a reading feature. It doubles as the controller mode.
type Kind string

const (
	KindFortune Kind = "fortune"
	KindTarot   Kind = "tarot"
)

var ErrUnknownKind = errors.New("unknown reading kind")

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindFortune:
		return KindFortune, nil
	case KindTarot:
		return KindTarot, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

type FortuneRequest struct {
	Birthdate string `json:"birthdate"`
	Topic     Topic  `json:"topic"`
}

// Validate guards the HTTP and CLI edges; the prompt builder assumes a valid request.
func (r FortuneRequest) Validate() error {
	if _, err := time.Parse(birthdateLayout, strings.TrimSpace(r.Birthdate)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidBirthdate, r.Birthdate)
	}
	if !r.Topic.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTopic, r.Topic)
	}
	return nil
}

type FortuneResponse struct {
	Personality string `json:"personality"`
	Prediction  string `json:"prediction"`
	Advice      string `json:"advice"`
}

// Orientation is the upright/reversed value as the model spells it.
type Orientation string

const (
	Upright  Orientation = llmcontracts.OrientationUpright
	Reversed Orientation = llmcontracts.OrientationReversed
)

type TarotResponse struct {
	CardName            string      `json:"cardName"`
	CardID              CardID      `json:"cardId"`
	Orientation         Orientation `json:"orientation"`
	Meaning             string      `json:"meaning"`
	TodayInterpretation string      `json:"todayInterpretation"`
	Advice              string      `json:"advice"`
}

func (r TarotResponse) IsReversed() bool {
	return r.Orientation == Reversed
}
