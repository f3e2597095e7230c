package session

import (
	"celestialview/internal/reading"
)

// Phase состояние автомата контроллера.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseFailed  Phase = "failed"
)

// FortuneResult is a fortune reading together with the request it answers.
type FortuneResult struct {
	reading.FortuneResponse
	Birthdate  string        `json:"birthdate"`
	Topic      reading.Topic `json:"topic"`
	TopicLabel string        `json:"topicLabel"`
}

// TarotResult is a drawn card with the image locations and deck metadata
// the view needs. Suit fields are empty for major arcana.
type TarotResult struct {
	reading.TarotResponse
	Reversed       bool           `json:"reversed"`
	ImageURL       string         `json:"imageUrl"`
	PlaceholderURL string         `json:"placeholderUrl"`
	Arcana         reading.Arcana `json:"arcana"`
	Suit           reading.Suit   `json:"suit,omitempty"`
	SuitName       string         `json:"suitName,omitempty"`
	RankName       string         `json:"rankName,omitempty"`
}

func newFortuneResult(req reading.FortuneRequest, resp reading.FortuneResponse) *FortuneResult {
	return &FortuneResult{
		FortuneResponse: resp,
		Birthdate:       req.Birthdate,
		Topic:           req.Topic,
		TopicLabel:      req.Topic.Label(),
	}
}

func newTarotResult(resp reading.TarotResponse) *TarotResult {
	return &TarotResult{
		TarotResponse:  resp,
		Reversed:       resp.IsReversed(),
		ImageURL:       resp.CardID.ImageURL(),
		PlaceholderURL: reading.PlaceholderImageURL(resp.CardName),
		Arcana:         resp.CardID.Arcana(),
		Suit:           resp.CardID.Suit(),
		SuitName:       resp.CardID.Suit().Name(),
		RankName:       resp.CardID.RankName(),
	}
}

// state is the tagged variant behind a controller. Only the slot matching
// phase is meaningful: fortune or tarot for PhaseSuccess, errMsg for PhaseFailed.
type state struct {
	phase   Phase
	fortune *FortuneResult
	tarot   *TarotResult
	errMsg  string
}

func idle() state { return state{phase: PhaseIdle} }

func loading() state { return state{phase: PhaseLoading} }

func fortuneSuccess(r *FortuneResult) state { return state{phase: PhaseSuccess, fortune: r} }

func tarotSuccess(r *TarotResult) state { return state{phase: PhaseSuccess, tarot: r} }

func failed(msg string) state { return state{phase: PhaseFailed, errMsg: msg} }

// Snapshot is the UI state as rendered to clients.
type Snapshot struct {
	Mode        reading.Kind   `json:"mode"`
	Phase       Phase          `json:"phase"`
	IsLoading   bool           `json:"isLoading"`
	Error       *string        `json:"error"`
	Result      *FortuneResult `json:"result"`
	TarotResult *TarotResult   `json:"tarotResult"`
}

func (s state) snapshot(mode reading.Kind) Snapshot {
	snap := Snapshot{
		Mode:      mode,
		Phase:     s.phase,
		IsLoading: s.phase == PhaseLoading,
	}
	switch s.phase {
	case PhaseSuccess:
		if mode == reading.KindFortune && s.fortune != nil {
			r := *s.fortune
			snap.Result = &r
		}
		if mode == reading.KindTarot && s.tarot != nil {
			r := *s.tarot
			snap.TarotResult = &r
		}
	case PhaseFailed:
		msg := s.errMsg
		snap.Error = &msg
	}
	return snap
}
