package reading

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"celestialview/internal/llmcontracts"
)

const (
	cardImageURLTemplate   = "https://www.sacred-texts.com/tarot/pkt/img/%s.jpg"
	placeholderURLTemplate = "https://via.placeholder.com/300x500?text=%s"
)

var ErrInvalidCardID = errors.New("card id outside the PKT vocabulary")

// CardID is a PKT card code such as ar00 or sw13.
type CardID string

type Suit string

const (
	SuitNone      Suit = ""
	SuitWands     Suit = "wa"
	SuitCups      Suit = "cu"
	SuitSwords    Suit = "sw"
	SuitPentacles Suit = "pe"
)

var suitNames = map[Suit]string{
	SuitWands:     "Gậy",
	SuitCups:      "Cốc",
	SuitSwords:    "Kiếm",
	SuitPentacles: "Tiền",
}

func ParseCardID(s string) (CardID, error) {
	if !llmcontracts.CardIDPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCardID, s)
	}
	return CardID(s), nil
}

// AllCardIDs returns the 78 codes, major arcana first.
func AllCardIDs() []CardID {
	ids := make([]CardID, 0, 78)
	for i := 0; i <= 21; i++ {
		ids = append(ids, CardID(fmt.Sprintf("ar%02d", i)))
	}
	for _, suit := range []Suit{SuitWands, SuitCups, SuitSwords, SuitPentacles} {
		for rank := 1; rank <= 14; rank++ {
			ids = append(ids, CardID(fmt.Sprintf("%s%02d", suit, rank)))
		}
	}
	return ids
}

func (id CardID) Valid() bool {
	return llmcontracts.CardIDPattern.MatchString(string(id))
}

func (id CardID) IsMajor() bool {
	return id.Valid() && id[:2] == "ar"
}

// Suit returns SuitNone for major arcana and invalid ids.
func (id CardID) Suit() Suit {
	if !id.Valid() || id.IsMajor() {
		return SuitNone
	}
	return Suit(id[:2])
}

// Number is 0..21 for major arcana and 1..14 (Ace..King) for minor cards.
func (id CardID) Number() int {
	if !id.Valid() {
		return -1
	}
	n, err := strconv.Atoi(string(id[2:]))
	if err != nil {
		return -1
	}
	return n
}

func (s Suit) Name() string {
	return suitNames[s]
}

// ImageURL is the deterministic image location for a valid card.
func (id CardID) ImageURL() string {
	return fmt.Sprintf(cardImageURLTemplate, string(id))
}

// PlaceholderImageURL is the fallback shown when the card image cannot load.
func PlaceholderImageURL(cardName string) string {
	return fmt.Sprintf(placeholderURLTemplate, url.QueryEscape(cardName))
}

type Arcana string

const (
	ArcanaMajor Arcana = "major"
	ArcanaMinor Arcana = "minor"
)

func (id CardID) Arcana() Arcana {
	switch {
	case !id.Valid():
		return ""
	case id.IsMajor():
		return ArcanaMajor
	default:
		return ArcanaMinor
	}
}

var rankNames = [...]string{"", "Ace", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine", "Ten", "Page", "Knight", "Queen", "King"}

// RankName is the court or pip name of a minor card, "" for major arcana.
func (id CardID) RankName() string {
	if id.Arcana() != ArcanaMinor {
		return ""
	}
	return rankNames[id.Number()]
}
