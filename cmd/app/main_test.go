package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"celestialview/internal/reading"
	"celestialview/internal/session"
)

type cannedReader struct {
	tarot reading.TarotResponse
	err   error
}

func (r cannedReader) Fortune(context.Context, reading.FortuneRequest) (reading.FortuneResponse, error) {
	return reading.FortuneResponse{}, r.err
}

func (r cannedReader) Tarot(context.Context) (reading.TarotResponse, error) {
	return r.tarot, r.err
}

func TestCookieKey(t *testing.T) {
	key, err := cookieKey("configured")
	require.NoError(t, err)
	assert.Equal(t, []byte("configured"), key)

	a, err := cookieKey("")
	require.NoError(t, err)
	b, err := cookieKey("")
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestPrintOutcome_Success(t *testing.T) {
	c := session.NewController(cannedReader{tarot: reading.TarotResponse{
		CardName: "The Star", CardID: "ar17", Orientation: reading.Upright,
		Meaning: "m", TodayInterpretation: "t", Advice: "a",
	}}, session.Options{InitialMode: reading.KindTarot})

	pending, err := c.DrawTarot(context.Background())
	var out bytes.Buffer
	require.NoError(t, printOutcome(context.Background(), &out, c, pending, err))

	var snap map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	assert.Equal(t, "success", snap["phase"])
	assert.Equal(t, "ar17", snap["tarotResult"].(map[string]any)["cardId"])
}

func TestPrintOutcome_Failure(t *testing.T) {
	c := session.NewController(cannedReader{err: &reading.ServiceError{Kind: reading.KindTarot, Err: errors.New("down")}},
		session.Options{InitialMode: reading.KindTarot})

	pending, err := c.DrawTarot(context.Background())
	var out bytes.Buffer
	err = printOutcome(context.Background(), &out, c, pending, err)

	assert.ErrorIs(t, err, errReadingFailed)
	assert.Contains(t, out.String(), reading.MessageTarotService)
}

func TestPrintOutcome_StartError(t *testing.T) {
	c := session.NewController(cannedReader{}, session.Options{})

	pending, err := c.DrawTarot(context.Background())
	err = printOutcome(context.Background(), &bytes.Buffer{}, c, pending, err)
	assert.ErrorIs(t, err, session.ErrWrongMode)
}
