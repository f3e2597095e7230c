package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"celestialview/internal/llm"
	"celestialview/internal/reading"
)

// fakeReader returns canned results; when gate is set every call blocks on it.
type fakeReader struct {
	mu       sync.Mutex
	fortune  reading.FortuneResponse
	tarot    reading.TarotResponse
	err      error
	panicMsg string
	gate     chan struct{}
	started  chan struct{}
	calls    int
	lastCtx  context.Context
}

func (f *fakeReader) enter(ctx context.Context) {
	f.mu.Lock()
	f.calls++
	f.lastCtx = ctx
	gate, started := f.gate, f.started
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
}

func (f *fakeReader) Fortune(ctx context.Context, _ reading.FortuneRequest) (reading.FortuneResponse, error) {
	f.enter(ctx)
	return f.fortune, f.err
}

func (f *fakeReader) Tarot(ctx context.Context) (reading.TarotResponse, error) {
	f.enter(ctx)
	return f.tarot, f.err
}

func waitDone(t *testing.T, p *Pending) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("pending request never completed")
	}
}

var loveRequest = reading.FortuneRequest{Birthdate: "1990-05-01", Topic: reading.TopicLove}

func TestController_FortuneSuccess(t *testing.T) {
	reader := &fakeReader{fortune: reading.FortuneResponse{
		Personality: "Kiên nhẫn",
		Prediction:  "Thuận lợi",
		Advice:      "Mỉm cười",
	}}
	c := NewController(reader, Options{})

	snap := c.Snapshot()
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Equal(t, reading.KindFortune, snap.Mode)

	p, err := c.SubmitFortune(context.Background(), loveRequest)
	require.NoError(t, err)
	waitDone(t, p)
	assert.False(t, p.Discarded())

	snap = c.Snapshot()
	assert.Equal(t, PhaseSuccess, snap.Phase)
	assert.False(t, snap.IsLoading)
	assert.Nil(t, snap.Error)
	assert.Nil(t, snap.TarotResult)
	require.NotNil(t, snap.Result)
	assert.Equal(t, "Kiên nhẫn", snap.Result.Personality)
	assert.Equal(t, "Thuận lợi", snap.Result.Prediction)
	assert.Equal(t, "Mỉm cười", snap.Result.Advice)
	assert.Equal(t, "1990-05-01", snap.Result.Birthdate)
	assert.Equal(t, "Tình yêu", snap.Result.TopicLabel)
}

func TestController_ServiceFailure(t *testing.T) {
	reader := &fakeReader{err: &reading.ServiceError{Kind: reading.KindFortune, Err: errors.New("connection reset")}}
	c := NewController(reader, Options{})

	p, err := c.SubmitFortune(context.Background(), loveRequest)
	require.NoError(t, err)
	waitDone(t, p)

	snap := c.Snapshot()
	assert.Equal(t, PhaseFailed, snap.Phase)
	assert.False(t, snap.IsLoading)
	assert.Nil(t, snap.Result)
	require.NotNil(t, snap.Error)
	assert.Equal(t, reading.MessageFortuneService, *snap.Error)
}

func TestController_MissingCredential(t *testing.T) {
	reader := &fakeReader{err: &reading.ConfigurationError{Err: llm.ErrMissingCredential}}
	c := NewController(reader, Options{InitialMode: reading.KindTarot})

	p, err := c.DrawTarot(context.Background())
	require.NoError(t, err)
	waitDone(t, p)

	snap := c.Snapshot()
	require.NotNil(t, snap.Error)
	assert.Equal(t, reading.MessageMissingCredential, *snap.Error)
}

func TestController_TarotSuccess(t *testing.T) {
	reader := &fakeReader{tarot: reading.TarotResponse{
		CardName:            "The Tower",
		CardID:              "ar16",
		Orientation:         reading.Reversed,
		Meaning:             "m",
		TodayInterpretation: "t",
		Advice:              "a",
	}}
	c := NewController(reader, Options{})
	_, err := c.SwitchMode(reading.KindTarot)
	require.NoError(t, err)

	p, err := c.DrawTarot(context.Background())
	require.NoError(t, err)
	waitDone(t, p)

	snap := c.Snapshot()
	assert.Nil(t, snap.Result)
	require.NotNil(t, snap.TarotResult)
	assert.True(t, snap.TarotResult.Reversed)
	assert.Equal(t, "https://www.sacred-texts.com/tarot/pkt/img/ar16.jpg", snap.TarotResult.ImageURL)
	assert.Equal(t, "https://via.placeholder.com/300x500?text=The+Tower", snap.TarotResult.PlaceholderURL)
	assert.Equal(t, reading.ArcanaMajor, snap.TarotResult.Arcana)
	assert.Equal(t, reading.SuitNone, snap.TarotResult.Suit)
	assert.Empty(t, snap.TarotResult.SuitName)
	assert.Empty(t, snap.TarotResult.RankName)
}

func TestController_TarotMinorCardMetadata(t *testing.T) {
	reader := &fakeReader{tarot: reading.TarotResponse{
		CardName:            "Queen of Swords",
		CardID:              "sw13",
		Orientation:         reading.Upright,
		Meaning:             "m",
		TodayInterpretation: "t",
		Advice:              "a",
	}}
	c := NewController(reader, Options{InitialMode: reading.KindTarot})

	p, err := c.DrawTarot(context.Background())
	require.NoError(t, err)
	waitDone(t, p)

	res := c.Snapshot().TarotResult
	require.NotNil(t, res)
	assert.False(t, res.Reversed)
	assert.Equal(t, reading.ArcanaMinor, res.Arcana)
	assert.Equal(t, reading.SuitSwords, res.Suit)
	assert.Equal(t, "Kiếm", res.SuitName)
	assert.Equal(t, "Queen", res.RankName)
}

func TestController_WrongModeAndUnknownMode(t *testing.T) {
	c := NewController(&fakeReader{}, Options{})

	_, err := c.DrawTarot(context.Background())
	assert.ErrorIs(t, err, ErrWrongMode)

	_, err = c.SwitchMode("palmistry")
	assert.ErrorIs(t, err, reading.ErrUnknownKind)
	assert.Equal(t, PhaseIdle, c.Snapshot().Phase)
}

func TestController_BusyWhileLoading(t *testing.T) {
	reader := &fakeReader{gate: make(chan struct{}), started: make(chan struct{}, 1)}
	c := NewController(reader, Options{})

	p, err := c.SubmitFortune(context.Background(), loveRequest)
	require.NoError(t, err)
	<-reader.started

	snap := c.Snapshot()
	assert.True(t, snap.IsLoading)
	assert.Equal(t, PhaseLoading, snap.Phase)

	_, err = c.SubmitFortune(context.Background(), loveRequest)
	assert.ErrorIs(t, err, ErrBusy)

	close(reader.gate)
	waitDone(t, p)
	assert.Equal(t, 1, reader.calls)
	assert.Equal(t, PhaseSuccess, c.Snapshot().Phase)
}

func TestController_ResetDropsLateResponse(t *testing.T) {
	reader := &fakeReader{
		fortune: reading.FortuneResponse{Personality: "p", Prediction: "p", Advice: "a"},
		gate:    make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	c := NewController(reader, Options{})

	p, err := c.SubmitFortune(context.Background(), loveRequest)
	require.NoError(t, err)
	<-reader.started

	snap := c.Reset()
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.False(t, snap.IsLoading)
	waitDone(t, p)
	assert.True(t, p.Discarded())

	// The discarded call finishes now and must not touch the Idle state.
	close(reader.gate)
	time.Sleep(50 * time.Millisecond)

	snap = c.Snapshot()
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Nil(t, snap.Result)
	assert.Nil(t, snap.Error)
}

func TestController_ResetCancelsOutstandingCall(t *testing.T) {
	reader := &fakeReader{gate: make(chan struct{}), started: make(chan struct{}, 1)}
	c := NewController(reader, Options{Timeout: time.Minute})
	defer close(reader.gate)

	_, err := c.SubmitFortune(context.Background(), loveRequest)
	require.NoError(t, err)
	<-reader.started

	reader.mu.Lock()
	callCtx := reader.lastCtx
	reader.mu.Unlock()
	require.NoError(t, callCtx.Err())

	c.Reset()

	select {
	case <-callCtx.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("discarded call was not cancelled")
	}
	assert.ErrorIs(t, callCtx.Err(), context.Canceled)
}

func TestController_SwitchModeDropsLateResponseAndAllowsNewRequest(t *testing.T) {
	gate := make(chan struct{})
	reader := &fakeReader{
		fortune: reading.FortuneResponse{Personality: "old", Prediction: "old", Advice: "old"},
		gate:    gate,
		started: make(chan struct{}, 2),
	}
	c := NewController(reader, Options{})

	stale, err := c.SubmitFortune(context.Background(), loveRequest)
	require.NoError(t, err)
	<-reader.started

	_, err = c.SwitchMode(reading.KindTarot)
	require.NoError(t, err)
	_, err = c.SwitchMode(reading.KindFortune)
	require.NoError(t, err)

	// A new request may start while the discarded one is still running.
	fresh, err := c.SubmitFortune(context.Background(), loveRequest)
	require.NoError(t, err)
	<-reader.started

	close(gate)
	waitDone(t, stale)
	waitDone(t, fresh)

	assert.True(t, stale.Discarded())
	assert.False(t, fresh.Discarded())
	snap := c.Snapshot()
	assert.Equal(t, PhaseSuccess, snap.Phase)
	require.NotNil(t, snap.Result)
}

func TestController_PanicBecomesFailure(t *testing.T) {
	c := NewController(&fakeReader{panicMsg: "boom"}, Options{})

	p, err := c.SubmitFortune(context.Background(), loveRequest)
	require.NoError(t, err)
	waitDone(t, p)

	snap := c.Snapshot()
	assert.Equal(t, PhaseFailed, snap.Phase)
	assert.False(t, snap.IsLoading)
	require.NotNil(t, snap.Error)
	assert.Equal(t, reading.MessageUnexpected, *snap.Error)
}

func TestController_CallOutlivesCallerContext(t *testing.T) {
	reader := &fakeReader{fortune: reading.FortuneResponse{Personality: "p", Prediction: "p", Advice: "a"}}
	c := NewController(reader, Options{Timeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := c.SubmitFortune(ctx, loveRequest)
	require.NoError(t, err)
	waitDone(t, p)

	reader.mu.Lock()
	callCtx := reader.lastCtx
	reader.mu.Unlock()
	// The call context is detached from the caller and only carries the timeout.
	_, hasDeadline := callCtx.Deadline()
	assert.True(t, hasDeadline)
	assert.Equal(t, PhaseSuccess, c.Snapshot().Phase)
}
