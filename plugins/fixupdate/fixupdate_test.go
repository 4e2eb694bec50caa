package fixupdate_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mailfix/message/header"
	"github.com/zostay/go-mailfix/pipeline"
	"github.com/zostay/go-mailfix/plugins/fixupdate"
)

// registration records the calls a plugin makes to a pipeline.Registrar.
type registration struct {
	phases []pipeline.Phase
	names  []string
	hooks  map[pipeline.Phase]pipeline.Hook
}

func (r *registration) Register(phase pipeline.Phase, name string, hook pipeline.Hook) {
	if r.hooks == nil {
		r.hooks = make(map[pipeline.Phase]pipeline.Hook)
	}
	r.phases = append(r.phases, phase)
	r.names = append(r.names, name)
	r.hooks[phase] = hook
}

// clock hands out the given times in order, repeating the last one.
type clock struct {
	mu    sync.Mutex
	times []time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.times[0]
	if len(c.times) > 1 {
		c.times = c.times[1:]
	}
	return t
}

var (
	arrival = time.Date(2023, time.June, 15, 10, 0, 0, 0, time.UTC)
	later   = time.Date(2023, time.June, 15, 10, 5, 30, 0, time.UTC)
)

type fixture struct {
	plugin  *fixupdate.Plugin
	metrics *fixupdate.Metrics
	logs    *bytes.Buffer
	conn    *pipeline.Connection
}

func newFixture(t *testing.T, times ...time.Time) *fixture {
	t.Helper()

	m, err := fixupdate.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	c := &clock{times: times}
	p := fixupdate.New(&registration{},
		fixupdate.WithClock(c.Now),
		fixupdate.WithMetrics(m))

	conn := pipeline.NewConnection("test", zerolog.New(logs))
	conn.BeginTransaction()

	return &fixture{p, m, logs, conn}
}

func (f *fixture) count(outcome string) float64 {
	return testutil.ToFloat64(f.metrics.Outcomes().WithLabelValues(outcome))
}

func TestNew_Registers(t *testing.T) {
	t.Parallel()

	reg := &registration{}
	fixupdate.New(reg)

	assert.Equal(t, []pipeline.Phase{pipeline.PhaseData, pipeline.PhaseDataPost}, reg.phases)
	assert.Equal(t, []string{fixupdate.Name, fixupdate.Name}, reg.names)
}

func TestEnsureDate_UsesArrivalTime(t *testing.T) {
	t.Parallel()

	f := newFixture(t, arrival, later)
	f.conn.Transaction.Header.Set(header.Subject, "hello")

	ctx := context.Background()
	assert.Equal(t, pipeline.Continue, f.plugin.RecordArrival(ctx, f.conn))
	assert.Equal(t, pipeline.Continue, f.plugin.EnsureDate(ctx, f.conn))

	h := f.conn.Transaction.Header
	require.Equal(t, 2, h.Len())
	assert.Equal(t, "Date", h.GetField(0).Name())
	assert.Equal(t, "Thu, 15 Jun 2023 10:00:00 +0000", h.GetField(0).Body())
	assert.Equal(t, "Date: Thu, 15 Jun 2023 10:00:00 +0000\nSubject: hello\n\n", h.String())

	assert.Equal(t, 1.0, f.count(fixupdate.OutcomeArrival))
	assert.Contains(t, f.logs.String(), `Added missing Date header \"Thu, 15 Jun 2023 10:00:00 +0000\"`)
	assert.Contains(t, f.logs.String(), `"plugin":"fixup_date"`)
	assert.Contains(t, f.logs.String(), `"level":"info"`)
}

func TestEnsureDate_EmptyHeader(t *testing.T) {
	t.Parallel()

	f := newFixture(t, later)
	ok := f.conn.Transaction.SetArrivalTime(
		time.Date(2023, time.June, 15, 10, 0, 0, 0, time.UTC))
	require.True(t, ok)

	f.plugin.EnsureDate(context.Background(), f.conn)

	assert.Equal(t, "Date: Thu, 15 Jun 2023 10:00:00 +0000\n\n",
		f.conn.Transaction.Header.String())
}

func TestRecordArrival_FirstWins(t *testing.T) {
	t.Parallel()

	f := newFixture(t, arrival, later)

	ctx := context.Background()
	f.plugin.RecordArrival(ctx, f.conn)
	f.plugin.RecordArrival(ctx, f.conn)

	at, ok := f.conn.Transaction.ArrivalTime()
	assert.True(t, ok)
	assert.Equal(t, arrival, at)
}

func TestEnsureDate_Present(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"Date", "date", "DATE", "dAtE"} {
		f := newFixture(t, arrival)
		h := f.conn.Transaction.Header
		h.Set(name, "Wed, 01 Jan 2020 00:00:00 +0000")
		h.Set(header.Subject, "hi")
		before := h.String()

		ctx := context.Background()
		f.plugin.RecordArrival(ctx, f.conn)
		assert.Equal(t, pipeline.Continue, f.plugin.EnsureDate(ctx, f.conn))

		assert.Equal(t, before, h.String(), name)
		assert.Len(t, h.GetAllFieldsNamed(header.Date), 1, name)
		assert.Equal(t, 1.0, f.count(fixupdate.OutcomePresent), name)
		assert.Empty(t, f.logs.String(), name)
	}
}

func TestEnsureDate_BlankDateIsMissing(t *testing.T) {
	t.Parallel()

	f := newFixture(t, arrival)
	f.conn.Transaction.Header.Set(header.Date, "")

	ctx := context.Background()
	f.plugin.RecordArrival(ctx, f.conn)
	f.plugin.EnsureDate(ctx, f.conn)

	fs := f.conn.Transaction.Header.GetAllFieldsNamed(header.Date)
	require.Len(t, fs, 2)
	assert.Equal(t, "Thu, 15 Jun 2023 10:00:00 +0000", fs[0].Body())
	assert.Equal(t, "", fs[1].Body())
}

func TestEnsureDate_NoArrival(t *testing.T) {
	t.Parallel()

	f := newFixture(t, later)
	assert.Equal(t, pipeline.Continue, f.plugin.EnsureDate(context.Background(), f.conn))

	d, err := f.conn.Transaction.Header.Get(header.Date)
	require.NoError(t, err)
	assert.Equal(t, "Thu, 15 Jun 2023 10:05:30 +0000", d)
	assert.Equal(t, 1.0, f.count(fixupdate.OutcomeMissing))
	assert.Contains(t, f.logs.String(), `"source":"missing"`)
}

func TestEnsureDate_InvalidArrival(t *testing.T) {
	t.Parallel()

	for _, bad := range []time.Time{
		{},
		time.Date(10000, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(-5, time.January, 1, 0, 0, 0, 0, time.UTC),
	} {
		f := newFixture(t, later)
		f.conn.Transaction.SetArrivalTime(bad)

		f.plugin.EnsureDate(context.Background(), f.conn)

		d, err := f.conn.Transaction.Header.Get(header.Date)
		require.NoError(t, err)
		assert.Equal(t, "Thu, 15 Jun 2023 10:05:30 +0000", d)
		assert.Equal(t, 1.0, f.count(fixupdate.OutcomeInvalid))
	}
}

func TestHooks_NoTransaction(t *testing.T) {
	t.Parallel()

	f := newFixture(t, arrival)
	f.conn.ResetTransaction()

	ctx := context.Background()
	assert.NotPanics(t, func() {
		assert.Equal(t, pipeline.Continue, f.plugin.RecordArrival(ctx, f.conn))
		assert.Equal(t, pipeline.Continue, f.plugin.EnsureDate(ctx, f.conn))
		assert.Equal(t, pipeline.Continue, f.plugin.RecordArrival(ctx, nil))
		assert.Equal(t, pipeline.Continue, f.plugin.EnsureDate(ctx, nil))
	})

	assert.Nil(t, f.conn.Transaction)
	assert.Equal(t, 2.0, f.count(fixupdate.OutcomeNoTransaction))
	assert.Empty(t, f.logs.String())
}

func TestPlugin_Pipeline(t *testing.T) {
	t.Parallel()

	logs := &bytes.Buffer{}
	logger := zerolog.New(logs)
	c := &clock{times: []time.Time{arrival, later}}

	p := pipeline.New(logger)
	fixupdate.New(p, fixupdate.WithClock(c.Now))

	const in = "Subject: no date\r\nTo: someone@example.com\r\n\r\nbody\r\n"
	conn := pipeline.NewConnection("127.0.0.1", logger)
	msg, err := p.Receive(context.Background(), conn, strings.NewReader(in))
	require.NoError(t, err)

	out := &strings.Builder{}
	_, err = msg.WriteTo(out)
	require.NoError(t, err)
	assert.Equal(t, "Date: Thu, 15 Jun 2023 10:00:00 +0000\r\n"+in, out.String())
}

func TestPlugin_DateInBody(t *testing.T) {
	t.Parallel()

	c := &clock{times: []time.Time{arrival, later}}
	p := pipeline.New(zerolog.Nop())
	fixupdate.New(p, fixupdate.WithClock(c.Now))

	const in = "Subject: no date\n\n" +
		"quoted text\r\nDate: Wed, 01 Jan 2020 00:00:00 +0000\r\n\r\nrest\n"
	conn := pipeline.NewConnection("test", zerolog.Nop())
	msg, err := p.Receive(context.Background(), conn, strings.NewReader(in))
	require.NoError(t, err)

	out := &strings.Builder{}
	_, err = msg.WriteTo(out)
	require.NoError(t, err)
	assert.Equal(t, "Date: Thu, 15 Jun 2023 10:00:00 +0000\n"+in, out.String())
}

func TestPlugin_ConcurrentTransactions(t *testing.T) {
	t.Parallel()

	p := pipeline.New(zerolog.Nop())
	fixupdate.New(p, fixupdate.WithClock(func() time.Time { return arrival }))

	var wg sync.WaitGroup
	results := make([]string, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			conn := pipeline.NewConnection("test", zerolog.Nop())
			msg, err := p.Receive(context.Background(), conn,
				strings.NewReader("Subject: concurrent\n\nbody\n"))
			if err != nil {
				return
			}
			results[i], _ = msg.Get(header.Date)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "Thu, 15 Jun 2023 10:00:00 +0000", r)
	}
}
