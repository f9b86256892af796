package submission_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/intake/pkg/adapters/memory"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record() domain.Record {
	return domain.Record{
		ID:        "rec-1",
		Submitter: domain.Submitter{DisplayName: "Ann Lee", Handle: "ann", ID: "42"},
		Answers: []domain.Answer{
			{Field: "size", Label: "Size", Value: "2.5m x 2m"},
			{Field: "style", Label: "Style", Value: "Modern"},
			{Field: "material", Label: "Material", Value: "MDF"},
			{Field: "notes", Label: "Wishes", Value: "none"},
		},
		SubmittedAt: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
	}
}

type blockingLedger struct{}

func (blockingLedger) AppendRow(ctx context.Context, _ []string) error {
	<-ctx.Done()
	return ctx.Err()
}

type panickyNotifier struct{}

func (panickyNotifier) Notify(context.Context, string, string) error {
	panic("boom")
}

func TestPipeline_DeliversToBoth(t *testing.T) {
	notifier := memory.NewNotifier()
	ledger := memory.NewLedger()
	p := submission.New(notifier, "operator", ledger, submission.WithForm(domain.DefaultForm()))

	res := p.Submit(context.Background(), record())

	assert.Equal(t, domain.SubmissionResult{
		RecordID: "rec-1",
		Notifier: domain.SinkDelivered,
		Ledger:   domain.SinkDelivered,
	}, res)

	sent := notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "operator", sent[0].Destination)
	assert.Contains(t, sent[0].Text, "Size: 2.5m x 2m")
	assert.Contains(t, sent[0].Text, "@ann")

	rows, err := ledger.Rows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"2024-03-01 10:30", "Ann Lee", "ann", "42", "2.5m x 2m", "Modern", "MDF", "none"},
	}, rows)
}

func TestPipeline_FailureIsolation(t *testing.T) {
	t.Run("ledger failure does not block notifier", func(t *testing.T) {
		notifier := memory.NewNotifier()
		ledger := memory.NewLedger()
		ledger.Err = errors.New("quota exceeded")

		res := submission.New(notifier, "op", ledger).Submit(context.Background(), record())

		assert.Equal(t, domain.SinkDelivered, res.Notifier)
		assert.Equal(t, domain.SinkFailed, res.Ledger)
		assert.Len(t, notifier.Sent(), 1)
	})

	t.Run("notifier panic does not block ledger", func(t *testing.T) {
		ledger := memory.NewLedger()

		res := submission.New(panickyNotifier{}, "op", ledger).Submit(context.Background(), record())

		assert.Equal(t, domain.SinkFailed, res.Notifier)
		assert.Equal(t, domain.SinkDelivered, res.Ledger)
	})

	t.Run("timeout counts as failure", func(t *testing.T) {
		notifier := memory.NewNotifier()
		p := submission.New(notifier, "op", blockingLedger{}, submission.WithTimeout(20*time.Millisecond))

		start := time.Now()
		res := p.Submit(context.Background(), record())

		assert.Less(t, time.Since(start), 2*time.Second)
		assert.Equal(t, domain.SinkFailed, res.Ledger)
		assert.Equal(t, domain.SinkDelivered, res.Notifier)
	})
}

func TestPipeline_UnavailableLedgerIsSkipped(t *testing.T) {
	notifier := memory.NewNotifier()
	ledger := memory.NewLedger()

	var mu sync.Mutex
	var events []*domain.SinkEvent
	p := submission.New(notifier, "op", ledger,
		submission.LedgerUnavailable(errors.New("credentials missing")),
		submission.WithLifecycleHooks(domain.LifecycleHooks{
			OnSink: func(_ context.Context, ev *domain.SinkEvent) {
				mu.Lock()
				events = append(events, ev)
				mu.Unlock()
			},
		}),
	)

	n, l := p.Available()
	assert.True(t, n)
	assert.False(t, l)

	res := p.Submit(context.Background(), record())
	assert.Equal(t, domain.SinkSkipped, res.Ledger)
	assert.Equal(t, domain.SinkDelivered, res.Notifier)

	rows, _ := ledger.Rows(context.Background())
	assert.Empty(t, rows, "an unavailable ledger is never called")

	require.Len(t, events, 2)
	for _, ev := range events {
		if ev.Sink == submission.SinkLedger {
			assert.Equal(t, domain.SinkSkipped, ev.Status)
			assert.ErrorIs(t, ev.Err, domain.ErrSinkUnavailable)
		}
	}
}

func TestPipeline_NilSinks(t *testing.T) {
	res := submission.New(nil, "", nil).Submit(context.Background(), record())
	assert.Equal(t, domain.SinkSkipped, res.Notifier)
	assert.Equal(t, domain.SinkSkipped, res.Ledger)
}

func TestPipeline_IgnoresCallerCancellation(t *testing.T) {
	notifier := memory.NewNotifier()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := submission.New(notifier, "op", memory.NewLedger()).Submit(ctx, record())

	assert.Equal(t, domain.SinkDelivered, res.Notifier)
	assert.Equal(t, domain.SinkDelivered, res.Ledger)
}

func TestFormatter(t *testing.T) {
	f := submission.DefaultFormatter()

	t.Run("missing handle uses placeholder", func(t *testing.T) {
		rec := record()
		rec.Submitter.Handle = ""
		assert.Equal(t, submission.NoHandle, f.Row(rec)[2])
		assert.Contains(t, f.Notification(rec), "From: Ann Lee "+submission.NoHandle)
	})

	t.Run("fixed columns fill gaps", func(t *testing.T) {
		f := submission.Formatter{Columns: []string{"size", "shape", "style"}}
		row := f.Row(record())
		assert.Equal(t, []string{"2.5m x 2m", "", "Modern"}, row[4:])
	})

	t.Run("header follows the form", func(t *testing.T) {
		assert.Equal(t,
			[]string{"timestamp", "name", "handle", "id", "size", "style", "material", "notes"},
			submission.Header(domain.DefaultForm()))
	})
}
