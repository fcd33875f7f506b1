package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nealrs/baby-tracker/internal/domain"
	"github.com/nealrs/baby-tracker/internal/outbox"
	"github.com/nealrs/baby-tracker/internal/persistence/persistencetest"
)

func breastFeed(minutes float64) domain.Feed {
	return domain.Feed{
		Source:         domain.Ptr(domain.SourceBreast),
		BreastSide:     domain.Ptr(domain.SideLeft),
		BreastDuration: domain.Ptr(minutes),
	}
}

func wetDiaper(color string) domain.Diaper {
	return domain.Diaper{Type: domain.Ptr(domain.DiaperPee), Color: domain.Ptr(color)}
}

func fixedClock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[i%len(times)]
		i++
		return t
	}
}

func TestPersistEmptyBatchAcquiresNothing(t *testing.T) {
	provider := &persistencetest.Provider{}
	p := NewPersister(provider)

	require.NoError(t, p.Persist(context.Background(), domain.Batch{}))
	require.Zero(t, provider.Acquired())
	require.Empty(t, provider.Execs())
}

func TestPersistSingleFeedSkipsOtherBuckets(t *testing.T) {
	provider := &persistencetest.Provider{}
	now := time.UnixMilli(1700000000000)
	p := NewPersister(provider, WithClock(fixedClock(now)))

	err := p.Persist(context.Background(), domain.Batch{Feeds: []domain.Feed{breastFeed(10)}})
	require.NoError(t, err)

	require.Equal(t, 1, provider.Acquired())
	require.Equal(t, 1, provider.Released())
	committed := provider.Committed()
	require.Len(t, committed, 1)
	require.Len(t, committed[0], 1)

	exec := committed[0][0]
	require.Contains(t, exec.SQL, "INSERT INTO feeds")
	require.Equal(t, int64(1700000000000), exec.Args[0])
	require.Equal(t, "breast", *exec.Args[1].(*string))
	require.Equal(t, "left", *exec.Args[2].(*string))
	require.Equal(t, 10.0, *exec.Args[3].(*float64))
	require.Nil(t, exec.Args[4].(*string), "unknown bottle contents binds as NULL")
	require.Nil(t, exec.Args[7].(*string))
}

func TestPersistDiapersShareOneTransactionInOrder(t *testing.T) {
	provider := &persistencetest.Provider{}
	p := NewPersister(provider)

	batch := domain.Batch{Diapers: []domain.Diaper{wetDiaper("yellow"), wetDiaper("green")}}
	require.NoError(t, p.Persist(context.Background(), batch))

	committed := provider.Committed()
	require.Len(t, committed, 1)
	require.Len(t, committed[0], 2)
	require.Equal(t, "yellow", *committed[0][0].Args[2].(*string))
	require.Equal(t, "green", *committed[0][1].Args[2].(*string))
}

func TestPersistRollsBackWholeBucketOnNthFailure(t *testing.T) {
	insertErr := errors.New("value too long")
	provider := &persistencetest.Provider{
		FailExec: func(call int, sql string) error {
			if call == 3 {
				return insertErr
			}
			return nil
		},
	}
	p := NewPersister(provider)

	feeds := []domain.Feed{breastFeed(5), breastFeed(6), breastFeed(7), breastFeed(8)}
	err := p.Persist(context.Background(), domain.Batch{Feeds: feeds})
	require.ErrorIs(t, err, insertErr)
	require.ErrorContains(t, err, "insert feed 3 of 4")

	require.Empty(t, provider.Committed())
	require.Equal(t, 1, provider.Rollbacks())
	require.Len(t, provider.Execs(), 3, "remaining inserts are not attempted")
	require.Equal(t, provider.Acquired(), provider.Released())
}

func TestPersistKeepsEarlierBucketsWhenLaterBucketFails(t *testing.T) {
	provider := &persistencetest.Provider{
		FailExec: func(_ int, sql string) error {
			if strings.Contains(sql, "INSERT INTO pumps") {
				return errors.New("pumps unavailable")
			}
			return nil
		},
	}
	p := NewPersister(provider)

	batch := domain.Batch{
		Feeds:   []domain.Feed{breastFeed(10)},
		Pumps:   []domain.Pump{{Volume: domain.Ptr(3.0), VolumeUnit: domain.Ptr(domain.UnitOunce)}},
		Diapers: []domain.Diaper{wetDiaper("yellow")},
	}
	err := p.Persist(context.Background(), batch)
	require.ErrorContains(t, err, "pumps unavailable")

	committed := provider.CommittedExecs()
	require.Len(t, committed, 1)
	require.Contains(t, committed[0].SQL, "INSERT INTO feeds")
	require.Equal(t, 2, provider.Acquired(), "diapers are not attempted")
	require.Equal(t, 2, provider.Released())
	for _, exec := range provider.Execs() {
		require.NotContains(t, exec.SQL, "INSERT INTO diapers")
	}
}

func TestPersistStampsEachItemNonDecreasing(t *testing.T) {
	provider := &persistencetest.Provider{}
	base := time.UnixMilli(1700000000000)
	p := NewPersister(provider, WithClock(fixedClock(base, base.Add(5*time.Millisecond), base.Add(-time.Second))))

	feeds := []domain.Feed{breastFeed(1), breastFeed(2), breastFeed(3)}
	require.NoError(t, p.Persist(context.Background(), domain.Batch{Feeds: feeds}))

	execs := provider.CommittedExecs()
	require.Len(t, execs, 3)
	require.Equal(t, int64(1700000000000), execs[0].Args[0])
	require.Equal(t, int64(1700000000005), execs[1].Args[0])
	require.Equal(t, int64(1700000000005), execs[2].Args[0], "clock going backwards is clamped")
}

func TestPersistCommitFailureReleasesSession(t *testing.T) {
	provider := &persistencetest.Provider{CommitErr: errors.New("serialization failure")}
	p := NewPersister(provider)

	err := p.Persist(context.Background(), domain.Batch{Diapers: []domain.Diaper{wetDiaper("brown")}})
	require.ErrorContains(t, err, "commit diaper transaction")
	require.Equal(t, 1, provider.Released())
}

func TestPersistAcquireFailure(t *testing.T) {
	provider := &persistencetest.Provider{AcquireErr: errors.New("too many connections")}
	p := NewPersister(provider)

	err := p.Persist(context.Background(), domain.Batch{Feeds: []domain.Feed{breastFeed(10)}})
	require.ErrorContains(t, err, "acquire session for feed")
	require.Zero(t, provider.Released())
}

func TestPersistCanceledContext(t *testing.T) {
	provider := &persistencetest.Provider{}
	p := NewPersister(provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Persist(ctx, domain.Batch{Feeds: []domain.Feed{breastFeed(10)}})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, provider.Execs())
}

func TestPersistWritesOutboxRowsInBucketTransaction(t *testing.T) {
	provider := &persistencetest.Provider{}
	p := NewPersister(provider, WithEvents(outbox.NewRecorder()))

	batch := domain.Batch{
		Feeds:   []domain.Feed{breastFeed(10)},
		Diapers: []domain.Diaper{wetDiaper("yellow"), wetDiaper("green")},
	}
	require.NoError(t, p.Persist(context.Background(), batch))

	committed := provider.Committed()
	require.Len(t, committed, 2)
	require.Len(t, committed[0], 2)
	require.Contains(t, committed[0][1].SQL, "INSERT INTO outbox")
	require.Equal(t, "feed.logged", committed[0][1].Args[2])

	require.Len(t, committed[1], 4)
	require.Contains(t, committed[1][1].SQL, "INSERT INTO outbox")
	require.Contains(t, committed[1][3].SQL, "INSERT INTO outbox")
	require.Equal(t, "diaper.logged", committed[1][3].Args[2])
	require.Equal(t, committed[0][1].Args[1], committed[1][1].Args[1], "one batch id per call")
}

func TestPersistOutboxFailureRollsBackRecords(t *testing.T) {
	provider := &persistencetest.Provider{
		FailExec: func(_ int, sql string) error {
			if strings.Contains(sql, "INSERT INTO outbox") {
				return errors.New("outbox full")
			}
			return nil
		},
	}
	p := NewPersister(provider, WithEvents(outbox.NewRecorder()))

	err := p.Persist(context.Background(), domain.Batch{Feeds: []domain.Feed{breastFeed(10)}})
	require.ErrorContains(t, err, "record feed event 1 of 1")
	require.Empty(t, provider.Committed())
	require.Equal(t, 1, provider.Rollbacks())
}
