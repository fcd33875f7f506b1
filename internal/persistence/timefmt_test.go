package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatUsesFixedZoneTwelveHourClock(t *testing.T) {
	f, err := NewTimeFormatter("America/New_York")
	require.NoError(t, err)

	// 1700000000000 ms is 2023-11-14 22:13:20 UTC; New York is on EST (UTC-5) then.
	ref := time.Date(2023, time.November, 14, 22, 13, 20, 0, time.UTC).In(f.Location())
	require.Equal(t, 17, ref.Hour())

	require.Equal(t, "11/14, 5:13 PM", f.Format(1700000000000))
}

func TestFormatMorningAndDaylightSaving(t *testing.T) {
	f, err := NewTimeFormatter("")
	require.NoError(t, err)
	require.Equal(t, "America/New_York", f.Location().String())

	// 2024-07-04 13:05 UTC is 9:05 AM EDT (UTC-4).
	ts := time.Date(2024, time.July, 4, 13, 5, 0, 0, time.UTC).UnixMilli()
	require.Equal(t, "7/4, 9:05 AM", f.Format(ts))

	// Midnight renders as 12, not 0.
	ts = time.Date(2024, time.January, 2, 5, 0, 0, 0, time.UTC).UnixMilli()
	require.Equal(t, "1/2, 12:00 AM", f.Format(ts))
}

func TestFormatOtherZone(t *testing.T) {
	f, err := NewTimeFormatter("Asia/Tokyo")
	require.NoError(t, err)

	want := time.UnixMilli(1700000000000).In(f.Location()).Format("1/2, 3:04 PM")
	require.Equal(t, want, f.Format(1700000000000))
	require.Equal(t, "11/15, 7:13 AM", want)
}

func TestNewTimeFormatterRejectsUnknownZone(t *testing.T) {
	_, err := NewTimeFormatter("Mars/Olympus_Mons")
	require.Error(t, err)
}
