package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeedDisplayHelpers(t *testing.T) {
	cases := []struct {
		name   string
		feed   Feed
		method string
		amount string
	}{
		{
			name:   "breast with side and duration",
			feed:   Feed{Source: Ptr(SourceBreast), BreastSide: Ptr(SideLeft), BreastDuration: Ptr(10.0)},
			method: "breast, left",
			amount: "10 min",
		},
		{
			name:   "breast without side",
			feed:   Feed{Source: Ptr(SourceBreast)},
			method: "breast, ?",
			amount: "min",
		},
		{
			name:   "bottle of formula",
			feed:   Feed{Source: Ptr(SourceBottle), BottleContents: Ptr(ContentsFormula), BottleVolume: Ptr(2.5), BottleVolumeUnit: Ptr(UnitOunce)},
			method: "bottle, formula",
			amount: "2.5 oz",
		},
		{
			name:   "unknown source",
			feed:   Feed{BottleVolume: Ptr(60.0), BottleVolumeUnit: Ptr(UnitMilliliter)},
			method: "?",
			amount: "60 mL",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.method, tc.feed.Method())
			require.Equal(t, tc.amount, tc.feed.Amount())
		})
	}
}

func TestPumpAndDiaperDisplayHelpers(t *testing.T) {
	pump := Pump{Volume: Ptr(4.0)}
	require.Equal(t, "?", pump.Side())
	require.Equal(t, "4 ?", pump.Amount())

	pump = Pump{BreastSide: Ptr(SideRight), Volume: Ptr(120.0), VolumeUnit: Ptr(UnitMilliliter), Notes: Ptr("evening")}
	require.Equal(t, "right", pump.Side())
	require.Equal(t, "120 mL", pump.Amount())
	require.Equal(t, "evening", pump.NotesText())

	diaper := Diaper{}
	require.Equal(t, "?", diaper.TypeText())
	require.Empty(t, diaper.ColorText())
	require.Empty(t, diaper.NotesText())

	diaper = Diaper{Type: Ptr(DiaperMixed), Color: Ptr("green")}
	require.Equal(t, "mixed", diaper.TypeText())
	require.Equal(t, "green", diaper.ColorText())
}
