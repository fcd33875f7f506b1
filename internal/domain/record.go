package domain

import (
	"strconv"
	"strings"
)

// FeedRecord is a stored feed row prepared for display.
type FeedRecord struct {
	ID          int64  `json:"id"`
	Time        int64  `json:"time"`
	DisplayTime string `json:"display_time"`
	Feed
}

// PumpRecord is a stored pump row prepared for display.
type PumpRecord struct {
	ID          int64  `json:"id"`
	Time        int64  `json:"time"`
	DisplayTime string `json:"display_time"`
	Pump
}

// DiaperRecord is a stored diaper row prepared for display.
type DiaperRecord struct {
	ID          int64  `json:"id"`
	Time        int64  `json:"time"`
	DisplayTime string `json:"display_time"`
	Diaper
}

// Dashboard holds the three record sequences rendered on the page, newest first.
type Dashboard struct {
	Feeds   []FeedRecord   `json:"feeds"`
	Pumps   []PumpRecord   `json:"pumps"`
	Diapers []DiaperRecord `json:"diapers"`
}

const unknown = "?"

// Method describes how the baby was fed, e.g. "breast, left" or "bottle, formula".
func (f Feed) Method() string {
	if f.Source == nil {
		return unknown
	}
	detail := unknown
	switch *f.Source {
	case SourceBreast:
		if f.BreastSide != nil {
			detail = string(*f.BreastSide)
		}
	case SourceBottle:
		if f.BottleContents != nil {
			detail = string(*f.BottleContents)
		}
	}
	return string(*f.Source) + ", " + detail
}

// Amount is the breast duration in minutes or the bottle volume, whichever the source implies.
func (f Feed) Amount() string {
	if f.Source != nil && *f.Source == SourceBreast {
		return joinNonEmpty(formatNumber(f.BreastDuration), "min")
	}
	return joinNonEmpty(formatNumber(f.BottleVolume), unitString(f.BottleVolumeUnit, ""))
}

// Side returns the pumped side or "?".
func (p Pump) Side() string {
	if p.BreastSide == nil {
		return unknown
	}
	return string(*p.BreastSide)
}

// Amount is the pumped volume with its unit; an unknown unit renders as "?".
func (p Pump) Amount() string {
	return joinNonEmpty(formatNumber(p.Volume), unitString(p.VolumeUnit, unknown))
}

// TypeText returns the diaper type or "?".
func (d Diaper) TypeText() string {
	if d.Type == nil {
		return unknown
	}
	return string(*d.Type)
}

// ColorText returns the free text color or an empty string.
func (d Diaper) ColorText() string {
	return deref(d.Color)
}

// NotesText returns the notes of a feed or an empty string.
func (f Feed) NotesText() string { return deref(f.Notes) }

// NotesText returns the notes of a pump or an empty string.
func (p Pump) NotesText() string { return deref(p.Notes) }

// NotesText returns the notes of a diaper or an empty string.
func (d Diaper) NotesText() string { return deref(d.Notes) }

func formatNumber(v *float64) string {
	if v == nil || *v == 0 {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func unitString(u *VolumeUnit, fallback string) string {
	if u == nil {
		return fallback
	}
	return string(*u)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, " ")
}
