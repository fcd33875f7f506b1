package domain

// Kind is the activity discriminant carried by every extracted item.
type Kind string

const (
	KindFeed   Kind = "feed"
	KindPump   Kind = "pump"
	KindDiaper Kind = "diaper"
)

// Kinds lists the recognised discriminants in persistence order.
var Kinds = []Kind{KindFeed, KindPump, KindDiaper}

// FeedSource is where a feed came from.
type FeedSource string

const (
	SourceBottle FeedSource = "bottle"
	SourceBreast FeedSource = "breast"
)

// BreastSide is used by both breast feeds and pumping sessions.
type BreastSide string

const (
	SideLeft  BreastSide = "left"
	SideRight BreastSide = "right"
	SideBoth  BreastSide = "both"
)

// BottleContents is what a bottle feed contained.
type BottleContents string

const (
	ContentsBreastMilk BottleContents = "breast"
	ContentsFormula    BottleContents = "formula"
)

// VolumeUnit applies to bottle and pump volumes.
type VolumeUnit string

const (
	UnitOunce      VolumeUnit = "oz"
	UnitMilliliter VolumeUnit = "mL"
)

// DiaperType describes diaper contents.
type DiaperType string

const (
	DiaperPee   DiaperType = "pee"
	DiaperPoop  DiaperType = "poop"
	DiaperMixed DiaperType = "mixed"
	DiaperDry   DiaperType = "dry"
)

// Item is the flat, discriminated record produced by extraction. It is only used at the
// decoding boundary; Classify turns it into one of the typed variants below.
// Nil fields mean "unknown".
type Item struct {
	Activity         Kind            `json:"activity"`
	Source           *FeedSource     `json:"source,omitempty"`
	BreastSide       *BreastSide     `json:"breast_side,omitempty"`
	BreastDuration   *float64        `json:"breast_duration,omitempty"`
	BottleContents   *BottleContents `json:"bottle_contents,omitempty"`
	BottleVolume     *float64        `json:"bottle_volume,omitempty"`
	BottleVolumeUnit *VolumeUnit     `json:"bottle_volume_unit,omitempty"`
	PumpVolume       *float64        `json:"pump_volume,omitempty"`
	PumpVolumeUnit   *VolumeUnit     `json:"pump_volume_unit,omitempty"`
	DiaperType       *DiaperType     `json:"diaper_type,omitempty"`
	DiaperColor      *string         `json:"diaper_color,omitempty"`
	Notes            *string         `json:"notes,omitempty"`
}

// Feed is a breast or bottle feeding.
type Feed struct {
	Source           *FeedSource     `json:"source,omitempty"`
	BreastSide       *BreastSide     `json:"breast_side,omitempty"`
	BreastDuration   *float64        `json:"breast_duration,omitempty"`
	BottleContents   *BottleContents `json:"bottle_contents,omitempty"`
	BottleVolume     *float64        `json:"bottle_volume,omitempty"`
	BottleVolumeUnit *VolumeUnit     `json:"bottle_volume_unit,omitempty"`
	Notes            *string         `json:"notes,omitempty"`
}

// Pump is a pumping session.
type Pump struct {
	BreastSide *BreastSide `json:"breast_side,omitempty"`
	Volume     *float64    `json:"volume,omitempty"`
	VolumeUnit *VolumeUnit `json:"volume_unit,omitempty"`
	Notes      *string     `json:"notes,omitempty"`
}

// Diaper is a diaper change.
type Diaper struct {
	Type  *DiaperType `json:"type,omitempty"`
	Color *string     `json:"color,omitempty"`
	Notes *string     `json:"notes,omitempty"`
}

func (i Item) feed() Feed {
	return Feed{
		Source:           i.Source,
		BreastSide:       i.BreastSide,
		BreastDuration:   i.BreastDuration,
		BottleContents:   i.BottleContents,
		BottleVolume:     i.BottleVolume,
		BottleVolumeUnit: i.BottleVolumeUnit,
		Notes:            i.Notes,
	}
}

func (i Item) pump() Pump {
	return Pump{
		BreastSide: i.BreastSide,
		Volume:     i.PumpVolume,
		VolumeUnit: i.PumpVolumeUnit,
		Notes:      i.Notes,
	}
}

func (i Item) diaper() Diaper {
	return Diaper{
		Type:  i.DiaperType,
		Color: i.DiaperColor,
		Notes: i.Notes,
	}
}

// Batch groups classified items by kind. Each slice keeps the relative order of the
// extraction output.
type Batch struct {
	Feeds   []Feed
	Pumps   []Pump
	Diapers []Diaper
}

// Len returns the number of items across all buckets.
func (b Batch) Len() int {
	return len(b.Feeds) + len(b.Pumps) + len(b.Diapers)
}

// Empty reports whether every bucket is empty.
func (b Batch) Empty() bool {
	return b.Len() == 0
}

// Ptr returns a pointer to v. Handy for building optional fields.
func Ptr[T any](v T) *T {
	return &v
}
