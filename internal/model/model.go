package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperr "github.com/piwi3910/PadNest/internal/errors"
)

// Material identifies one cut layer of a pad.
type Material int

const (
	MaterialUnknown Material = iota // Zero value, never produces a disc
	Felt                            // Felt disc, slightly under the nominal size
	Card                            // Card backing, under the felt
	Leather                         // Leather skin wrapped around the felt
	ExactSize                       // Disc cut at the nominal size
)

// Materials lists every disc-producing material in output order.
var Materials = []Material{Felt, Card, Leather, ExactSize}

func (m Material) String() string {
	switch m {
	case Felt:
		return "felt"
	case Card:
		return "card"
	case Leather:
		return "leather"
	case ExactSize:
		return "exact_size"
	default:
		return "unknown"
	}
}

// Valid reports whether m is one of the disc-producing materials.
func (m Material) Valid() bool {
	return m >= Felt && m <= ExactSize
}

// ParseMaterial converts a material name ("felt", "card", "leather",
// "exact_size" or "exact") to a Material.
func ParseMaterial(s string) (Material, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "felt":
		return Felt, nil
	case "card":
		return Card, nil
	case "leather":
		return Leather, nil
	case "exact_size", "exact-size", "exact":
		return ExactSize, nil
	default:
		return MaterialUnknown, apperr.New(apperr.ErrCodeInvalidMaterial, "unknown material %q", s)
	}
}

// ParseMaterials parses a list of material names, dropping duplicates while
// keeping the first occurrence order.
func ParseMaterials(names []string) ([]Material, error) {
	seen := make(map[Material]bool)
	var out []Material
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		m, err := ParseMaterial(n)
		if err != nil {
			return nil, err
		}
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out, nil
}

func (m Material) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, apperr.New(apperr.ErrCodeInvalidMaterial, "cannot encode material %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Material) UnmarshalText(b []byte) error {
	parsed, err := ParseMaterial(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Upper bounds on a single job.
const (
	MaxDiscs     = 100000  // discs per material
	MaxSheetSide = 10000.0 // mm
)

// PadSpec is one line of a pad list: a nominal size and how many are needed.
type PadSpec struct {
	Size     float64 `json:"size"` // nominal diameter in mm
	Quantity int     `json:"qty"`
}

// Validate checks that size is positive and quantity is within 1..MaxDiscs.
func (p PadSpec) Validate() error {
	if !(p.Size > 0) {
		return apperr.New(apperr.ErrCodeInvalidInput, "pad size must be positive, got %g", p.Size)
	}
	if p.Quantity <= 0 || p.Quantity > MaxDiscs {
		return apperr.New(apperr.ErrCodeInvalidInput, "pad %s: quantity must be between 1 and %d, got %d", FormatSize(p.Size), MaxDiscs, p.Quantity)
	}
	return nil
}

// TotalQuantity returns the number of discs a pad list expands to per material.
func TotalQuantity(pads []PadSpec) int {
	n := 0
	for _, p := range pads {
		n += p.Quantity
	}
	return n
}

// Disc is a single cutout for one pad unit in one material.
type Disc struct {
	Nominal  float64 `json:"nominal"`
	Diameter float64 `json:"diameter"`
}

// Radius returns half the disc diameter.
func (d Disc) Radius() float64 {
	return d.Diameter / 2
}

// PlacedDisc is a disc with its center on the sheet, in mm from the top-left corner.
type PlacedDisc struct {
	Disc
	CX float64 `json:"cx"`
	CY float64 `json:"cy"`
}

// Sheet is the rectangular stock the discs are nested on, in mm.
type Sheet struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewSheet builds a sheet from dimensions expressed in the given unit.
func NewSheet(w, h float64, unit Unit) Sheet {
	return Sheet{Width: unit.ToMM(w), Height: unit.ToMM(h)}
}

// Validate checks the sheet has a positive area and no side above MaxSheetSide.
func (s Sheet) Validate() error {
	if !(s.Width > 0) || !(s.Height > 0) {
		return apperr.New(apperr.ErrCodeInvalidInput, "sheet dimensions must be positive, got %g x %g mm", s.Width, s.Height)
	}
	if s.Width > MaxSheetSide || s.Height > MaxSheetSide {
		return apperr.New(apperr.ErrCodeInvalidInput, "sheet %g x %g mm exceeds %g mm per side", s.Width, s.Height, MaxSheetSide)
	}
	return nil
}

// Area returns the sheet area in square mm.
func (s Sheet) Area() float64 {
	return s.Width * s.Height
}

func (s Sheet) String() string {
	return fmt.Sprintf("%s x %s mm", FormatSize(s.Width), FormatSize(s.Height))
}

// Layout is the caller-owned result of nesting one material. A preview
// collaborator may move placed discs before handing it back to an emitter.
type Layout struct {
	ID       string       `json:"id"`
	Material Material     `json:"material"`
	Sheet    Sheet        `json:"sheet"`
	Spacing  float64      `json:"spacing"`
	Placed   []PlacedDisc `json:"placed"`
	Unplaced []Disc       `json:"unplaced,omitempty"`
}

// NewLayout returns an empty layout with a fresh short ID.
func NewLayout(m Material, sheet Sheet, spacing float64) Layout {
	return Layout{
		ID:       uuid.New().String()[:8],
		Material: m,
		Sheet:    sheet,
		Spacing:  spacing,
		Placed:   []PlacedDisc{},
	}
}

// Complete reports whether every disc was placed.
func (l Layout) Complete() bool {
	return len(l.Unplaced) == 0
}

// Job groups the layouts of every material selected in one request.
type Job struct {
	ID      string    `json:"id"`
	Pads    []PadSpec `json:"pads"`
	Sheet   Sheet     `json:"sheet"`
	Layouts []Layout  `json:"layouts"`
}

// NewJob returns an empty job with a fresh short ID.
func NewJob(pads []PadSpec, sheet Sheet) Job {
	return Job{
		ID:    uuid.New().String()[:8],
		Pads:  pads,
		Sheet: sheet,
	}
}
