package jxl

import (
	"github.com/deepteams/jxl/internal/aq"
	"github.com/deepteams/jxl/internal/entropy"
	"github.com/deepteams/jxl/internal/frame"
	"github.com/deepteams/jxl/internal/imagef"
)

// Aliases of the pipeline types, so callers can hold planes, tokens and
// search settings without reaching into the internal packages.
type (
	// Plane is a single float image channel.
	Plane = imagef.Plane
	// PlaneI is an int32 grid, one value per 8x8 block.
	PlaneI = imagef.PlaneI
	// Plane3 bundles the three opsin channels.
	Plane3 = imagef.Plane3
	// Dimensions caches the block- and group-aligned frame sizes.
	Dimensions = frame.Dimensions
	// AcStrategy selects the transform footprint of a block.
	AcStrategy = frame.AcStrategy
	// AcStrategyGrid maps every 8x8 block to its transform strategy.
	AcStrategyGrid = frame.AcStrategyGrid
	// Token is one (context, value) pair emitted by the tokenizer.
	Token = entropy.Token
	// BlockCtxMap assigns entropy contexts to blocks.
	BlockCtxMap = entropy.BlockCtxMap
	// SpeedTier orders the encoder effort settings.
	SpeedTier = aq.SpeedTier
	// SearchSchedule holds the per-iteration tables of the quant searches.
	SearchSchedule = aq.SearchSchedule
	// DebugOptions selects the search introspection outputs.
	DebugOptions = aq.DebugOptions
	// DebugSink receives search logs and debug plane dumps.
	DebugSink = aq.DebugSink
	// LogSink is a DebugSink that logs to a writer and drops plane dumps.
	LogSink = aq.LogSink
	// FileSink is a DebugSink that writes compressed plane dumps to a
	// directory.
	FileSink = aq.FileSink
	// Comparator is the full-reference quality metric driving the
	// distortion-guided searches.
	Comparator = aq.Comparator
	// Reconstructor produces the decoder-side image for a committed quant
	// field.
	Reconstructor = aq.Reconstructor
)

// Speed tiers, fastest first.
const (
	TierFalcon   = aq.TierFalcon
	TierCheetah  = aq.TierCheetah
	TierHare     = aq.TierHare
	TierWombat   = aq.TierWombat
	TierSquirrel = aq.TierSquirrel
	TierKitten   = aq.TierKitten
	TierTortoise = aq.TierTortoise
)

// Params carries the per-encode settings of the rate-control pipeline. The
// zero value encodes at distance 1 with no search iterations; DefaultParams
// returns the tuned settings.
type Params struct {
	// Distance is the target psychovisual distance; smaller is better
	// quality. Zero or negative means 1.
	Distance float32
	// Tier selects the search effort.
	Tier SpeedTier
	// MaxIters bounds the feedback iterations of the standard and
	// max-error searches; both always run MaxIters+1 scoring passes.
	MaxIters int
	// MaxItersHQ bounds the scoring passes of the exhaustive search.
	MaxItersHQ int
	// MaxErrorMode switches to the per-channel absolute error targets in
	// MaxError instead of the distance.
	MaxErrorMode bool
	MaxError     [3]float32
	// UniformQuant, when positive, bypasses every search and commits the
	// given strength for DC and AC.
	UniformQuant float32
	// Rescale stretches quant strengths uniformly; zero means 1.
	Rescale float32
	// Schedule overrides the default search schedule when non-nil.
	Schedule *SearchSchedule
	// Debug selects search logging and plane dumps.
	Debug DebugOptions
	// Comparator overrides the default opsin-domain metric when non-nil.
	Comparator Comparator
	// Oracle overrides the default DCT round-trip oracle when non-nil.
	Oracle Reconstructor
}

// DefaultParams returns the tuned settings for a target distance.
func DefaultParams(distance float32) *Params {
	return &Params{
		Distance:   distance,
		Tier:       TierSquirrel,
		MaxIters:   4,
		MaxItersHQ: 100,
		Rescale:    1,
	}
}

func (p *Params) distance() float32 {
	if p.Distance <= 0 {
		return 1
	}
	return p.Distance
}

func (p *Params) search() *aq.SearchParams {
	return &aq.SearchParams{
		Distance:     p.distance(),
		MaxIters:     p.MaxIters,
		MaxItersHQ:   p.MaxItersHQ,
		MaxErrorMode: p.MaxErrorMode,
		MaxError:     p.MaxError,
		UniformQuant: p.UniformQuant,
		Tier:         p.Tier,
		Rescale:      p.Rescale,
	}
}

// NewPlane returns a zeroed float channel.
func NewPlane(w, h int) *Plane { return imagef.NewPlane(w, h) }

// NewPlane3 returns three zeroed channels of the same size.
func NewPlane3(w, h int) Plane3 { return imagef.NewPlane3(w, h) }

// NewDimensions derives the aligned frame sizes from a pixel size.
func NewDimensions(xsize, ysize int) Dimensions { return frame.NewDimensions(xsize, ysize) }
