package offers

import (
	"encoding/json"
	"testing"
	"time"

	"boligmatch-backend/internal/config"
	"boligmatch-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func channels(ids ...string) datatypes.JSON {
	b, _ := json.Marshal(ids)
	return datatypes.JSON(b)
}

func baseOffer() *domain.Offer {
	return &domain.Offer{
		ExpectedPrice:       3000000,
		Commission:          45000,
		BindingPeriodMonths: 6,
		MarketingChannels:   channels("portal", "social", "print"),
	}
}

func baseCase() *domain.Case {
	return &domain.Case{ExpectedPrice: 3000000}
}

func TestScore_InRange(t *testing.T) {
	cfg := config.DefaultScoring()
	s := Score(baseOffer(), baseCase(), cfg)
	assert.GreaterOrEqual(t, s, 0.0)
	assert.LessOrEqual(t, s, 100.0)
	assert.Greater(t, s, 0.0)
}

func TestScore_Deterministic(t *testing.T) {
	cfg := config.DefaultScoring()
	o, c := baseOffer(), baseCase()
	first := Score(o, c, cfg)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Score(o, c, cfg))
	}
}

func TestScore_MonotoneInPrice(t *testing.T) {
	// 105% of expected scores at least as high as 95%, all else equal.
	cfg := config.DefaultScoring()
	c := baseCase()
	low := baseOffer()
	low.ExpectedPrice = 0.95 * c.ExpectedPrice
	high := baseOffer()
	high.ExpectedPrice = 1.05 * c.ExpectedPrice
	assert.GreaterOrEqual(t, Score(high, c, cfg), Score(low, c, cfg))
}

func TestScore_DiminishingAboveExpected(t *testing.T) {
	cfg := config.DefaultScoring()
	c := baseCase()
	at100 := baseOffer()
	at100.ExpectedPrice = c.ExpectedPrice
	at150 := baseOffer()
	at150.ExpectedPrice = 1.5 * c.ExpectedPrice
	gainBelow := Score(at100, c, cfg) - func() float64 {
		o := baseOffer()
		o.ExpectedPrice = 0.5 * c.ExpectedPrice
		return Score(o, c, cfg)
	}()
	gainAbove := Score(at150, c, cfg) - Score(at100, c, cfg)
	assert.Greater(t, gainBelow, gainAbove)
}

func TestScore_MonotoneInCommission(t *testing.T) {
	cfg := config.DefaultScoring()
	c := baseCase()
	cheap := baseOffer()
	cheap.Commission = 20000
	pricey := baseOffer()
	pricey.Commission = 80000
	assert.GreaterOrEqual(t, Score(cheap, c, cfg), Score(pricey, c, cfg))
}

func TestScore_MarketingBreadth(t *testing.T) {
	cfg := config.DefaultScoring()
	c := baseCase()
	narrow := baseOffer()
	narrow.MarketingChannels = channels("portal")
	broad := baseOffer()
	broad.MarketingChannels = channels("portal", "social", "print", "video", "openhouse")
	assert.Greater(t, Score(broad, c, cfg), Score(narrow, c, cfg))

	// Duplicate ids do not count twice.
	dup := baseOffer()
	dup.MarketingChannels = channels("portal", "portal", "portal")
	single := baseOffer()
	single.MarketingChannels = channels("portal")
	assert.Equal(t, Score(single, c, cfg), Score(dup, c, cfg))
}

func TestScore_ShorterBindingScoresHigher(t *testing.T) {
	cfg := config.DefaultScoring()
	c := baseCase()
	short := baseOffer()
	short.BindingPeriodMonths = 4
	long := baseOffer()
	long.BindingPeriodMonths = 10
	assert.Greater(t, Score(short, c, cfg), Score(long, c, cfg))

	// Floor: anything at or below the floor is equal.
	atFloor := baseOffer()
	atFloor.BindingPeriodMonths = cfg.BindingFloorMonths
	below := baseOffer()
	below.BindingPeriodMonths = 1
	assert.Equal(t, Score(atFloor, c, cfg), Score(below, c, cfg))
}

func TestPriceDeviation(t *testing.T) {
	c := baseCase()
	o := baseOffer()
	o.ExpectedPrice = 3150000
	assert.InDelta(t, 0.05, PriceDeviation(o, c), 1e-9)

	noExpectation := &domain.Case{}
	assert.Equal(t, 0.0, PriceDeviation(o, noExpectation))
}

func TestRank_ScoreDescThenEarlierSubmission(t *testing.T) {
	now := time.Now()
	list := []domain.Offer{
		{Score: 70, SubmittedAt: now.Add(2 * time.Hour)},
		{Score: 80, SubmittedAt: now.Add(time.Hour)},
		{Score: 80, SubmittedAt: now},
	}
	Rank(list)
	assert.Equal(t, 80.0, list[0].Score)
	assert.Equal(t, now, list[0].SubmittedAt)
	assert.Equal(t, now.Add(time.Hour), list[1].SubmittedAt)
	assert.Equal(t, 70.0, list[2].Score)
}
