package services

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hotel-rate-engine/models"
	"hotel-rate-engine/utils"
)

var (
	priceRegex  = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
	perNightRgx = regexp.MustCompile(`(?i)for\s+(\d+)\s+night`)
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02 Jan 2006",
	"Jan 2, 2006",
}

var currencySymbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
	"₹": "INR",
}

// RateCleaner normalizes raw rate-shopper rows into competitor observations
type RateCleaner struct {
	logger          *utils.Logger
	defaultCurrency string
}

// NewRateCleaner creates a new RateCleaner. Rows without a currency column
// or symbol are assumed to be in defaultCurrency.
func NewRateCleaner(defaultCurrency string, logger *utils.Logger) *RateCleaner {
	return &RateCleaner{logger: logger, defaultCurrency: strings.ToUpper(defaultCurrency)}
}

// Clean converts raw shopper rows into observations. Rows missing a
// competitor, room type, price or stay date are dropped. When a competitor
// was shopped more than once for the same room type and date, the most
// recent shop wins.
func (c *RateCleaner) Clean(raw []*models.RawCompetitorRate) []models.CompetitorObservation {
	index := make(map[string]int)
	shopped := make(map[string]time.Time)
	var cleaned []models.CompetitorObservation

	for _, r := range raw {
		competitor := strings.TrimSpace(r.CompetitorID)
		room := strings.TrimSpace(r.RoomTypeCode)
		if competitor == "" || room == "" {
			c.logger.Debug("Skipping shopper row without competitor or room type")
			continue
		}

		rate := parseRate(r.RawRate)
		if !rate.IsPositive() {
			c.logger.Debug("Skipping %s/%s: unusable rate %q", competitor, room, r.RawRate)
			continue
		}

		date, ok := parseDate(r.RawDate)
		if !ok {
			c.logger.Debug("Skipping %s/%s: unusable stay date %q", competitor, room, r.RawDate)
			continue
		}

		obs := models.CompetitorObservation{
			CompetitorID:   competitor,
			CompetitorName: strings.TrimSpace(r.CompetitorName),
			RoomTypeCode:   room,
			Rate:           rate,
			Currency:       c.currency(r.Currency, r.RawRate),
			Date:           date,
			Availability:   parseAvailability(r.RawAvailable),
		}

		key := competitor + "|" + room + "|" + date.Format("2006-01-02")
		if i, seen := index[key]; seen {
			if r.ShoppedAt.After(shopped[key]) {
				cleaned[i] = obs
				shopped[key] = r.ShoppedAt
			}
			c.logger.Debug("Duplicate shop for %s", key)
			continue
		}
		index[key] = len(cleaned)
		shopped[key] = r.ShoppedAt
		cleaned = append(cleaned, obs)
	}

	c.logger.Info("Cleaned %d competitor rates from %d raw records", len(cleaned), len(raw))
	return cleaned
}

func (c *RateCleaner) currency(raw, rawRate string) string {
	if cur := strings.ToUpper(strings.TrimSpace(raw)); cur != "" {
		return cur
	}
	for symbol, code := range currencySymbols {
		if strings.Contains(rawRate, symbol) {
			return code
		}
	}
	return c.defaultCurrency
}

// parseRate extracts a nightly rate from strings like "$5,200.00" or
// "$10,400 for 2 nights"
func parseRate(raw string) decimal.Decimal {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return decimal.Zero
	}

	matches := priceRegex.FindStringSubmatch(cleaned)
	if len(matches) < 2 {
		return decimal.Zero
	}
	val, err := decimal.NewFromString(matches[1])
	if err != nil {
		return decimal.Zero
	}

	if m := perNightRgx.FindStringSubmatch(cleaned); len(m) >= 2 {
		nights, err := decimal.NewFromString(m[1])
		if err == nil && nights.IsPositive() {
			return val.Div(nights).Round(2)
		}
	}
	return val
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseAvailability treats a blank flag as available: a shopper that
// returned a price found the room open.
func parseAvailability(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "no", "n", "false", "0", "sold out", "soldout", "closed", "unavailable", "na", "n/a":
		return false
	}
	return true
}
