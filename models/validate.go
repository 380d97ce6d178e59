package models

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrInvalidInput marks a violation of the engine's input contract
var ErrInvalidInput = errors.New("invalid input")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// decimals are compared as numbers by the gt/gte tags
		validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
			if d, ok := v.Interface().(decimal.Decimal); ok {
				return d.InexactFloat64()
			}
			return nil
		}, decimal.Decimal{})
	})
	return validate
}

// Validate checks the RateContext contract: positive rate, non-negative
// inventory, a stay date and a room type code.
func (rc *RateContext) Validate() error {
	if rc.Date.IsZero() {
		return fmt.Errorf("%w: rate context date is required", ErrInvalidInput)
	}
	if err := validatorInstance().Struct(rc); err != nil {
		return fmt.Errorf("%w: rate context: %v", ErrInvalidInput, err)
	}
	return nil
}

// Validate checks occupancy is within 0-100 and the trend is known
func (hp *HistoricalPerformance) Validate() error {
	if err := validatorInstance().Struct(hp); err != nil {
		return fmt.Errorf("%w: historical performance: %v", ErrInvalidInput, err)
	}
	return nil
}

// NewRateContext builds a validated RateContext. The stay date is truncated
// to a calendar date.
func NewRateContext(rc RateContext) (*RateContext, error) {
	rc.Date = CalendarDate(rc.Date)
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	return &rc, nil
}

// NewHistoricalPerformance builds a validated HistoricalPerformance
func NewHistoricalPerformance(hp HistoricalPerformance) (*HistoricalPerformance, error) {
	if err := hp.Validate(); err != nil {
		return nil, err
	}
	return &hp, nil
}

// CalendarDate drops the clock part of t, keeping its location
func CalendarDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDate reports whether a and b fall on the same calendar day
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
