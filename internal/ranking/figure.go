package ranking

import (
	"math"

	"github.com/shopspring/decimal"
)

// figure is a cash amount kept exact as a decimal. Infinities and NaN have no
// decimal form, so once one is involved the arithmetic continues in float64.
type figure struct {
	exact  decimal.Decimal
	approx float64
	float  bool
}

func newFigure(v float64) figure {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return figure{approx: v, float: true}
	}
	return figure{exact: decimal.NewFromFloat(v)}
}

func (f figure) value() float64 {
	if f.float {
		return f.approx
	}
	return f.exact.InexactFloat64()
}

func (f figure) add(o figure) figure {
	if f.float || o.float {
		return figure{approx: f.value() + o.value(), float: true}
	}
	return figure{exact: f.exact.Add(o.exact)}
}

func (f figure) sub(o figure) figure {
	if f.float || o.float {
		return figure{approx: f.value() - o.value(), float: true}
	}
	return figure{exact: f.exact.Sub(o.exact)}
}

// covers reports f >= o. NaN covers nothing and is covered by nothing.
func (f figure) covers(o figure) bool {
	if f.float || o.float {
		return f.value() >= o.value()
	}
	return f.exact.GreaterThanOrEqual(o.exact)
}

func (f figure) exceeds(o figure) bool {
	if f.float || o.float {
		return f.value() > o.value()
	}
	return f.exact.GreaterThan(o.exact)
}

func (f figure) positive() bool {
	if f.float {
		return f.approx > 0
	}
	return f.exact.IsPositive()
}

// percentOf returns f as a percentage of total. total must be positive.
func (f figure) percentOf(total figure) float64 {
	if f.float || total.float {
		return f.value() / total.value() * 100
	}
	return f.exact.Div(total.exact).Mul(decimal.NewFromInt(100)).InexactFloat64()
}
