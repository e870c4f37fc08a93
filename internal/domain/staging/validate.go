package staging

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/aimsys/order-entry/internal/domain/pricing"
)

// ViolationKind classifies a single pre-commit check failure.
type ViolationKind string

const (
	ViolationEmptyOrder      ViolationKind = "EmptyOrder"
	ViolationInvalidQuantity ViolationKind = "InvalidQuantity"
	ViolationInvalidPrice    ViolationKind = "InvalidPrice"
	ViolationDiscountCeiling ViolationKind = "DiscountCeilingExceeded"
	ViolationOrphanReference ViolationKind = "OrphanReference"
)

// Violation is one human-readable check failure.
type Violation struct {
	Kind    ViolationKind
	Message string
}

// Report aggregates every violation found in a workspace. A save attempt
// surfaces the whole report at once, not one failure at a time.
type Report struct {
	Violations []Violation
}

// Valid reports whether the workspace passed every check.
func (r Report) Valid() bool {
	return len(r.Violations) == 0
}

// Messages returns the violation strings in check order.
func (r Report) Messages() []string {
	msgs := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		msgs[i] = v.Message
	}
	return msgs
}

var hundred = decimal.NewFromInt(100)

// Validate runs every pre-commit check over the workspace and collects all
// violations in check order. Commit must be refused whenever the report is
// non-empty.
func Validate(w *Workspace, ct pricing.CustomerType) Report {
	var report Report
	add := func(kind ViolationKind, format string, args ...any) {
		report.Violations = append(report.Violations, Violation{
			Kind:    kind,
			Message: fmt.Sprintf(format, args...),
		})
	}

	if len(w.lines) == 0 {
		add(ViolationEmptyOrder, "order must have at least one line item")
	}

	for i, line := range w.lines {
		if line.Quantity <= 0 {
			add(ViolationInvalidQuantity, "line %d: quantity must be positive", i+1)
		}
	}
	for i, line := range w.lines {
		if line.Product.UnitPrice.IsNegative() {
			add(ViolationInvalidPrice, "line %d: unit price must be zero or greater", i+1)
		}
	}

	// Effective discount ratio check, 4-decimal half-up, against the tier's
	// ceiling. Computed directly rather than through pricing.Compute so the
	// check still runs when other violations are present.
	subtotal := decimal.Zero
	for _, line := range w.lines {
		subtotal = subtotal.Add(line.Product.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	subtotal = subtotal.Round(2)
	if subtotal.IsPositive() {
		discount := pricing.DiscountFor(subtotal, ct).Round(2)
		ratio := discount.DivRound(subtotal, 4)
		if maxRatio := ct.MaxDiscountRatio(); ratio.GreaterThan(maxRatio) {
			add(ViolationDiscountCeiling, "discount cannot exceed %s%%", maxRatio.Mul(hundred).String())
		}
	}

	for i, line := range w.lines {
		if !w.hasContainer(line.ContainerID) {
			add(ViolationOrphanReference, "line %d: container %d not found in workspace", i+1, line.ContainerID)
		}
	}
	for _, c := range w.containers {
		if !w.hasShipper(c.ShipperID) {
			add(ViolationOrphanReference, "container %s: shipper %d not found in workspace", c.Number, c.ShipperID)
		}
	}

	return report
}
