package validation

import (
	"fmt"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// A cart must reference each product at most once: duplicate lines would
	// make tier selection depend on how the caller split the quantity.
	v.RegisterStructValidation(quoteStructValidation, QuoteRequest{})
	v.RegisterStructValidation(checkoutStructValidation, CheckoutRequest{})

	return v
}

func quoteStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(QuoteRequest)
	reportDuplicateLines(sl, req.Lines)
}

func checkoutStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CheckoutRequest)
	reportDuplicateLines(sl, req.Lines)
}

func reportDuplicateLines(sl validatorv10.StructLevel, lines []LineInput) {
	seen := map[int]bool{}
	for _, line := range lines {
		if seen[line.ProductID] {
			sl.ReportError(line.ProductID, "lines", "Lines", "unique_product_lines",
				fmt.Sprintf("product %d appears on more than one line", line.ProductID))
			return
		}
		seen[line.ProductID] = true
	}
}
