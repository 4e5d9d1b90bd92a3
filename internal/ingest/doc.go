// Package ingest turns raw uploaded spreadsheets into clean, typed
// transaction records.
//
// # Pipeline
//
// An upload travels through a fixed pipeline:
//
//	bytes → decode (UTF-8 / Windows-1252 / ISO-8859-1)
//	      → tabular parse (CSV or first Excel sheet)
//	      → header normalization + required-column check
//	      → per-row coercion (date, amounts, product)
//	      → negative-amount clamping
//	      → profit derivation
//
// Validation is lenient row-by-row but strict on structure: a row with a bad
// date or amount is dropped and reported as a warning, while a file missing a
// required column is rejected outright with a *ValidationError. This matches
// a bulk-upload UX where partial data beats no data, but a malformed schema
// must be caught early.
//
// # Usage
//
//	svc := ingest.NewService(logger)
//	result, err := svc.Validate(ctx, payload, "sales.csv")
//	var verr *ingest.ValidationError
//	if errors.As(err, &verr) {
//	    // verr.Reasons holds the user-facing rejection reasons
//	}
package ingest
