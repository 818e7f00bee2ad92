package settlement

import "errors"

var (
	// ErrConfiguration reports an unknown settlement strategy name.
	ErrConfiguration = errors.New("settlement configuration error")
	// ErrData reports missing or unusable settlement input.
	ErrData = errors.New("settlement data error")
	// ErrModelInconsistency reports a curve or VCG computation that could not
	// be completed. It is logged and never aborts a settlement.
	ErrModelInconsistency = errors.New("settlement model inconsistency")
	// ErrNotImplemented is returned by strategies that are extension points only.
	ErrNotImplemented = errors.New("settlement strategy not implemented")
)
