package summary

import "errors"

// Summary cache domain errors
var (
	// ErrCacheCommitFailure means a window's rows could not be committed; the
	// window keeps its previous rows. Callers retry the whole refresh.
	ErrCacheCommitFailure = errors.New("summary cache commit failed")

	ErrInvalidPeriodType = errors.New("period type must be one of diario, semanal, mensal, anual")
	ErrRefreshCancelled  = errors.New("summary refresh cancelled")
)
