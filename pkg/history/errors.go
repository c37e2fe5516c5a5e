package history

import "errors"

// ErrSourceUnavailable is returned when the purchase-history source cannot be reached.
var ErrSourceUnavailable = errors.New("history: purchase history source unavailable")
