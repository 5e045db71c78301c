package externalApi

import "errors"

var ErrPriceUnavailable = errors.New("price unavailable")
