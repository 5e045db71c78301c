package model

type state int

const (
	DefaultState state = iota
	ExpectingSymbol
	ExpectingDate
	ExpectingTime
	ExpectingAmount
	PurchaseSubmitFailed
)

type Session struct {
	State state        `json:"state"`
	Form  PurchaseForm `json:"form"`
}

// NextStep returns the first step whose field is still empty; ok is false when the form is complete.
func (f PurchaseForm) NextStep() (step state, ok bool) {
	switch {
	case f.Symbol == "":
		return ExpectingSymbol, true
	case f.Date == "":
		return ExpectingDate, true
	case f.Time == "":
		return ExpectingTime, true
	case f.Amount == "":
		return ExpectingAmount, true
	default:
		return DefaultState, false
	}
}
