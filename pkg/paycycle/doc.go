// Package paycycle infers a customer's recurring income cycle from their
// historical transaction dates.
//
// The detector is a pure function over a date list: given at least three
// dates (in any order) it produces a Pattern describing the anchor day of
// month, a frequency class (weekly, biweekly or monthly) and a confidence
// score in [0, 100]. The same input always yields the same output regardless
// of ordering, which keeps detection trivially cacheable and testable.
//
// Detection never fails hard: with fewer than three dates it reports an
// undetermined pattern and the caller falls back to a declared cycle or
// skips pay-cycle alignment entirely.
//
// # Usage
//
//	pattern, ok := paycycle.Detect(dates)
//	if !ok {
//		// not enough history, ask the customer or skip alignment
//	}
//
// A customer-declared cycle takes precedence over detection:
//
//	pattern, err := paycycle.Declared(15, paycycle.Monthly, lastPayday)
package paycycle
