// Package subscription derives recurring-delivery interval offers from
// lifespan predictions: an optimal interval that lands deliveries slightly
// before the product runs out, a short ladder of alternative intervals, and a
// savings estimate for committing to the subscription.
//
// The recommender is the storefront-facing edge of the engine and therefore
// never returns an error: malformed input falls back to a fixed default offer
// so a broken prediction can never block a product page.
//
// The interval ladder ships with compiled-in defaults and can be overridden
// from a YAML file for merchandising experiments.
package subscription
