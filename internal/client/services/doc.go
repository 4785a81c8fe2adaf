// Package services contains the application services of the Impify client:
// authentication, per-resource collections (notes, folders, flashcards), the
// upload pipeline, the dashboard aggregator and the preview cache.
//
// Services keep their state in memory, talk to the backend through
// client.Client and report user-visible outcomes through a Notifier. Fetch
// operations never return errors; they degrade to an empty collection and
// notify. Mutations notify and also return the error so callers can branch.
package services
