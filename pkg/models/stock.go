package models

// EventKind classifies a change-feed event by the store operation that
// produced it.
type EventKind string

const (
	KindUpdate EventKind = "update"
	KindInsert EventKind = "insert"
	KindDelete EventKind = "delete"
)

// Position is an opaque resume token into the change feed. Once a
// subscription is opened with a Position the token must not be reused.
type Position string

// PositionNow asks the store for a subscription starting at the present
// moment rather than at an explicit resume token.
const PositionNow Position = "$"

// ChangeEvent is a single mutation observed on the store's change feed.
// Delete events carry no price, hence HasPrice.
type ChangeEvent struct {
	Symbol   string
	Price    float64
	HasPrice bool
	Kind     EventKind
	Position Position
}
