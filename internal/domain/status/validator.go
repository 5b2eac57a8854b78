package status

// Actor-authorization layer on top of the transition graphs. These functions
// answer "may this actor drive this transition" and are side-effect free; the
// lifecycle services remain responsible for loading entities and persisting
// the outcome.

// CanActorUpdateListing reports whether actorID may move a listing owned by
// ownerID (donorID empty when unclaimed) from one status to another.
//
// Rules:
//   - the transition must be legal on the listing graph;
//   - available→claimed is a claim and is open to any non-owner;
//   - transitions out of claimed or in_progress belong to the owner or the
//     donor of record;
//   - expiring, cancelling or reactivating an unclaimed listing belongs to
//     the owner alone.
func CanActorUpdateListing(actorID, ownerID, donorID string, from, to ListingStatus) bool {
	if actorID == "" || !ListingTransitionLegal(from, to) {
		return false
	}

	if from == ListingAvailable && to == ListingClaimed {
		return actorID != ownerID
	}

	switch from {
	case ListingClaimed, ListingInProgress:
		return actorID == ownerID || (donorID != "" && actorID == donorID)
	default:
		return actorID == ownerID
	}
}

// CanActorUpdateOrder reports whether actorID may move an order between
// statuses. Forward progress is driven by the business; cancellation of a
// still-pending order is the customer's call, and later non-terminal states
// can be cancelled by either party.
func CanActorUpdateOrder(actorID, customerID, businessID string, from, to OrderStatus) bool {
	if actorID == "" || !OrderTransitionLegal(from, to) {
		return false
	}

	if to == OrderCancelled {
		if from == OrderPending {
			return actorID == customerID
		}
		return actorID == customerID || actorID == businessID
	}

	return actorID == businessID
}
