package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	owner = "user-owner"
	donor = "user-donor"
	other = "user-other"
)

func TestCanActorUpdateListing_Claim(t *testing.T) {
	assert.True(t, CanActorUpdateListing(donor, owner, "", ListingAvailable, ListingClaimed))
	assert.False(t, CanActorUpdateListing(owner, owner, "", ListingAvailable, ListingClaimed),
		"self-claim forbidden")
}

func TestCanActorUpdateListing_ClaimedStates(t *testing.T) {
	assert.True(t, CanActorUpdateListing(donor, owner, donor, ListingClaimed, ListingInProgress))
	assert.True(t, CanActorUpdateListing(owner, owner, donor, ListingClaimed, ListingAvailable))
	assert.True(t, CanActorUpdateListing(donor, owner, donor, ListingInProgress, ListingCompleted))
	assert.False(t, CanActorUpdateListing(other, owner, donor, ListingClaimed, ListingInProgress))
	assert.False(t, CanActorUpdateListing(other, owner, donor, ListingInProgress, ListingCompleted))
}

func TestCanActorUpdateListing_OwnerOnlyStates(t *testing.T) {
	assert.True(t, CanActorUpdateListing(owner, owner, "", ListingAvailable, ListingExpired))
	assert.True(t, CanActorUpdateListing(owner, owner, "", ListingExpired, ListingAvailable))
	assert.True(t, CanActorUpdateListing(owner, owner, "", ListingCancelled, ListingAvailable))
	assert.False(t, CanActorUpdateListing(donor, owner, "", ListingAvailable, ListingExpired))
	assert.False(t, CanActorUpdateListing(donor, owner, donor, ListingCancelled, ListingAvailable))
}

func TestCanActorUpdateListing_IllegalTransitionAlwaysDenied(t *testing.T) {
	// claimed cannot jump straight to completed, whoever asks.
	assert.False(t, CanActorUpdateListing(owner, owner, donor, ListingClaimed, ListingCompleted))
	assert.False(t, CanActorUpdateListing(donor, owner, donor, ListingClaimed, ListingCompleted))
	assert.False(t, CanActorUpdateListing("", owner, donor, ListingClaimed, ListingInProgress))
}

const (
	customer = "user-customer"
	business = "biz-1"
)

func TestCanActorUpdateOrder_ForwardIsBusinessOnly(t *testing.T) {
	assert.True(t, CanActorUpdateOrder(business, customer, business, OrderPending, OrderConfirmed))
	assert.False(t, CanActorUpdateOrder(customer, customer, business, OrderPending, OrderConfirmed))
	assert.True(t, CanActorUpdateOrder(business, customer, business, OrderReady, OrderCompleted))
	assert.False(t, CanActorUpdateOrder(customer, customer, business, OrderPreparing, OrderReady))
}

func TestCanActorUpdateOrder_Cancellation(t *testing.T) {
	assert.True(t, CanActorUpdateOrder(customer, customer, business, OrderPending, OrderCancelled))
	assert.False(t, CanActorUpdateOrder(business, customer, business, OrderPending, OrderCancelled),
		"pending cancel is the customer's call")

	assert.True(t, CanActorUpdateOrder(customer, customer, business, OrderConfirmed, OrderCancelled))
	assert.True(t, CanActorUpdateOrder(business, customer, business, OrderOutForDelivery, OrderCancelled))
	assert.False(t, CanActorUpdateOrder(other, customer, business, OrderConfirmed, OrderCancelled))

	assert.False(t, CanActorUpdateOrder(customer, customer, business, OrderCompleted, OrderCancelled))
}
