// Package status is the central registry of lifecycle enums: every valid
// listing/order status, urgency level and category, their display metadata,
// and the legal transition graphs. Everything here is a pure lookup; inputs
// are expected to already be canonical enum values.
package status

type ListingStatus string

const (
	ListingAvailable  ListingStatus = "available"
	ListingClaimed    ListingStatus = "claimed"
	ListingInProgress ListingStatus = "in_progress"
	ListingCompleted  ListingStatus = "completed"
	ListingExpired    ListingStatus = "expired"
	ListingCancelled  ListingStatus = "cancelled"
)

type OrderStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderConfirmed      OrderStatus = "confirmed"
	OrderPreparing      OrderStatus = "preparing"
	OrderReady          OrderStatus = "ready"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderCompleted      OrderStatus = "completed"
	OrderCancelled      OrderStatus = "cancelled"
)

type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyModerate UrgencyLevel = "moderate"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyUrgent   UrgencyLevel = "urgent"
)

type Category string

const (
	CategoryFood        Category = "food"
	CategoryClothing    Category = "clothing"
	CategoryMedical     Category = "medical"
	CategoryElectronics Category = "electronics"
	CategoryFurniture   Category = "furniture"
	CategoryBooks       Category = "books"
	CategoryToys        Category = "toys"
	CategoryOther       Category = "other"
)

type ListingType string

const (
	ListingTypeSale     ListingType = "sale"
	ListingTypeDonation ListingType = "donation"
	ListingTypeRequest  ListingType = "request"
)

type DeliveryMethod string

const (
	DeliveryPickup   DeliveryMethod = "pickup"
	DeliveryDelivery DeliveryMethod = "delivery"
)

type AccountType string

const (
	AccountRestaurant AccountType = "restaurant"
	AccountFactory    AccountType = "factory"
	AccountPharmacy   AccountType = "pharmacy"
	AccountIndividual AccountType = "individual"
)

type NotificationType string

const (
	NotificationStatusUpdate      NotificationType = "status_update"
	NotificationNewDonor          NotificationType = "new_donor"
	NotificationDeliveryScheduled NotificationType = "delivery_scheduled"
	NotificationDeliveryCompleted NotificationType = "delivery_completed"
	NotificationReviewReceived    NotificationType = "review_received"
)

// Config carries the user-facing metadata attached to an enum value.
type Config struct {
	Label       string
	Description string
}

// UrgencyConfig adds a sortable priority on top of the display metadata.
type UrgencyConfig struct {
	Label    string
	Priority int
}

var listingStatusConfigs = map[ListingStatus]Config{
	ListingAvailable:  {Label: "Available", Description: "Available for donation"},
	ListingClaimed:    {Label: "Claimed", Description: "Claimed by a donor"},
	ListingInProgress: {Label: "In Progress", Description: "Donation in progress"},
	ListingCompleted:  {Label: "Completed", Description: "Donation completed successfully"},
	ListingExpired:    {Label: "Expired", Description: "Donation expired"},
	ListingCancelled:  {Label: "Cancelled", Description: "Donation cancelled"},
}

var orderStatusConfigs = map[OrderStatus]Config{
	OrderPending:        {Label: "Pending", Description: "Waiting for confirmation"},
	OrderConfirmed:      {Label: "Confirmed", Description: "Order confirmed by business"},
	OrderPreparing:      {Label: "Preparing", Description: "Order is being prepared"},
	OrderReady:          {Label: "Ready", Description: "Ready for pickup/delivery"},
	OrderOutForDelivery: {Label: "Out for Delivery", Description: "On the way to you"},
	OrderCompleted:      {Label: "Completed", Description: "Order completed successfully"},
	OrderCancelled:      {Label: "Cancelled", Description: "Order cancelled"},
}

var urgencyConfigs = map[UrgencyLevel]UrgencyConfig{
	UrgencyLow:      {Label: "Low Priority", Priority: 1},
	UrgencyModerate: {Label: "Moderate", Priority: 2},
	UrgencyHigh:     {Label: "High Priority", Priority: 3},
	UrgencyUrgent:   {Label: "Urgent", Priority: 4},
}

var categoryConfigs = map[Category]Config{
	CategoryFood:        {Label: "Food & Beverages"},
	CategoryClothing:    {Label: "Clothing"},
	CategoryMedical:     {Label: "Medical Supplies"},
	CategoryElectronics: {Label: "Electronics"},
	CategoryFurniture:   {Label: "Furniture"},
	CategoryBooks:       {Label: "Books & Education"},
	CategoryToys:        {Label: "Toys & Games"},
	CategoryOther:       {Label: "Other"},
}

// listingTransitions is the donation lifecycle graph. completed is the only
// terminal listing state; expired and cancelled can be reactivated.
var listingTransitions = map[ListingStatus][]ListingStatus{
	ListingAvailable:  {ListingClaimed, ListingExpired, ListingCancelled},
	ListingClaimed:    {ListingInProgress, ListingCancelled, ListingAvailable},
	ListingInProgress: {ListingCompleted, ListingCancelled},
	ListingCompleted:  {},
	ListingExpired:    {ListingAvailable},
	ListingCancelled:  {ListingAvailable},
}

// orderTransitions moves strictly forward; ready may skip out_for_delivery for
// pickup orders. completed and cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:        {OrderConfirmed, OrderCancelled},
	OrderConfirmed:      {OrderPreparing, OrderCancelled},
	OrderPreparing:      {OrderReady, OrderCancelled},
	OrderReady:          {OrderOutForDelivery, OrderCompleted, OrderCancelled},
	OrderOutForDelivery: {OrderCompleted, OrderCancelled},
	OrderCompleted:      {},
	OrderCancelled:      {},
}

func ListingStatusConfig(s ListingStatus) (Config, bool) {
	cfg, ok := listingStatusConfigs[s]
	return cfg, ok
}

func OrderStatusConfig(s OrderStatus) (Config, bool) {
	cfg, ok := orderStatusConfigs[s]
	return cfg, ok
}

func UrgencyLevelConfig(u UrgencyLevel) (UrgencyConfig, bool) {
	cfg, ok := urgencyConfigs[u]
	return cfg, ok
}

func CategoryConfig(c Category) (Config, bool) {
	cfg, ok := categoryConfigs[c]
	return cfg, ok
}

func ValidListingStatus(s ListingStatus) bool {
	_, ok := listingStatusConfigs[s]
	return ok
}

func ValidOrderStatus(s OrderStatus) bool {
	_, ok := orderStatusConfigs[s]
	return ok
}

func ValidUrgencyLevel(u UrgencyLevel) bool {
	_, ok := urgencyConfigs[u]
	return ok
}

func ValidCategory(c Category) bool {
	_, ok := categoryConfigs[c]
	return ok
}

func ValidDeliveryMethod(m DeliveryMethod) bool {
	return m == DeliveryPickup || m == DeliveryDelivery
}

// ListingTransitionLegal reports whether a listing may move from one status to
// another. Unknown statuses are never legal.
func ListingTransitionLegal(from, to ListingStatus) bool {
	for _, s := range listingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NextListingStatuses returns the ordered set of statuses reachable from the
// given one. The returned slice is a copy.
func NextListingStatuses(from ListingStatus) []ListingStatus {
	next := listingTransitions[from]
	out := make([]ListingStatus, len(next))
	copy(out, next)
	return out
}

func OrderTransitionLegal(from, to OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func NextOrderStatuses(from OrderStatus) []OrderStatus {
	next := orderTransitions[from]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}
