package attribution

// EventType is the closed set of event kinds the SDK accepts.
type EventType string

const (
	EventInstall          EventType = "INSTALL"
	EventLogin            EventType = "LOGIN"
	EventSignUp           EventType = "SIGN_UP"
	EventRegister         EventType = "REGISTER"
	EventPurchase         EventType = "PURCHASE"
	EventAddToCart        EventType = "ADD_TO_CART"
	EventAddToWishlist    EventType = "ADD_TO_WISHLIST"
	EventInitiateCheckout EventType = "INITIATE_CHECKOUT"
	EventStartTrial       EventType = "START_TRIAL"
	EventSubscribe        EventType = "SUBSCRIBE"
	EventLevelStart       EventType = "LEVEL_START"
	EventLevelComplete    EventType = "LEVEL_COMPLETE"
	EventTutorialComplete EventType = "TUTORIAL_COMPLETE"
	EventSearch           EventType = "SEARCH"
	EventViewItem         EventType = "VIEW_ITEM"
	EventViewContent      EventType = "VIEW_CONTENT"
	EventShare            EventType = "SHARE"
	EventCustom           EventType = "CUSTOM"
)

// eventTypes is the single lookup table shared by every platform profile.
var eventTypes = map[string]EventType{
	string(EventInstall):          EventInstall,
	string(EventLogin):            EventLogin,
	string(EventSignUp):           EventSignUp,
	string(EventRegister):         EventRegister,
	string(EventPurchase):         EventPurchase,
	string(EventAddToCart):        EventAddToCart,
	string(EventAddToWishlist):    EventAddToWishlist,
	string(EventInitiateCheckout): EventInitiateCheckout,
	string(EventStartTrial):       EventStartTrial,
	string(EventSubscribe):        EventSubscribe,
	string(EventLevelStart):       EventLevelStart,
	string(EventLevelComplete):    EventLevelComplete,
	string(EventTutorialComplete): EventTutorialComplete,
	string(EventSearch):           EventSearch,
	string(EventViewItem):         EventViewItem,
	string(EventViewContent):      EventViewContent,
	string(EventShare):            EventShare,
	string(EventCustom):           EventCustom,
}

// ParseEventType resolves a wire token. Matching is exact and case-sensitive.
func ParseEventType(s string) (EventType, bool) {
	t, ok := eventTypes[s]
	return t, ok
}

// EventTypes returns every known event type in declaration order.
func EventTypes() []EventType {
	return []EventType{
		EventInstall, EventLogin, EventSignUp, EventRegister,
		EventPurchase, EventAddToCart, EventAddToWishlist, EventInitiateCheckout,
		EventStartTrial, EventSubscribe, EventLevelStart, EventLevelComplete,
		EventTutorialComplete, EventSearch, EventViewItem, EventViewContent,
		EventShare, EventCustom,
	}
}

func (t EventType) String() string { return string(t) }
