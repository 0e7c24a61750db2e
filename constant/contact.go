package constant

type ContactEventType string

const (
	ContactCreated ContactEventType = "contact.created"
	ContactUpdated ContactEventType = "contact.updated"
	ContactDeleted ContactEventType = "contact.deleted"
)

const (
	ContactDeletedMessage = "Contact deleted successfully"
	ContactLockKeyPrefix  = "contact:lock:"
)

type requestIDKey struct{}

// RequestIDKey is the context key holding the per-request id.
var RequestIDKey = requestIDKey{}
