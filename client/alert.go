package client

type AlertType string

const (
	AlertSuccess AlertType = "success"
	AlertError   AlertType = "error"
)

const (
	alertFixErrors    = "Please fix the errors"
	alertAdded        = "Contact added successfully"
	alertAddFailed    = "Failed to add contact"
	alertFetchFailed  = "Failed to fetch contacts"
	alertDeleted      = "Contact deleted"
	alertDeleteFailed = "Delete failed"
)

// Alert is a transient notification shown until dismissed or replaced.
type Alert struct {
	Type    AlertType
	Message string
}
