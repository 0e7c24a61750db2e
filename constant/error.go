package constant

import "net/http"

type ErrorType int

const (
	Successful ErrorType = iota
	ErrInternal
	ErrNotFound
	ErrInvalidRequest
	ErrMissingRequiredField
	ErrValidation
	ErrRouteNotFound
	ErrFetchContacts
	ErrFetchContact
	ErrCreateContact
	ErrUpdateContact
	ErrDeleteContact
)

var ErrorTypeMessage = map[ErrorType]string{
	Successful:              "success",
	ErrInternal:             "Internal server error",
	ErrNotFound:             "Contact not found",
	ErrInvalidRequest:       "Invalid request body",
	ErrMissingRequiredField: "Name, email, and phone are required",
	ErrValidation:           "Validation error",
	ErrRouteNotFound:        "Route not found",
	ErrFetchContacts:        "Error fetching contacts",
	ErrFetchContact:         "Error fetching contact",
	ErrCreateContact:        "Error creating contact",
	ErrUpdateContact:        "Error updating contact",
	ErrDeleteContact:        "Error deleting contact",
}

var ErrorTypeHTTPCode = map[ErrorType]int{
	Successful:              http.StatusOK,
	ErrInternal:             http.StatusInternalServerError,
	ErrNotFound:             http.StatusNotFound,
	ErrInvalidRequest:       http.StatusBadRequest,
	ErrMissingRequiredField: http.StatusBadRequest,
	ErrValidation:           http.StatusBadRequest,
	ErrRouteNotFound:        http.StatusNotFound,
	ErrFetchContacts:        http.StatusInternalServerError,
	ErrFetchContact:         http.StatusInternalServerError,
	ErrCreateContact:        http.StatusInternalServerError,
	ErrUpdateContact:        http.StatusInternalServerError,
	ErrDeleteContact:        http.StatusInternalServerError,
}

var ErrorTypeCode = map[ErrorType]string{
	Successful:              "0000",
	ErrInternal:             "0001",
	ErrNotFound:             "0002",
	ErrInvalidRequest:       "0003",
	ErrMissingRequiredField: "0004",
	ErrValidation:           "0005",
	ErrRouteNotFound:        "0006",
	ErrFetchContacts:        "0007",
	ErrFetchContact:         "0008",
	ErrCreateContact:        "0009",
	ErrUpdateContact:        "0010",
	ErrDeleteContact:        "0011",
}
