package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	contactapp "github.com/muhammadheryan/contact-manager/application/contact"
	"github.com/muhammadheryan/contact-manager/cmd/config"
	"github.com/muhammadheryan/contact-manager/constant"
	"github.com/muhammadheryan/contact-manager/model"
	customerrors "github.com/muhammadheryan/contact-manager/utils/errors"
	httpSwagger "github.com/swaggo/http-swagger"
)

const apiVersion = "1.0.0"

type RestHandler struct {
	ContactApp contactapp.ContactApp
}

func NewTransport(cfg *config.Config, ContactApp contactapp.ContactApp) http.Handler {
	mux := mux.NewRouter()

	rh := &RestHandler{
		ContactApp: ContactApp,
	}

	// Swagger UI
	mux.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	mux.HandleFunc("/", rh.Root).Methods(http.MethodGet)

	contacts := mux.PathPrefix("/api/contacts").Subrouter()
	contacts.HandleFunc("", rh.ListContacts).Methods(http.MethodGet)
	contacts.HandleFunc("", rh.CreateContact).Methods(http.MethodPost)
	contacts.HandleFunc("/{id}", rh.GetContact).Methods(http.MethodGet)
	contacts.HandleFunc("/{id}", rh.UpdateContact).Methods(http.MethodPut)
	contacts.HandleFunc("/{id}", rh.DeleteContact).Methods(http.MethodDelete)

	// unmatched paths and methods share one answer; router middleware does not run for them
	notFound := LoggingMiddleware()(http.HandlerFunc(rh.RouteNotFound))
	mux.NotFoundHandler = notFound
	mux.MethodNotAllowedHandler = notFound

	// middleware
	mux.Use(LoggingMiddleware())

	return CORSMiddleware(cfg.CORS.AllowedOrigin)(BodyLimitMiddleware(cfg.Server.MaxBodyBytes)(mux))
}

// Root handler
// @Summary API info
// @Description Name, version and entry points of the API
// @Tags Info
// @Produce json
// @Success 200 {object} model.APIInfoResponse
// @Router / [get]
func (s *RestHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, model.APIInfoResponse{
		Message: "Contact Management API",
		Version: apiVersion,
		Endpoints: map[string]string{
			"contacts": "/api/contacts",
		},
	})
}

// ListContacts handler
// @Summary List contacts
// @Description All contacts, newest first
// @Tags Contacts
// @Produce json
// @Success 200 {array} model.ContactEntity
// @Failure 500 {object} model.ErrorResponse
// @Router /api/contacts [get]
func (s *RestHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	res, err := s.ContactApp.ListContacts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, res)
}

// GetContact handler
// @Summary Get contact
// @Description Fetch one contact by id
// @Tags Contacts
// @Produce json
// @Param id path string true "Contact ID"
// @Success 200 {object} model.ContactEntity
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/contacts/{id} [get]
func (s *RestHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	res, err := s.ContactApp.GetContact(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, res)
}

// CreateContact handler
// @Summary Create contact
// @Description Validate and store a new contact
// @Tags Contacts
// @Accept json
// @Produce json
// @Param request body model.ContactRequest true "Contact Request"
// @Success 201 {object} model.ContactEntity
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/contacts [post]
func (s *RestHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req model.ContactRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.ContactApp.CreateContact(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, res)
}

// UpdateContact handler
// @Summary Update contact
// @Description Replace name, email, phone and message of a contact
// @Tags Contacts
// @Accept json
// @Produce json
// @Param id path string true "Contact ID"
// @Param request body model.ContactRequest true "Contact Request"
// @Success 200 {object} model.ContactEntity
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/contacts/{id} [put]
func (s *RestHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var req model.ContactRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.ContactApp.UpdateContact(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, res)
}

// DeleteContact handler
// @Summary Delete contact
// @Description Remove a contact and return it
// @Tags Contacts
// @Produce json
// @Param id path string true "Contact ID"
// @Success 200 {object} model.DeleteContactResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/contacts/{id} [delete]
func (s *RestHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	res, err := s.ContactApp.DeleteContact(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.NewDeleteContactResponse(res))
}

func (s *RestHandler) RouteNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, constant.ErrorTypeHTTPCode[constant.ErrRouteNotFound], model.RouteNotFoundResponse{
		Message: constant.ErrorTypeMessage[constant.ErrRouteNotFound],
		Path:    r.URL.Path,
	})
}

// decodeBody reads a JSON object into dst. An empty body decodes as an empty
// object so that the required-field check reports it.
func decodeBody(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return customerrors.SetCustomError(constant.ErrInvalidRequest)
}
