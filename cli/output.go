package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/muhammadheryan/contact-manager/client"
	"github.com/muhammadheryan/contact-manager/model"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // rejected input: client or server side validation
	ExitCommandError = 2 // bad flags, unreachable API, unexpected answers
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// apiFailure maps a client error to an exit error. Validation answers from the
// API are input failures, everything else is a command error.
func apiFailure(action string, err error) *ExitError {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status < 500 && apiErr.Status != 404 {
		return WrapExitError(ExitFailure, action, err)
	}
	return WrapExitError(ExitCommandError, action, err)
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func (f *OutputFormatter) JSON(v interface{}) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (f *OutputFormatter) Contacts(contacts []model.ContactEntity) error {
	if f.Format == "json" {
		return f.JSON(contacts)
	}
	if len(contacts) == 0 {
		_, err := fmt.Fprintln(f.Writer, "No contacts yet")
		return err
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE\tCREATED")
	for _, c := range contacts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Email, c.Phone, c.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func (f *OutputFormatter) Contact(c *model.ContactEntity) error {
	if f.Format == "json" {
		return f.JSON(c)
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", c.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", c.Name)
	fmt.Fprintf(tw, "Email:\t%s\n", c.Email)
	fmt.Fprintf(tw, "Phone:\t%s\n", c.Phone)
	if c.Message != "" {
		fmt.Fprintf(tw, "Message:\t%s\n", c.Message)
	}
	fmt.Fprintf(tw, "Created:\t%s\n", c.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(tw, "Updated:\t%s\n", c.UpdatedAt.Format(time.RFC3339))
	return tw.Flush()
}

func (f *OutputFormatter) Message(msg string) error {
	if f.Format == "json" {
		return f.JSON(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(f.Writer, msg)
	return err
}

// FieldErrors prints field messages in a stable order.
func (f *OutputFormatter) FieldErrors(msg string, fields map[string]string) error {
	if f.Format == "json" {
		return f.JSON(model.ErrorResponse{Message: msg, Errors: fields})
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	if _, err := fmt.Fprintln(f.Writer, msg); err != nil {
		return err
	}
	for _, name := range names {
		if _, err := fmt.Fprintf(f.Writer, "  %s: %s\n", name, fields[name]); err != nil {
			return err
		}
	}
	return nil
}
