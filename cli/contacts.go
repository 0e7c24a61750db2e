package cli

import (
	"errors"

	"github.com/muhammadheryan/contact-manager/client"
	"github.com/muhammadheryan/contact-manager/model"
	"github.com/spf13/cobra"
)

func formatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var oldest bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := client.NewListPresenter(client.New(rootOpts.APIURL))
			if err := list.Load(cmd.Context()); err != nil {
				return apiFailure(list.Alert().Message, err)
			}
			if oldest {
				list.ToggleSort()
			}
			return formatter(rootOpts, cmd).Contacts(list.Contacts())
		},
	}

	cmd.Flags().BoolVar(&oldest, "oldest", false, "show oldest contacts first")
	return cmd
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contact, err := client.New(rootOpts.APIURL).Get(cmd.Context(), args[0])
			if err != nil {
				return apiFailure("Failed to fetch contact", err)
			}
			return formatter(rootOpts, cmd).Contact(contact)
		},
	}
}

func contactFlags(cmd *cobra.Command, req *model.ContactRequest) {
	cmd.Flags().StringVar(&req.Name, "name", "", "full name, letters and spaces")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "10 digit phone starting with 6-9")
	cmd.Flags().StringVar(&req.Message, "message", "", "optional note, up to 500 characters")
}

// NewAddCommand creates the add command. The draft is checked locally before
// anything is sent.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var req model.ContactRequest

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a contact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			form := client.NewFormController(client.New(rootOpts.APIURL), nil)
			for name, value := range map[string]string{
				"name":    req.Name,
				"email":   req.Email,
				"phone":   req.Phone,
				"message": req.Message,
			} {
				if err := form.SetField(name, value); err != nil {
					return WrapExitError(ExitCommandError, "Failed to add contact", err)
				}
			}

			created, err := form.Submit(cmd.Context())
			if errors.Is(err, client.ErrInvalidForm) {
				if perr := out.FieldErrors(form.Alert().Message, form.Errors()); perr != nil {
					return perr
				}
				return WrapExitError(ExitFailure, form.Alert().Message, err)
			}
			if err != nil {
				return renderAPIFailure(out, form.Alert().Message, err)
			}
			return out.Contact(created)
		},
	}

	contactFlags(cmd, &req)
	return cmd
}

// NewUpdateCommand creates the update command. Every field is replaced, so
// all of them must be passed again.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var req model.ContactRequest

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a contact's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			updated, err := client.New(rootOpts.APIURL).Update(cmd.Context(), args[0], req)
			if err != nil {
				return renderAPIFailure(out, "Failed to update contact", err)
			}
			return out.Contact(updated)
		},
	}

	contactFlags(cmd, &req)
	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			res, err := client.New(rootOpts.APIURL).Delete(cmd.Context(), args[0])
			if err != nil {
				return apiFailure("Delete failed", err)
			}
			if rootOpts.Format == "json" {
				return out.JSON(res)
			}
			return out.Message(res.Message + ": " + res.DeletedContact.ID)
		},
	}
}

// renderAPIFailure prints server side field errors before failing.
func renderAPIFailure(out *OutputFormatter, action string, err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && len(apiErr.Errors) > 0 {
		if perr := out.FieldErrors(apiErr.Message, apiErr.Errors); perr != nil {
			return perr
		}
	}
	return apiFailure(action, err)
}
