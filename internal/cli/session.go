package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewLoginCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Start a session and merge the guest cart into the account cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, resumeNone, func(e env) error {
				if e.token == "" {
					return fmt.Errorf("--token is required")
				}

				result, err := e.app.Login(e.ctx, e.token)
				if err != nil {
					return err
				}
				if err := e.out.sync(result); err != nil {
					return err
				}
				if e.out.format != "json" {
					writeLine(e.out.w, "logged in")
				}
				return nil
			})
		},
	}
}

// NewLogoutCommand never fails because of the cart: an unusable token or a
// failed mirror still ends the session.
func NewLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Copy the account cart into the guest cart and end the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, resumeBestEffort, func(e env) error {
				result := e.app.Logout(e.ctx)
				if err := e.out.sync(result); err != nil {
					return err
				}
				if e.out.format != "json" {
					if result.Err == nil {
						writeLine(e.out.w, "%s", result.Summary.Message())
					}
					writeLine(e.out.w, "logged out")
				}
				return nil
			})
		},
	}
}
