package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/podfetch/authgate/internal/core/domain"
	"github.com/podfetch/authgate/internal/core/ports"
)

var (
	userRole     string
	userPassword string
	userConsent  bool
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage stored identities",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a stored identity",
	Example: `  authgate user add alice --role uploader --password s3cret
  authgate user add proxied-bob`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, log, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer closeApp(cmd.Context(), a, log)

		view, err := a.Identities().Create(cmd.Context(), ports.CreateIdentityInput{
			Username:        args[0],
			Password:        userPassword,
			Role:            userRole,
			ExplicitConsent: userConsent,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s created %s (%s)\n", okFmt("✓"), view.Username, view.Role)
		if userPassword == "" {
			fmt.Fprintln(cmd.OutOrStdout(), warnFmt("!"), "no password set: this identity can only be asserted by a proxy")
		}
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored identities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, log, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer closeApp(cmd.Context(), a, log)

		views, err := a.Identities().List(cmd.Context())
		if err != nil {
			return err
		}
		printIdentities(cmd, views)
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a stored identity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, log, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer closeApp(cmd.Context(), a, log)

		if err := a.Identities().Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s deleted %s\n", okFmt("✓"), args[0])
		return nil
	},
}

var userSetRoleCmd = &cobra.Command{
	Use:       "set-role <username> <role>",
	Short:     "Change the role of a stored identity",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(domain.RoleAdmin), string(domain.RoleUploader), string(domain.RoleRegular)},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, log, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer closeApp(cmd.Context(), a, log)

		view, err := a.Identities().UpdateRole(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s is now %s\n", okFmt("✓"), view.Username, view.Role)
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringVar(&userRole, "role", string(domain.RoleRegular), "Role: admin, uploader or user")
	userAddCmd.Flags().StringVar(&userPassword, "password", "", "Password (omit for proxy-authenticated identities)")
	userAddCmd.Flags().BoolVar(&userConsent, "consent", false, "Record explicit consent")

	userCmd.AddCommand(userAddCmd, userListCmd, userDeleteCmd, userSetRoleCmd)
}

func printIdentities(cmd *cobra.Command, views []domain.IdentityView) {
	out := cmd.OutOrStdout()
	if len(views) == 0 {
		fmt.Fprintln(out, dimFmt("no stored identities"))
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tROLE\tCONSENT\tCREATED")
	for _, v := range views {
		created := "-"
		if !v.CreatedAt.IsZero() {
			created = v.CreatedAt.Format(time.DateOnly)
		}
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", v.Username, v.Role, v.ExplicitConsent, created)
	}
	w.Flush()
}
