package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/gia/internal/constants"
	"github.com/fivetwenty-io/gia/pkg/iga"
)

// recordKind describes the accounts or resources of an application.
type recordKind struct {
	use     string
	aliases []string
	plural  string
	list    func(ctx context.Context, apps iga.ApplicationsClient, appID string) ([]iga.Object, error)
	get     func(ctx context.Context, apps iga.ApplicationsClient, appID, id string) (iga.Object, error)
}

var (
	accountRecords = recordKind{
		use:     "accounts",
		aliases: []string{"account"},
		plural:  "accounts",
		list: func(ctx context.Context, apps iga.ApplicationsClient, appID string) ([]iga.Object, error) {
			return apps.ListAccounts(ctx, appID)
		},
		get: func(ctx context.Context, apps iga.ApplicationsClient, appID, id string) (iga.Object, error) {
			return apps.GetAccount(ctx, appID, id)
		},
	}

	resourceRecords = recordKind{
		use:     "resources",
		aliases: []string{"resource"},
		plural:  "resources",
		list: func(ctx context.Context, apps iga.ApplicationsClient, appID string) ([]iga.Object, error) {
			return apps.ListResources(ctx, appID)
		},
		get: func(ctx context.Context, apps iga.ApplicationsClient, appID, id string) (iga.Object, error) {
			return apps.GetResource(ctx, appID, id)
		},
	}
)

// NewAccountsCommand creates the accounts command group.
func NewAccountsCommand() *cobra.Command {
	return newRecordsCommand(accountRecords)
}

// NewResourcesCommand creates the resources command group.
func NewResourcesCommand() *cobra.Command {
	return newRecordsCommand(resourceRecords)
}

func newRecordsCommand(kind recordKind) *cobra.Command {
	cmd := &cobra.Command{
		Use:     kind.use,
		Aliases: kind.aliases,
		Short:   fmt.Sprintf("Inspect application %s", kind.plural),
		Long:    fmt.Sprintf("List and show the %s loaded into an application", kind.plural),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list APP_ID",
		Short: fmt.Sprintf("List %s", kind.plural),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			records, err := kind.list(context.Background(), client.Applications(), args[0])
			if err != nil {
				return describeError(err, "list "+kind.plural, fmt.Sprintf("application '%s'", args[0]))
			}

			return writeObjects(cmd.OutOrStdout(), format, records, fmt.Sprintf("No %s found", kind.plural),
				[]string{"ID", "Name"}, []string{"id", "name"})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get APP_ID ID",
		Short: fmt.Sprintf("Show one of the %s", kind.plural),
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			record, err := kind.get(context.Background(), client.Applications(), args[0], args[1])
			if err != nil {
				return describeError(err, "get "+kind.use, fmt.Sprintf("'%s' in application '%s'", args[1], args[0]))
			}

			return writeObject(cmd.OutOrStdout(), format, record)
		},
	})

	return cmd
}
