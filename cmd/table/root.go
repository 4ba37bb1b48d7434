package table

import (
	"github.com/fauxsoup/neural/cmd/util"
	"github.com/fauxsoup/neural/lib/table"
	"github.com/fauxsoup/neural/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcTable    table.ITable
	rpcRegistry client.IRegistry

	// TableCommands represents the table command group
	TableCommands = &cobra.Command{
		Use:               "table",
		Short:             "Perform table operations",
		PersistentPreRunE: setupTableClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the table command
	util.SetupRPCClientFlags(TableCommands)

	// Set default table name for table operations
	TableCommands.PersistentFlags().String("table", "default", util.WrapString("Name of the table to connect to"))

	// Add subcommands
	TableCommands.AddCommand(createCmd)
	TableCommands.AddCommand(destroyCmd)
	TableCommands.AddCommand(insertCmd)
	TableCommands.AddCommand(insertNewCmd)
	TableCommands.AddCommand(getCmd)
	TableCommands.AddCommand(delCmd)
	TableCommands.AddCommand(incrCmd)
	TableCommands.AddCommand(unshiftCmd)
	TableCommands.AddCommand(shiftCmd)
	TableCommands.AddCommand(swapCmd)
	TableCommands.AddCommand(emptyCmd)
	TableCommands.AddCommand(dumpCmd)
	TableCommands.AddCommand(drainCmd)
	TableCommands.AddCommand(gcCmd)
	TableCommands.AddCommand(gcSizeCmd)
	TableCommands.AddCommand(keyPosCmd)
	TableCommands.AddCommand(infoCmd)
	TableCommands.AddCommand(perfTestCmd)
}

// setupTableClient initializes the RPC table client
func setupTableClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()
	tableName := util.GetTableName()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the table client
	rpcTable, err = client.NewRPCTable(
		tableName,
		*config,
		t,
		s,
	)

	return err
}

// setupRegistryClient initializes the RPC registry client.
// Used instead of setupTableClient by the create and destroy commands,
// which must work while the named table does not exist yet.
func setupRegistryClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the registry client
	rpcRegistry, err = client.NewRPCRegistry(
		*config,
		t,
		s,
	)

	return err
}
