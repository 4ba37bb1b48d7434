package cmd

import (
	"fmt"
	"github.com/fauxsoup/neural/cmd/lock"
	"github.com/fauxsoup/neural/cmd/serve"
	"github.com/fauxsoup/neural/cmd/table"
	"github.com/fauxsoup/neural/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "neural",
		Short: "concurrent sharded tuple table engine",
		Long: fmt.Sprintf(`neural (v%s)

A concurrent, sharded key-value table engine for tuple-shaped values,
with atomic compound updates and deferred memory reclamation.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of neural",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("neural v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(table.TableCommands)
	RootCmd.AddCommand(lock.LockCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use (http, tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
