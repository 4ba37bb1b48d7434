package serve

import (
	"fmt"
	"github.com/fauxsoup/neural/cmd/util"
	"github.com/fauxsoup/neural/rpc/common"
	"github.com/fauxsoup/neural/rpc/serializer"
	"github.com/fauxsoup/neural/rpc/server"
	"github.com/fauxsoup/neural/rpc/transport"
	"github.com/fauxsoup/neural/rpc/transport/http"
	"github.com/fauxsoup/neural/rpc/transport/tcp"
	"github.com/fauxsoup/neural/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strconv"
	"strings"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the neural server",
		Long:    `Start the neural server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is NEURAL_<flag> (e.g. NEURAL_TIMEOUT=15)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "tables"
	ServeCmd.PersistentFlags().String(key, "default=1,locks=1", util.WrapString("Comma-separated list of tables to create at startup. Format: NAME=KEYPOS where KEYPOS is the 1-based tuple position the table is keyed on"))

	key = "shards"
	ServeCmd.PersistentFlags().Int(key, 0, util.WrapString("Number of shards per table. More shards allow more concurrent writers at the cost of memory overhead (0 for the engine default)"))

	key = "reclaim-threshold"
	ServeCmd.PersistentFlags().Uint64(key, 0, util.WrapString("Number of garbage bytes a shard may accumulate before a collection cycle is scheduled (0 for the engine default)"))

	key = "reclaim-interval-ms"
	ServeCmd.PersistentFlags().Int64(key, 0, util.WrapString("Interval in milliseconds at which the reclamation scanner visits shards (0 for the engine default)"))

	key = "reclaim-batch"
	ServeCmd.PersistentFlags().Int(key, 0, util.WrapString("Number of pending terms the reclamation scanner consumes per shard per cycle (0 for the engine default)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, util.WrapString("Timeout in seconds for dump and drain jobs"))

	key = "max-workers"
	ServeCmd.PersistentFlags().Int(key, 0, util.WrapString("Maximum number of concurrent requests per connection (0 for the transport default, ignored for http)"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", util.WrapString("The address on which the API will listen (e.g. localhost:8080, /tmp/neural.sock, ...)"))

	key = "transport-write-buffer"
	ServeCmd.PersistentFlags().Int(key, 512, util.WrapString("The size of the write buffer for the transport (in KB, ignored for http)"))

	key = "transport-read-buffer"
	ServeCmd.PersistentFlags().Int(key, 512, util.WrapString("The size of the read buffer for the transport (in KB, ignored for http)"))

	key = "transport-tcp-nodelay"
	ServeCmd.PersistentFlags().Bool(key, true, util.WrapString("Whether to enable TCP_NODELAY for the transport (only for tcp)"))

	key = "transport-tcp-keepalive"
	ServeCmd.PersistentFlags().Int(key, 0, util.WrapString("The keepalive interval for the transport (in seconds, only for tcp)"))

	key = "transport-tcp-linger"
	ServeCmd.PersistentFlags().Int(key, 0, util.WrapString("The linger time for the transport (in seconds, only for tcp)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// parse tables
	tablesConfig := viper.GetString("tables")
	serveCmdConfig.Tables = []common.ServerTable{}
	for _, tableConfig := range strings.Split(tablesConfig, ",") {
		parts := strings.Split(tableConfig, "=")
		if len(parts) != 2 {
			return fmt.Errorf("invalid table format: %s (expected NAME=KEYPOS)", tableConfig)
		}

		// Parse table name
		name := strings.TrimSpace(parts[0])
		if name == "" {
			return fmt.Errorf("invalid table format: %s (empty name)", tableConfig)
		}

		// Parse key position
		keyPos, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 32)
		if err != nil {
			return fmt.Errorf("invalid key position %s: %v", parts[1], err)
		}

		serveCmdConfig.Tables = append(serveCmdConfig.Tables, common.ServerTable{
			Name:        name,
			KeyPosition: uint32(keyPos),
		})
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.NumShards = viper.GetInt("shards")
	serveCmdConfig.ReclaimThreshold = viper.GetUint64("reclaim-threshold")
	serveCmdConfig.ReclaimIntervalMs = viper.GetInt64("reclaim-interval-ms")
	serveCmdConfig.ReclaimScanBatch = viper.GetInt("reclaim-batch")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.MaxWorkersPerConn = viper.GetInt("max-workers")
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.WriteBufferSize = viper.GetInt("transport-write-buffer") * 1024
	serveCmdConfig.ReadBufferSize = viper.GetInt("transport-read-buffer") * 1024
	serveCmdConfig.TCPNoDelay = viper.GetBool("transport-tcp-nodelay")
	serveCmdConfig.TCPKeepAliveSec = viper.GetInt("transport-tcp-keepalive")
	serveCmdConfig.TCPLingerSec = viper.GetInt("transport-tcp-linger")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	return nil
}

// run starts the neural server
func run(_ *cobra.Command, _ []string) error {

	// parse the serializer
	var s serializer.IRPCSerializer
	switch viper.GetString("serializer") {
	case "json":
		s = serializer.NewJSONSerializer()
	case "gob":
		s = serializer.NewGOBSerializer()
	case "binary":
		s = serializer.NewBinarySerializer()
	default:
		return fmt.Errorf("invalid serializer %s", viper.GetString("serializer"))
	}

	// Parse the transport
	var t transport.IRPCServerTransport
	switch viper.GetString("transport") {
	case "http":
		t = http.NewHttpServerTransport()
	case "tcp":
		t = tcp.NewTCPServerTransport()
	case "unix":
		t = unix.NewUnixDefaultServerTransport()
	default:
		return fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}

	serv := server.NewRPCServer(
		*serveCmdConfig,
		t,
		s,
	)

	return serv.Serve()
}

// initConfig reads in serveCmdConfig file and ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("neural")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
