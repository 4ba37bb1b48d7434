package server

import (
	"fmt"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/fauxsoup/neural/lib/table"
	"github.com/fauxsoup/neural/lib/table/engines/neural"
	"github.com/fauxsoup/neural/lib/table/registry"
	"github.com/fauxsoup/neural/rpc/common"
	"github.com/fauxsoup/neural/rpc/serializer"
	"github.com/fauxsoup/neural/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rpc")

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		tcp.NewTCPServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	 }
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) rpcServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	batchTimeout := time.Duration(config.TimeoutSecond) * time.Second

	// Create the RPC server
	return rpcServer{
		config:       config,
		transport:    transport,
		serializer:   serializer,
		tableAdapter: NewTableServerAdapter(batchTimeout),
		lockAdapter:  NewLockManagerServerAdapter(),
	}
}

type rpcServer struct {
	config       common.ServerConfig
	transport    transport.IRPCServerTransport
	serializer   serializer.IRPCSerializer
	registry     *registry.Registry
	tableAdapter IRPCServerAdapter
	lockAdapter  IRPCServerAdapter
}

// handleMessage routes a deserialized request to the registry or the
// appropriate adapter and returns the response message
func (s *rpcServer) handleMessage(msg *common.Message) common.Message {
	// Count requests per message type
	metrics.GetOrCreateCounter(fmt.Sprintf(`neural_rpc_requests_total{type=%q}`, msg.MsgType)).Inc()

	// Registry operations are handled by the server itself
	switch msg.MsgType {
	case common.MsgTTblCreate:
		_, err := s.registry.Create(msg.Table, msg.KeyPos)
		return *common.NewCreateResponse(err)
	case common.MsgTTblDestroy:
		err := s.registry.Destroy(msg.Table)
		return *common.NewDestroyResponse(err)
	}

	// Everything else is addressed to an existing table
	tbl, err := s.registry.Lookup(msg.Table)
	if err != nil {
		return *common.NewErrorResponse(err.Error())
	}

	// Lock operations use the lock manager adapter, all other operations
	// the table adapter
	switch msg.MsgType {
	case common.MsgTLCKAcquire, common.MsgTLCKRelease:
		return *s.lockAdapter.Handle(msg, tbl)
	default:
		return *s.tableAdapter.Handle(msg, tbl)
	}
}

func (s *rpcServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(req []byte) []byte {
		var msg common.Message
		var respMsg common.Message

		// Decode the request
		err := s.serializer.Deserialize(req, &msg)

		if err != nil {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("failed to deserialize request: %s", err),
			}
		} else {
			respMsg = s.handleMessage(&msg)
		}

		// Return result
		val, err := s.serializer.Serialize(respMsg)
		if err != nil {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("failed to serialize response: %s", err),
			}
			val, _ = s.serializer.Serialize(respMsg)
		}
		return val
	})
}

func (s *rpcServer) init() error {

	// Init logger
	common.InitLoggers(s.config)

	// Engine options from the config, zero values select the defaults
	opts := &neural.TableOptions{
		NumShards:        s.config.NumShards,
		ReclaimThreshold: s.config.ReclaimThreshold,
		ReclaimInterval:  time.Duration(s.config.ReclaimIntervalMs) * time.Millisecond,
		ReclaimBatch:     s.config.ReclaimScanBatch,
	}

	// A fresh registry holding this server's tables
	s.registry = registry.New(func(keyPos uint32) table.ITable {
		return neural.New(keyPos, opts)
	})

	// CREATE TABLES

	/*
		Note: A single RPC Server hosts any number of named tables. All
		tables share the engine tuning from the config. Clients address a
		table by name in every request, further tables can be created at
		runtime via the create operation.
	*/

	for _, tableConfig := range s.config.Tables {
		if _, err := s.registry.Create(tableConfig.Name, tableConfig.KeyPosition); err != nil {
			return fmt.Errorf("failed to create table %q: %w", tableConfig.Name, err)
		}
		Logger.Infof("created table %q with key position %d", tableConfig.Name, tableConfig.KeyPosition)
	}

	Logger.Infof("neural setup completed successfully")

	// Configure the transport layer
	s.registerTransportHandler()

	return nil
}

// Serve starts the RPC server
// This function will also initialize the server plus the tables and start the transport layer
func (s *rpcServer) Serve() error {
	err := s.init()
	if err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}
