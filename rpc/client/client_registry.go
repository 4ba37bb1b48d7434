package client

import (
	"github.com/fauxsoup/neural/rpc/common"
	"github.com/fauxsoup/neural/rpc/serializer"
	"github.com/fauxsoup/neural/rpc/transport"
)

// IRegistry is the client-side view of the server's table registry.
// It allows creating and destroying named tables at runtime.
type IRegistry interface {
	// CreateTable creates a new table with the given name and key position.
	// It returns an error if a table with that name already exists.
	CreateTable(name string, keyPos uint32) error

	// DestroyTable closes and removes the table with the given name.
	// It returns an error if no table with that name exists.
	DestroyTable(name string) error

	// Close closes the underlying transport.
	Close() error
}

// NewRPCRegistry creates a remote handle for the table registry of an RPC server
// The function takes a config, a transport and a serializer as parameters
// It returns an IRegistry and an error
func NewRPCRegistry(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (IRegistry, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	// Create a new RPC registry
	r := rpcRegistry{
		rpcClientAdapter{
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}

	// Return the RPC registry
	return &r, nil
}

type rpcRegistry struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see above)
// --------------------------------------------------------------------------

func (i *rpcRegistry) CreateTable(name string, keyPos uint32) error {
	_, err := invokeRPCRequest(common.NewCreateRequest(name, keyPos), i.transport, i.serializer)
	return err
}

func (i *rpcRegistry) DestroyTable(name string) error {
	_, err := invokeRPCRequest(common.NewDestroyRequest(name), i.transport, i.serializer)
	return err
}

func (i *rpcRegistry) Close() error {
	return i.transport.Close()
}
