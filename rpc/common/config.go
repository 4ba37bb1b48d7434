package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerTable describes a single table hosted by the RPC server.
type ServerTable struct {
	// Name identifies the table, requests address tables by this name
	Name string
	// KeyPosition is the 1-based tuple field the table is keyed on
	KeyPosition uint32
}

// ServerConfig holds all configuration parameters for the RPC server.
type ServerConfig struct {
	// Tables created at startup
	Tables []ServerTable

	// Engine tuning parameters (zero values select the engine defaults)
	NumShards          int
	ReclaimThreshold   uint64
	ReclaimIntervalMs  int64
	ReclaimScanBatch   int

	// Transport parameters
	Endpoint          string
	TimeoutSecond     int64
	MaxWorkersPerConn int

	// TCP socket tuning
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
	ReadBufferSize  int
	WriteBufferSize int

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Workers Per Conn", strconv.Itoa(int(math.Max(1, float64(c.MaxWorkersPerConn)))))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	// Engine tuning
	addSection("Engine")
	addField("Shards", formatOrDefault(int64(c.NumShards)))
	addField("Reclaim Threshold", formatOrDefault(int64(c.ReclaimThreshold)))
	addField("Reclaim Interval (ms)", formatOrDefault(c.ReclaimIntervalMs))
	addField("Reclaim Scan Batch", formatOrDefault(int64(c.ReclaimScanBatch)))

	// Tables
	addSection("Tables")
	for _, table := range c.Tables {
		addField(table.Name, fmt.Sprintf("key position %d", table.KeyPosition))
	}

	return sb.String()
}

// formatOrDefault renders zero valued tuning parameters as "default"
func formatOrDefault(v int64) string {
	if v == 0 {
		return "default"
	}
	return strconv.FormatInt(v, 10)
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoints              []string
	TimeoutSecond          int
	RetryCount             int
	ConnectionsPerEndpoint int
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))
	addField("Connections Per Endpoint", strconv.Itoa(int(math.Max(1, float64(c.ConnectionsPerEndpoint)))))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
