package table

import (
	"encoding/csv"
	"fmt"
	"github.com/fauxsoup/neural/cmd/util"
	"github.com/fauxsoup/neural/lib/table"
	"github.com/fauxsoup/neural/lib/table/value"
	"github.com/fauxsoup/neural/rpc/common"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"hash/fnv"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for neural servers",
		Long:    "",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfLargeListLen = 1000
	perfNumThreads   = 10
	perfKeySpread    = 100
	perfSkip         = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	TableCommands.PersistentFlags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. insert,get)"))
	key = "threads"
	TableCommands.PersistentFlags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-list-len"
	TableCommands.PersistentFlags().Int(key, 1000, util.WrapString("How many elements the list field for the insert-large test should have"))
	key = "keys"
	TableCommands.PersistentFlags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeListLen = viper.GetInt("large-list-len")
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

// perfResult bundles the benchmark result with the latency distribution
// recorded during the run.
type perfResult struct {
	bench testing.BenchmarkResult
	timer metrics.Timer
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for neural servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	// Create results map
	results := make(map[string]perfResult)

	// runTest runs one benchmark, timing every operation with a go-metrics
	// timer so that latency percentiles can be reported alongside the
	// testing.Benchmark throughput numbers
	runTest := func(name string, body func(b *testing.B, timer metrics.Timer)) {
		timer := metrics.NewTimer()
		bench := testing.Benchmark(func(b *testing.B) {
			if shouldSkip(name) {
				return
			}
			b.SetParallelism(perfNumThreads)
			body(b, timer)
		})
		result := perfResult{bench: bench, timer: timer}
		results[name] = result
		printResult(name, result)
	}

	// value inserted by most benchmarks: tuple of (key, counter, list)
	smallValue := func(key uint64) value.Term {
		return value.Tuple(value.Int(int64(key)), value.Int(0), value.List())
	}

	runTest("insert", func(b *testing.B, timer metrics.Timer) {
		// prepare keys
		getKey, iter := getKeys("insert")

		// cleanup
		b.Cleanup(func() {
			iter(func(k uint64) {
				_, _, err := rpcTable.Delete(k)
				if err != nil {
					log.Printf("(insert) - error deleting key: %v\n", err)
				}
			})
		})

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				key := getKey(counter)
				timer.Time(func() {
					_, _, err := rpcTable.Insert(key, smallValue(key))
					if err != nil {
						log.Printf("(insert) - error inserting key: %v\n", err)
					}
				})
				counter++
			}
		})
	})

	runTest("insert-large", func(b *testing.B, timer metrics.Timer) {
		// prepare a value with a large list field
		items := make([]value.Term, perfLargeListLen)
		for i := range items {
			items[i] = value.Int(int64(i))
		}
		largeList := value.List(items...)

		// prepare keys
		getKey, iter := getKeys("insert-large")

		// cleanup
		b.Cleanup(func() {
			iter(func(k uint64) {
				_, _, err := rpcTable.Delete(k)
				if err != nil {
					log.Printf("(insert-large) - error deleting key: %v\n", err)
				}
			})
		})

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				key := getKey(counter)
				timer.Time(func() {
					_, _, err := rpcTable.Insert(key, value.Tuple(value.Int(int64(key)), value.Int(0), largeList))
					if err != nil {
						log.Printf("(insert-large) - error inserting key: %v\n", err)
					}
				})
				counter++
			}
		})
	})

	runTest("get", func(b *testing.B, timer metrics.Timer) {
		// prepare keys
		getKey, iter := getKeys("get")

		// set keys
		iter(func(k uint64) {
			_, _, err := rpcTable.Insert(k, smallValue(k))
			if err != nil {
				log.Printf("(get) - error inserting key: %v\n", err)
			}
		})

		// cleanup
		b.Cleanup(func() {
			iter(func(k uint64) {
				_, _, err := rpcTable.Delete(k)
				if err != nil {
					log.Printf("(get) - error deleting key: %v\n", err)
				}
			})
		})

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				key := getKey(counter)
				timer.Time(func() {
					_, _, err := rpcTable.Get(key)
					if err != nil {
						log.Printf("(get) - error getting key: %v\n", err)
					}
				})
				counter++
			}
		})
	})

	runTest("get-missing", func(b *testing.B, timer metrics.Timer) {
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				key := uint64(math.MaxUint64) - uint64(counter%perfKeySpread)
				timer.Time(func() {
					_, _, err := rpcTable.Get(key)
					if err != nil {
						log.Printf("(get-missing) - error getting key: %v\n", err)
					}
				})
				counter++
			}
		})
	})

	runTest("delete", func(b *testing.B, timer metrics.Timer) {
		// prepare keys
		getKey, iter := getKeys("delete")

		// set keys
		iter(func(k uint64) {
			_, _, err := rpcTable.Insert(k, smallValue(k))
			if err != nil {
				log.Printf("(delete) - error inserting key: %v\n", err)
			}
		})

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				key := getKey(counter)
				timer.Time(func() {
					_, _, err := rpcTable.Delete(key)
					if err != nil {
						log.Printf("(delete) - error deleting key: %v\n", err)
					}
				})
				counter++
			}
		})
	})

	runTest("incr", func(b *testing.B, timer metrics.Timer) {
		// prepare keys
		getKey, iter := getKeys("incr")

		// set keys
		iter(func(k uint64) {
			_, _, err := rpcTable.Insert(k, smallValue(k))
			if err != nil {
				log.Printf("(incr) - error inserting key: %v\n", err)
			}
		})

		// cleanup
		b.Cleanup(func() {
			iter(func(k uint64) {
				_, _, err := rpcTable.Delete(k)
				if err != nil {
					log.Printf("(incr) - error deleting key: %v\n", err)
				}
			})
		})

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				key := getKey(counter)
				timer.Time(func() {
					_, err := rpcTable.Increment(key, []table.IncrOp{{Pos: 2, Delta: 1}})
					if err != nil {
						log.Printf("(incr) - error incrementing key: %v\n", err)
					}
				})
				counter++
			}
		})
	})

	runTest("mixed", func(b *testing.B, timer metrics.Timer) {
		// prepare keys
		getKey, iter := getKeys("mixed")

		// set keys
		iter(func(k uint64) {
			_, _, err := rpcTable.Insert(k, smallValue(k))
			if err != nil {
				log.Printf("(mixed) - error inserting key: %v\n", err)
			}
		})

		// cleanup
		b.Cleanup(func() {
			iter(func(k uint64) {
				_, _, err := rpcTable.Delete(k)
				if err != nil {
					log.Printf("(mixed) - error deleting key: %v\n", err)
				}
			})
		})

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				key := getKey(counter)
				timer.Time(func() {
					var err error
					switch counter % 4 {
					case 0: // insert
						_, _, err = rpcTable.Insert(key, smallValue(key))
					case 1: // get
						_, _, err = rpcTable.Get(key)
					case 2: // incr
						_, err = rpcTable.Increment(key, []table.IncrOp{{Pos: 2, Delta: 1}})
					case 3: // delete
						_, _, err = rpcTable.Delete(key)
					}

					if err != nil {
						log.Printf("(mixed) - error performing operation (%d): %v\n", counter%4, err)
					}
				})
				counter++
			}
		})
	})

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// creates an array of test keys and functions to work with them
// Each test gets its own key range derived from the test name so that
// concurrent tests never touch each other's entries
func getKeys(test string) (func(int) uint64, func(func(uint64))) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(test))
	base := uint64(h.Sum32()) << 32

	keys := make([]uint64, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = base + uint64(i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) uint64 {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(uint64)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result perfResult) {
	if result.bench.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.bench.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	p := result.timer.Percentiles([]float64{0.5, 0.95, 0.99})

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\tp50=%s p95=%s p99=%s\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec,
		time.Duration(p[0]), time.Duration(p[1]), time.Duration(p[2]))
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]perfResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50Ns", "P95Ns", "P99Ns", "Skipped",
		"Endpoints", "TimeoutSec", "RetryCount", "ConnectionsPerEndpoint",
		"Table", "Serializer", "Transport",
		"Threads", "LargeListLen", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, result := range results {
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.bench.NsPerOp() == 0 {
			skipped = "true"
			nsPerOp = 0
			opsPerSec = 0
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.bench.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		p := result.timer.Percentiles([]float64{0.5, 0.95, 0.99})

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			fmt.Sprintf("%.0f", p[0]),
			fmt.Sprintf("%.0f", p[1]),
			fmt.Sprintf("%.0f", p[2]),
			skipped,
			strings.Join(config.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.RetryCount),
			strconv.Itoa(config.ConnectionsPerEndpoint),
			util.GetTableName(),
			viper.GetString("serializer"),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeListLen),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
