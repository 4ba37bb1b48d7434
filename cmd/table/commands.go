package table

import (
	"encoding/json"
	"fmt"
	"github.com/fauxsoup/neural/lib/table"
	"github.com/fauxsoup/neural/lib/table/value"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strconv"
	"strings"
	"time"
)

var (
	createCmd = &cobra.Command{
		Use:               "create [table] [keyPos]",
		Short:             "Creates a new table keyed on the given tuple position",
		Args:              cobra.ExactArgs(2),
		PersistentPreRunE: setupRegistryClient,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			keyPos, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("keyPos must be a number: %w", err)
			}
			if err := rpcRegistry.CreateTable(name, uint32(keyPos)); err != nil {
				return err
			} else {
				fmt.Println("create successfully")
			}
			return nil
		},
	}
	destroyCmd = &cobra.Command{
		Use:               "destroy [table]",
		Short:             "Destroys a table and frees its memory",
		Args:              cobra.ExactArgs(1),
		PersistentPreRunE: setupRegistryClient,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := rpcRegistry.DestroyTable(name); err != nil {
				return err
			} else {
				fmt.Println("destroy successfully")
			}
			return nil
		},
	}
	insertCmd = &cobra.Command{
		Use:   "insert [key] [value]",
		Short: "Stores a value under a key, replacing any previous value",
		Long:  "Stores a value under a key. The value is a JSON term literal: numbers are integers, strings are byte strings, arrays are lists and {\"t\": [...]} is a tuple.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}
			val, err := value.ParseJSON(args[1])
			if err != nil {
				return err
			}
			if prev, existed, err := rpcTable.Insert(key, val); err != nil {
				return err
			} else if existed {
				fmt.Printf("inserted, prev=%s\n", renderTerm(prev))
			} else {
				fmt.Println("inserted")
			}
			return nil
		},
	}
	insertNewCmd = &cobra.Command{
		Use:   "insert-new [key] [value]",
		Short: "Stores a value under a key only if the key is absent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}
			val, err := value.ParseJSON(args[1])
			if err != nil {
				return err
			}
			if inserted, err := rpcTable.InsertNew(key, val); err != nil {
				return err
			} else {
				fmt.Printf("inserted=%t\n", inserted)
			}
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}
			if val, found, err := rpcTable.Get(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%d, found=%v, value=%s\n", key, found, renderTerm(val))
			}
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}
			if prev, existed, err := rpcTable.Delete(key); err != nil {
				return err
			} else if existed {
				fmt.Printf("deleted, prev=%s\n", renderTerm(prev))
			} else {
				fmt.Println("key not found")
			}
			return nil
		},
	}
	incrCmd = &cobra.Command{
		Use:   "incr [key] [pos=delta ...]",
		Short: "Atomically adds deltas to integer fields of the stored tuple",
		Long:  "Atomically adds deltas to integer fields of the stored tuple. Each operation is written as pos=delta (e.g. 'incr 42 2=1 3=-5'). Either all operations are applied or none.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}
			ops := make([]table.IncrOp, 0, len(args)-1)
			for _, arg := range args[1:] {
				parts := strings.SplitN(arg, "=", 2)
				if len(parts) != 2 {
					return fmt.Errorf("invalid operation %q (expected pos=delta)", arg)
				}
				pos, err := strconv.Atoi(parts[0])
				if err != nil {
					return fmt.Errorf("pos must be a number: %w", err)
				}
				delta, err := strconv.ParseInt(parts[1], 10, 64)
				if err != nil {
					return fmt.Errorf("delta must be a number: %w", err)
				}
				ops = append(ops, table.IncrOp{Pos: pos, Delta: delta})
			}
			if values, err := rpcTable.Increment(key, ops); err != nil {
				return err
			} else {
				fmt.Printf("values=%v\n", values)
			}
			return nil
		},
	}
	unshiftCmd = &cobra.Command{
		Use:   "unshift [key] [pos] [value ...]",
		Short: "Atomically prepends values to a list field of the stored tuple",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}
			pos, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("pos must be a number: %w", err)
			}
			values := make([]value.Term, 0, len(args)-2)
			for _, arg := range args[2:] {
				v, err := value.ParseJSON(arg)
				if err != nil {
					return err
				}
				values = append(values, v)
			}
			if lengths, err := rpcTable.Unshift(key, []table.UnshiftOp{{Pos: pos, Values: values}}); err != nil {
				return err
			} else {
				fmt.Printf("lengths=%v\n", lengths)
			}
			return nil
		},
	}
	shiftCmd = &cobra.Command{
		Use:   "shift [key] [pos] [count]",
		Short: "Atomically removes elements from the head of a list field",
		Long:  "Atomically removes up to count elements from the head of the list field at the given tuple position. A negative count removes all elements.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}
			pos, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("pos must be a number: %w", err)
			}
			count, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("count must be a number: %w", err)
			}
			if removed, err := rpcTable.Shift(key, []table.ShiftOp{{Pos: pos, Count: count}}); err != nil {
				return err
			} else {
				for _, items := range removed {
					fmt.Printf("removed=%s\n", renderTerm(value.List(items...)))
				}
			}
			return nil
		},
	}
	swapCmd = &cobra.Command{
		Use:   "swap [key] [pos] [value]",
		Short: "Atomically replaces a field of the stored tuple",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}
			pos, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("pos must be a number: %w", err)
			}
			val, err := value.ParseJSON(args[2])
			if err != nil {
				return err
			}
			if previous, err := rpcTable.Swap(key, []table.SwapOp{{Pos: pos, Value: val}}); err != nil {
				return err
			} else {
				for _, prev := range previous {
					fmt.Printf("prev=%s\n", renderTerm(prev))
				}
			}
			return nil
		},
	}
	emptyCmd = &cobra.Command{
		Use:   "empty",
		Short: "Removes all entries from the table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcTable.Empty(); err != nil {
				return err
			} else {
				fmt.Println("empty successfully")
			}
			return nil
		},
	}
	dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Prints all values stored in the table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(rpcTable.Dump)
		},
	}
	drainCmd = &cobra.Command{
		Use:   "drain",
		Short: "Prints all values stored in the table and empties it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(rpcTable.Drain)
		},
	}
	gcCmd = &cobra.Command{
		Use:   "gc",
		Short: "Requests an immediate garbage collection cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcTable.GarbageCollect(); err != nil {
				return err
			} else {
				fmt.Println("garbage collection requested")
			}
			return nil
		},
	}
	gcSizeCmd = &cobra.Command{
		Use:   "gc-size",
		Short: "Prints the number of bytes awaiting reclamation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if size, err := rpcTable.GarbageSize(); err != nil {
				return err
			} else {
				fmt.Printf("garbage=%d bytes\n", size)
			}
			return nil
		},
	}
	keyPosCmd = &cobra.Command{
		Use:   "key-pos",
		Short: "Prints the tuple position the table is keyed on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("keyPos=%d\n", rpcTable.KeyPosition())
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints information about the table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := rpcTable.Info()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
)

// parseKey parses a table key from a command line argument
func parseKey(arg string) (uint64, error) {
	key, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("key must be a number: %w", err)
	}
	return key, nil
}

// renderTerm renders a term as its JSON literal for display
func renderTerm(t value.Term) string {
	data, err := json.Marshal(t)
	if err != nil {
		return t.String()
	}
	return string(data)
}

// runBatch enqueues a dump or drain job and waits for its result
func runBatch(enqueue func(table.Requester) (table.Pending, error)) error {
	r := table.NewChanRequester()
	pending, err := enqueue(r)
	if err != nil {
		return err
	}

	timeout := time.Duration(viper.GetInt("timeout")) * time.Second

	select {
	case res := <-r.Recv():
		for _, val := range res.Values {
			fmt.Println(renderTerm(val))
		}
		fmt.Printf("%s: %d values\n", pending.Kind, len(res.Values))
	case <-time.After(timeout):
		return fmt.Errorf("timed out waiting for %s result", pending.Kind)
	}

	return nil
}
