package neural

import (
	"testing"
	"time"

	"github.com/fauxsoup/neural/lib/table"
	tabletesting "github.com/fauxsoup/neural/lib/table/testing"
)

func Test(t *testing.T) {
	tabletesting.RunTableTests(t, "NeuralTable", func() table.ITable {
		return New(1, &TableOptions{
			ReclaimInterval: 10 * time.Millisecond,
		})
	})
}

func Benchmark(t *testing.B) {
	tabletesting.RunTableBenchmarks(t, "NeuralTable", func() table.ITable {
		return New(1, nil)
	})
}
