package dashboard_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ajitpratap0/perfbible/pkg/dashboard"
)

func ExampleGenerate() {
	root, _ := os.MkdirTemp("", "dashboard")
	defer os.RemoveAll(root)

	in := filepath.Join(root, "benchmark-results")
	_ = os.MkdirAll(in, 0o755)
	_ = os.WriteFile(filepath.Join(in, "string_building.json"),
		[]byte(`{"benchmarks":[{"name":"concat","mean":{"point_estimate":42,"unit":"ns"}}]}`), 0o644)

	summary, err := dashboard.Generate(context.Background(), dashboard.Options{
		InputDirs: []string{in},
		OutputDir: filepath.Join(root, "dashboard"),
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, bm := range summary.Benchmarks {
		fmt.Println(bm.ID, bm.Name, bm.Results[0].Mean, bm.Results[0].Unit)
	}
	// Output: string_building String Building 42 ns
}
