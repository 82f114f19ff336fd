package integration

import (
	"context"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/iwvelando/fi-forecast/internal/config"
	"github.com/iwvelando/fi-forecast/internal/optimizer"
	"github.com/iwvelando/fi-forecast/pkg/planning"
	"github.com/iwvelando/fi-forecast/pkg/testutil"
	"go.uber.org/zap"
)

// TestRunner is a simple test runner for debugging
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// TestPerformance tests performance characteristics
func TestPerformance(t *testing.T) {
	logger := zap.NewNop()

	start := time.Now()
	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration failed: %v", err)
	}
	loadTime := time.Since(start)

	runner, err := optimizer.NewRunner(logger, conf.OptimizerOptions(), nil)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	inputs, _ := conf.Plan.Inputs()

	start = time.Now()
	rows := runner.Breakdown(inputs)
	breakdownTime := time.Since(start)

	start = time.Now()
	result := runner.Run(context.Background(), inputs)
	optimizeTime := time.Since(start)

	totalTime := loadTime + breakdownTime + optimizeTime

	t.Logf("Performance metrics:")
	t.Logf("  Load config: %v", loadTime)
	t.Logf("  Breakdown: %v", breakdownTime)
	t.Logf("  Optimize: %v", optimizeTime)
	t.Logf("  Total time: %v", totalTime)

	if totalTime > 10*time.Second {
		t.Errorf("Total processing time %v exceeds 10 second threshold", totalTime)
	}
	if len(rows) != 51 {
		t.Errorf("Expected 51 rows, got %d", len(rows))
	}
	if len(result.Solutions) == 0 {
		t.Error("Expected solutions")
	}
}

// TestMemoryUsage runs repeated optimizations to surface leaks in the cache
// and worker goroutines.
func TestMemoryUsage(t *testing.T) {
	runner, err := optimizer.NewRunner(zap.NewNop(), optimizer.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		result := runner.Run(context.Background(), testutil.ReferenceInputs())
		if len(result.Solutions) == 0 {
			t.Fatalf("Expected solutions on iteration %d", i)
		}
	}

	t.Log("Successfully completed 10 iterations without memory issues")
}

// TestDataConsistency validates that multiple runs produce identical results
func TestDataConsistency(t *testing.T) {
	runner, err := optimizer.NewRunner(zap.NewNop(), optimizer.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	first := runner.Run(context.Background(), testutil.ReferenceInputs())
	for i := 0; i < 5; i++ {
		next := runner.Run(context.Background(), testutil.ReferenceInputs())
		if !reflect.DeepEqual(first, next) {
			t.Fatalf("Run %d differs from the first run", i+1)
		}
	}
}

// TestConfigurationVariations checks that the FI age moves in the expected
// direction as each input changes.
func TestConfigurationVariations(t *testing.T) {
	runner, err := optimizer.NewRunner(zap.NewNop(), optimizer.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	base := testutil.ReferenceInputs()
	baseAge := runner.BaselineFIAge(base)
	if baseAge == nil {
		t.Fatal("Expected reachable baseline")
	}

	variations := []struct {
		name    string
		mutate  func(in *planning.Inputs)
		earlier bool
	}{
		{"higher investment", func(in *planning.Inputs) { in.MonthlyInvestment = 70000 }, true},
		{"existing growth corpus", func(in *planning.Inputs) { in.ExistingGrowthCorpus = 2000000 }, true},
		{"higher expense", func(in *planning.Inputs) { in.MonthlyExpense = 70000 }, false},
	}

	for _, v := range variations {
		t.Run(v.name, func(t *testing.T) {
			in := base
			v.mutate(&in)
			age := runner.BaselineFIAge(in)
			if v.earlier {
				if age == nil || *age >= *baseAge {
					t.Errorf("Expected FI earlier than %d, got %v", *baseAge, age)
				}
				return
			}
			if age != nil && *age <= *baseAge {
				t.Errorf("Expected FI later than %d, got %d", *baseAge, *age)
			}
		})
	}
}
