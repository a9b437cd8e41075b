// Package gsva computes per-sample gene-set enrichment scores from a
// gene × sample expression matrix and a collection of gene sets, producing a
// gene-set × sample score matrix for downstream statistical analysis.
//
// The scoring pipeline filters and aligns genes and gene sets against the
// expression matrix, converts raw expression into a per-gene, per-sample
// statistic via kernel-based empirical CDF estimation, and aggregates that
// statistic per gene set with a weighted random-walk statistic or one of the
// closed-form alternatives (standardized sum, singular value decomposition).
//
// # Quick start
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/gsva/enrich"
//	    "github.com/YuminosukeSato/gsva/expr"
//	    "github.com/YuminosukeSato/gsva/geneset"
//	)
//
//	func main() {
//	    m, err := expr.NewDense(
//	        []string{"TP53", "MYC", "EGFR", "KRAS"},
//	        []string{"s1", "s2", "s3"},
//	        []float64{
//	            5.1, 0.2, 3.3,
//	            1.0, 4.4, 2.2,
//	            0.3, 2.8, 5.0,
//	            2.5, 1.1, 0.9,
//	        },
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    sets := geneset.NewCollection()
//	    sets.Add("proliferation", "TP53", "MYC", "KRAS")
//
//	    res, err := enrich.Scores(context.Background(), m, sets)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(res.SetNames(), res.Samples())
//	}
//
// # Packages
//
//   - enrich: scoring methods (gsva, ssgsea, zscore, plage) and the engine
//   - expr: expression-matrix adapters, including an out-of-core block store
//   - geneset: gene-set collections and row-position mapping
//   - kcdf: kernel CDF estimation of the expression statistic
//   - core/parallel: chunk partitioning and pluggable executors
//   - pkg/errors, pkg/log: structured errors, warnings and logging
package gsva
