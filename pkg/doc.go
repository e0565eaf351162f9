// Package pkg holds the genomap libraries.
//
// # Overview
//
// genomap places the labels of annotated features around circular and
// linear sequence maps. The libraries are layered:
//
//  1. [ncl] - nested containment list over 1-based, possibly origin-crossing ranges
//  2. [geometry] - canvas geometry of circular and linear maps
//  3. [labels] - label placement strategies (radial and angled)
//  4. [genome] - the feature map model and its JSON/TOML readers
//  5. [pipeline] - orchestration (index → window → placement) with caching
//  6. [api] - HTTP server and client
//
// Supporting packages: [cache] (file, Redis, null), [errors] (coded errors),
// [observability] (hooks and go-metrics) and [buildinfo].
//
// # Data Flow
//
//	map.json / map.toml
//	         ↓
//	    [genome] (decode + validate)
//	         ↓
//	    [ncl] (index named features, query the visible window)
//	         ↓
//	    [labels] + [geometry] (measure, place, resolve collisions)
//	         ↓
//	    [pipeline.Result] (JSON)
//
// # Quick Start
//
//	m, _ := genome.ImportFile("pUC19.json")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, _, _ := runner.Layout(ctx, m, pipeline.Options{})
//	for _, l := range result.Labels {
//	    fmt.Println(l.Name, l.BoundingBox)
//	}
//
// [ncl]: github.com/matzehuels/genomap/pkg/ncl
// [geometry]: github.com/matzehuels/genomap/pkg/geometry
// [labels]: github.com/matzehuels/genomap/pkg/labels
// [genome]: github.com/matzehuels/genomap/pkg/genome
// [pipeline]: github.com/matzehuels/genomap/pkg/pipeline
// [pipeline.Result]: github.com/matzehuels/genomap/pkg/pipeline#Result
// [api]: github.com/matzehuels/genomap/pkg/api
// [cache]: github.com/matzehuels/genomap/pkg/cache
// [errors]: github.com/matzehuels/genomap/pkg/errors
// [observability]: github.com/matzehuels/genomap/pkg/observability
// [buildinfo]: github.com/matzehuels/genomap/pkg/buildinfo
package pkg
