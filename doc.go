// Package cohort segments customers from transaction snapshots.
//
// A Pipeline joins customers, transactions and products, builds one
// behavioral feature vector per customer, standardizes the features and
// then, concurrently, clusters the customers with k-means (choosing k from
// an elbow sweep) and ranks lookalikes by cosine similarity.
//
// # Quick Start
//
//	loader := source.NewLoader(blobstore.NewLocalStore("./data"))
//	ds, _ := loader.Load(ctx)
//
//	p, _ := cohort.New(
//	    cohort.WithAsOf(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
//	    cohort.WithKMax(10),
//	)
//	res, _ := p.Run(ctx, ds)
//	fmt.Println(res.ChosenK, res.Profile)
//
// # Determinism
//
// A run is a pure function of the dataset, the as-of date and the seed.
// Rows are ordered by ascending customer ID everywhere, and the parallel
// stages reduce in a fixed order, so results do not depend on the number
// of workers.
//
// # Errors and warnings
//
// Fatal conditions (no customers, fewer customers than clusters, features
// without variance) abort the run with a typed error. Data quality issues
// (dangling references, missing values, duplicates, iteration cap reached)
// are collected in Result.Warnings.
package cohort
