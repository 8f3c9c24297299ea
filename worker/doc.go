// Package worker reconciles batches of cases in parallel.
//
// Cases are independent, so a batch fans out over a bounded number of
// goroutines and the results come back in input order:
//
//	batch := worker.NewBatch(reconciler.Reconcile, 4)
//	res := batch.Run(ctx, cases)
//	for _, jr := range res.Results {
//	    if jr.Err != nil {
//	        // the case failed, e.g. a missing date
//	    }
//	    // use jr.Result
//	}
//
// One failing case never stops the others. Cancelling ctx stops dispatching
// further cases; those report ctx.Err().
package worker
