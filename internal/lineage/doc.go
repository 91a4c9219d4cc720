// Package lineage is the query boundary of the lineage engine.
//
// A Service resolves requests against the named graphs of a graph store,
// runs the traversal engine and renders the response graph in the portable
// JSON format. Failures never escape as panics: every call returns a Result
// tagged with a typed error kind, and the failure is logged.
//
// # Basic Usage
//
//	svc := lineage.NewService(store, lineage.WithLogger(logger))
//
//	req, err := lineage.ParseRequest("MAIN", "END_TO_END", "TABLE_VIEW", guid)
//	if err != nil {
//	    return err
//	}
//
//	res := svc.Lineage(ctx, req)
//	if !res.OK() {
//	    return res.Err
//	}
//	w.Write(res.Payload)
//
// # Dumps
//
// Dump and DumpAll write full graphs to the dump directory. They are
// diagnostic: a failed dump is logged and returned but never affects queries.
package lineage
