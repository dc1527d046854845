// Package query implements the request lifecycle at the trust boundary
// between caller-owned buffers and the storage engine.
//
// A Query validates every input before any engine work begins, owns the
// status of one in-flight request, and routes buffer registrations to exactly
// one engine variant (Reader or Writer) fixed at construction.
//
// # Incremental delivery
//
// A single logical read may not fit in the buffers the caller provided. The
// query surfaces this as the Incomplete status: the caller drains the buffers
// and resubmits Process, and the reader resumes from its internal cursor
// without replay or gaps.
//
//	q, _ := query.New(sm, query.Read, sch, frags, reader)
//	_ = q.SetSubarray([]int64{1, 50, 1, 50})
//	_ = q.SetBuffer("a", buf)
//	_ = q.Init()
//	for {
//	    if err := q.Process(ctx); err != nil {
//	        return err
//	    }
//	    drain(buf.Data[:buf.ResultSize()])
//	    if q.Status() != query.Incomplete {
//	        break
//	    }
//	}
//
// # Error categories
//
// Every error wraps one of ErrValidation, ErrUsage, ErrEngine, or
// ErrInternal; classify with errors.Is. Validation and usage failures never
// change the query status. Engine failures during Process force Failed, which
// is sticky until SetSubarray resets the query.
package query
