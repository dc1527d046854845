// Package gridgo is an embedded storage engine for dense multi-dimensional
// arrays. Arrays are defined by a schema (an integer coordinate domain plus
// typed attributes), written in immutable fragments, and read back with
// buffer-bounded incremental queries.
//
// # Quick start
//
// Define a schema and create an array:
//
//	sch, err := schema.NewBuilder(schema.Int64).
//	    Dimension("rows", int64(0), int64(99)).
//	    Dimension("cols", int64(0), int64(99)).
//	    CompressedAttribute("temp", schema.Float32, schema.Zstd).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	arr, err := gridgo.CreateArray(ctx, "arrays/temps", sch, func(o *gridgo.Options) {
//	    o.VFS = vfs.NewLocalFS("/data")
//	})
//
// Write a rectangular region:
//
//	q, _ := arr.NewQuery(ctx, query.Write)
//	_ = q.SetSubarray([]int64{0, 9, 0, 9})
//	_ = q.SetBuffer("temp", &query.Buffer{Data: cells})
//	_ = q.Init()
//	err = q.Process(ctx)
//
// Read it back, draining buffers across incomplete calls:
//
//	q, _ := arr.NewQuery(ctx, query.Read)
//	_ = q.SetSubarray([]int64{0, 9, 0, 9})
//	buf := &query.Buffer{Data: make([]byte, 4096)}
//	_ = q.SetBuffer("temp", buf)
//	_ = q.Init()
//	for {
//	    if err := q.Process(ctx); err != nil {
//	        log.Fatal(err)
//	    }
//	    consume(buf.Data[:buf.ResultSize()])
//	    if q.Status() != query.Incomplete {
//	        break
//	    }
//	}
//
// Storage is pluggable through the vfs package: local filesystem, memory,
// and the object-store backends in vfs/minio and vfs/s3.
package gridgo
