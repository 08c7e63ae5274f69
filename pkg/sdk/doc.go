// Package pinsearch embeds the pinsearch page assembler in a Go program,
// without the HTTP server.
//
// A client talks to Elasticsearch/OpenSearch or to Redis 8 with the query
// engine, ingests NDJSON records and serves result pages where selected
// documents are pinned to fixed absolute positions:
//
//	client, _ := pinsearch.New(ctx,
//	    pinsearch.WithElasticsearch("http://localhost:9200", "elastic", "secret"),
//	    pinsearch.WithIndex("products"),
//	)
//	defer client.Close()
//
//	_, _ = client.Ingest(ctx, "", file)
//	page, _ := client.Search(ctx, pinsearch.SearchRequest{
//	    Term: "running shoe",
//	    Pins: []pinsearch.Pin{{ProductID: pinsearch.NumericID(7), Position: 1}},
//	    Size: 10,
//	})
//
// Numeric ids are canonicalized the same way the server does it: 7 and "7"
// both pin the document stored as "P0007".
package pinsearch
