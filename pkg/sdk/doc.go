// Package edgarsearch embeds the EDGAR query engine in a Go program.
//
// The client talks to SEC EDGAR directly; no edgarsearch server is needed. SEC asks
// every caller to identify itself, so a contact address is required:
//
//	client, _ := edgarsearch.New(ctx, edgarsearch.WithContact("research@example.com"))
//	defer client.Close()
//
//	res := client.Query(ctx, "What are Apple's main risk factors?", nil)
//	for _, c := range res.Citations {
//	    fmt.Println(c.Label, c.URL)
//	}
//
// Lower-level building blocks are exposed too:
//
//	docs, _ := client.Discover(ctx, edgarsearch.DiscoveryParams{
//	    Companies: []string{"MSFT"},
//	    FormTypes: []string{"10-K"},
//	}, nil)
//	hits, _ := client.Search(ctx, edgarsearch.SearchParams{
//	    Documents: docs,
//	    Query:     "cloud revenue growth",
//	    Snippets:  true,
//	}, nil)
//
// A shared Redis or Valkey instance can cache EDGAR responses across processes:
//
//	edgarsearch.WithValkeyCache("localhost:6379", "")
package edgarsearch
