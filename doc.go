// Package docindex provides a Go client for the document indexing and
// semantic search API.
//
// Every call returns a [Response] instead of an error. Check OK before
// reading Data. On failure Err holds the server's message or a structured
// [ValidationError]; Status 0 means the request never got a usable answer.
//
//	client, err := docindex.New(docindex.Config{
//	    APIKey:  os.Getenv("API_KEY"),
//	    BaseURL: os.Getenv("BASE_URL"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp := client.ListDocuments(ctx, &docindex.ListDocumentsParams{Limit: docindex.Ptr(10)})
//	if !resp.OK {
//	    if resp.Err.IsValidation() {
//	        for _, issue := range resp.Err.Validation.Issues {
//	            log.Println(issue.Path, issue.Message)
//	        }
//	    }
//	    log.Fatalf("list documents: %d %v", resp.Status, resp.Err)
//	}
//	for _, d := range resp.Data.Documents {
//	    fmt.Println(d.ID, docindex.Deref(d.URL))
//	}
//
//	hits := client.SearchDocuments(ctx, docindex.SearchParams{
//	    Description: docindex.Ptr("vector databases"),
//	    TopK:        docindex.Ptr(5),
//	})
package docindex
