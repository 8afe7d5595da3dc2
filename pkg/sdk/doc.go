// Package cardex opens a built card catalog index in-process.
//
// The index directory is produced by "cardex build". The client serves
// the same queries as the HTTP API without a server in between:
//
//	client, _ := cardex.Open("index", cardex.WithSearchTimeout(time.Second))
//	defer client.Close()
//
//	page, _ := client.Cards().Search("types:fire hp:[100 TO *]").
//	    OrderBy("-hp").
//	    Select("name", "hp").
//	    PageSize(20).
//	    Do(ctx)
//
//	card, _ := client.Cards().Get(ctx, "base1-4")
//
// Records are decoded JSON objects. Decode converts one into a typed value:
//
//	type Card struct {
//	    ID   string `json:"id"`
//	    Name string `json:"name"`
//	    HP   int    `json:"hp"`
//	}
//
//	c, _ := cardex.Decode[Card](card)
package cardex
