// Package jarvis embeds the food recommendation chat pipeline in a Go
// program without the HTTP server.
//
// The client owns a catalog store (Redis 8+ or in process), the four-stage
// reasoning pipeline and the cart collaborator:
//
//	client, _ := jarvis.New(ctx,
//	    jarvis.WithMemory(),
//	    jarvis.WithEngine(myEngine, "gemini-1.5-flash"),
//	    jarvis.WithCartService("http://localhost:3001", 5*time.Second),
//	)
//	defer client.Close()
//	_, _, _ = client.SeedCatalogFile(ctx, "data/catalog.yaml")
//
//	res, _ := client.Chat(ctx, jarvis.ChatRequest{
//	    Message: "something spicy under $15",
//	    User:    jarvis.UserContext{ID: "u1", Name: "Ann"},
//	})
//	fmt.Println(res.Message, len(res.Recommendations))
//
// Without an engine every chat answers from the keyword fallback policy.
package jarvis
