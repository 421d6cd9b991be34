// Package giaclient is the entry point for constructing an IGA client that
// implements the iga.Client interface.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/gia/pkg/giaclient"
//	  "github.com/fivetwenty-io/gia/pkg/iga"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := giaclient.New(&iga.Config{
//	    BaseURL:      "https://tenant.example.com",
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  app := iga.NewDisconnectedApplication("HR Export", iga.WithOwnerIDs("owner-id"))
//	  if _, err := app.AddObjectType("__ACCOUNT__", iga.ObjectKindAccount, nil); err != nil { log.Fatal(err) }
//	  if _, err := app.AddFileUpload("accounts.csv", "__ACCOUNT__"); err != nil { log.Fatal(err) }
//
//	  result, err := app.Push(ctx, cli.Applications(), true)
//	  if err != nil { log.Fatal(err) }
//	  log.Println(result.ApplicationID)
//	}
//
// When TokenURL is empty the token endpoint is "<BaseURL>/am/oauth2/access_token".
// A base URL without a scheme is assumed to be https.
package giaclient
