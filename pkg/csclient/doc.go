// Package csclient provides the primary entry point for constructing a
// CloudStack API client that implements the csapi.Client interface.
//
// It layers endpoint normalization, request signing, the HTTP transport and
// the job poller on top of the resource interfaces and types defined in the
// csapi package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/csapi/pkg/csapi"
//	  "github.com/fivetwenty-io/csapi/pkg/csclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := csclient.New(ctx, &csapi.Config{
//	    APIEndpoint: "http://cloud.example.com:8080/client/api",
//	    APIKey:      "api-key",
//	    SecretKey:   "secret-key",
//	  })
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close()
//
//	  zones, err := cli.Zones().List(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = zones
//	}
//
// # Endpoints
//
// An endpoint without a scheme is assumed to be https, and one without a
// path gets /client/api. Query strings are rejected: every parameter
// travels in the signed form body.
//
// # Job events
//
// When Config.NATSURL is set, the terminal outcome of every poll session is
// published as JSON on "<NATSSubject>.<outcome>" (default prefix
// "csapi.jobs").
package csclient
