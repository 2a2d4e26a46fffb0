// Package csapi provides types, interfaces, and helpers for working with a
// CloudStack-style cloud management API.
//
// # Overview
//
// Every call is a single form-encoded POST carrying a command name, the
// caller's API key and an HMAC-SHA1 signature computed over the
// canonicalized parameters. Asynchronous commands answer with a job id that
// is polled with queryAsyncJobResult until it succeeds, fails or the poll
// budget runs out.
//
// The csapi package defines the domain types (Zone, Template,
// ServiceOffering, VirtualMachine, AsyncJob), the resource client
// interfaces and the error kinds. A concrete client is built by the
// csclient package:
//
//	cli, err := csclient.New(ctx, &csapi.Config{
//	  APIEndpoint: "http://cloud.example.com:8080/client/api",
//	  APIKey:      apiKey,
//	  SecretKey:   secretKey,
//	})
//	if err != nil { log.Fatal(err) }
//
//	vm, err := cli.VirtualMachines().DeployByName(ctx, "web-1", "Zone1", "Ubuntu 22.04", "Small")
//
// # Errors
//
// Terminal failures are tagged with an ErrorKind: TransportError,
// AsyncJobFailure, PollTimeoutError, ResourceNotFoundError and
// AmbiguousNameError. KindOf and the IsX helpers branch on them without
// type assertions; OperationError renders the single user-facing message
// of a high level operation.
//
// # Interceptors
//
// Request and response interceptors observe signed calls (logging, extra
// headers). They must not modify the signed form.
package csapi
