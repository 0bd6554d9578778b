// Package pkg provides the libraries behind simpleindex, a client and
// translating proxy for the Python Simple Repository API.
//
// # Overview
//
// The pkg directory is organized into these areas:
//
//  1. [simple] - Sans-I/O decoding and encoding of PEP 503 HTML and PEP 691
//     JSON documents, project name normalization and version negotiation
//  2. [integrations] - HTTP fetching with retries and caching, and the
//     index client in integrations/pypi
//  3. [cache] - Response cache backends (file, memory, Redis, MongoDB)
//  4. [server] - The translating proxy
//  5. [config], [errors], [observability], [httputil], [buildinfo] - Shared
//     infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	index URL + project name
//	         ↓
//	    [simple] package (normalize name, build URL and Accept header)
//	         ↓
//	    [integrations] package (fetch, retry, cache raw response)
//	         ↓
//	    [integrations/pypi] package (dispatch on Content-Type)
//	         ↓
//	    [simple] package (decode, apply version policy)
//	         ↓
//	    ProjectIndex / ProjectDetails → CLI output or [server] response
//
// # Quick Start
//
//	client, err := pypi.NewClient(pypi.Options{})
//	if err != nil {
//	    return err
//	}
//	details, err := client.FetchProject(ctx, "requests", false)
//	if err != nil {
//	    return err
//	}
//	for _, f := range details.Files {
//	    fmt.Println(f.Filename, f.URL)
//	}
package pkg
