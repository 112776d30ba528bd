// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package apidoc describes the HTTP API as a route table and renders it as
// an OpenAPI 3.0.3 document with a Swagger UI page under /docs/.
package apidoc
