// Package schemas embeds the OpenAPI document served by apps/server.
package schemas

import _ "embed"

// OpenAPISpec is the raw OpenAPI 3 document for the review API.
//
//go:embed openapi.yaml
var OpenAPISpec []byte
