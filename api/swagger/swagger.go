// Package swagger holds the OpenAPI document for the REST API.
package swagger

import _ "embed"

// UserSpec is the contents of user.swagger.json.
//
//go:embed user.swagger.json
var UserSpec []byte
