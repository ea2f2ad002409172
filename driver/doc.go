// Package driver provides TypeDB database connectivity via Rust FFI bindings.
//
// All operational code in this package requires CGo and the "typedb" build tag.
// Build with: go build -tags "cgo,typedb"
package driver
