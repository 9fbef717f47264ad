// Package kvclient provides a uniform client surface for revisioned
// key-value stores such as etcd and the Tarantool config storage.
//
// Requests are built with the [github.com/tarantool/go-kvclient/operation]
// package, key sets are addressed with
// [github.com/tarantool/go-kvclient/keyrange], and the transport is any
// [github.com/tarantool/go-kvclient/driver.Driver].
package kvclient
