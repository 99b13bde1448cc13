// Package testutil contains helper builders and scripted engine fakes used
// across tests to reduce boilerplate when constructing messages, threads and
// streaming entities. These helpers are intentionally minimal and are not
// intended for production usage.
package testutil
