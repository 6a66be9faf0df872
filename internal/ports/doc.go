// Package ports declares what the store needs from the outside world.
//
// The store in internal/app talks to the remote collection only through
// [PostGateway]; internal/adapters/http implements it over JSON/HTTP using
// an injectable [HTTPClient].
package ports
