// Package log provides a logging abstraction for postsync components.
//
// This package defines a Logger interface that can be implemented by
// any logging library. A zerolog adapter is provided, along with a
// no-op logger that the store uses when none is configured.
//
// # Usage
//
//	zl, err := log.NewConsoleLogger(os.Stderr, "debug")
//	if err != nil {
//	    return err
//	}
//	logger := log.NewZerologAdapterWithLogger(zl)
//
// Or discard everything:
//
//	logger := log.NewNoopLogger()
package log
