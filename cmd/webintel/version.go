package main

import "fmt"

// version is the release version, overridden at build time via
// -ldflags "-X main.version=...".
var version = "0.1.0"

// Run executes the version command.
func (c *VersionCmd) Run(deps *Dependencies) error {
	fmt.Fprintf(deps.Stdout, "webintel version %s\n", version)
	return nil
}
