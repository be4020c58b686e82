// Command kisaan is the KisaanConnect terminal client. It keeps a session
// on disk (or in Redis) and renders the same pages, guards and navigation
// as the web app.
package main

import (
	"fmt"
	"os"
)

func main() {
	root, c := newCLI()
	err := root.Execute()
	c.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
