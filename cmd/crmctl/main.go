// Command crmctl drives the enquiry CRM admin API from a terminal: imports,
// duplicate cleanup and snapshots.
package main

import (
	"log"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.SetFlags(0)
		log.Print(err)
		os.Exit(1)
	}
}
