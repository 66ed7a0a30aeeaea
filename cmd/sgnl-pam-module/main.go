// Command sgnl-pam-module drives the PAM-style account-management hook
// from the command line, standing in for a real PAM stack so the adapter
// can be exercised without a compiled PAM shared object.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tguy-sgnl/sgnl-linux-host/internal/pamadapter"
)

func main() {
	var (
		user    = flag.String("user", "", "PAM_USER equivalent")
		service = flag.String("service", "", "PAM_SERVICE equivalent")
		rhost   = flag.String("rhost", "", "PAM_RHOST equivalent")
	)
	flag.Parse()

	defer pamadapter.DestroyClient()

	result, message := pamadapter.AccountManagement(context.Background(), pamadapter.Session{
		User:    *user,
		Service: *service,
		RHost:   *rhost,
	})

	fmt.Printf("%s: %s\n", result, message)

	switch result {
	case pamadapter.Success:
		os.Exit(0)
	case pamadapter.PermDenied:
		os.Exit(1)
	default:
		os.Exit(2)
	}
}
