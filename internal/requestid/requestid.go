// Package requestid generates the opaque per-invocation token surfaced in
// the X-Request-Id header and on every access/search result.
package requestid

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// New returns a request identifier mixing wall-clock seconds, the process
// id, and a uuid-sourced entropy component, matching spec's derivation
// without promising any particular encoding to callers — the token is
// opaque.
func New() string {
	return fmt.Sprintf("req-%x-%d-%s", time.Now().Unix(), os.Getpid(), uuid.NewString())
}
