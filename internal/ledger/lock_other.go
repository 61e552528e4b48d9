//go:build !unix

package ledger

import "os"

// Without flock, an open-for-append failure is the only lock signal.
func lockFile(*os.File) error { return nil }

func unlockFile(*os.File) error { return nil }
