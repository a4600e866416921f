package cli

import "fmt"

func banner(version string) string {
	return fmt.Sprintf(`
  _           _
 (_)_ __ ___ | |_
 | | '_ ' _ \| __|
 | | | | | | | |_
 |_|_| |_| |_|\__|  %s

`, version)
}
