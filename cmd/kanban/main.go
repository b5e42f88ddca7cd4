package main

import (
	"os"
	"regexp"
	"strings"

	"tray-kanban/internal/cli"
)

var ticketNumberRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*-[0-9]+$`)

func isTicketNumber(s string) bool {
	return ticketNumberRe.MatchString(strings.TrimSpace(s))
}

// rewriteTicketLookupArgs turns `kanban ENG-12` into
// `kanban board search ENG-12`. Persistent flags may come first, so the
// first positional token is what counts.
func rewriteTicketLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}
	valueFlags := map[string]bool{
		"--dir":     true,
		"--relay":   true,
		"--backend": true,
		"--format":  true,
	}

	insert := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "board", "search")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		switch {
		case a == "":
			continue
		case a == "--":
			if i+1 < len(argv) && isTicketNumber(argv[i+1]) {
				return insert(i + 1)
			}
			return argv
		case strings.HasPrefix(a, "-"):
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		case isTicketNumber(a):
			return insert(i)
		default:
			return argv
		}
	}
	return argv
}

func main() {
	os.Args = rewriteTicketLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
