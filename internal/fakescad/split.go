package fakescad

import (
	"fmt"
	"strings"
)

// Split breaks a command line into words the way a POSIX shell would for the
// subset the orchestrator produces: blanks, single quotes and backslash escapes.
func Split(command string) ([]string, error) {
	var (
		words   []string
		cur     strings.Builder
		inWord  bool
		quoted  bool
		escaped bool
	)
	for _, r := range command {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case quoted:
			if r == '\'' {
				quoted = false
			} else {
				cur.WriteRune(r)
			}
		case r == '\\':
			escaped, inWord = true, true
		case r == '\'':
			quoted, inWord = true, true
		case r == ' ' || r == '\t' || r == '\n':
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quoted || escaped {
		return nil, fmt.Errorf("fakescad: unterminated quote in %q", command)
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}
