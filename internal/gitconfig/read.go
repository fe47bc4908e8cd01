package gitconfig

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// section is the generic shape of a .git/config stanza: close enough to
// TOML's [section] key = value grammar that BurntSushi/toml can decode it
// when quoting is well-formed. A file containing anything that is not valid
// TOML (unquoted shell fragments, duplicate keys, git's [remote "origin"]
// subsection headers) fails to decode as a whole, and ReadKeys then returns
// an empty map -- this path is read-only and purely informational, never fed
// back into the rewritten file.
type section map[string]interface{}

// ReadKeys best-effort parses raw as TOML-shaped INI and returns every key
// found, grouped by section name ("core", "user", ...). It
// exists only so the orchestrator can log which checkout-affecting keys
// were present; failures are swallowed into an empty map rather than
// surfaced, since a config file this system fetched from an untrusted
// remote is not expected to always be well-formed TOML.
func ReadKeys(raw []byte) map[string][]string {
	var doc map[string]section
	if _, err := toml.Decode(string(raw), &doc); err != nil {
		return map[string][]string{}
	}

	out := make(map[string][]string, len(doc))
	for name, sec := range doc {
		keys := make([]string, 0, len(sec))
		for k := range sec {
			keys = append(keys, k)
		}
		out[name] = keys
	}
	return out
}

// HasHostileKey reports whether ReadKeys' view of raw contains any of the
// keys Sanitize neutralizes, purely for a log line -- Sanitize itself never
// consults this.
func HasHostileKey(keys map[string][]string) (string, bool) {
	for section, ks := range keys {
		for _, k := range ks {
			switch k {
			case "fsmonitor", "sshCommand", "askPass", "editor", "pager":
				return fmt.Sprintf("%s.%s", section, k), true
			}
		}
	}
	return "", false
}
