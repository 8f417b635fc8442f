// Package leaguetest writes small league data directories for tests.
package leaguetest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Models is a fixed-table predictor file that produces ordinary games.
const Models = `version: test
models:
  pitch:
    probs: [0.3, 0.15, 0.2, 0.12, 0.15, 0.08]
  hit_type:
    probs: [0.6, 0.2, 0.05, 0.15]
  out_type:
    probs: [0.5, 0.5]
  runner_advance_on_out:
    probs: [0.7, 0.3]
  runner_advance_on_hit:
    probs: [0.6, 0.4]
  steal_attempt:
    probs: [0.9, 0.1]
  steal_success:
    probs: [0.3, 0.7]
`

// Write lays out defaults.yaml, models.yaml and one team file per id under
// dir and returns dir. Each team has batters <id>-b1..b9 and pitchers
// <id>-p1, <id>-p2.
func Write(t testing.TB, dir string, teams ...string) string {
	t.Helper()
	File(t, dir, "defaults.yaml", "version: test\ntrials: 1\n")
	File(t, dir, "models.yaml", Models)
	for _, id := range teams {
		File(t, dir, filepath.Join("teams", id+".yaml"), Team(id))
	}
	return dir
}

// Team renders a team file for id.
func Team(id string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "team_id: %s\nname: %s\n", id, strings.ToUpper(id[:1])+id[1:])
	b.WriteString("lineup: [")
	for i := 1; i <= 9; i++ {
		if i > 1 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s-b%d", id, i)
	}
	fmt.Fprintf(&b, "]\nrotation: [%s-p1, %s-p2]\nplayers:\n", id, id)
	for i := 1; i <= 9; i++ {
		fmt.Fprintf(&b, "  - id: %s-b%d\n    name: %s Batter %d\n    stlats: {moxie: 0.5, thwackability: 0.5}\n", id, i, id, i)
	}
	for i := 1; i <= 2; i++ {
		fmt.Fprintf(&b, "  - id: %s-p%d\n    name: %s Pitcher %d\n    stlats: {ruthlessness: 0.5}\n", id, i, id, i)
	}
	return b.String()
}

// File writes body to dir/rel, creating parent directories.
func File(t testing.TB, dir, rel, body string) string {
	t.Helper()
	p := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}
