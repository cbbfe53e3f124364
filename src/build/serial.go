// Package build implements sandworm's serial linearizer/runner (spec §4.E)
// and parallel scheduler (spec §4.F).
package build

import (
	"sort"

	"gopkg.in/op/go-logging.v1"

	"github.com/nickeldan/sandworm/src/core"
)

var log = logging.MustGetLogger("build")

// Linearize produces a post-order traversal of root's dependency graph,
// keeping only targets that are out of date, ordered so that every
// dependency precedes its dependents (spec §4.E). Targets that are
// up-to-date are omitted entirely; the caller should run DetectCycle first,
// since Linearize assumes an acyclic graph.
func Linearize(root *core.Target) []*core.Target {
	order := map[*core.Target]int{}
	visited := map[*core.Target]bool{}
	linearizeRecurse(root, order, visited, 0)

	seq := make([]*core.Target, 0, len(order))
	for t := range order {
		seq = append(seq, t)
	}
	sort.Slice(seq, func(i, j int) bool { return order[seq[i]] < order[seq[j]] })
	return seq
}

func linearizeRecurse(t *core.Target, order map[*core.Target]int, visited map[*core.Target]bool, count int) int {
	if visited[t] {
		return count
	}
	visited[t] = true

	for _, dep := range t.Dependencies() {
		count = linearizeRecurse(dep, order, visited, count)
	}

	if _, already := order[t]; !already && t.OutOfDate() {
		order[t] = count
		count++
	}

	return count
}

// RunSerial walks sequence in order, building every target not already
// Built(). It returns false immediately on the first builder failure,
// leaving any remaining (dependent) targets unbuilt (spec §4.E, §8's
// "no transitive dependent of a failed target runs").
func RunSerial(sequence []*core.Target) bool {
	for _, t := range sequence {
		if t.Built() {
			continue
		}
		log.Debugf("building %s", t.FullName())
		if !t.Build() {
			log.Errorf("build failed for %s", t.FullName())
			return false
		}
	}
	return true
}

// Root runs DetectCycle, Linearize and RunSerial in sequence for a single
// root target — the full serial build path (spec §4.C-§4.E chained).
func Root(root *core.Target) bool {
	if cycle := core.DetectCycle(root); cycle != nil {
		logCycle(cycle)
		return false
	}
	ok := RunSerial(Linearize(root))
	if ok {
		log.Info("build successful")
	}
	return ok
}

func logCycle(cycle []*core.Target) {
	log.Error("dependency cycle found:")
	for _, t := range cycle {
		log.Errorf("\t%s", t.FullName())
	}
	log.Errorf("\t%s", cycle[0].FullName())
}
