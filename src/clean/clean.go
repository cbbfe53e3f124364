// Package clean implements sandworm's clean driver (spec §4.G): it
// validates every clean target's subgraph for cycles, then builds each one
// serially in strict reverse of registration order.
package clean

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/op/go-logging.v1"

	"github.com/nickeldan/sandworm/src/build"
	"github.com/nickeldan/sandworm/src/core"
)

var log = logging.MustGetLogger("clean")

// Run cleans every target registered against env with clean=true, in
// strict reverse of registration order, aggregating results with AND
// (spec §4.G, §9's Open Question: AND, not OR). Clean is always serial.
//
// Every clean target's subgraph is checked for cycles (spec §4.C: "once per
// clean target") before any of them is built; if any has a cycle, Run
// returns false without building anything.
func Run(env *core.Environment) bool {
	targets := env.CleanTargets()

	var errs *multierror.Error
	for i := len(targets) - 1; i >= 0; i-- {
		t := targets[i]
		if cycle := core.DetectCycle(t); cycle != nil {
			errs = multierror.Append(errs, fmt.Errorf("dependency cycle cleaning %s", t.FullName()))
			log.Errorf("dependency cycle found cleaning %s", t.FullName())
		}
	}
	if errs != nil {
		log.Debugf("clean errors: %s", errs)
		return false
	}

	ok := true
	for i := len(targets) - 1; i >= 0; i-- {
		t := targets[i]
		if !build.RunSerial(build.Linearize(t)) {
			errs = multierror.Append(errs, fmt.Errorf("clean failed for %s", t.FullName()))
			ok = false
		}
	}

	if errs != nil {
		log.Debugf("clean errors: %s", errs)
	}
	if ok {
		log.Info("clean successful")
	}
	return ok
}
