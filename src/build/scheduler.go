package build

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"gopkg.in/op/go-logging.v1"

	"github.com/nickeldan/sandworm/src/core"
	slog "github.com/nickeldan/sandworm/src/logging"
)

// unbounded is a stand-in semaphore weight large enough that Acquire never
// actually blocks submission; used when the caller asks for -p with no N.
const unbounded = 1 << 30

// token is the opaque identifier the scheduler assigns to each runnable
// target, used to match worker completions back to the jobs waiting on
// them (spec §4.F, GLOSSARY).
type token = uuid.UUID

// tokenSet is the "None | OneToken | SetOfTokens" sum spec §4.F.3 and §9
// call for: most targets have exactly one predecessor, so the common case
// avoids allocating a map.
type tokenSet struct {
	one     token
	hasOne  bool
	multi   map[token]struct{}
}

func (s tokenSet) empty() bool { return !s.hasOne && len(s.multi) == 0 }

func (s tokenSet) add(tok token) tokenSet {
	switch {
	case s.multi != nil:
		s.multi[tok] = struct{}{}
		return s
	case s.hasOne:
		if s.one == tok {
			return s
		}
		return tokenSet{multi: map[token]struct{}{s.one: {}, tok: {}}}
	default:
		return tokenSet{one: tok, hasOne: true}
	}
}

// toMutableSet materializes a fresh map the dispatch loop can delete from
// as predecessors complete; the compact tokenSet above is read-only and
// built once during the readiness pre-pass.
func (s tokenSet) toMutableSet() map[token]struct{} {
	if s.multi != nil {
		out := make(map[token]struct{}, len(s.multi))
		for k := range s.multi {
			out[k] = struct{}{}
		}
		return out
	}
	if s.hasOne {
		return map[token]struct{}{s.one: {}}
	}
	return map[token]struct{}{}
}

// readiness is the per-target output of the pre-pass: whether the target
// is a real job (vs. a phony aggregate, which forwards through) and the
// (forwarded) set of tokens it must wait on.
type readiness struct {
	isJob bool
	token token
	deps  tokenSet
}

// prepass traverses t's dependency graph once (memoized), computing each
// out-of-date target's token and forwarded wait set (spec §4.F "Readiness
// pre-pass"). Up-to-date targets are pruned: they get the zero readiness,
// which downstream forwarding treats as "no obligation".
func prepass(t *core.Target, memo map[*core.Target]readiness) readiness {
	if r, ok := memo[t]; ok {
		return r
	}
	if !t.OutOfDate() {
		memo[t] = readiness{}
		return readiness{}
	}

	var deps tokenSet
	for _, dep := range t.Dependencies() {
		depR := prepass(dep, memo)
		if depR.isJob {
			deps = deps.add(depR.token)
			continue
		}
		// Phony aggregate (or up-to-date, which has an empty deps set
		// too): forward its own forwarded set transitively.
		for tok := range depR.deps.toMutableSet() {
			deps = deps.add(tok)
		}
	}

	isJob := t.Builder() != nil || len(t.Dependencies()) == 0
	r := readiness{isJob: isJob, deps: deps}
	if isJob {
		r.token = uuid.New()
	}
	memo[t] = r
	return r
}

// job is the dispatch loop's mutable bookkeeping for one runnable target.
type job struct {
	target    *core.Target
	token     token
	remaining map[token]struct{}
	failed    bool
}

func (j *job) ready() bool { return len(j.remaining) == 0 }

// completion is what a worker (or a synthesized no-op) sends back to the
// single-consumer dispatch loop.
type completion struct {
	token   token
	success bool
}

// RunParallel builds root's out-of-date subgraph with at most maxWorkers
// concurrent builders (maxWorkers <= 0 means unbounded), honoring the
// dependency partial order and cascading failures to dependents without
// running them (spec §4.F). The caller is expected to have already run
// core.DetectCycle.
func RunParallel(root *core.Target, maxWorkers int) bool {
	memo := map[*core.Target]readiness{}
	prepass(root, memo)

	jobs := map[token]*job{}
	for t, r := range memo {
		if !r.isJob {
			continue
		}
		jobs[r.token] = &job{target: t, token: r.token, remaining: r.deps.toMutableSet()}
	}
	if len(jobs) == 0 {
		return true
	}

	reverse := map[token][]*job{}
	var readyQueue []*job
	for _, j := range jobs {
		if j.ready() {
			readyQueue = append(readyQueue, j)
			continue
		}
		for tok := range j.remaining {
			reverse[tok] = append(reverse[tok], j)
		}
	}

	completions := make(chan completion, len(jobs))
	weight := int64(unbounded)
	if maxWorkers > 0 {
		weight = int64(maxWorkers)
	}
	sem := semaphore.NewWeighted(weight)
	g, ctx := errgroup.WithContext(context.Background())

	pump := slog.NewPump()
	defer pump.Close()

	submit := func(j *job) {
		if j.failed {
			completions <- completion{token: j.token, success: false}
			return
		}
		if j.target.Builder() == nil {
			completions <- completion{token: j.token, success: j.target.Exists()}
			return
		}
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				completions <- completion{token: j.token, success: false}
				return nil
			}
			defer sem.Release(1)
			pump.Send(slog.Record{Logger: log, Level: logging.DEBUG, Msg: "building " + j.target.FullName()})
			success := j.target.Build()
			if !success {
				pump.Send(slog.Record{Logger: log, Level: logging.ERROR, Msg: "build failed for " + j.target.FullName()})
			}
			completions <- completion{token: j.token, success: success}
			return nil
		})
	}

	for _, j := range readyQueue {
		submit(j)
	}

	anyFailure := false
	remaining := len(jobs)
	for remaining > 0 {
		c := <-completions
		remaining--
		if !c.success {
			anyFailure = true
		}
		for _, dep := range reverse[c.token] {
			delete(dep.remaining, c.token)
			if !c.success {
				dep.failed = true
			}
			if dep.ready() {
				submit(dep)
			}
		}
		delete(reverse, c.token)
	}

	g.Wait() // drain the pool; every goroutine has already sent its completion.

	if !anyFailure {
		log.Info("build successful")
	}
	return !anyFailure
}
