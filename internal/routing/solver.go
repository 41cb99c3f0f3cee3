package routing

import (
	"math"
	"time"
)

// DefaultTimeBudget bounds the improvement phase when the caller does
// not supply a budget.
const DefaultTimeBudget = 30 * time.Second

// Solution holds one node-index sequence per used vehicle. Sequences
// contain delivery node indices only; the depot (index 0) is implicit
// at the head of every route.
type Solution struct {
	Sequences    [][]int
	Iterations   int
	Improvements int
	TimedOut     bool
}

// Solve runs the two-phase heuristic: a deterministic cheapest-insertion
// construction over all vehicles, then steepest-descent local search
// (intra-route 2-opt and or-opt relocation, inter-route relocation and
// cross-exchange) until no move improves or the budget expires. The
// result is a best-effort approximation, never a proven optimum.
func Solve(p *Problem, budget time.Duration) (*Solution, error) {
	if budget <= 0 {
		budget = DefaultTimeBudget
	}
	// Hard capacity feasibility: a single demand larger than the vehicle
	// capacity can never be assigned.
	for i := 1; i < len(p.Nodes); i++ {
		if p.Capacity > 0 && p.Demands[i] > p.Capacity {
			return nil, &InfeasibleError{ClientID: p.Nodes[i].ID, Demand: p.Demands[i], Capacity: p.Capacity}
		}
	}

	sol, err := construct(p)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(budget)
	improve(p, sol, deadline)

	// Vehicles that ended up with no stops are dropped.
	used := sol.Sequences[:0]
	for _, seq := range sol.Sequences {
		if len(seq) > 0 {
			used = append(used, seq)
		}
	}
	sol.Sequences = used
	return sol, nil
}

// construct assigns every delivery node by cheapest feasible insertion.
// Iteration order and index tie-breaks make the phase deterministic.
func construct(p *Problem) (*Solution, error) {
	n := len(p.Nodes)
	routes := make([][]int, p.FleetSize)
	loads := make([]int, p.FleetSize)
	assigned := make([]bool, n)
	assigned[0] = true
	remaining := n - 1

	for remaining > 0 {
		type cand struct {
			node, vehicle, pos int
			delta              int
			timeOK             bool
		}
		best := cand{node: -1, delta: math.MaxInt}
		bestRelaxed := cand{node: -1, delta: math.MaxInt}

		for node := 1; node < n; node++ {
			if assigned[node] {
				continue
			}
			for v := 0; v < p.FleetSize; v++ {
				if p.Capacity > 0 && loads[v]+p.Demands[node] > p.Capacity {
					continue
				}
				for pos := 0; pos <= len(routes[v]); pos++ {
					delta := insertionDelta(p, routes[v], node, pos)
					trial := insertAt(routes[v], node, pos)
					timeOK := p.MaxRouteTimeMin <= 0 || p.routeTimeMin(trial) <= float64(p.MaxRouteTimeMin)
					c := cand{node: node, vehicle: v, pos: pos, delta: delta, timeOK: timeOK}
					if timeOK && c.delta < best.delta {
						best = c
					}
					if c.delta < bestRelaxed.delta {
						bestRelaxed = c
					}
				}
			}
		}

		pick := best
		if pick.node < 0 {
			// No placement meets the time bound. The time dimension is
			// soft: fall back to the cheapest capacity-feasible slot.
			pick = bestRelaxed
		}
		if pick.node < 0 {
			// Capacity-infeasible across the whole fleet.
			for node := 1; node < n; node++ {
				if !assigned[node] {
					return nil, &InfeasibleError{ClientID: p.Nodes[node].ID, Demand: p.Demands[node], Capacity: p.Capacity}
				}
			}
			break
		}

		routes[pick.vehicle] = insertAt(routes[pick.vehicle], pick.node, pick.pos)
		loads[pick.vehicle] += p.Demands[pick.node]
		assigned[pick.node] = true
		remaining--
	}

	return &Solution{Sequences: routes}, nil
}

// insertionDelta is the edge-cost change of inserting node at pos, with
// the depot as the implicit predecessor of position 0 and no closing
// edge after the last stop.
func insertionDelta(p *Problem, seq []int, node, pos int) int {
	prev := 0
	if pos > 0 {
		prev = seq[pos-1]
	}
	if pos == len(seq) {
		return p.Matrix[prev][node]
	}
	next := seq[pos]
	return p.Matrix[prev][node] + p.Matrix[node][next] - p.Matrix[prev][next]
}

func insertAt(seq []int, node, pos int) []int {
	out := make([]int, 0, len(seq)+1)
	out = append(out, seq[:pos]...)
	out = append(out, node)
	out = append(out, seq[pos:]...)
	return out
}

// improve runs deterministic steepest-descent sweeps until a full pass
// finds no improving move or the deadline passes.
func improve(p *Problem, sol *Solution, deadline time.Time) {
	expired := func() bool { return !time.Now().Before(deadline) }
	for {
		if expired() {
			sol.TimedOut = true
			return
		}
		sol.Iterations++
		improved := false
		if twoOptPass(p, sol, expired) {
			improved = true
		}
		if relocatePass(p, sol, expired) {
			improved = true
		}
		if crossExchangePass(p, sol, expired) {
			improved = true
		}
		if improved {
			sol.Improvements++
		} else {
			return
		}
	}
}

// twoOptPass reverses intra-route segments when that shortens the
// route. Reversal leaves load untouched and can only shorten travel
// time, so no feasibility re-check is needed.
func twoOptPass(p *Problem, sol *Solution, expired func() bool) bool {
	improved := false
	for vi := range sol.Sequences {
		seq := sol.Sequences[vi]
		n := len(seq)
		again := true
		for again {
			again = false
			for i := 0; i < n-1; i++ {
				if expired() {
					return improved
				}
				for k := i + 1; k < n; k++ {
					cand := append([]int(nil), seq...)
					for a, b := i, k; a < b; a, b = a+1, b-1 {
						cand[a], cand[b] = cand[b], cand[a]
					}
					if p.routeDistance(cand) < p.routeDistance(seq) {
						seq = cand
						again = true
						improved = true
					}
				}
			}
		}
		sol.Sequences[vi] = seq
	}
	return improved
}

// relocatePass moves single nodes to a cheaper position, within a route
// or onto another vehicle, subject to capacity and time bounds on the
// receiving route. Each applied move restarts the sweep so indices stay
// valid after a sequence changes length.
func relocatePass(p *Problem, sol *Solution, expired func() bool) bool {
	improvedAny := false
	m := len(sol.Sequences)
	for {
		moved := false
	sweep:
		for a := 0; a < m; a++ {
			for i := 0; i < len(sol.Sequences[a]); i++ {
				if expired() {
					return improvedAny
				}
				node := sol.Sequences[a][i]
				srcWithout := removeAt(sol.Sequences[a], i)
				for b := 0; b < m; b++ {
					dst := sol.Sequences[b]
					if b == a {
						dst = srcWithout
					}
					if b != a && p.Capacity > 0 && p.routeDemand(dst)+p.Demands[node] > p.Capacity {
						continue
					}
					for pos := 0; pos <= len(dst); pos++ {
						if b == a && pos == i {
							continue
						}
						cand := insertAt(dst, node, pos)
						if p.MaxRouteTimeMin > 0 && p.routeTimeMin(cand) > float64(p.MaxRouteTimeMin) {
							continue
						}
						var before, after int
						if b == a {
							before = p.routeDistance(sol.Sequences[a])
							after = p.routeDistance(cand)
						} else {
							before = p.routeDistance(sol.Sequences[a]) + p.routeDistance(sol.Sequences[b])
							after = p.routeDistance(srcWithout) + p.routeDistance(cand)
						}
						if after < before {
							if b == a {
								sol.Sequences[a] = cand
							} else {
								sol.Sequences[a] = srcWithout
								sol.Sequences[b] = cand
							}
							moved = true
							improvedAny = true
							break sweep
						}
					}
				}
			}
		}
		if !moved {
			return improvedAny
		}
	}
}

// crossExchangePass swaps one node between two routes when the combined
// distance drops and both routes stay feasible.
func crossExchangePass(p *Problem, sol *Solution, expired func() bool) bool {
	improved := false
	m := len(sol.Sequences)
	for a := 0; a < m; a++ {
		for b := a + 1; b < m; b++ {
			pa, pb := sol.Sequences[a], sol.Sequences[b]
			for i := 0; i < len(pa); i++ {
				if expired() {
					return improved
				}
				for j := 0; j < len(pb); j++ {
					ca := append([]int(nil), pa...)
					cb := append([]int(nil), pb...)
					ca[i], cb[j] = cb[j], ca[i]
					if p.Capacity > 0 && (p.routeDemand(ca) > p.Capacity || p.routeDemand(cb) > p.Capacity) {
						continue
					}
					if p.MaxRouteTimeMin > 0 &&
						(p.routeTimeMin(ca) > float64(p.MaxRouteTimeMin) || p.routeTimeMin(cb) > float64(p.MaxRouteTimeMin)) {
						continue
					}
					before := p.routeDistance(pa) + p.routeDistance(pb)
					after := p.routeDistance(ca) + p.routeDistance(cb)
					if after < before {
						pa, pb = ca, cb
						improved = true
					}
				}
			}
			sol.Sequences[a], sol.Sequences[b] = pa, pb
		}
	}
	return improved
}

func removeAt(seq []int, i int) []int {
	out := make([]int, 0, len(seq)-1)
	out = append(out, seq[:i]...)
	out = append(out, seq[i+1:]...)
	return out
}
