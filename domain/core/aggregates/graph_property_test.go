package aggregates

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"brainbrowser/domain/core/valueobjects"
)

var pages = []valueobjects.PageID{"home", "about", "features", "science", "team", "technology", "memory", "web:example.com"}

// TestGraphInvariantsHold drives random mutation sequences and checks the
// structural invariants after every step.
func TestGraphInvariantsHold(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := newTestGraph()
		last := g.LastNeuronID()

		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("op%d", i)) {
			case 0:
				page := rapid.SampledFrom(pages).Draw(t, "page")
				before, bound := g.NeuronForPage(page)
				id, created, err := g.GetOrCreateNeuron(page, "", nil)
				if err != nil {
					t.Fatalf("create %s: %v", page, err)
				}
				if bound && (created || id != before) {
					t.Fatalf("page %s rebound from %s to %s", page, before, id)
				}
			case 1:
				from := valueobjects.NeuronID(rapid.Uint64Range(1, 10).Draw(t, "from"))
				to := valueobjects.NeuronID(rapid.Uint64Range(1, 10).Draw(t, "to"))
				before := g.SynapseCount()
				_, _, _ = g.Connect(from, to)
				_, _, _ = g.Connect(from, to)
				if g.HasSynapse(from, from) {
					t.Fatalf("self loop on %s", from)
				}
				if g.SynapseCount() > before+1 {
					t.Fatalf("duplicate synapse for %s->%s", from, to)
				}
			case 2:
				id := valueobjects.NeuronID(rapid.Uint64Range(1, 10).Draw(t, "remove"))
				g.RemoveNeuron(id)
				if len(g.IncidentSynapses(id)) != 0 {
					t.Fatalf("synapses left on removed %s", id)
				}
				for _, s := range g.Synapses() {
					if s.Key().Touches(id) {
						t.Fatalf("synapse %s survived removal of %s", s.Key(), id)
					}
				}
				for page, mapped := range g.PageIndex() {
					if mapped == id {
						t.Fatalf("page %s still maps to removed %s", page, id)
					}
				}
			case 3:
				id := valueobjects.NeuronID(rapid.Uint64Range(1, 10).Draw(t, "move"))
				_ = g.MoveNeuron(id, valueobjects.MustPosition(rapid.Float64Range(0, 100).Draw(t, "x"), 10))
			}

			if err := g.Validate(); err != nil {
				t.Fatal(err)
			}
			if g.LastNeuronID() < last {
				t.Fatalf("last neuron id regressed from %s to %s", last, g.LastNeuronID())
			}
			last = g.LastNeuronID()

			seen := map[valueobjects.NeuronID]valueobjects.PageID{}
			for page, id := range g.PageIndex() {
				if other, dup := seen[id]; dup {
					t.Fatalf("neuron %s bound to both %s and %s", id, other, page)
				}
				seen[id] = page
			}
		}
	})
}
