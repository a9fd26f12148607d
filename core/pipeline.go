package core

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pulselab/portpulse/core/algo"
	"github.com/pulselab/portpulse/core/detect"
	"github.com/pulselab/portpulse/core/goalset"
	"github.com/pulselab/portpulse/core/trajectory"
	"github.com/pulselab/portpulse/internal/contract"
	"github.com/pulselab/portpulse/schema"
)

// runState is the mutable scratchpad threaded through one company's
// derivation graph. Nodes read upstream fields and write their own;
// nothing ever writes back into the raw company record.
type runState struct {
	cfg     *contract.Config
	now     time.Time
	company *schema.Company
	events  []schema.Event
	derived *schema.CompanyDerived
}

// companyGraph declares the per-company derivation DAG. The node set is
// fixed; the Gate re-checks its acyclicity from the adjacency map.
func companyGraph() *Graph {
	g := NewGraph()
	nodes := []*Node{
		{
			Name:  "facts",
			Layer: schema.RawLayer,
			Run: func(st *runState) error {
				st.derived.CompanyID = st.company.ID
				st.derived.CompanyName = st.company.Name
				st.derived.Stage = st.company.Stage
				return nil
			},
		},
		{
			Name:      "anomalies",
			Layer:     schema.DeriveLayer,
			DependsOn: []string{"facts"},
			Run: func(st *runState) error {
				params := schema.StageParamsFor(st.company.Stage)
				st.derived.Anomalies, st.derived.Summary = detect.Detect(st.company, params, st.cfg.Tolerance)
				return nil
			},
		},
		{
			Name:      "trajectories",
			Layer:     schema.PredictLayer,
			DependsOn: []string{"facts"},
			Run: func(st *runState) error {
				st.derived.Trajectories = make(map[string]schema.GoalTrajectory, len(st.company.Goals))
				for i := range st.company.Goals {
					goal := &st.company.Goals[i]
					st.derived.Trajectories[goal.ID] = trajectory.ProjectWithWeights(goal, st.now, st.cfg.Probability)
				}
				return nil
			},
		},
		{
			Name:      "goals",
			Layer:     schema.DecideLayer,
			DependsOn: []string{"anomalies"},
			Run: func(st *runState) error {
				st.derived.Goals = goalset.SelectTopGoals(st.company, st.derived.Anomalies, st.cfg.MinGoals, st.now)
				st.derived.Damages = goalset.ComputeDamages(st.company.Issues, st.derived.Goals, st.now)
				return nil
			},
		},
		{
			Name:      "actions",
			Layer:     schema.DecideLayer,
			DependsOn: []string{"anomalies", "trajectories", "goals"},
			Run: func(st *runState) error {
				// Suggested goals enter the set without history; they
				// still get an outlook so their actions carry real
				// probabilities instead of defaults.
				for i := range st.derived.Goals {
					goal := &st.derived.Goals[i]
					if _, ok := st.derived.Trajectories[goal.ID]; !ok {
						st.derived.Trajectories[goal.ID] = trajectory.ProjectWithWeights(goal, st.now, st.cfg.Probability)
					}
				}
				st.derived.Actions = BuildActions(
					st.company,
					st.derived.Anomalies,
					st.derived.Goals,
					st.derived.Trajectories,
					st.derived.Damages,
					st.events,
					st.now,
					st.cfg.Pressure,
				)
				return nil
			},
		},
	}
	for _, n := range nodes {
		if err := g.Add(n); err != nil {
			panic(err) // fixed node set, duplicate means a coding error
		}
	}
	return g
}

// DerivationDAG exposes the per-company dependency edges for invariant
// checking.
func DerivationDAG() map[string][]string {
	return companyGraph().Adjacency()
}

// deriveCompany runs the full derivation graph for one company.
func deriveCompany(cfg *contract.Config, company *schema.Company, events []schema.Event) (schema.CompanyDerived, error) {
	st := &runState{
		cfg:     cfg,
		now:     cfg.ReferenceTime,
		company: company,
		events:  events,
		derived: &schema.CompanyDerived{},
	}
	order, err := companyGraph().Sort()
	if err != nil {
		return schema.CompanyDerived{}, err
	}
	for _, node := range order {
		if err := node.Run(st); err != nil {
			return schema.CompanyDerived{}, fmt.Errorf("company %s, node %s: %w", company.ID, node.Name, err)
		}
	}
	return *st.derived, nil
}

// Execute runs the pipeline over a raw dataset: every company's
// derivation tree computed on a worker pool, merged deterministically,
// then the global action list scored and ranked once. The result is a
// pure function of (dataset, cfg.ReferenceTime).
func Execute(cfg *contract.Config, ds *schema.RawDataset) (*schema.PipelineResult, error) {
	companies := make([]*schema.Company, 0, len(ds.Companies))
	for i := range ds.Companies {
		if cfg.CompanyFilter != "" && ds.Companies[i].ID != cfg.CompanyFilter {
			continue
		}
		companies = append(companies, &ds.Companies[i])
	}
	if cfg.CompanyFilter != "" && len(companies) == 0 {
		return nil, fmt.Errorf("company %q not found in dataset", cfg.CompanyFilter)
	}

	type outcome struct {
		derived schema.CompanyDerived
		err     error
	}

	// Worker pool over independent companies. Each derivation tree is
	// self-contained, so no locking is needed; results merge at the end.
	companyCh := make(chan *schema.Company, len(companies))
	outcomeCh := make(chan outcome, len(companies))
	var wg sync.WaitGroup
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	for range workers {
		wg.Go(func() {
			for c := range companyCh {
				derived, err := deriveCompany(cfg, c, ds.Events)
				outcomeCh <- outcome{derived: derived, err: err}
			}
		})
	}
	for _, c := range companies {
		companyCh <- c
	}
	close(companyCh)
	wg.Wait()
	close(outcomeCh)

	result := &schema.PipelineResult{ReferenceTime: cfg.ReferenceTime}
	for out := range outcomeCh {
		if out.err != nil {
			return nil, out.err
		}
		result.Companies = append(result.Companies, out.derived)
	}

	// Workers finish in arbitrary order; merge deterministically.
	sort.Slice(result.Companies, func(i, j int) bool {
		return result.Companies[i].CompanyID < result.Companies[j].CompanyID
	})

	var all []schema.Action
	for i := range result.Companies {
		company := &result.Companies[i]
		for j := range company.Actions {
			algo.ComputeRankScore(&company.Actions[j])
		}
		all = append(all, company.Actions...)
	}
	result.RankedActions = algo.RankActions(all, cfg.ResultLimit)
	return result, nil
}
