package app

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"better-dreadroot/internal/world"
)

// Report summarises one simulation run.
type Report struct {
	Created      int
	Replaced     int
	Moves        int
	Reloads      int
	Entities     []EntitySummary
	Messages     int
	LoggedEvents uint64
}

type EntitySummary struct {
	ID         world.Handle
	Name       string
	Blueprint  string
	Region     string
	Solid      bool
	Hostile    bool
	Targetable bool
}

// Simulate plays a fixed script: legacy governed entities appear without any
// event, new governed and other entities are created through the bus, and
// then every live entity walks through each region in turn.
func (h *Host) Simulate(ctx context.Context, cfg SimulationConfig) (Report, error) {
	var report Report

	for i := 0; i < cfg.Legacy; i++ {
		if _, err := h.World.Create(h.cfg.Pipeline.Identity); err != nil {
			return report, fmt.Errorf("legacy spawn: %w", err)
		}
	}

	spawn := func(blueprint string) error {
		ref, err := h.World.Create(blueprint)
		if err != nil {
			return fmt.Errorf("spawn %q: %w", blueprint, err)
		}
		report.Created++
		kept := h.Bus.Created(ctx, ref)
		if !kept.Same(ref) {
			h.World.Replace(ref, kept)
			report.Replaced++
		}
		return nil
	}
	for i := 0; i < cfg.Governed; i++ {
		if h.ApplyPendingReloads() {
			report.Reloads++
		}
		if err := spawn(h.cfg.Pipeline.Identity); err != nil {
			return report, err
		}
		for _, other := range cfg.Others {
			if err := spawn(other); err != nil {
				return report, err
			}
		}
	}

	for _, region := range cfg.Regions {
		for _, e := range h.World.Entities() {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			if h.ApplyPendingReloads() {
				report.Reloads++
			}
			ref := world.RefTo(e)
			h.World.Place(ref, region)
			h.Bus.Entered(ctx, ref, region)
			report.Moves++
		}
	}

	for _, e := range h.World.Entities() {
		summary := EntitySummary{
			ID:         e.ID,
			Name:       e.DisplayName,
			Blueprint:  e.Blueprint,
			Region:     e.Region,
			Targetable: e.CanBeTargetedByPlayer(),
		}
		if e.Physics != nil {
			summary.Solid = e.Physics.Solid
		}
		if e.Brain != nil {
			summary.Hostile = e.Brain.Allegiance.Hostile
		}
		report.Entities = append(report.Entities, summary)
	}
	report.Messages = len(h.World.Messages())
	report.LoggedEvents = h.Router.Stats().EventsTotal
	return report, nil
}

// Print writes the report as a table.
func (r Report) Print(w io.Writer) {
	fmt.Fprintf(w, "created=%d replaced=%d moves=%d reloads=%d messages=%d logged=%d\n",
		r.Created, r.Replaced, r.Moves, r.Reloads, r.Messages, r.LoggedEvents)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBLUEPRINT\tREGION\tSOLID\tHOSTILE\tTARGETABLE")
	for _, e := range r.Entities {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%t\t%t\n", e.ID, world.StripMarkup(e.Name), e.Blueprint, e.Region, e.Solid, e.Hostile, e.Targetable)
	}
	tw.Flush()
}
