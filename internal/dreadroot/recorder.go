package dreadroot

// Recorder receives pipeline counters. telemetry.Metrics implements it.
type Recorder interface {
	PipelineRun(trigger string)
	PipelineSkip(reason string)
	Replacement(trigger string)
	Mutation(kind string)
	ConfigRefresh()
}

const (
	SkipDisabled       = "disabled"
	SkipExisting       = "skip_existing"
	SkipAbsent         = "absent"
	SkipNotGoverned    = "not_governed"
	SkipRecreateFailed = "recreate_failed"
	MutationTagStrip   = "tag_strip"
	MutationSolid      = "solid"
	MutationHostile    = "hostile"
)

type nopRecorder struct{}

func (nopRecorder) PipelineRun(string)  {}
func (nopRecorder) PipelineSkip(string) {}
func (nopRecorder) Replacement(string)  {}
func (nopRecorder) Mutation(string)     {}
func (nopRecorder) ConfigRefresh()      {}
