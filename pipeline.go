package geotag

import (
    "github.com/dsoprea/go-logging"
)

var (
    pipelineLogger = log.NewLogger("geotag.pipeline")
)

// Pipeline is an ordered chain of stages wired queue-to-queue. The first
// stage's input queue is the single submission point; exactly one sentinel
// traverses the whole chain once the driver shuts it down.
type Pipeline struct {
    stages []*Stage
}

// NewPipeline wires the given stages in order. The caller passes only the
// enabled stages; the relative order is its responsibility.
func NewPipeline(stages ...*Stage) *Pipeline {
    if len(stages) == 0 {
        log.Panicf("a pipeline requires at least one stage")
    }

    for i := 0; i < len(stages)-1; i++ {
        stages[i].connectDownstream(stages[i+1])
    }

    return &Pipeline{
        stages: stages,
    }
}

func (p *Pipeline) Stages() []*Stage {
    return p.stages
}

// Run starts one worker per stage. They live until the sentinel has passed
// through.
func (p *Pipeline) Run() {
    for _, stage := range p.stages {
        go stage.run()
    }

    pipelineLogger.Debugf(nil, "Pipeline running with (%d) stages.", len(p.stages))
}

// Submit hands one item to the earliest stage. It blocks while that stage's
// queue is full. The item must not be touched by the caller afterward.
func (p *Pipeline) Submit(item *WorkItem) {
    p.stages[0].in <- pipelineMessage{item: item}
}

// Shutdown enqueues the single driver-side sentinel. No further submissions
// are allowed.
func (p *Pipeline) Shutdown() {
    p.stages[0].in <- pipelineMessage{endOfStream: true}
}

// Wait blocks until every stage has drained its queue and stopped. Already
// queued items are still fully processed.
func (p *Pipeline) Wait() {
    for _, stage := range p.stages {
        <-stage.done
    }
}
