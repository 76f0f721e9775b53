package geotag

import (
    "fmt"

    "github.com/dsoprea/go-logging"
)

var (
    stageLogger = log.NewLogger("geotag.stage")
)

// pipelineMessage is the two-variant queue entry: either it wraps a work item
// or it is the end-of-stream sentinel. No data value can collide with the
// shutdown signal.
type pipelineMessage struct {
    item        *WorkItem
    endOfStream bool
}

// TransformFunc processes one item. A nil forward value with a nil error
// consumes the item silently; a non-nil error logs and drops it.
type TransformFunc func(item *WorkItem) (forward *WorkItem, err error)

// Stage is one unit of the pipeline: a bounded input queue consumed by a
// single worker that transforms items in arrival order and forwards results
// downstream. Its lifecycle is Running, then Draining once the sentinel
// arrives, then Stopped.
type Stage struct {
    name      string
    transform TransformFunc

    in   chan pipelineMessage
    out  chan pipelineMessage
    done chan struct{}

    // Counters are written only by the stage's own worker and must be read
    // only after Wait.
    processedCount int
    droppedCount   int
}

func NewStage(name string, queueDepth int, transform TransformFunc) *Stage {
    if queueDepth < 1 {
        log.Panicf("stage [%s] queue depth (%d) not valid", name, queueDepth)
    }

    return &Stage{
        name:      name,
        transform: transform,
        in:        make(chan pipelineMessage, queueDepth),
        done:      make(chan struct{}),
    }
}

func (s *Stage) Name() string {
    return s.name
}

// ProcessedCount returns the number of items successfully transformed. Only
// valid once the stage has stopped.
func (s *Stage) ProcessedCount() int {
    return s.processedCount
}

// DroppedCount returns the number of items dropped due to faults. Only valid
// once the stage has stopped.
func (s *Stage) DroppedCount() int {
    return s.droppedCount
}

// connectDownstream points this stage's output at the next stage's input
// queue. A stage without a downstream neighbor forwards nothing.
func (s *Stage) connectDownstream(next *Stage) {
    s.out = next.in
}

// run is the worker loop. One fault never halts the stage; the worker stays
// in Running until the sentinel arrives, then forwards exactly one sentinel
// downstream and stops.
func (s *Stage) run() {
    for {
        message := <-s.in

        if message.endOfStream == true {
            // Draining.
            break
        }

        forward, err := s.applyTransform(message.item)
        if err != nil {
            stageLogger.Errorf(nil, err, "Stage [%s] dropped item [%s].", s.name, message.item.Filepath)
            PushWarningTrace(message.item.Filepath, fmt.Sprintf("Dropped by stage [%s]: %s", s.name, err))

            s.droppedCount++

            continue
        }

        s.processedCount++

        if forward != nil && s.out != nil {
            // The sole backpressure mechanism: this blocks while the
            // downstream queue is full.
            s.out <- pipelineMessage{item: forward}
        }
    }

    if s.out != nil {
        s.out <- pipelineMessage{endOfStream: true}
    }

    // Stopped.
    close(s.done)
}

// applyTransform guarantees that a panicking transform surfaces as an error
// rather than killing the worker.
func (s *Stage) applyTransform(item *WorkItem) (forward *WorkItem, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    forward, err = s.transform(item)
    log.PanicIf(err)

    return forward, nil
}
