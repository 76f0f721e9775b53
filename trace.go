package geotag

import (
    "sync"

    "github.com/dsoprea/go-logging"
)

var (
    traceLogger = log.NewLogger("geotag.trace")

    // itemTraceMutex guards the index. Every stage worker pushes concurrently
    // once the pipeline is running.
    itemTraceMutex sync.Mutex
    itemTraceIndex map[string][]string
)

// InitItemTrace arms per-file diagnostics for the given identities. Stages
// append their decisions for exactly these files.
func InitItemTrace(filepaths []string) {
    itemTraceMutex.Lock()
    defer itemTraceMutex.Unlock()

    itemTraceIndex = make(map[string][]string)

    for _, filepath := range filepaths {
        itemTraceIndex[filepath] = nil
    }
}

func PushDebugTrace(filepath, message string) {
    itemTraceMutex.Lock()
    defer itemTraceMutex.Unlock()

    if itemTraceIndex != nil {
        if comments, found := itemTraceIndex[filepath]; found == true {
            itemTraceIndex[filepath] = append(comments, message)
        }
    }
}

func PushWarningTrace(filepath, message string) {
    traceLogger.Warningf(nil, message)

    itemTraceMutex.Lock()
    defer itemTraceMutex.Unlock()

    if itemTraceIndex != nil {
        if comments, found := itemTraceIndex[filepath]; found == true {
            itemTraceIndex[filepath] = append(comments, message)
        }
    }
}

func IsItemTraceInited() bool {
    itemTraceMutex.Lock()
    defer itemTraceMutex.Unlock()

    return itemTraceIndex != nil
}

// ItemTraceIndex returns the index. Only valid for reading once the pipeline
// has drained.
func ItemTraceIndex() map[string][]string {
    itemTraceMutex.Lock()
    defer itemTraceMutex.Unlock()

    return itemTraceIndex
}
