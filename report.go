package geotag

import (
    "fmt"
    "io"
    "time"

    "encoding/csv"

    "github.com/dsoprea/go-logging"
)

var (
    reportLogger = log.NewLogger("geotag.report")

    // reportColumns is the fixed result-row layout.
    reportColumns = []string{
        ResultFieldFile,
        ResultFieldDate,
        ResultFieldLatitude,
        ResultFieldLongitude,
        ResultFieldElevation,
        ResultFieldCity,
        ResultFieldProvinceState,
        ResultFieldCountryName,
    }
)

// ReportWriter records one row per item reaching the writer stage, in arrival
// order.
type ReportWriter struct {
    c *csv.Writer

    rowCount int
}

func NewReportWriter(w io.Writer) (rw *ReportWriter, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    c := csv.NewWriter(w)

    err = c.Write(reportColumns)
    log.PanicIf(err)

    return &ReportWriter{
        c: c,
    }, nil
}

func (rw *ReportWriter) WriteItem(item *WorkItem) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    fillPositionResult(item)

    record := make([]string, len(reportColumns))
    for i, column := range reportColumns {
        record[i] = item.Result[column]
    }

    err = rw.c.Write(record)
    log.PanicIf(err)

    rw.rowCount++

    return nil
}

func (rw *ReportWriter) Flush() (err error) {
    rw.c.Flush()

    if err := rw.c.Error(); err != nil {
        return log.Wrap(err)
    }

    return nil
}

func (rw *ReportWriter) RowCount() int {
    return rw.rowCount
}

// fillPositionResult derives the identity, date, and position columns that no
// stage needs to set explicitly.
func fillPositionResult(item *WorkItem) {
    item.SetResult(ResultFieldFile, item.Filepath)
    item.SetResult(ResultFieldDate, item.Timestamp.Format(time.RFC3339))

    if item.Position == nil {
        return
    }

    item.SetResult(ResultFieldLatitude, fmt.Sprintf("%.6f", item.Position.Latitude))
    item.SetResult(ResultFieldLongitude, fmt.Sprintf("%.6f", item.Position.Longitude))

    if item.Position.HasElevation == true {
        item.SetResult(ResultFieldElevation, fmt.Sprintf("%.1f", item.Position.Elevation))
    }
}

// NewWriteStage builds the terminal stage: commit metadata if the item was
// modified, record a result row if a report writer is present, hand the item
// to the sink if one is present, forward nothing.
func NewWriteStage(store MetadataStore, report *ReportWriter, sink func(item *WorkItem), queueDepth int) *Stage {
    transform := func(item *WorkItem) (forward *WorkItem, err error) {
        defer func() {
            if state := recover(); state != nil {
                err = log.Wrap(state.(error))
            }
        }()

        if item.Dirty() == true {
            err := store.Commit(item)
            log.PanicIf(err)

            PushDebugTrace(item.Filepath, "Metadata committed.")
        }

        if report != nil {
            err := report.WriteItem(item)
            log.PanicIf(err)
        }

        if sink != nil {
            sink(item)
        }

        return nil, nil
    }

    return NewStage("write", queueDepth, transform)
}
