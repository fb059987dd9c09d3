package core

import (
	"errors"
	"fmt"
	"time"

	"dataload/internal/plugin/common"
)

// Status 数据集处理状态
type Status int

const (
	StatusPending Status = iota
	StatusFilesResolved
	StatusProcessing
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusFilesResolved:
		return "FILES_RESOLVED"
	case StatusProcessing:
		return "PROCESSING"
	case StatusSucceeded:
		return "SUCCESS"
	case StatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Done 是否已到达终态
func (s Status) Done() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// FileResult 单个源文件的处理结果
type FileResult = common.FileResult

// DatasetResult 单个数据集的处理结果
type DatasetResult struct {
	Dataset   string
	Mode      Mode
	Status    Status
	Files     []FileResult
	Records   int64 // 本次写入的记录数
	TableRows int64 // 入库模式下写入完成后表中的记录数，-1 表示未知
	Err       error
	Duration  time.Duration
}

func newDatasetResult(dataset string, mode Mode) *DatasetResult {
	return &DatasetResult{
		Dataset:   dataset,
		Mode:      mode,
		Status:    StatusPending,
		TableRows: -1,
	}
}

// fail 进入失败终态
func (r *DatasetResult) fail(err error) *DatasetResult {
	r.Status = StatusFailed
	r.Err = err
	return r
}

// Succeeded 是否处理成功
func (r *DatasetResult) Succeeded() bool { return r.Status == StatusSucceeded }

func (r *DatasetResult) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", r.Dataset, r.Status, r.Err)
	}
	return fmt.Sprintf("%s: %s, %d 个文件, %d 条记录, 耗时 %v",
		r.Dataset, r.Status, len(r.Files), r.Records, r.Duration)
}

// Report 一次运行的汇总
type Report struct {
	Mode      Mode
	Results   []*DatasetResult
	StartTime time.Time
	Duration  time.Duration
}

// Result 按数据集名查找结果
func (r *Report) Result(dataset string) (*DatasetResult, bool) {
	for _, res := range r.Results {
		if res.Dataset == dataset {
			return res, true
		}
	}
	return nil, false
}

// Succeeded 成功的数据集名称
func (r *Report) Succeeded() []string {
	var names []string
	for _, res := range r.Results {
		if res.Succeeded() {
			names = append(names, res.Dataset)
		}
	}
	return names
}

// Failed 失败的数据集结果
func (r *Report) Failed() []*DatasetResult {
	var failed []*DatasetResult
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

// Records 所有数据集写入的记录总数
func (r *Report) Records() int64 {
	var n int64
	for _, res := range r.Results {
		n += res.Records
	}
	return n
}

// Err 合并所有失败原因，全部成功时返回 nil
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", res.Dataset, res.Err))
	}
	return errors.Join(errs...)
}
