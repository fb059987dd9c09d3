package jsonl

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zeebo/xxh3"

	"dataload/internal/pkg/logger"
	"dataload/internal/plugin/common"
)

// Parameter JSON Lines写入器参数
type Parameter struct {
	DirMode  os.FileMode `json:"dirMode"`
	FileMode os.FileMode `json:"fileMode"`
	LogLevel int         `json:"logLevel"` // 零值为 ERROR
}

// Writer 每条记录写一行JSON对象，无外层数组
type Writer struct {
	Parameter *Parameter
	logger    *logger.Logger
}

var _ common.DocumentWriter = (*Writer)(nil)

// NewWriter 创建JSON Lines写入器
func NewWriter(param *Parameter) *Writer {
	if param == nil {
		param = &Parameter{}
	}
	if param.DirMode == 0 {
		param.DirMode = 0755
	}
	if param.FileMode == 0 {
		param.FileMode = 0644
	}
	return &Writer{
		Parameter: param,
		logger: logger.New(&logger.Option{
			Level:     logger.Level(param.LogLevel),
			Prefix:    "JSONLWriter",
			WithTime:  true,
			WithLevel: true,
		}),
	}
}

// Path 返回目标文件路径 <root>/<dataset>/<fileName>
func Path(root, dataset, fileName string) string {
	return filepath.Join(root, dataset, fileName)
}

// Write 覆盖写入 <root>/<dataset>/<fileName>，目录不存在时创建
func (w *Writer) Write(rows []common.Row, root, dataset, fileName string) (common.FileResult, error) {
	target := Path(root, dataset, fileName)
	result := common.FileResult{Target: target}

	if fileName == "" || filepath.Base(fileName) != fileName {
		return result, &common.SinkWriteError{Target: target, Op: "open", Err: fmt.Errorf("非法文件名: %q", fileName)}
	}
	if err := os.MkdirAll(filepath.Dir(target), w.Parameter.DirMode); err != nil {
		return result, &common.SinkWriteError{Target: target, Op: "mkdir", Err: err}
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, w.Parameter.FileMode)
	if err != nil {
		return result, &common.SinkWriteError{Target: target, Op: "open", Err: err}
	}

	hasher := xxh3.New()
	counter := &countingWriter{}
	bw := bufio.NewWriter(io.MultiWriter(f, hasher, counter))

	var line bytes.Buffer
	for i, row := range rows {
		line.Reset()
		if err := row.AppendJSON(&line); err != nil {
			f.Close()
			return result, &common.SinkWriteError{Target: target, Op: "encode", Err: fmt.Errorf("第 %d 条: %w", i+1, err)}
		}
		line.WriteByte('\n')
		if _, err := bw.Write(line.Bytes()); err != nil {
			f.Close()
			return result, &common.SinkWriteError{Target: target, Op: "write", Err: err}
		}
	}

	if err := bw.Flush(); err != nil {
		f.Close()
		return result, &common.SinkWriteError{Target: target, Op: "flush", Err: err}
	}
	if err := f.Close(); err != nil {
		return result, &common.SinkWriteError{Target: target, Op: "close", Err: err}
	}

	result.Records = int64(len(rows))
	result.Batches = 1
	result.Bytes = counter.n
	result.Checksum = hasher.Sum64()
	w.logger.Debug("写入 %s: %d 条, %d 字节, xxh3=%016x", target, result.Records, result.Bytes, result.Checksum)
	return result, nil
}

type countingWriter struct {
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
