package common

import "context"

// BatchReader 按块读取单个源文件
//
// Next 返回下一批记录，读完后返回 io.EOF。读取器只能单次遍历，
// 不保留已经返回的批次。
type BatchReader interface {
	Next() (*Batch, error)
	Close() error
}

// TableWriter 关系表写入器
//
// 同一数据集的一次运行内写入模式固定：Prepare 在运行开始时重建表，
// 之后的每次 Write 都是追加。
type TableWriter interface {
	// Connect 连接数据库
	Connect(ctx context.Context) error
	// Prepare 执行前置SQL并重建目标表
	Prepare(ctx context.Context, table string, columns *Columns) error
	// Write 追加一批数据，每批独立提交
	Write(ctx context.Context, table string, batch *Batch) error
	// Finish 执行后置SQL
	Finish(ctx context.Context, table string) error
	// Count 获取表中记录数
	Count(ctx context.Context, table string) (int64, error)
	// Close 关闭连接
	Close() error
}

// DocumentWriter 行分隔JSON文档写入器
type DocumentWriter interface {
	// Write 将记录写入 <root>/<dataset>/<fileName>，已存在的文件会被覆盖
	Write(rows []Row, root, dataset, fileName string) (FileResult, error)
}

// FileResult 单个源文件的处理结果
type FileResult struct {
	Source   string // 源文件路径
	Target   string // 目标文件路径或表名
	Records  int64
	Batches  int
	Bytes    int64  // 仅文档输出
	Checksum uint64 // 仅文档输出，xxh3-64
}
