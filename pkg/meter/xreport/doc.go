// Package xreport 定义合并后报告的扁平结构与输出端。
//
// [Report] 按组件类型分组，每组的 [Record] 按先序排列：父节点先于子节点，
// 兄弟节点按首次插入顺序。这是对下游消费者的约定，输出端不得重排。
//
// 输出端：
//   - [JSONSink] 以 JSON 写出完整报告
//   - [TextSink] 以终端表格写出，每个组件类型一张表
//   - [OTelSink] 把记录导出为 OpenTelemetry 指标
//   - [MultiSink] 依次写入多个输出端
package xreport
