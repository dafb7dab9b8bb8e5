// Package observability 收纳可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展，支持 context 属性注入与文件轮转
//
// 测量核心通过 xlog 记录生命周期与合并事件；报告的 OTel 导出见 meter/xreport。
package observability
