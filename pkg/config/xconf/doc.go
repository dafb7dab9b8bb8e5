// Package xconf 加载 xmeter 的配置，基于 koanf 实现。
//
// 两层用法：
//   - [Config]：通用的文件/字节配置加载器（YAML、JSON），支持并发安全的 Reload 与文件监视
//   - [Settings]：xmeter 运行配置（组件集、复用策略、日志、报告、分布式合并），带默认值与校验
//
// 反序列化使用 koanf 默认的 mapstructure 钩子，"30s" 可直接解析为 time.Duration，
// 逗号分隔的字符串可解析为切片：
//
//	components: wall,cpu,peak_rss
//
// 缺省的键保留 [DefaultSettings] 中的值。
//
// # 监视
//
// [Watch] 监视配置文件所在目录（兼容编辑器先写临时文件再 rename 的原子写入），
// 防抖后调用 Reload 并通知回调。Stop 返回后不再有回调执行。
package xconf
