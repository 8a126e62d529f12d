package errcode

// 通知消息里的 error_code：
// 0 表示成功；4xxx 表示导出完成但有可跳过的问题，或输入本身有误；5xxx 表示系统故障。
const (
	OK              = 0
	InvalidRecord   = 4000
	ResourceMissing = 4004
	SystemError     = 5000
)
