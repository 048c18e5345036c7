package i18n

// ZhCNMessages 中文消息目录
// ZhCNMessages is the Simplified Chinese message catalog
var ZhCNMessages = map[string]string{
	"console.enter_instructions": "请输入任务指令。",
	"console.task_running":       "已有任务在运行，请等待或重置。",
	"console.starting":           "正在启动任务...",
	"console.started":            "任务已启动，等待更新...",
	"console.start_failed":       "启动任务失败",
	"console.error":              "错误：%s",
	"console.poll_error":         "查询任务状态失败：%s",
	"console.status":             "状态：%s",
	"console.cancelled":          "已取消。",
	"console.response_sent":      "回复已发送，等待更新...",
	"console.respond_failed":     "发送回复失败",

	"prompt.placeholder": "在此输入回复并发送...",
	"prompt.waiting":     "等待下一个提示...",

	"input.placeholder": "描述任务...（ctrl+d 发送）",

	"preview.placeholder": "截图预览将显示在这里",
	"preview.broken":      "截图加载失败",
	"preview.saved":       "截图已保存到 %s",
	"preview.none":        "没有可保存的截图",

	"panel.instructions": "指令",
	"panel.prompt":       "提示",
	"panel.insights":     "动态",
	"panel.preview":      "预览",
	"panel.terminal":     "终端",

	"status.idle":       "空闲",
	"status.submitting": "提交中...",
	"status.polling":    "运行中",
	"status.waiting":    "等待输入",
	"status.completed":  "已完成",
	"status.failed":     "失败",
	"status.task":       "任务 %s",

	"keys.send":   "发送",
	"keys.cancel": "取消",
	"keys.reset":  "重置",
	"keys.focus":  "切换输入",
	"keys.save":   "保存截图",
	"keys.quit":   "退出",

	"line.banner":        "taskconsole 已连接 %s",
	"line.help":          "输入指令以启动任务；提示打开时，输入行将作为回复发送",
	"line.commands":      "命令：/status /cancel /reset /save /help /quit",
	"line.prompt":        "? %s",
	"line.screenshot":    "[截图 %dx%d]",
	"line.unknown":       "未知命令：%s",
	"line.waiting":       "输入已关闭，等待任务 %s 结束",
	"line.waiting_start": "输入已关闭，等待任务结束",
	"line.unanswerable":  "输入已关闭，任务仍在询问 %q，已取消",

	"report.title":        "测试套件：%s",
	"report.date":         "执行时间：%s",
	"report.summary":      "汇总",
	"report.total":        "总数",
	"report.passed":       "通过",
	"report.failed":       "失败",
	"report.unknown":      "未知",
	"report.pass_rate":    "通过率",
	"report.details":      "详细结果",
	"report.failures":     "失败用例",
	"report.no_cases":     "尚未执行任何测试用例。",
	"report.no_failed":    "没有失败用例，全部通过！",
	"report.cleared":      "测试报告已清除",
	"report.extracted":    "已保存 %d 张截图到 %s（跳过 %d）",
	"report.unavailable":  "暂无测试报告",
	"report.html_title":   "测试执行报告",
	"report.session":      "会话 ID：%s",
	"report.executed_at":  "执行时间：%s",
	"report.instructions": "测试指令",
	"report.output":       "终端输出",
	"report.screenshot":   "截图",
	"report.generated":    "生成于 %s",
	"report.csv_written":  "已导出 %d 个测试用例到 %s（%d 张截图在 %s）",
	"report.html_written": "HTML 报告已写入 %s",
	"report.export_none":  "没有可导出的目标：请传入 --csv FILE 和/或 --html FILE",

	"history.none":       "暂无任务记录",
	"history.no_prompts": "任务 %s 没有已回复的提示",
	"history.disabled":   "任务历史已关闭（storage.history）",

	// 命令行
	"cli.config_ready": "项目配置：%s",

	"error.backend": "后端错误：%s",
	"error.config":  "配置错误：%s",
}
