// Package i18n holds the console's message catalogs (English and
// Simplified Chinese) and picks one from config or the environment.
package i18n

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
)

// 支持的 locale / Supported locales
const (
	LocaleEn   = "en"
	LocaleZhCN = "zh-CN"
)

// catalogs 按 locale 索引的消息目录；英文是所有 locale 的 fallback
// catalogs indexes message tables by locale; English backs every locale
var catalogs = map[string]map[string]string{
	LocaleEn:   EnMessages,
	LocaleZhCN: ZhCNMessages,
}

// I18n 一个已解析 locale 的只读翻译器
// I18n is a read-only translator bound to one resolved locale
type I18n struct {
	locale  string
	catalog map[string]string
}

var global atomic.Pointer[I18n]

// Global 返回全局实例，首次调用时按环境检测 locale
// Global returns the process-wide translator, detecting the locale on first use
func Global() *I18n {
	if g := global.Load(); g != nil {
		return g
	}
	global.CompareAndSwap(nil, New(""))
	return global.Load()
}

// Init 用配置的 locale 替换全局实例
// Init replaces the process-wide translator with one for locale
func Init(locale string) {
	global.Store(New(locale))
}

// T 全局翻译快捷函数 / T translates with the global instance
func T(key string, args ...any) string {
	return Global().T(key, args...)
}

// New 创建翻译器；空 locale 走环境检测
// New builds a translator. An empty locale is detected from the environment.
func New(locale string) *I18n {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = DetectLocale()
	}
	locale = normalizeLocale(locale)
	return &I18n{locale: locale, catalog: catalogs[locale]}
}

// T 翻译 key；缺失时先查英文，再返回 key 本身
// T looks key up in the locale's catalog, then English, then returns key.
func (i *I18n) T(key string, args ...any) string {
	tmpl, ok := i.catalog[key]
	if !ok {
		tmpl, ok = EnMessages[key]
	}
	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// Has 报告 key 是否在任一目录中 / Has reports whether key is translated at all
func (i *I18n) Has(key string) bool {
	if _, ok := i.catalog[key]; ok {
		return true
	}
	_, ok := EnMessages[key]
	return ok
}

// Locale 返回解析后的 locale / Locale returns the resolved locale
func (i *I18n) Locale() string {
	return i.locale
}

// Translated 报告该 locale 是否有自己的目录
// Translated reports whether the locale has its own catalog (not just English fallback)
func (i *I18n) Translated() bool {
	_, ok := catalogs[i.locale]
	return ok
}

// DetectLocale 从 TASKCONSOLE_LANG / LANG / LC_* 检测 locale
// DetectLocale reads TASKCONSOLE_LANG, LANG, LC_ALL then LC_MESSAGES
func DetectLocale() string {
	for _, env := range []string{"TASKCONSOLE_LANG", "LANG", "LC_ALL", "LC_MESSAGES"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return normalizeLocale(v)
		}
	}
	return LocaleEn
}

// normalizeLocale maps POSIX-style names onto catalog keys. Unknown
// languages keep their BCP 47 form and fall back to English messages.
func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexAny(s, ".@"); idx >= 0 {
		s = s[:idx]
	}
	s = strings.ReplaceAll(s, "_", "-")
	lower := strings.ToLower(s)

	switch {
	case lower == "", lower == "c", lower == "posix":
		return LocaleEn
	case strings.HasPrefix(lower, "zh"):
		return LocaleZhCN
	case strings.HasPrefix(lower, "en"):
		return LocaleEn
	}
	return s
}
