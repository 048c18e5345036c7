package i18n

import "testing"

func TestNew_English(t *testing.T) {
	i := New("en")
	if i.Locale() != "en" {
		t.Fatalf("Locale()=%q, want en", i.Locale())
	}
	got := i.T("panel.terminal")
	if got != "Terminal" {
		t.Fatalf("T(panel.terminal)=%q, want Terminal", got)
	}
}

func TestNew_Chinese(t *testing.T) {
	i := New("zh-CN")
	if i.Locale() != "zh-CN" {
		t.Fatalf("Locale()=%q, want zh-CN", i.Locale())
	}
	got := i.T("panel.terminal")
	if got != "终端" {
		t.Fatalf("T(panel.terminal)=%q, want 终端", got)
	}
}

func TestNew_ChineseFromLang(t *testing.T) {
	i := New("zh_CN.UTF-8")
	if i.Locale() != "zh-CN" {
		t.Fatalf("Locale()=%q, want zh-CN", i.Locale())
	}
	got := i.T("console.cancelled")
	if got != "已取消。" {
		t.Fatalf("T(console.cancelled)=%q, want 已取消。", got)
	}
}

func TestT_WithArgs(t *testing.T) {
	i := New("en")
	got := i.T("console.status", "running")
	if got != "Status: running" {
		t.Fatalf("T with args=%q, want Status: running", got)
	}
}

func TestT_MissingKey(t *testing.T) {
	i := New("en")
	got := i.T("nonexistent.key")
	if got != "nonexistent.key" {
		t.Fatalf("T missing key=%q, want key itself", got)
	}
}

func TestNormalizeLocale(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en_US.UTF-8", "en"},
		{"zh_CN.UTF-8", "zh-CN"},
		{"zh_TW", "zh-CN"},
		{"en", "en"},
		{"", "en"},
		{"fr_FR", "fr-FR"},
		{"C", "en"},
		{"POSIX", "en"},
		{"de_DE@euro", "de-DE"},
	}
	for _, tt := range tests {
		got := normalizeLocale(tt.input)
		if got != tt.expected {
			t.Errorf("normalizeLocale(%q)=%q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestUnknownLocaleFallsBackToEnglish(t *testing.T) {
	i := New("fr_FR.UTF-8")
	if i.Locale() != "fr-FR" {
		t.Fatalf("Locale()=%q, want fr-FR", i.Locale())
	}
	if i.Translated() {
		t.Fatal("fr-FR should not report its own catalog")
	}
	if got := i.T("panel.terminal"); got != "Terminal" {
		t.Fatalf("T(panel.terminal)=%q, want English fallback", got)
	}
	if !i.Has("panel.terminal") || i.Has("nonexistent.key") {
		t.Fatal("Has should follow the English fallback")
	}
}

func TestInitReplacesGlobal(t *testing.T) {
	prev := Global()
	t.Cleanup(func() { global.Store(prev) })

	Init("zh-CN")
	if Global().Locale() != LocaleZhCN {
		t.Fatalf("Global().Locale()=%q after Init(zh-CN)", Global().Locale())
	}
	if got := T("panel.terminal"); got != "终端" {
		t.Fatalf("T(panel.terminal)=%q, want 终端", got)
	}
}

func TestGlobal(t *testing.T) {
	g := Global()
	if g == nil {
		t.Fatal("Global() should not be nil")
	}
	// 应该返回同一实例 / Should return same instance
	g2 := Global()
	if g != g2 {
		t.Fatal("Global() should return same instance")
	}
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	for k := range EnMessages {
		if _, ok := ZhCNMessages[k]; !ok {
			t.Errorf("zh-CN catalog missing %q", k)
		}
	}
	for k := range ZhCNMessages {
		if _, ok := EnMessages[k]; !ok {
			t.Errorf("en catalog missing %q", k)
		}
	}
}
