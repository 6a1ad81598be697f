package textpolicy

import (
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain sentence", "小さな改善を積み重ねる。", "小さな改善を積み重ねる。"},
		{"adds terminal", "小さな改善を積み重ねる", "小さな改善を積み重ねる。"},
		{"trims quotes and space", "  「小さな改善を積み重ねる。」\n", "小さな改善を積み重ねる。"},
		{"strips label", "気づき：今日は小さな改善に気づいた", "今日は小さな改善に気づいた。"},
		{"strips repeated label", "気づき：気づき：確認する。", "確認する。"},
		{"removes latin", "ROIを常に意識する。", "を常に意識する。"},
		{"removes digits", "2025年は100回挑戦する。", "年は回挑戦する。"},
		{"removes fullwidth digits", "１番を目指す。", "番を目指す。"},
		{"removes symbols", "No.1の精神！で挑む？", "の精神で挑む。"},
		{"keeps long vowel and iteration mark", "チームワークで日々前進する", "チームワークで日々前進する。"},
		{"drops trailing comma before terminal", "前進する、", "前進する。"},
		{"keeps inner colon", "要点：速さを重視する。", "要点：速さを重視する。"},
		{"empty", "", ""},
		{"nothing usable", "Hello, world! 123", ""},
		{"label only", "気づき：", ""},
		{"polite output trimmed of markdown", "**気づき：** 相手を第一に考える。", "相手を第一に考える。"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"気づき：今日は小さな改善に気づいた",
		"「ROIを常に意識し、投資効果の最大化を図る。」",
		"常に『なぜ？』を忘れず、成長の原動力とする。",
		"前進する、：",
		"気づき：気づき",
		"。",
		"   ",
		"チームでNo.1を目指し、成功体験を共有する",
	}
	for _, in := range inputs {
		once := Clean(in)
		if twice := Clean(once); twice != once {
			t.Errorf("Clean not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestClean_OnlyAllowedRunes(t *testing.T) {
	out := Clean("気づき：Abc 123 ★市場の変化を読み、迅速に動く!?")
	for _, r := range out {
		if !Allowed(r) {
			t.Errorf("Clean output %q contains disallowed rune %q", out, r)
		}
	}
	if !strings.HasSuffix(out, Terminal) {
		t.Errorf("Clean output %q does not end with %q", out, Terminal)
	}
	if strings.HasPrefix(out, Label) {
		t.Errorf("Clean output %q still carries the label", out)
	}
}
