package menu

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		"== Menu ================":        "== メニュー ============",
		" p : Play":                       " p : 再生",
		" s : Seek and play":              " s : シークして再生",
		" f : Show one frame":             " f : 1フレームを表示",
		" q : Quit":                       " q : 終了",
		"Frame number (0-%d): ":           "フレーム番号 (0-%d): ",
		"Invalid frame number: %q":        "無効なフレーム番号です: %q",
		"Frame %d is out of range (0-%d)": "フレーム %d は範囲外です (0-%d)",
		"Error: %v":                       "エラー: %v",
		"Playback failed: %v":             "再生に失敗しました: %v",
		"Unknown command: %q":             "不明なコマンドです: %q",
		"Bye.":                            "終了します。",
	})
}
